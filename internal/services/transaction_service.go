package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/financefusion/api/internal/repositories"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction, tagIDs []int64) (*models.Transaction, error)
	Get(ctx context.Context, planName string, id int64) (*models.Transaction, error)
	ListByPlan(ctx context.Context, f repositories.TransactionFilter, page pagination.PageRequest) ([]*models.Transaction, int64, error)
	SetCancelled(ctx context.Context, planName string, id int64, cancelled bool) (*models.Transaction, error)
	Delete(ctx context.Context, planName string, id int64) error
}

// FlowInput is the money movement shared by transactions and automations.
type FlowInput struct {
	Type         string
	FromAccount  *int64
	ToAccount    *int64
	Amount       decimal.Decimal
	CurrencyCode string
	Statement    string
}

type flow struct {
	Type         models.TransactionType
	FromAccount  *int64
	ToAccount    *int64
	Amount       decimal.Decimal
	CurrencyCode string
	Statement    string
}

// resolveFlow validates the type rules and checks that both accounts, when
// set, live in planName.
func resolveFlow(ctx context.Context, accounts AccountRepository, logger *slog.Logger, planName string, in FlowInput) (*flow, error) {
	f := &flow{
		Type:        models.TransactionType(strings.ToLower(strings.TrimSpace(in.Type))),
		FromAccount: in.FromAccount,
		ToAccount:   in.ToAccount,
		Statement:   strings.TrimSpace(in.Statement),
	}
	if err := models.ValidateFlow(f.Type, f.FromAccount, f.ToAccount); err != nil {
		return nil, err
	}

	var err error
	if f.Amount, err = models.NormalizePositiveAmount(in.Amount); err != nil {
		return nil, err
	}
	if f.CurrencyCode, err = NormalizeCurrencyCode(in.CurrencyCode); err != nil {
		return nil, err
	}

	for _, ref := range []struct {
		id   *int64
		name string
	}{{f.FromAccount, "from_account"}, {f.ToAccount, "to_account"}} {
		if ref.id == nil {
			continue
		}
		if _, err := accounts.Get(ctx, planName, *ref.id); err != nil {
			return nil, notFoundAsBadRequest(
				storageError(logger, "failed to resolve account", err, slog.Int64("account_id", *ref.id)),
				fmt.Sprintf("%s %d", ref.name, *ref.id),
			)
		}
	}
	return f, nil
}

// TransactionListOptions narrows a transaction listing.
type TransactionListOptions struct {
	AccountID        *int64
	IncludeCancelled bool
	Page             pagination.PageRequest
}

// TransactionService records transactions. Balances are never adjusted;
// a transaction is a record, not a posting.
type TransactionService struct {
	transactions TransactionRepository
	accounts     AccountRepository
	tags         TagRepository
	plans        PlanAuthorizer
	logger       *slog.Logger
}

func NewTransactionService(
	transactions TransactionRepository,
	accounts AccountRepository,
	tags TagRepository,
	plans PlanAuthorizer,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		tags:         tags,
		plans:        plans,
		logger:       logger,
	}
}

func (s *TransactionService) Create(ctx context.Context, userID int64, planName string, in FlowInput, tagIDs []int64) (*models.Transaction, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	f, err := resolveFlow(ctx, s.accounts, s.logger, planName, in)
	if err != nil {
		return nil, err
	}
	ids, err := ownedTagIDs(ctx, s.tags, s.logger, userID, tagIDs)
	if err != nil {
		return nil, err
	}

	created, err := s.transactions.Create(ctx, &models.Transaction{
		PlanName:     planName,
		Type:         f.Type,
		FromAccount:  f.FromAccount,
		ToAccount:    f.ToAccount,
		Amount:       f.Amount,
		CurrencyCode: f.CurrencyCode,
		Statement:    f.Statement,
	}, ids)
	if err != nil {
		return nil, storageError(s.logger, "failed to create transaction", err, slog.String("plan", planName))
	}
	if created.Tags == nil {
		created.Tags = []*models.Tag{}
	}

	s.plans.Touch(ctx, planName)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	t, err := s.transactions.Get(ctx, planName, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get transaction", err, slog.Int64("transaction_id", id))
	}
	if t.Tags, err = s.tags.ListForTransaction(ctx, id); err != nil {
		return nil, storageError(s.logger, "failed to list transaction tags", err, slog.Int64("transaction_id", id))
	}
	return t, nil
}

// List returns one page of the plan's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64, planName string, opts TransactionListOptions) (pagination.PageResponse[*models.Transaction], error) {
	var empty pagination.PageResponse[*models.Transaction]
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return empty, err
	}

	page := opts.Page
	page.Defaults()
	if page.Page < 1 || page.PageSize < 1 || page.PageSize > pagination.MaxPageSize {
		return empty, fmt.Errorf("%w: page must be >= 1 and page_size between 1 and %d", models.ErrBadRequest, pagination.MaxPageSize)
	}

	items, total, err := s.transactions.ListByPlan(ctx, repositories.TransactionFilter{
		PlanName:         planName,
		AccountID:        opts.AccountID,
		IncludeCancelled: opts.IncludeCancelled,
	}, page)
	if err != nil {
		return empty, storageError(s.logger, "failed to list transactions", err, slog.String("plan", planName))
	}
	ids := make([]int64, len(items))
	for i, t := range items {
		ids[i] = t.ID
	}
	tags, err := s.tags.ListForTransactions(ctx, ids)
	if err != nil {
		return empty, storageError(s.logger, "failed to list transaction tags", err, slog.String("plan", planName))
	}
	for _, t := range items {
		t.Tags = tags[t.ID]
		if t.Tags == nil {
			t.Tags = []*models.Tag{}
		}
	}

	return pagination.NewPageResponse(items, page.Page, page.PageSize, total), nil
}

// Cancel flags a transaction as cancelled. Cancelling twice is a no-op.
func (s *TransactionService) Cancel(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	t, err := s.transactions.SetCancelled(ctx, planName, id, true)
	if err != nil {
		return nil, storageError(s.logger, "failed to cancel transaction", err, slog.Int64("transaction_id", id))
	}
	if t.Tags, err = s.tags.ListForTransaction(ctx, id); err != nil {
		return nil, storageError(s.logger, "failed to list transaction tags", err, slog.Int64("transaction_id", id))
	}
	s.plans.Touch(ctx, planName)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, planName, id); err != nil {
		return storageError(s.logger, "failed to delete transaction", err, slog.Int64("transaction_id", id))
	}
	s.plans.Touch(ctx, planName)
	return nil
}

func (s *TransactionService) SetTags(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	if _, err := s.transactions.Get(ctx, planName, id); err != nil {
		return nil, storageError(s.logger, "failed to get transaction", err, slog.Int64("transaction_id", id))
	}
	ids, err := ownedTagIDs(ctx, s.tags, s.logger, userID, tagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.tags.ReplaceTransactionTags(ctx, id, ids); err != nil {
		return nil, storageError(s.logger, "failed to replace transaction tags", err, slog.Int64("transaction_id", id))
	}

	s.plans.Touch(ctx, planName)
	tags, err := s.tags.ListForTransaction(ctx, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to list transaction tags", err, slog.Int64("transaction_id", id))
	}
	return tags, nil
}
