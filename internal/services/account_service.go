package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/financefusion/api/internal/models"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	Get(ctx context.Context, planName string, id int64) (*models.Account, error)
	ListByPlan(ctx context.Context, planName string) ([]*models.Account, error)
	Update(ctx context.Context, a *models.Account) (*models.Account, error)
	Delete(ctx context.Context, planName string, id int64) error
}

// AccountInput carries the writable fields of an account.
type AccountInput struct {
	Name         string
	Balance      decimal.Decimal
	CurrencyCode string
	SavingsType  *string
}

type AccountService struct {
	accounts AccountRepository
	tags     TagRepository
	plans    PlanAuthorizer
	logger   *slog.Logger
}

func NewAccountService(accounts AccountRepository, tags TagRepository, plans PlanAuthorizer, logger *slog.Logger) *AccountService {
	return &AccountService{accounts: accounts, tags: tags, plans: plans, logger: logger}
}

func (in AccountInput) apply(a *models.Account) error {
	var err error
	if a.Name, err = cleanName("account name", in.Name); err != nil {
		return err
	}
	// balances may go negative
	if a.Balance, err = models.NormalizeAmount(in.Balance); err != nil {
		return err
	}
	if a.CurrencyCode, err = NormalizeCurrencyCode(in.CurrencyCode); err != nil {
		return err
	}
	a.SavingsType = nil
	if in.SavingsType != nil {
		st := strings.TrimSpace(*in.SavingsType)
		if len(st) > 32 {
			return fmt.Errorf("%w: savings_type must be at most 32 characters", models.ErrBadRequest)
		}
		if st != "" {
			a.SavingsType = &st
		}
	}
	return nil
}

func (s *AccountService) Create(ctx context.Context, userID int64, planName string, in AccountInput) (*models.Account, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}

	account := &models.Account{PlanName: planName}
	if err := in.apply(account); err != nil {
		return nil, err
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, storageError(s.logger, "failed to create account", err, slog.String("plan", planName))
	}
	created.Tags = []*models.Tag{}

	s.plans.Touch(ctx, planName)
	return created, nil
}

// Get returns the account with its tags.
func (s *AccountService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Account, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}

	account, err := s.accounts.Get(ctx, planName, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get account", err, slog.Int64("account_id", id))
	}
	if account.Tags, err = s.tags.ListForAccount(ctx, id); err != nil {
		return nil, storageError(s.logger, "failed to list account tags", err, slog.Int64("account_id", id))
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context, userID int64, planName string) ([]*models.Account, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListByPlan(ctx, planName)
	if err != nil {
		return nil, storageError(s.logger, "failed to list accounts", err, slog.String("plan", planName))
	}
	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	tags, err := s.tags.ListForAccounts(ctx, ids)
	if err != nil {
		return nil, storageError(s.logger, "failed to list account tags", err, slog.String("plan", planName))
	}
	for _, a := range accounts {
		a.Tags = tags[a.ID]
		if a.Tags == nil {
			a.Tags = []*models.Tag{}
		}
	}
	return accounts, nil
}

func (s *AccountService) Update(ctx context.Context, userID int64, planName string, id int64, in AccountInput) (*models.Account, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}

	account := &models.Account{ID: id, PlanName: planName}
	if err := in.apply(account); err != nil {
		return nil, err
	}

	updated, err := s.accounts.Update(ctx, account)
	if err != nil {
		return nil, storageError(s.logger, "failed to update account", err, slog.Int64("account_id", id))
	}
	if updated.Tags, err = s.tags.ListForAccount(ctx, id); err != nil {
		return nil, storageError(s.logger, "failed to list account tags", err, slog.Int64("account_id", id))
	}

	s.plans.Touch(ctx, planName)
	return updated, nil
}

// Delete removes the account. Transactions and automations that reference it
// are removed by the schema.
func (s *AccountService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, planName, id); err != nil {
		return storageError(s.logger, "failed to delete account", err, slog.Int64("account_id", id))
	}
	s.plans.Touch(ctx, planName)
	return nil
}

// SetTags replaces the account's tag set. Every tag must belong to userID.
func (s *AccountService) SetTags(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	if _, err := s.accounts.Get(ctx, planName, id); err != nil {
		return nil, storageError(s.logger, "failed to get account", err, slog.Int64("account_id", id))
	}

	ids, err := ownedTagIDs(ctx, s.tags, s.logger, userID, tagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.tags.ReplaceAccountTags(ctx, id, ids); err != nil {
		return nil, storageError(s.logger, "failed to replace account tags", err, slog.Int64("account_id", id))
	}

	s.plans.Touch(ctx, planName)
	tags, err := s.tags.ListForAccount(ctx, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to list account tags", err, slog.Int64("account_id", id))
	}
	return tags, nil
}
