package services

import (
	"context"
	"testing"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/financefusion/api/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

// accountsInPlan resolves only the listed account ids.
func accountsInPlan(ids ...int64) *MockAccountRepository {
	return &MockAccountRepository{
		GetFunc: func(ctx context.Context, planName string, id int64) (*models.Account, error) {
			for _, known := range ids {
				if id == known {
					return &models.Account{ID: id, PlanName: planName}, nil
				}
			}
			return nil, models.ErrNotFound
		},
	}
}

func TestTransactionService_Create_FlowRules(t *testing.T) {
	tests := []struct {
		name    string
		in      FlowInput
		wantErr error
	}{
		{name: "income", in: FlowInput{Type: "income", ToAccount: ptr(1)}},
		{name: "expense", in: FlowInput{Type: "EXPENSE", FromAccount: ptr(1)}},
		{name: "transfer", in: FlowInput{Type: "transfer", FromAccount: ptr(1), ToAccount: ptr(2)}},
		{name: "income with from", in: FlowInput{Type: "income", FromAccount: ptr(1), ToAccount: ptr(2)}, wantErr: models.ErrBadRequest},
		{name: "expense without from", in: FlowInput{Type: "expense"}, wantErr: models.ErrBadRequest},
		{name: "transfer to self", in: FlowInput{Type: "transfer", FromAccount: ptr(1), ToAccount: ptr(1)}, wantErr: models.ErrBadRequest},
		{name: "unknown type", in: FlowInput{Type: "refund", ToAccount: ptr(1)}, wantErr: models.ErrBadRequest},
		{name: "account outside plan", in: FlowInput{Type: "income", ToAccount: ptr(99)}, wantErr: models.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Amount = decimal.RequireFromString("12.50")
			tt.in.CurrencyCode = "USD"
			plans := &MockPlanAuthorizer{OwnerID: 1}
			svc := NewTransactionService(&MockTransactionRepository{}, accountsInPlan(1, 2), &MockTagRepository{}, plans, newTestLogger())

			created, err := svc.Create(context.Background(), 1, "household", tt.in, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, plans.Touched)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString("12.5").Equal(created.Amount))
			assert.Equal(t, []string{"household"}, plans.Touched)
		})
	}
}

func TestTransactionService_Create_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewTransactionService(&MockTransactionRepository{}, accountsInPlan(1), &MockTagRepository{}, &MockPlanAuthorizer{OwnerID: 1}, newTestLogger())

	_, err := svc.Create(context.Background(), 1, "household", FlowInput{
		Type: "income", ToAccount: ptr(1), Amount: decimal.Zero, CurrencyCode: "USD",
	}, nil)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestTransactionService_Create_WithTags(t *testing.T) {
	var tagged []int64
	repo := &MockTransactionRepository{
		CreateFunc: func(ctx context.Context, tx *models.Transaction, tagIDs []int64) (*models.Transaction, error) {
			tagged = tagIDs
			tx.ID = 4
			tx.Tags = []*models.Tag{{ID: 5, Name: "rent"}}
			return tx, nil
		},
	}
	svc := NewTransactionService(repo, accountsInPlan(1), &MockTagRepository{}, &MockPlanAuthorizer{OwnerID: 1}, newTestLogger())

	created, err := svc.Create(context.Background(), 1, "household", FlowInput{
		Type: "expense", FromAccount: ptr(1), Amount: decimal.NewFromInt(900), CurrencyCode: "USD",
	}, []int64{5, 5})

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, tagged)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "rent", created.Tags[0].Name)
}

func TestTransactionService_Create_TagLinkFailure(t *testing.T) {
	repo := &MockTransactionRepository{
		CreateFunc: func(ctx context.Context, tx *models.Transaction, tagIDs []int64) (*models.Transaction, error) {
			return nil, models.ErrForeignKeyViolation
		},
	}
	plans := &MockPlanAuthorizer{OwnerID: 1}
	svc := NewTransactionService(repo, accountsInPlan(1), &MockTagRepository{}, plans, newTestLogger())

	created, err := svc.Create(context.Background(), 1, "household", FlowInput{
		Type: "expense", FromAccount: ptr(1), Amount: decimal.NewFromInt(900), CurrencyCode: "USD",
	}, []int64{5})

	assert.Error(t, err)
	assert.Nil(t, created)
	assert.Empty(t, plans.Touched)
}

func TestTransactionService_List(t *testing.T) {
	var gotFilter repositories.TransactionFilter
	var gotPage pagination.PageRequest
	repo := &MockTransactionRepository{
		ListByPlanFunc: func(ctx context.Context, f repositories.TransactionFilter, page pagination.PageRequest) ([]*models.Transaction, int64, error) {
			gotFilter, gotPage = f, page
			return []*models.Transaction{{ID: 1}, {ID: 2}}, 45, nil
		},
	}
	var tagLookups [][]int64
	tags := &MockTagRepository{
		ListForTransactionsFunc: func(ctx context.Context, ids []int64) (map[int64][]*models.Tag, error) {
			tagLookups = append(tagLookups, ids)
			return map[int64][]*models.Tag{1: {{ID: 9, Name: "food"}}}, nil
		},
	}
	svc := NewTransactionService(repo, accountsInPlan(), tags, &MockPlanAuthorizer{OwnerID: 1}, newTestLogger())

	resp, err := svc.List(context.Background(), 1, "household", TransactionListOptions{
		AccountID: ptr(3),
		Page:      pagination.PageRequest{Page: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, "household", gotFilter.PlanName)
	assert.Equal(t, int64(3), *gotFilter.AccountID)
	assert.False(t, gotFilter.IncludeCancelled)
	assert.Equal(t, pagination.DefaultPageSize, gotPage.PageSize)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, int64(45), resp.TotalItems)
	assert.Equal(t, 3, resp.TotalPages)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, [][]int64{{1, 2}}, tagLookups, "tags load in one lookup per page")
	assert.Equal(t, "food", resp.Data[0].Tags[0].Name)
	assert.NotNil(t, resp.Data[1].Tags)
	assert.Empty(t, resp.Data[1].Tags)

	_, err = svc.List(context.Background(), 1, "household", TransactionListOptions{Page: pagination.PageRequest{PageSize: 500}})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestTransactionService_Cancel(t *testing.T) {
	repo := &MockTransactionRepository{
		SetCancelledFunc: func(ctx context.Context, planName string, id int64, cancelled bool) (*models.Transaction, error) {
			assert.True(t, cancelled)
			return &models.Transaction{ID: id, PlanName: planName, IsCancelled: cancelled}, nil
		},
	}
	plans := &MockPlanAuthorizer{OwnerID: 1}
	svc := NewTransactionService(repo, accountsInPlan(), &MockTagRepository{}, plans, newTestLogger())

	tx, err := svc.Cancel(context.Background(), 1, "household", 8)
	require.NoError(t, err)
	assert.True(t, tx.IsCancelled)
	assert.Equal(t, []string{"household"}, plans.Touched)
}
