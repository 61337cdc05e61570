package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/financefusion/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanService_Create(t *testing.T) {
	svc := NewPlanService(&MockPlanRepository{}, newTestLogger())

	plan, err := svc.Create(context.Background(), 1, "  household ")
	require.NoError(t, err)
	assert.Equal(t, "household", plan.Name)

	_, err = svc.Create(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.Create(context.Background(), 1, strings.Repeat("x", 65))
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestPlanService_Create_NameTaken(t *testing.T) {
	repo := &MockPlanRepository{
		CreateFunc: func(ctx context.Context, name string, userID int64) (*models.Plan, error) {
			return nil, models.ErrConflict
		},
	}

	_, err := NewPlanService(repo, newTestLogger()).Create(context.Background(), 2, "household")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestPlanService_Authorize(t *testing.T) {
	repo := &MockPlanRepository{
		GetFunc: func(ctx context.Context, name string) (*models.Plan, error) {
			if name == "household" {
				return &models.Plan{Name: name, UserID: 1}, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc := NewPlanService(repo, newTestLogger())

	plan, err := svc.Authorize(context.Background(), 1, "household")
	require.NoError(t, err)
	assert.Equal(t, int64(1), plan.UserID)

	_, err = svc.Authorize(context.Background(), 2, "household")
	assert.ErrorIs(t, err, models.ErrNotFound, "foreign plans look missing")

	_, err = svc.Authorize(context.Background(), 1, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPlanService_Touch_SwallowsErrors(t *testing.T) {
	var touchedAt time.Time
	repo := &MockPlanRepository{
		TouchFunc: func(ctx context.Context, name string, at time.Time) error {
			touchedAt = at
			return assert.AnError
		},
	}
	svc := NewPlanService(repo, newTestLogger())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	assert.NotPanics(t, func() { svc.Touch(context.Background(), "household") })
	assert.Equal(t, fixed, touchedAt)
}

func TestPlanService_Delete_NotOwned(t *testing.T) {
	repo := &MockPlanRepository{
		DeleteFunc: func(ctx context.Context, name string, userID int64) error { return models.ErrNotFound },
	}

	err := NewPlanService(repo, newTestLogger()).Delete(context.Background(), 2, "household")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
