package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/financefusion/api/internal/models"
	"github.com/shopspring/decimal"
)

type BudgetRepository interface {
	Create(ctx context.Context, b *models.Budget) (*models.Budget, error)
	Get(ctx context.Context, planName string, id int64) (*models.Budget, error)
	ListByPlan(ctx context.Context, planName string) ([]*models.Budget, error)
	Update(ctx context.Context, b *models.Budget) (*models.Budget, error)
	Delete(ctx context.Context, planName string, id int64) error
}

type BudgetInput struct {
	Name         string
	Amount       decimal.Decimal
	Interval     string
	CurrencyCode string
	StartDate    time.Time
	EndDate      *time.Time
}

// NormalizeInterval accepts daily, weekly, monthly or yearly in any case.
func NormalizeInterval(field, v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case models.IntervalDaily, models.IntervalWeekly, models.IntervalMonthly, models.IntervalYearly:
		return v, nil
	}
	return "", fmt.Errorf("%w: %s must be one of daily, weekly, monthly, yearly", models.ErrBadRequest, field)
}

func (in BudgetInput) apply(b *models.Budget) error {
	var err error
	if b.Name, err = cleanName("budget name", in.Name); err != nil {
		return err
	}
	if b.Amount, err = models.NormalizePositiveAmount(in.Amount); err != nil {
		return err
	}
	if b.Interval, err = NormalizeInterval("interval", in.Interval); err != nil {
		return err
	}
	if b.CurrencyCode, err = NormalizeCurrencyCode(in.CurrencyCode); err != nil {
		return err
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", models.ErrBadRequest)
	}
	if err := models.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return err
	}
	b.StartDate = in.StartDate.UTC()
	b.EndDate = utcPtr(in.EndDate)
	return nil
}

type BudgetService struct {
	budgets BudgetRepository
	plans   PlanAuthorizer
	logger  *slog.Logger
}

func NewBudgetService(budgets BudgetRepository, plans PlanAuthorizer, logger *slog.Logger) *BudgetService {
	return &BudgetService{budgets: budgets, plans: plans, logger: logger}
}

func (s *BudgetService) Create(ctx context.Context, userID int64, planName string, in BudgetInput) (*models.Budget, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	budget := &models.Budget{PlanName: planName}
	if err := in.apply(budget); err != nil {
		return nil, err
	}

	created, err := s.budgets.Create(ctx, budget)
	if err != nil {
		return nil, storageError(s.logger, "failed to create budget", err, slog.String("plan", planName))
	}
	s.plans.Touch(ctx, planName)
	return created, nil
}

func (s *BudgetService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Budget, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	budget, err := s.budgets.Get(ctx, planName, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get budget", err, slog.Int64("budget_id", id))
	}
	return budget, nil
}

func (s *BudgetService) List(ctx context.Context, userID int64, planName string) ([]*models.Budget, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	budgets, err := s.budgets.ListByPlan(ctx, planName)
	if err != nil {
		return nil, storageError(s.logger, "failed to list budgets", err, slog.String("plan", planName))
	}
	return budgets, nil
}

func (s *BudgetService) Update(ctx context.Context, userID int64, planName string, id int64, in BudgetInput) (*models.Budget, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	budget := &models.Budget{ID: id, PlanName: planName}
	if err := in.apply(budget); err != nil {
		return nil, err
	}

	updated, err := s.budgets.Update(ctx, budget)
	if err != nil {
		return nil, storageError(s.logger, "failed to update budget", err, slog.Int64("budget_id", id))
	}
	s.plans.Touch(ctx, planName)
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return err
	}
	if err := s.budgets.Delete(ctx, planName, id); err != nil {
		return storageError(s.logger, "failed to delete budget", err, slog.Int64("budget_id", id))
	}
	s.plans.Touch(ctx, planName)
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
