package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/financefusion/api/internal/models"
)

const maxNameLen = 64

type PlanRepository interface {
	Create(ctx context.Context, name string, userID int64) (*models.Plan, error)
	Get(ctx context.Context, name string) (*models.Plan, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Plan, error)
	Delete(ctx context.Context, name string, userID int64) error
	Touch(ctx context.Context, name string, at time.Time) error
}

// PlanAuthorizer gates every plan-scoped service.
type PlanAuthorizer interface {
	Authorize(ctx context.Context, userID int64, planName string) (*models.Plan, error)
	Touch(ctx context.Context, planName string)
}

type PlanService struct {
	plans  PlanRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewPlanService(plans PlanRepository, logger *slog.Logger) *PlanService {
	return &PlanService{plans: plans, logger: logger, now: time.Now}
}

// Create registers a plan. Plan names are unique across all users.
func (s *PlanService) Create(ctx context.Context, userID int64, name string) (*models.Plan, error) {
	name, err := cleanName("plan name", name)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.Create(ctx, name, userID)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: plan %q already exists", models.ErrConflict, name)
		}
		return nil, storageError(s.logger, "failed to create plan", err, slog.Int64("user_id", userID))
	}

	s.logger.Info("plan created", slog.Int64("user_id", userID), slog.String("plan", name))
	return plan, nil
}

func (s *PlanService) List(ctx context.Context, userID int64) ([]*models.Plan, error) {
	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(s.logger, "failed to list plans", err, slog.Int64("user_id", userID))
	}
	return plans, nil
}

// Authorize returns the plan if userID owns it. A plan owned by someone else
// is reported as ErrNotFound so plan names do not leak.
func (s *PlanService) Authorize(ctx context.Context, userID int64, planName string) (*models.Plan, error) {
	plan, err := s.plans.Get(ctx, planName)
	if err != nil {
		return nil, storageError(s.logger, "failed to get plan", err, slog.String("plan", planName))
	}
	if plan.UserID != userID {
		return nil, models.ErrNotFound
	}
	return plan, nil
}

func (s *PlanService) Get(ctx context.Context, userID int64, planName string) (*models.Plan, error) {
	return s.Authorize(ctx, userID, planName)
}

// Delete removes the plan and, through cascades, everything under it.
func (s *PlanService) Delete(ctx context.Context, userID int64, planName string) error {
	if err := s.plans.Delete(ctx, planName, userID); err != nil {
		return storageError(s.logger, "failed to delete plan", err, slog.String("plan", planName))
	}
	s.logger.Info("plan deleted", slog.Int64("user_id", userID), slog.String("plan", planName))
	return nil
}

// Touch bumps last_modified. Failures are logged and swallowed; the mutation
// that triggered the touch has already committed.
func (s *PlanService) Touch(ctx context.Context, planName string) {
	if err := s.plans.Touch(ctx, planName, s.now().UTC()); err != nil {
		s.logger.Warn("failed to touch plan", slog.String("plan", planName), slog.Any("error", err))
	}
}

func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s is required", models.ErrBadRequest, field)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", fmt.Errorf("%w: %s must be at most %d characters", models.ErrBadRequest, field, maxNameLen)
	}
	return name, nil
}
