package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/financefusion/api/internal/models"
)

type AutomationRepository interface {
	Create(ctx context.Context, a *models.Automation) (*models.Automation, error)
	Get(ctx context.Context, planName string, id int64) (*models.Automation, error)
	ListByPlan(ctx context.Context, planName string) ([]*models.Automation, error)
	Update(ctx context.Context, a *models.Automation) (*models.Automation, error)
	SetPaused(ctx context.Context, planName string, id int64, paused bool) (*models.Automation, error)
	Delete(ctx context.Context, planName string, id int64) error
}

type AutomationInput struct {
	FlowInput
	Frequency string
	StartDate time.Time
	EndDate   *time.Time
}

// AutomationService stores recurring transaction templates. Nothing here
// schedules or executes them.
type AutomationService struct {
	automations AutomationRepository
	accounts    AccountRepository
	plans       PlanAuthorizer
	logger      *slog.Logger
}

func NewAutomationService(automations AutomationRepository, accounts AccountRepository, plans PlanAuthorizer, logger *slog.Logger) *AutomationService {
	return &AutomationService{automations: automations, accounts: accounts, plans: plans, logger: logger}
}

func (s *AutomationService) build(ctx context.Context, planName string, in AutomationInput) (*models.Automation, error) {
	f, err := resolveFlow(ctx, s.accounts, s.logger, planName, in.FlowInput)
	if err != nil {
		return nil, err
	}
	frequency, err := NormalizeInterval("frequency", in.Frequency)
	if err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date is required", models.ErrBadRequest)
	}
	if err := models.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	return &models.Automation{
		PlanName:     planName,
		Type:         f.Type,
		FromAccount:  f.FromAccount,
		ToAccount:    f.ToAccount,
		Amount:       f.Amount,
		CurrencyCode: f.CurrencyCode,
		Statement:    f.Statement,
		Frequency:    frequency,
		StartDate:    in.StartDate.UTC(),
		EndDate:      utcPtr(in.EndDate),
	}, nil
}

func (s *AutomationService) Create(ctx context.Context, userID int64, planName string, in AutomationInput) (*models.Automation, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	automation, err := s.build(ctx, planName, in)
	if err != nil {
		return nil, err
	}

	created, err := s.automations.Create(ctx, automation)
	if err != nil {
		return nil, storageError(s.logger, "failed to create automation", err, slog.String("plan", planName))
	}
	s.plans.Touch(ctx, planName)
	return created, nil
}

func (s *AutomationService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	automation, err := s.automations.Get(ctx, planName, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get automation", err, slog.Int64("automation_id", id))
	}
	return automation, nil
}

func (s *AutomationService) List(ctx context.Context, userID int64, planName string) ([]*models.Automation, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	automations, err := s.automations.ListByPlan(ctx, planName)
	if err != nil {
		return nil, storageError(s.logger, "failed to list automations", err, slog.String("plan", planName))
	}
	return automations, nil
}

// Update replaces the template. The paused flag is left alone.
func (s *AutomationService) Update(ctx context.Context, userID int64, planName string, id int64, in AutomationInput) (*models.Automation, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	automation, err := s.build(ctx, planName, in)
	if err != nil {
		return nil, err
	}
	automation.ID = id

	updated, err := s.automations.Update(ctx, automation)
	if err != nil {
		return nil, storageError(s.logger, "failed to update automation", err, slog.Int64("automation_id", id))
	}
	s.plans.Touch(ctx, planName)
	return updated, nil
}

func (s *AutomationService) Pause(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error) {
	return s.setPaused(ctx, userID, planName, id, true)
}

func (s *AutomationService) Resume(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error) {
	return s.setPaused(ctx, userID, planName, id, false)
}

func (s *AutomationService) setPaused(ctx context.Context, userID int64, planName string, id int64, paused bool) (*models.Automation, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	automation, err := s.automations.SetPaused(ctx, planName, id, paused)
	if err != nil {
		return nil, storageError(s.logger, "failed to set automation paused", err, slog.Int64("automation_id", id))
	}
	s.plans.Touch(ctx, planName)
	return automation, nil
}

func (s *AutomationService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return err
	}
	if err := s.automations.Delete(ctx, planName, id); err != nil {
		return storageError(s.logger, "failed to delete automation", err, slog.Int64("automation_id", id))
	}
	s.plans.Touch(ctx, planName)
	return nil
}
