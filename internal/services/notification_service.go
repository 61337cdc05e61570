package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/financefusion/api/internal/models"
)

const maxTitleLen = 128

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	Get(ctx context.Context, planName string, id int64) (*models.Notification, error)
	List(ctx context.Context, planName, status string) ([]*models.Notification, error)
	UpdateStatus(ctx context.Context, planName string, id int64, status string) (*models.Notification, error)
	Delete(ctx context.Context, planName string, id int64) error
}

// NotificationService stores plan notifications. Delivery is out of scope.
type NotificationService struct {
	notifications NotificationRepository
	plans         PlanAuthorizer
	logger        *slog.Logger
}

func NewNotificationService(notifications NotificationRepository, plans PlanAuthorizer, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, plans: plans, logger: logger}
}

func normalizeNotificationType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case "":
		return models.NotificationInfo, nil
	case models.NotificationInfo, models.NotificationWarning, models.NotificationAlert:
		return t, nil
	}
	return "", fmt.Errorf("%w: type must be info, warning or alert", models.ErrBadRequest)
}

func normalizeNotificationStatus(s string, allowEmpty bool) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		if allowEmpty {
			return "", nil
		}
	case models.NotificationUnread, models.NotificationRead, models.NotificationArchived:
		return s, nil
	}
	return "", fmt.Errorf("%w: status must be unread, read or archived", models.ErrBadRequest)
}

func (s *NotificationService) Create(ctx context.Context, userID int64, planName, kind, title, body string) (*models.Notification, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	kind, err := normalizeNotificationType(kind)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrBadRequest)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, fmt.Errorf("%w: title must be at most %d characters", models.ErrBadRequest, maxTitleLen)
	}

	created, err := s.notifications.Create(ctx, &models.Notification{
		PlanName: planName,
		Type:     kind,
		Title:    title,
		Body:     body,
		Status:   models.NotificationUnread,
	})
	if err != nil {
		return nil, storageError(s.logger, "failed to create notification", err, slog.String("plan", planName))
	}
	return created, nil
}

func (s *NotificationService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Notification, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	n, err := s.notifications.Get(ctx, planName, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get notification", err, slog.Int64("notification_id", id))
	}
	return n, nil
}

// List returns the plan's notifications, optionally filtered by status.
func (s *NotificationService) List(ctx context.Context, userID int64, planName, status string) ([]*models.Notification, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	status, err := normalizeNotificationStatus(status, true)
	if err != nil {
		return nil, err
	}
	list, err := s.notifications.List(ctx, planName, status)
	if err != nil {
		return nil, storageError(s.logger, "failed to list notifications", err, slog.String("plan", planName))
	}
	return list, nil
}

func (s *NotificationService) UpdateStatus(ctx context.Context, userID int64, planName string, id int64, status string) (*models.Notification, error) {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return nil, err
	}
	status, err := normalizeNotificationStatus(status, false)
	if err != nil {
		return nil, err
	}
	n, err := s.notifications.UpdateStatus(ctx, planName, id, status)
	if err != nil {
		return nil, storageError(s.logger, "failed to update notification", err, slog.Int64("notification_id", id))
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if _, err := s.plans.Authorize(ctx, userID, planName); err != nil {
		return err
	}
	if err := s.notifications.Delete(ctx, planName, id); err != nil {
		return storageError(s.logger, "failed to delete notification", err, slog.Int64("notification_id", id))
	}
	return nil
}
