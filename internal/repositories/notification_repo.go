package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
)

const notificationColumns = `id, plan_name, type, title, body, status, created_at`

type NotificationRepository struct {
	q database.Querier
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{q: db.Pool}
}

func scanNotificationRow(scanner rowScanner) (*models.Notification, error) {
	var n models.Notification
	err := scanner.Scan(&n.ID, &n.PlanName, &n.Type, &n.Title, &n.Body, &n.Status, &n.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &n, nil
}

// Create inserts a notification. Empty type and status fall back to the
// column defaults.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (plan_name, type, title, body, status)
		VALUES ($1, COALESCE(NULLIF($2::text, ''), 'info'), $3, $4, COALESCE(NULLIF($5::text, ''), 'unread'))
		RETURNING ` + notificationColumns

	return scanNotificationRow(r.q.QueryRow(ctx, query, n.PlanName, n.Type, n.Title, n.Body, n.Status))
}

func (r *NotificationRepository) Get(ctx context.Context, planName string, id int64) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE plan_name = $1 AND id = $2`
	return scanNotificationRow(r.q.QueryRow(ctx, query, planName, id))
}

// List returns the plan's notifications, newest first. An empty status
// matches every status.
func (r *NotificationRepository) List(ctx context.Context, planName, status string) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE plan_name = $1 AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.q.Query(ctx, query, planName, status)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanNotificationRow)
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, planName string, id int64, status string) (*models.Notification, error) {
	query := `
		UPDATE notifications SET status = $1
		WHERE plan_name = $2 AND id = $3
		RETURNING ` + notificationColumns
	return scanNotificationRow(r.q.QueryRow(ctx, query, status, planName, id))
}

func (r *NotificationRepository) Delete(ctx context.Context, planName string, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE plan_name = $1 AND id = $2`, planName, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
