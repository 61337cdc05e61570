package repositories

import (
	"context"
	"time"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
)

type PlanRepository struct {
	q database.Querier
}

func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{q: db.Pool}
}

func scanPlanRow(scanner rowScanner) (*models.Plan, error) {
	var p models.Plan
	if err := scanner.Scan(&p.Name, &p.UserID, &p.LastModified); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

// Create inserts a plan. Names are unique across all users, so a taken name
// fails with ErrConflict regardless of owner.
func (r *PlanRepository) Create(ctx context.Context, name string, userID int64) (*models.Plan, error) {
	query := `
		INSERT INTO plans (name, user_id)
		VALUES ($1, $2)
		RETURNING name, user_id, last_modified
	`
	return scanPlanRow(r.q.QueryRow(ctx, query, name, userID))
}

func (r *PlanRepository) Get(ctx context.Context, name string) (*models.Plan, error) {
	query := `SELECT name, user_id, last_modified FROM plans WHERE name = $1`
	return scanPlanRow(r.q.QueryRow(ctx, query, name))
}

func (r *PlanRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Plan, error) {
	query := `
		SELECT name, user_id, last_modified FROM plans
		WHERE user_id = $1
		ORDER BY last_modified DESC, name
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanPlanRow)
}

// Delete removes the named plan owned by userID. Everything scoped to the
// plan cascades.
func (r *PlanRepository) Delete(ctx context.Context, name string, userID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM plans WHERE name = $1 AND user_id = $2`, name, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Touch bumps last_modified.
func (r *PlanRepository) Touch(ctx context.Context, name string, at time.Time) error {
	result, err := r.q.Exec(ctx, `UPDATE plans SET last_modified = $1 WHERE name = $2`, at.UTC(), name)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
