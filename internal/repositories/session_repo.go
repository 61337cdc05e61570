package repositories

import (
	"context"
	"time"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
	"github.com/google/uuid"
)

const sessionColumns = `id, session_token::text, user_id, expires_at, created_at`

type SessionRepository struct {
	q database.Querier
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

func scanSessionRow(scanner rowScanner) (*models.Session, error) {
	var s models.Session
	var createdAt *time.Time

	if err := scanner.Scan(&s.ID, &s.Token, &s.UserID, &s.ExpiresAt, &createdAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	if createdAt != nil {
		s.CreatedAt = *createdAt
	}
	return &s, nil
}

// Create opens a session with a fresh random token.
func (r *SessionRepository) Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := `
		INSERT INTO sessions (session_token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING ` + sessionColumns

	return scanSessionRow(r.q.QueryRow(ctx, query, uuid.New().String(), userID, expiresAt.UTC()))
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, models.ErrNotFound
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_token = $1`
	return scanSessionRow(r.q.QueryRow(ctx, query, token))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY expires_at DESC`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanSessionRow)
}

// Delete removes a session by its row id.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return models.ErrNotFound
	}
	result, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE session_token = $1`, token)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
