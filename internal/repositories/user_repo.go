package repositories

import (
	"context"
	"time"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, pw_hash, two_fa_secret, created_at, is_dev_mode,
	invalid_login_attempts, lock_duration_s, lock_duration_factor, lock_duration_cap_s, locked_until`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.TwoFactorSecret,
		&user.CreatedAt, &user.IsDevMode, &user.InvalidLoginAttempts,
		&user.LockDurationS, &user.LockDurationFactor, &user.LockDurationCapS,
		&user.LockedUntil,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

// Create inserts a user; lockout settings and timestamps take the column defaults.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, pw_hash, is_dev_mode)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.IsDevMode))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.execOne(ctx, `UPDATE users SET pw_hash = $1 WHERE id = $2`, hash, id)
}

func (r *UserRepository) UpdateDevMode(ctx context.Context, id int64, enabled bool) (*models.User, error) {
	query := `UPDATE users SET is_dev_mode = $1 WHERE id = $2 RETURNING ` + userColumns
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, enabled, id))
}

// UpdateTwoFactorSecret stores a sealed secret, or clears it when secret is nil.
func (r *UserRepository) UpdateTwoFactorSecret(ctx context.Context, id int64, secret *string) error {
	return r.execOne(ctx, `UPDATE users SET two_fa_secret = $1 WHERE id = $2`, secret, id)
}

// RegisterLoginFailure counts one failed login against the user and returns
// the updated row. The row is locked for the read-modify-write so concurrent
// failures each count, and the lock expiry is derived from the counter the
// database actually holds.
func (r *UserRepository) RegisterLoginFailure(ctx context.Context, id int64, now time.Time, threshold int) (*models.User, error) {
	var updated *models.User
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		user, err := scanUserRow(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		user.RegisterFailedLogin(now, threshold)
		var until *time.Time
		if user.LockedUntil != nil {
			u := user.LockedUntil.UTC()
			until = &u
		}

		updated, err = scanUserRow(tx.QueryRow(ctx,
			`UPDATE users SET invalid_login_attempts = $1, locked_until = $2 WHERE id = $3 RETURNING `+userColumns,
			user.InvalidLoginAttempts, until, id,
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ResetLoginFailures clears the failure counter and any lock.
func (r *UserRepository) ResetLoginFailures(ctx context.Context, id int64) error {
	return r.execOne(ctx, `UPDATE users SET invalid_login_attempts = 0, locked_until = NULL WHERE id = $1`, id)
}

// Delete removes the user inside one transaction. Sessions, plans, tags and
// currencies go with it through ON DELETE CASCADE, and everything under the
// plans follows transitively. A failure anywhere rolls the whole delete back.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			return database.MapPostgresError(err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}
		return nil
	})
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
