package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
)

type CurrencyRepository struct {
	q database.Querier
}

func NewCurrencyRepository(db *database.DB) *CurrencyRepository {
	return &CurrencyRepository{q: db.Pool}
}

func scanCurrencyRow(scanner rowScanner) (*models.Currency, error) {
	var c models.Currency
	if err := scanner.Scan(&c.Code, &c.Name, &c.UserID); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *CurrencyRepository) Create(ctx context.Context, c *models.Currency) (*models.Currency, error) {
	query := `
		INSERT INTO currencies (code, name, user_id)
		VALUES ($1, $2, $3)
		RETURNING code, name, user_id
	`
	return scanCurrencyRow(r.q.QueryRow(ctx, query, c.Code, c.Name, c.UserID))
}

func (r *CurrencyRepository) Get(ctx context.Context, code string) (*models.Currency, error) {
	return scanCurrencyRow(r.q.QueryRow(ctx, `SELECT code, name, user_id FROM currencies WHERE code = $1`, code))
}

// List returns every currency; codes are global and usable by any plan.
func (r *CurrencyRepository) List(ctx context.Context) ([]*models.Currency, error) {
	rows, err := r.q.Query(ctx, `SELECT code, name, user_id FROM currencies ORDER BY code`)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanCurrencyRow)
}

func (r *CurrencyRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Currency, error) {
	rows, err := r.q.Query(ctx, `SELECT code, name, user_id FROM currencies WHERE user_id = $1 ORDER BY code`, userID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanCurrencyRow)
}

// Delete removes a currency owned by userID. A currency still referenced by
// an account, budget, transaction or automation fails with
// ErrForeignKeyViolation.
func (r *CurrencyRepository) Delete(ctx context.Context, code string, userID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM currencies WHERE code = $1 AND user_id = $2`, code, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
