package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
)

const accountColumns = `id, plan_name, name, balance, currency_code, savings_type, created_at`

type AccountRepository struct {
	q database.Querier
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var a models.Account
	err := scanner.Scan(&a.ID, &a.PlanName, &a.Name, &a.Balance, &a.CurrencyCode, &a.SavingsType, &a.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

// Create inserts an account. An unknown currency code fails with
// ErrForeignKeyViolation.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (plan_name, name, balance, currency_code, savings_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	return scanAccountRow(r.q.QueryRow(ctx, query, a.PlanName, a.Name, a.Balance, a.CurrencyCode, a.SavingsType))
}

func (r *AccountRepository) Get(ctx context.Context, planName string, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE plan_name = $1 AND id = $2`
	return scanAccountRow(r.q.QueryRow(ctx, query, planName, id))
}

func (r *AccountRepository) ListByPlan(ctx context.Context, planName string) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE plan_name = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, planName)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanAccountRow)
}

func (r *AccountRepository) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `
		UPDATE accounts SET name = $1, balance = $2, currency_code = $3, savings_type = $4
		WHERE plan_name = $5 AND id = $6
		RETURNING ` + accountColumns

	return scanAccountRow(r.q.QueryRow(ctx, query, a.Name, a.Balance, a.CurrencyCode, a.SavingsType, a.PlanName, a.ID))
}

// Delete removes the account along with transactions and automations that
// reference it.
func (r *AccountRepository) Delete(ctx context.Context, planName string, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE plan_name = $1 AND id = $2`, planName, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
