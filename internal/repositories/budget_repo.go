package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
)

const budgetColumns = `id, plan_name, name, amount, "interval", currency_code, start_date, end_date`

type BudgetRepository struct {
	q database.Querier
}

func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{q: db.Pool}
}

func scanBudgetRow(scanner rowScanner) (*models.Budget, error) {
	var b models.Budget
	err := scanner.Scan(&b.ID, &b.PlanName, &b.Name, &b.Amount, &b.Interval, &b.CurrencyCode, &b.StartDate, &b.EndDate)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &b, nil
}

func (r *BudgetRepository) Create(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (plan_name, name, amount, "interval", currency_code, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + budgetColumns

	return scanBudgetRow(r.q.QueryRow(ctx, query,
		b.PlanName, b.Name, b.Amount, b.Interval, b.CurrencyCode, b.StartDate, b.EndDate,
	))
}

func (r *BudgetRepository) Get(ctx context.Context, planName string, id int64) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE plan_name = $1 AND id = $2`
	return scanBudgetRow(r.q.QueryRow(ctx, query, planName, id))
}

func (r *BudgetRepository) ListByPlan(ctx context.Context, planName string) ([]*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE plan_name = $1 ORDER BY start_date, id`
	rows, err := r.q.Query(ctx, query, planName)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanBudgetRow)
}

func (r *BudgetRepository) Update(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET name = $1, amount = $2, "interval" = $3, currency_code = $4, start_date = $5, end_date = $6
		WHERE plan_name = $7 AND id = $8
		RETURNING ` + budgetColumns

	return scanBudgetRow(r.q.QueryRow(ctx, query,
		b.Name, b.Amount, b.Interval, b.CurrencyCode, b.StartDate, b.EndDate, b.PlanName, b.ID,
	))
}

func (r *BudgetRepository) Delete(ctx context.Context, planName string, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM budgets WHERE plan_name = $1 AND id = $2`, planName, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
