package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
)

const automationColumns = `id, plan_name, type, from_account, to_account, amount, currency_code,
	statement, frequency, start_date, end_date, is_paused`

type AutomationRepository struct {
	q database.Querier
}

func NewAutomationRepository(db *database.DB) *AutomationRepository {
	return &AutomationRepository{q: db.Pool}
}

func scanAutomationRow(scanner rowScanner) (*models.Automation, error) {
	var a models.Automation
	var typ string
	err := scanner.Scan(
		&a.ID, &a.PlanName, &typ, &a.FromAccount, &a.ToAccount, &a.Amount, &a.CurrencyCode,
		&a.Statement, &a.Frequency, &a.StartDate, &a.EndDate, &a.IsPaused,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	a.Type = models.TransactionType(typ)
	return &a, nil
}

func (r *AutomationRepository) Create(ctx context.Context, a *models.Automation) (*models.Automation, error) {
	query := `
		INSERT INTO automations
			(plan_name, type, from_account, to_account, amount, currency_code, statement, frequency, start_date, end_date, is_paused)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + automationColumns

	return scanAutomationRow(r.q.QueryRow(ctx, query,
		a.PlanName, string(a.Type), a.FromAccount, a.ToAccount, a.Amount, a.CurrencyCode,
		a.Statement, a.Frequency, a.StartDate, a.EndDate, a.IsPaused,
	))
}

func (r *AutomationRepository) Get(ctx context.Context, planName string, id int64) (*models.Automation, error) {
	query := `SELECT ` + automationColumns + ` FROM automations WHERE plan_name = $1 AND id = $2`
	return scanAutomationRow(r.q.QueryRow(ctx, query, planName, id))
}

func (r *AutomationRepository) ListByPlan(ctx context.Context, planName string) ([]*models.Automation, error) {
	query := `SELECT ` + automationColumns + ` FROM automations WHERE plan_name = $1 ORDER BY start_date, id`
	rows, err := r.q.Query(ctx, query, planName)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanAutomationRow)
}

func (r *AutomationRepository) Update(ctx context.Context, a *models.Automation) (*models.Automation, error) {
	query := `
		UPDATE automations
		SET type = $1, from_account = $2, to_account = $3, amount = $4, currency_code = $5,
			statement = $6, frequency = $7, start_date = $8, end_date = $9
		WHERE plan_name = $10 AND id = $11
		RETURNING ` + automationColumns

	return scanAutomationRow(r.q.QueryRow(ctx, query,
		string(a.Type), a.FromAccount, a.ToAccount, a.Amount, a.CurrencyCode,
		a.Statement, a.Frequency, a.StartDate, a.EndDate, a.PlanName, a.ID,
	))
}

func (r *AutomationRepository) SetPaused(ctx context.Context, planName string, id int64, paused bool) (*models.Automation, error) {
	query := `
		UPDATE automations SET is_paused = $1
		WHERE plan_name = $2 AND id = $3
		RETURNING ` + automationColumns
	return scanAutomationRow(r.q.QueryRow(ctx, query, paused, planName, id))
}

func (r *AutomationRepository) Delete(ctx context.Context, planName string, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM automations WHERE plan_name = $1 AND id = $2`, planName, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
