package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, plan_name, type, from_account, to_account, amount, currency_code,
	statement, is_cancelled, created_at`

// TransactionFilter narrows ListByPlan. A nil AccountID matches every
// account; otherwise either side of the transaction may match.
type TransactionFilter struct {
	PlanName         string
	AccountID        *int64
	IncludeCancelled bool
}

type TransactionRepository struct {
	db *database.DB
	q  database.Querier
}

func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db, q: db.Pool}
}

// WithQuerier returns a copy of the repository that runs on q.
func (r *TransactionRepository) WithQuerier(q database.Querier) *TransactionRepository {
	return &TransactionRepository{db: r.db, q: q}
}

func scanTransactionRow(scanner rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var typ string
	err := scanner.Scan(
		&t.ID, &t.PlanName, &typ, &t.FromAccount, &t.ToAccount, &t.Amount,
		&t.CurrencyCode, &t.Statement, &t.IsCancelled, &t.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	t.Type = models.TransactionType(typ)
	return &t, nil
}

// Create records a transaction and links tagIDs to it in one database
// transaction; if linking fails the row is rolled back too. Account balances
// are not touched.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction, tagIDs []int64) (*models.Transaction, error) {
	var created *models.Transaction
	err := r.db.InTransaction(ctx, r.q, func(tx pgx.Tx) error {
		var err error
		if created, err = r.WithQuerier(tx).insert(ctx, t); err != nil {
			return err
		}

		created.Tags = []*models.Tag{}
		if len(tagIDs) == 0 {
			return nil
		}
		tags := NewTagRepository(r.db).WithQuerier(tx)
		if err := tags.ReplaceTransactionTags(ctx, created.ID, tagIDs); err != nil {
			return err
		}
		created.Tags, err = tags.ListForTransaction(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TransactionRepository) insert(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (plan_name, type, from_account, to_account, amount, currency_code, statement)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns

	return scanTransactionRow(r.q.QueryRow(ctx, query,
		t.PlanName, string(t.Type), t.FromAccount, t.ToAccount, t.Amount, t.CurrencyCode, t.Statement,
	))
}

func (r *TransactionRepository) Get(ctx context.Context, planName string, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE plan_name = $1 AND id = $2`
	return scanTransactionRow(r.q.QueryRow(ctx, query, planName, id))
}

// ListByPlan returns one page of matching transactions, newest first, and
// the total number of matches.
func (r *TransactionRepository) ListByPlan(ctx context.Context, f TransactionFilter, page pagination.PageRequest) ([]*models.Transaction, int64, error) {
	const where = `
		WHERE plan_name = $1
		  AND ($2::int IS NULL OR from_account = $2 OR to_account = $2)
		  AND ($3::bool OR NOT is_cancelled)
	`

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM transactions`+where,
		f.PlanName, f.AccountID, f.IncludeCancelled,
	).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.q.Query(ctx, query, f.PlanName, f.AccountID, f.IncludeCancelled, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	items, err := collect(rows, scanTransactionRow)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *TransactionRepository) SetCancelled(ctx context.Context, planName string, id int64, cancelled bool) (*models.Transaction, error) {
	query := `
		UPDATE transactions SET is_cancelled = $1
		WHERE plan_name = $2 AND id = $3
		RETURNING ` + transactionColumns
	return scanTransactionRow(r.q.QueryRow(ctx, query, cancelled, planName, id))
}

func (r *TransactionRepository) Delete(ctx context.Context, planName string, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE plan_name = $1 AND id = $2`, planName, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
