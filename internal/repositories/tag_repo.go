package repositories

import (
	"context"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

type TagRepository struct {
	db *database.DB
	q  database.Querier
}

func NewTagRepository(db *database.DB) *TagRepository {
	return &TagRepository{db: db, q: db.Pool}
}

// WithQuerier returns a copy of the repository that runs on q, usually an
// open pgx.Tx shared with another repository.
func (r *TagRepository) WithQuerier(q database.Querier) *TagRepository {
	return &TagRepository{db: r.db, q: q}
}

func scanTagRow(scanner rowScanner) (*models.Tag, error) {
	var t models.Tag
	if err := scanner.Scan(&t.ID, &t.UserID, &t.Name, &t.Icon); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &t, nil
}

func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	query := `
		INSERT INTO tags (user_id, name, icon)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, name, icon
	`
	return scanTagRow(r.q.QueryRow(ctx, query, tag.UserID, tag.Name, tag.Icon))
}

func (r *TagRepository) Get(ctx context.Context, id int64) (*models.Tag, error) {
	return scanTagRow(r.q.QueryRow(ctx, `SELECT id, user_id, name, icon FROM tags WHERE id = $1`, id))
}

func (r *TagRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Tag, error) {
	rows, err := r.q.Query(ctx, `SELECT id, user_id, name, icon FROM tags WHERE user_id = $1 ORDER BY name, id`, userID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanTagRow)
}

func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	query := `
		UPDATE tags SET name = $1, icon = $2
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, name, icon
	`
	return scanTagRow(r.q.QueryRow(ctx, query, tag.Name, tag.Icon, tag.ID, tag.UserID))
}

// Delete removes the tag and, by cascade, its account and transaction links.
func (r *TagRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountOwned returns how many of ids belong to userID.
func (r *TagRepository) CountOwned(ctx context.Context, userID int64, ids []int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM tags WHERE user_id = $1 AND id = ANY($2::int[])`,
		userID, pq.Array(ids),
	).Scan(&n)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return n, nil
}

func (r *TagRepository) ListForAccount(ctx context.Context, accountID int64) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.icon
		FROM tags t JOIN account_tags link ON link.tag_id = t.id
		WHERE link.account_id = $1
		ORDER BY t.name, t.id
	`
	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanTagRow)
}

func (r *TagRepository) ListForTransaction(ctx context.Context, transactionID int64) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.icon
		FROM tags t JOIN transaction_tags link ON link.tag_id = t.id
		WHERE link.transaction_id = $1
		ORDER BY t.name, t.id
	`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return collect(rows, scanTagRow)
}

// ListForAccounts returns the tags of every account in ids, keyed by account
// id. Accounts without tags map to an empty slice.
func (r *TagRepository) ListForAccounts(ctx context.Context, accountIDs []int64) (map[int64][]*models.Tag, error) {
	return r.listLinked(ctx, `
		SELECT link.account_id, t.id, t.user_id, t.name, t.icon
		FROM tags t JOIN account_tags link ON link.tag_id = t.id
		WHERE link.account_id = ANY($1::int[])
		ORDER BY link.account_id, t.name, t.id
	`, accountIDs)
}

// ListForTransactions is ListForAccounts for transaction links.
func (r *TagRepository) ListForTransactions(ctx context.Context, transactionIDs []int64) (map[int64][]*models.Tag, error) {
	return r.listLinked(ctx, `
		SELECT link.transaction_id, t.id, t.user_id, t.name, t.icon
		FROM tags t JOIN transaction_tags link ON link.tag_id = t.id
		WHERE link.transaction_id = ANY($1::int[])
		ORDER BY link.transaction_id, t.name, t.id
	`, transactionIDs)
}

func (r *TagRepository) listLinked(ctx context.Context, query string, ownerIDs []int64) (map[int64][]*models.Tag, error) {
	byOwner := make(map[int64][]*models.Tag, len(ownerIDs))
	for _, id := range ownerIDs {
		byOwner[id] = []*models.Tag{}
	}
	if len(ownerIDs) == 0 {
		return byOwner, nil
	}

	rows, err := r.q.Query(ctx, query, pq.Array(ownerIDs))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID int64
		var t models.Tag
		if err := rows.Scan(&ownerID, &t.ID, &t.UserID, &t.Name, &t.Icon); err != nil {
			return nil, database.MapPostgresError(err)
		}
		byOwner[ownerID] = append(byOwner[ownerID], &t)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return byOwner, nil
}

// ReplaceAccountTags swaps the account's tag set in one transaction.
func (r *TagRepository) ReplaceAccountTags(ctx context.Context, accountID int64, tagIDs []int64) error {
	return r.replaceLinks(ctx,
		`DELETE FROM account_tags WHERE account_id = $1`,
		`INSERT INTO account_tags (account_id, tag_id)
		 SELECT $1, unnest($2::int[]) ON CONFLICT DO NOTHING`,
		accountID, tagIDs,
	)
}

// ReplaceTransactionTags swaps the transaction's tag set in one transaction.
func (r *TagRepository) ReplaceTransactionTags(ctx context.Context, transactionID int64, tagIDs []int64) error {
	return r.replaceLinks(ctx,
		`DELETE FROM transaction_tags WHERE transaction_id = $1`,
		`INSERT INTO transaction_tags (transaction_id, tag_id)
		 SELECT $1, unnest($2::int[]) ON CONFLICT DO NOTHING`,
		transactionID, tagIDs,
	)
}

func (r *TagRepository) replaceLinks(ctx context.Context, deleteSQL, insertSQL string, ownerID int64, tagIDs []int64) error {
	return r.db.InTransaction(ctx, r.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSQL, ownerID); err != nil {
			return database.MapPostgresError(err)
		}
		if len(tagIDs) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, insertSQL, ownerID, pq.Array(tagIDs)); err != nil {
			return database.MapPostgresError(err)
		}
		return nil
	})
}
