package repositories_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financefusion/api/internal/database"
	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/financefusion/api/internal/repositories"
	"github.com/financefusion/api/internal/testutil"
)

type repos struct {
	users         *repositories.UserRepository
	sessions      *repositories.SessionRepository
	plans         *repositories.PlanRepository
	currencies    *repositories.CurrencyRepository
	tags          *repositories.TagRepository
	accounts      *repositories.AccountRepository
	budgets       *repositories.BudgetRepository
	transactions  *repositories.TransactionRepository
	automations   *repositories.AutomationRepository
	notifications *repositories.NotificationRepository
}

func TestRepositories(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	r := repos{
		users:         repositories.NewUserRepository(tdb.DB),
		sessions:      repositories.NewSessionRepository(tdb.DB),
		plans:         repositories.NewPlanRepository(tdb.DB),
		currencies:    repositories.NewCurrencyRepository(tdb.DB),
		tags:          repositories.NewTagRepository(tdb.DB),
		accounts:      repositories.NewAccountRepository(tdb.DB),
		budgets:       repositories.NewBudgetRepository(tdb.DB),
		transactions:  repositories.NewTransactionRepository(tdb.DB),
		automations:   repositories.NewAutomationRepository(tdb.DB),
		notifications: repositories.NewNotificationRepository(tdb.DB),
	}
	ctx := context.Background()

	newUser := func(t *testing.T, username string) *models.User {
		t.Helper()
		u, err := r.users.Create(ctx, &models.User{Username: username, PasswordHash: "$2a$12$hash"})
		require.NoError(t, err)
		return u
	}

	t.Run("duplicate username", func(t *testing.T) {
		tdb.Truncate(t)
		newUser(t, "alice")

		_, err := r.users.Create(ctx, &models.User{Username: "alice", PasswordHash: "x"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("new user gets lockout defaults", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")

		assert.Equal(t, 0, u.InvalidLoginAttempts)
		assert.Equal(t, models.DefaultLockDurationS, u.LockDurationS)
		assert.Equal(t, models.DefaultLockDurationFactor, u.LockDurationFactor)
		assert.Equal(t, models.DefaultLockDurationCapS, u.LockDurationCapS)
		assert.Nil(t, u.LockedUntil)
	})

	t.Run("plan names are unique across users", func(t *testing.T) {
		tdb.Truncate(t)
		alice := newUser(t, "alice")
		bob := newUser(t, "bob")

		_, err := r.plans.Create(ctx, "household", alice.ID)
		require.NoError(t, err)
		_, err = r.plans.Create(ctx, "household", bob.ID)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("invalid login attempts check constraint", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")

		_, err := tdb.DB.Pool.Exec(ctx, `UPDATE users SET invalid_login_attempts = -1 WHERE id = $1`, u.ID)
		assert.ErrorIs(t, database.MapPostgresError(err), models.ErrCheckViolation)
	})

	t.Run("concurrent login failures all count", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		now := time.Now().UTC().Truncate(time.Second)

		const attempts = 5
		var wg sync.WaitGroup
		errs := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.users.RegisterLoginFailure(ctx, u.ID, now, 3)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := r.users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, attempts, got.InvalidLoginAttempts)
		require.NotNil(t, got.LockedUntil)
		// 60s base doubled for each failure past the threshold
		assert.True(t, now.Add(240*time.Second).Equal(got.LockedUntil.UTC()), "locked until %s", got.LockedUntil)

		require.NoError(t, r.users.ResetLoginFailures(ctx, u.ID))
		got, err = r.users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Zero(t, got.InvalidLoginAttempts)
		assert.Nil(t, got.LockedUntil)
	})

	t.Run("unknown currency is a foreign key violation", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		_, err := r.plans.Create(ctx, "p", u.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "USD", Name: "US Dollar", UserID: u.ID})
		require.NoError(t, err)
		acct, err := r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "Checking", CurrencyCode: "USD"})
		require.NoError(t, err)

		_, err = r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "X", CurrencyCode: "ZZZ"})
		assert.ErrorIs(t, err, models.ErrForeignKeyViolation)

		_, err = r.budgets.Create(ctx, &models.Budget{
			PlanName: "p", Name: "B", Amount: decimal.NewFromInt(1), Interval: models.IntervalMonthly,
			CurrencyCode: "ZZZ", StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, models.ErrForeignKeyViolation)

		_, err = r.transactions.Create(ctx, &models.Transaction{
			PlanName: "p", Type: models.TransactionIncome, ToAccount: &acct.ID,
			Amount: decimal.NewFromInt(1), CurrencyCode: "ZZZ",
		}, nil)
		assert.ErrorIs(t, err, models.ErrForeignKeyViolation)

		_, err = r.automations.Create(ctx, &models.Automation{
			PlanName: "p", Type: models.TransactionIncome, ToAccount: &acct.ID,
			Amount: decimal.NewFromInt(1), CurrencyCode: "ZZZ", Frequency: models.IntervalWeekly,
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, models.ErrForeignKeyViolation)
	})

	t.Run("referenced currency cannot be deleted", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		_, err := r.plans.Create(ctx, "p", u.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "EUR", Name: "Euro", UserID: u.ID})
		require.NoError(t, err)
		_, err = r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "Savings", CurrencyCode: "EUR"})
		require.NoError(t, err)

		assert.ErrorIs(t, r.currencies.Delete(ctx, "EUR", u.ID), models.ErrForeignKeyViolation)
	})

	t.Run("deleting a user cascades", func(t *testing.T) {
		tdb.Truncate(t)
		alice := newUser(t, "alice")
		bob := newUser(t, "bob")

		_, err := r.sessions.Create(ctx, alice.ID, time.Now().Add(time.Hour))
		require.NoError(t, err)
		_, err = r.plans.Create(ctx, "alice-budget", alice.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "USD", Name: "US Dollar", UserID: alice.ID})
		require.NoError(t, err)
		tag, err := r.tags.Create(ctx, &models.Tag{UserID: alice.ID, Name: "rent"})
		require.NoError(t, err)
		acct, err := r.accounts.Create(ctx, &models.Account{
			PlanName: "alice-budget", Name: "Checking", Balance: decimal.RequireFromString("100.00"), CurrencyCode: "USD",
		})
		require.NoError(t, err)
		require.NoError(t, r.tags.ReplaceAccountTags(ctx, acct.ID, []int64{tag.ID}))
		_, err = r.budgets.Create(ctx, &models.Budget{
			PlanName: "alice-budget", Name: "Food", Amount: decimal.NewFromInt(300), Interval: models.IntervalMonthly,
			CurrencyCode: "USD", StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		tx, err := r.transactions.Create(ctx, &models.Transaction{
			PlanName: "alice-budget", Type: models.TransactionExpense, FromAccount: &acct.ID,
			Amount: decimal.NewFromInt(20), CurrencyCode: "USD",
		}, nil)
		require.NoError(t, err)
		require.NoError(t, r.tags.ReplaceTransactionTags(ctx, tx.ID, []int64{tag.ID}))
		_, err = r.automations.Create(ctx, &models.Automation{
			PlanName: "alice-budget", Type: models.TransactionExpense, FromAccount: &acct.ID,
			Amount: decimal.NewFromInt(9), CurrencyCode: "USD", Frequency: models.IntervalMonthly,
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		_, err = r.notifications.Create(ctx, &models.Notification{
			PlanName: "alice-budget", Type: models.NotificationInfo, Title: "hi", Status: models.NotificationUnread,
		})
		require.NoError(t, err)
		_, err = r.plans.Create(ctx, "bob-plan", bob.ID)
		require.NoError(t, err)

		require.NoError(t, r.users.Delete(ctx, alice.ID))

		assert.Zero(t, tdb.Count(t, "users", "id = $1", alice.ID))
		assert.Zero(t, tdb.Count(t, "sessions", "user_id = $1", alice.ID))
		assert.Zero(t, tdb.Count(t, "plans", "user_id = $1", alice.ID))
		assert.Zero(t, tdb.Count(t, "tags", "user_id = $1", alice.ID))
		assert.Zero(t, tdb.Count(t, "currencies", "user_id = $1", alice.ID))
		for _, table := range []string{"accounts", "budgets", "transactions", "automations", "notifications"} {
			assert.Zero(t, tdb.Count(t, table, "plan_name = $1", "alice-budget"), table)
		}
		assert.Zero(t, tdb.Count(t, "account_tags", "tag_id = $1", tag.ID))
		assert.Zero(t, tdb.Count(t, "transaction_tags", "tag_id = $1", tag.ID))
		assert.Equal(t, 1, tdb.Count(t, "plans", "user_id = $1", bob.ID))

		assert.ErrorIs(t, r.users.Delete(ctx, alice.ID), models.ErrNotFound)
	})

	t.Run("expired sessions are purged", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		now := time.Now().UTC()

		live, err := r.sessions.Create(ctx, u.ID, now.Add(time.Hour))
		require.NoError(t, err)
		_, err = r.sessions.Create(ctx, u.ID, now.Add(-time.Hour))
		require.NoError(t, err)

		n, err := r.sessions.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := r.sessions.GetByToken(ctx, live.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.UserID)

		require.NoError(t, r.sessions.Delete(ctx, live.ID))
		assert.ErrorIs(t, r.sessions.Delete(ctx, live.ID), models.ErrNotFound)
		_, err = r.sessions.GetByToken(ctx, live.Token)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("transaction listing filters and pages", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		_, err := r.plans.Create(ctx, "p", u.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "USD", Name: "US Dollar", UserID: u.ID})
		require.NoError(t, err)
		a1, err := r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "A", CurrencyCode: "USD"})
		require.NoError(t, err)
		a2, err := r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "B", CurrencyCode: "USD"})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := r.transactions.Create(ctx, &models.Transaction{
				PlanName: "p", Type: models.TransactionIncome, ToAccount: &a1.ID,
				Amount: decimal.NewFromInt(int64(i + 1)), CurrencyCode: "USD",
			}, nil)
			require.NoError(t, err)
		}
		transfer, err := r.transactions.Create(ctx, &models.Transaction{
			PlanName: "p", Type: models.TransactionTransfer, FromAccount: &a1.ID, ToAccount: &a2.ID,
			Amount: decimal.NewFromInt(5), CurrencyCode: "USD",
		}, nil)
		require.NoError(t, err)
		_, err = r.transactions.SetCancelled(ctx, "p", transfer.ID, true)
		require.NoError(t, err)

		page := pagination.PageRequest{Page: 1, PageSize: 2}
		items, total, err := r.transactions.ListByPlan(ctx, repositories.TransactionFilter{PlanName: "p"}, page)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 2)

		items, total, err = r.transactions.ListByPlan(ctx,
			repositories.TransactionFilter{PlanName: "p", AccountID: &a2.ID, IncludeCancelled: true}, page)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.True(t, items[0].IsCancelled)
		assert.True(t, decimal.NewFromInt(5).Equal(items[0].Amount))
	})

	t.Run("transaction create rolls back when tagging fails", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		_, err := r.plans.Create(ctx, "p", u.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "USD", Name: "US Dollar", UserID: u.ID})
		require.NoError(t, err)
		acct, err := r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "A", CurrencyCode: "USD"})
		require.NoError(t, err)
		tag, err := r.tags.Create(ctx, &models.Tag{UserID: u.ID, Name: "rent"})
		require.NoError(t, err)

		_, err = r.transactions.Create(ctx, &models.Transaction{
			PlanName: "p", Type: models.TransactionExpense, FromAccount: &acct.ID,
			Amount: decimal.NewFromInt(10), CurrencyCode: "USD",
		}, []int64{tag.ID, tag.ID + 1000})
		assert.ErrorIs(t, err, models.ErrForeignKeyViolation)
		assert.Equal(t, 0, tdb.Count(t, "transactions", "plan_name = $1", "p"))
		assert.Equal(t, 0, tdb.Count(t, "transaction_tags", "tag_id = $1", tag.ID))

		created, err := r.transactions.Create(ctx, &models.Transaction{
			PlanName: "p", Type: models.TransactionExpense, FromAccount: &acct.ID,
			Amount: decimal.NewFromInt(10), CurrencyCode: "USD",
		}, []int64{tag.ID})
		require.NoError(t, err)
		require.Len(t, created.Tags, 1)
		assert.Equal(t, "rent", created.Tags[0].Name)
		assert.Equal(t, 1, tdb.Count(t, "transactions", "plan_name = $1", "p"))
	})

	t.Run("tags load for many owners at once", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		_, err := r.plans.Create(ctx, "p", u.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "USD", Name: "US Dollar", UserID: u.ID})
		require.NoError(t, err)
		a1, err := r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "A", CurrencyCode: "USD"})
		require.NoError(t, err)
		a2, err := r.accounts.Create(ctx, &models.Account{PlanName: "p", Name: "B", CurrencyCode: "USD"})
		require.NoError(t, err)
		rent, err := r.tags.Create(ctx, &models.Tag{UserID: u.ID, Name: "rent"})
		require.NoError(t, err)
		bills, err := r.tags.Create(ctx, &models.Tag{UserID: u.ID, Name: "bills"})
		require.NoError(t, err)
		require.NoError(t, r.tags.ReplaceAccountTags(ctx, a1.ID, []int64{rent.ID, bills.ID}))

		byAccount, err := r.tags.ListForAccounts(ctx, []int64{a1.ID, a2.ID})
		require.NoError(t, err)
		require.Len(t, byAccount[a1.ID], 2)
		assert.Equal(t, "bills", byAccount[a1.ID][0].Name)
		assert.Equal(t, "rent", byAccount[a1.ID][1].Name)
		assert.NotNil(t, byAccount[a2.ID])
		assert.Empty(t, byAccount[a2.ID])

		tx, err := r.transactions.Create(ctx, &models.Transaction{
			PlanName: "p", Type: models.TransactionIncome, ToAccount: &a2.ID,
			Amount: decimal.NewFromInt(3), CurrencyCode: "USD",
		}, []int64{rent.ID})
		require.NoError(t, err)
		byTransaction, err := r.tags.ListForTransactions(ctx, []int64{tx.ID})
		require.NoError(t, err)
		require.Len(t, byTransaction[tx.ID], 1)
		assert.Equal(t, rent.ID, byTransaction[tx.ID][0].ID)
	})

	t.Run("plan scoped lookups do not cross plans", func(t *testing.T) {
		tdb.Truncate(t)
		u := newUser(t, "alice")
		_, err := r.plans.Create(ctx, "p1", u.ID)
		require.NoError(t, err)
		_, err = r.plans.Create(ctx, "p2", u.ID)
		require.NoError(t, err)
		_, err = r.currencies.Create(ctx, &models.Currency{Code: "USD", Name: "US Dollar", UserID: u.ID})
		require.NoError(t, err)
		acct, err := r.accounts.Create(ctx, &models.Account{PlanName: "p1", Name: "A", CurrencyCode: "USD"})
		require.NoError(t, err)

		_, err = r.accounts.Get(ctx, "p2", acct.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, r.accounts.Delete(ctx, "p2", acct.ID), models.ErrNotFound)
	})
}
