package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/financefusion/api/internal/repositories"
	pkglogger "github.com/financefusion/api/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc                func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc               func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFunc         func(ctx context.Context, username string) (*models.User, error)
	UpdatePasswordFunc        func(ctx context.Context, id int64, hash string) error
	UpdateDevModeFunc         func(ctx context.Context, id int64, enabled bool) (*models.User, error)
	UpdateTwoFactorSecretFunc func(ctx context.Context, id int64, secret *string) error
	RegisterLoginFailureFunc  func(ctx context.Context, id int64, now time.Time, threshold int) (*models.User, error)
	ResetLoginFailuresFunc    func(ctx context.Context, id int64) error
	DeleteFunc                func(ctx context.Context, id int64) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, hash)
	}
	return nil
}

func (m *MockUserRepository) UpdateDevMode(ctx context.Context, id int64, enabled bool) (*models.User, error) {
	if m.UpdateDevModeFunc != nil {
		return m.UpdateDevModeFunc(ctx, id, enabled)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateTwoFactorSecret(ctx context.Context, id int64, secret *string) error {
	if m.UpdateTwoFactorSecretFunc != nil {
		return m.UpdateTwoFactorSecretFunc(ctx, id, secret)
	}
	return nil
}

func (m *MockUserRepository) RegisterLoginFailure(ctx context.Context, id int64, now time.Time, threshold int) (*models.User, error) {
	if m.RegisterLoginFailureFunc != nil {
		return m.RegisterLoginFailureFunc(ctx, id, now, threshold)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ResetLoginFailures(ctx context.Context, id int64) error {
	if m.ResetLoginFailuresFunc != nil {
		return m.ResetLoginFailuresFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc        func(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error)
	GetByTokenFunc    func(ctx context.Context, token string) (*models.Session, error)
	DeleteByTokenFunc func(ctx context.Context, token string) error
	DeleteByUserFunc  func(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockSessionRepository) Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, expiresAt)
	}
	return &models.Session{ID: 1, Token: "00000000-0000-0000-0000-000000000001", UserID: userID, ExpiresAt: expiresAt}, nil
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if m.DeleteByTokenFunc != nil {
		return m.DeleteByTokenFunc(ctx, token)
	}
	return nil
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	if m.DeleteByUserFunc != nil {
		return m.DeleteByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

// MockPlanRepository implements PlanRepository for testing
type MockPlanRepository struct {
	CreateFunc     func(ctx context.Context, name string, userID int64) (*models.Plan, error)
	GetFunc        func(ctx context.Context, name string) (*models.Plan, error)
	ListByUserFunc func(ctx context.Context, userID int64) ([]*models.Plan, error)
	DeleteFunc     func(ctx context.Context, name string, userID int64) error
	TouchFunc      func(ctx context.Context, name string, at time.Time) error
}

func (m *MockPlanRepository) Create(ctx context.Context, name string, userID int64) (*models.Plan, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, name, userID)
	}
	return &models.Plan{Name: name, UserID: userID, LastModified: time.Now()}, nil
}

func (m *MockPlanRepository) Get(ctx context.Context, name string) (*models.Plan, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, name)
	}
	return nil, models.ErrNotFound
}

func (m *MockPlanRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Plan, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Plan{}, nil
}

func (m *MockPlanRepository) Delete(ctx context.Context, name string, userID int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, name, userID)
	}
	return nil
}

func (m *MockPlanRepository) Touch(ctx context.Context, name string, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, name, at)
	}
	return nil
}

// MockPlanAuthorizer grants access to plans owned by OwnerID and records touches.
type MockPlanAuthorizer struct {
	OwnerID int64
	Touched []string
}

func (m *MockPlanAuthorizer) Authorize(ctx context.Context, userID int64, planName string) (*models.Plan, error) {
	if userID != m.OwnerID {
		return nil, models.ErrNotFound
	}
	return &models.Plan{Name: planName, UserID: userID}, nil
}

func (m *MockPlanAuthorizer) Touch(ctx context.Context, planName string) {
	m.Touched = append(m.Touched, planName)
}

// MockCurrencyRepository implements CurrencyRepository for testing
type MockCurrencyRepository struct {
	CreateFunc     func(ctx context.Context, c *models.Currency) (*models.Currency, error)
	GetFunc        func(ctx context.Context, code string) (*models.Currency, error)
	ListFunc       func(ctx context.Context) ([]*models.Currency, error)
	ListByUserFunc func(ctx context.Context, userID int64) ([]*models.Currency, error)
	DeleteFunc     func(ctx context.Context, code string, userID int64) error
}

func (m *MockCurrencyRepository) Create(ctx context.Context, c *models.Currency) (*models.Currency, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return c, nil
}

func (m *MockCurrencyRepository) Get(ctx context.Context, code string) (*models.Currency, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, code)
	}
	return nil, models.ErrNotFound
}

func (m *MockCurrencyRepository) List(ctx context.Context) ([]*models.Currency, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Currency{}, nil
}

func (m *MockCurrencyRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Currency, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Currency{}, nil
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, code string, userID int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, code, userID)
	}
	return nil
}

// MockTagRepository implements TagRepository for testing
type MockTagRepository struct {
	CreateFunc                 func(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	GetFunc                    func(ctx context.Context, id int64) (*models.Tag, error)
	ListByUserFunc             func(ctx context.Context, userID int64) ([]*models.Tag, error)
	UpdateFunc                 func(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	DeleteFunc                 func(ctx context.Context, id, userID int64) error
	CountOwnedFunc             func(ctx context.Context, userID int64, ids []int64) (int, error)
	ListForAccountFunc         func(ctx context.Context, accountID int64) ([]*models.Tag, error)
	ListForTransactionFunc     func(ctx context.Context, transactionID int64) ([]*models.Tag, error)
	ListForAccountsFunc        func(ctx context.Context, accountIDs []int64) (map[int64][]*models.Tag, error)
	ListForTransactionsFunc    func(ctx context.Context, transactionIDs []int64) (map[int64][]*models.Tag, error)
	ReplaceAccountTagsFunc     func(ctx context.Context, accountID int64, tagIDs []int64) error
	ReplaceTransactionTagsFunc func(ctx context.Context, transactionID int64, tagIDs []int64) error
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tag)
	}
	return tag, nil
}

func (m *MockTagRepository) Get(ctx context.Context, id int64) (*models.Tag, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockTagRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Tag, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Tag{}, nil
}

func (m *MockTagRepository) Update(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tag)
	}
	return tag, nil
}

func (m *MockTagRepository) Delete(ctx context.Context, id, userID int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockTagRepository) CountOwned(ctx context.Context, userID int64, ids []int64) (int, error) {
	if m.CountOwnedFunc != nil {
		return m.CountOwnedFunc(ctx, userID, ids)
	}
	return len(ids), nil
}

func (m *MockTagRepository) ListForAccount(ctx context.Context, accountID int64) ([]*models.Tag, error) {
	if m.ListForAccountFunc != nil {
		return m.ListForAccountFunc(ctx, accountID)
	}
	return []*models.Tag{}, nil
}

func (m *MockTagRepository) ListForTransaction(ctx context.Context, transactionID int64) ([]*models.Tag, error) {
	if m.ListForTransactionFunc != nil {
		return m.ListForTransactionFunc(ctx, transactionID)
	}
	return []*models.Tag{}, nil
}

func (m *MockTagRepository) ListForAccounts(ctx context.Context, accountIDs []int64) (map[int64][]*models.Tag, error) {
	if m.ListForAccountsFunc != nil {
		return m.ListForAccountsFunc(ctx, accountIDs)
	}
	return map[int64][]*models.Tag{}, nil
}

func (m *MockTagRepository) ListForTransactions(ctx context.Context, transactionIDs []int64) (map[int64][]*models.Tag, error) {
	if m.ListForTransactionsFunc != nil {
		return m.ListForTransactionsFunc(ctx, transactionIDs)
	}
	return map[int64][]*models.Tag{}, nil
}

func (m *MockTagRepository) ReplaceAccountTags(ctx context.Context, accountID int64, tagIDs []int64) error {
	if m.ReplaceAccountTagsFunc != nil {
		return m.ReplaceAccountTagsFunc(ctx, accountID, tagIDs)
	}
	return nil
}

func (m *MockTagRepository) ReplaceTransactionTags(ctx context.Context, transactionID int64, tagIDs []int64) error {
	if m.ReplaceTransactionTagsFunc != nil {
		return m.ReplaceTransactionTagsFunc(ctx, transactionID, tagIDs)
	}
	return nil
}

// MockAccountRepository implements AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc     func(ctx context.Context, a *models.Account) (*models.Account, error)
	GetFunc        func(ctx context.Context, planName string, id int64) (*models.Account, error)
	ListByPlanFunc func(ctx context.Context, planName string) ([]*models.Account, error)
	UpdateFunc     func(ctx context.Context, a *models.Account) (*models.Account, error)
	DeleteFunc     func(ctx context.Context, planName string, id int64) error
}

func (m *MockAccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	a.ID = 1
	return a, nil
}

func (m *MockAccountRepository) Get(ctx context.Context, planName string, id int64) (*models.Account, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, planName, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountRepository) ListByPlan(ctx context.Context, planName string) ([]*models.Account, error) {
	if m.ListByPlanFunc != nil {
		return m.ListByPlanFunc(ctx, planName)
	}
	return []*models.Account{}, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	return a, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, planName string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, planName, id)
	}
	return nil
}

// MockBudgetRepository implements BudgetRepository for testing
type MockBudgetRepository struct {
	CreateFunc     func(ctx context.Context, b *models.Budget) (*models.Budget, error)
	GetFunc        func(ctx context.Context, planName string, id int64) (*models.Budget, error)
	ListByPlanFunc func(ctx context.Context, planName string) ([]*models.Budget, error)
	UpdateFunc     func(ctx context.Context, b *models.Budget) (*models.Budget, error)
	DeleteFunc     func(ctx context.Context, planName string, id int64) error
}

func (m *MockBudgetRepository) Create(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, b)
	}
	b.ID = 1
	return b, nil
}

func (m *MockBudgetRepository) Get(ctx context.Context, planName string, id int64) (*models.Budget, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, planName, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBudgetRepository) ListByPlan(ctx context.Context, planName string) ([]*models.Budget, error) {
	if m.ListByPlanFunc != nil {
		return m.ListByPlanFunc(ctx, planName)
	}
	return []*models.Budget{}, nil
}

func (m *MockBudgetRepository) Update(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, b)
	}
	return b, nil
}

func (m *MockBudgetRepository) Delete(ctx context.Context, planName string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, planName, id)
	}
	return nil
}

// MockTransactionRepository implements TransactionRepository for testing
type MockTransactionRepository struct {
	CreateFunc       func(ctx context.Context, t *models.Transaction, tagIDs []int64) (*models.Transaction, error)
	GetFunc          func(ctx context.Context, planName string, id int64) (*models.Transaction, error)
	ListByPlanFunc   func(ctx context.Context, f repositories.TransactionFilter, page pagination.PageRequest) ([]*models.Transaction, int64, error)
	SetCancelledFunc func(ctx context.Context, planName string, id int64, cancelled bool) (*models.Transaction, error)
	DeleteFunc       func(ctx context.Context, planName string, id int64) error
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *models.Transaction, tagIDs []int64) (*models.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t, tagIDs)
	}
	t.ID = 1
	return t, nil
}

func (m *MockTransactionRepository) Get(ctx context.Context, planName string, id int64) (*models.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, planName, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockTransactionRepository) ListByPlan(ctx context.Context, f repositories.TransactionFilter, page pagination.PageRequest) ([]*models.Transaction, int64, error) {
	if m.ListByPlanFunc != nil {
		return m.ListByPlanFunc(ctx, f, page)
	}
	return []*models.Transaction{}, 0, nil
}

func (m *MockTransactionRepository) SetCancelled(ctx context.Context, planName string, id int64, cancelled bool) (*models.Transaction, error) {
	if m.SetCancelledFunc != nil {
		return m.SetCancelledFunc(ctx, planName, id, cancelled)
	}
	return nil, models.ErrNotFound
}

func (m *MockTransactionRepository) Delete(ctx context.Context, planName string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, planName, id)
	}
	return nil
}

// MockAutomationRepository implements AutomationRepository for testing
type MockAutomationRepository struct {
	CreateFunc     func(ctx context.Context, a *models.Automation) (*models.Automation, error)
	GetFunc        func(ctx context.Context, planName string, id int64) (*models.Automation, error)
	ListByPlanFunc func(ctx context.Context, planName string) ([]*models.Automation, error)
	UpdateFunc     func(ctx context.Context, a *models.Automation) (*models.Automation, error)
	SetPausedFunc  func(ctx context.Context, planName string, id int64, paused bool) (*models.Automation, error)
	DeleteFunc     func(ctx context.Context, planName string, id int64) error
}

func (m *MockAutomationRepository) Create(ctx context.Context, a *models.Automation) (*models.Automation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	a.ID = 1
	return a, nil
}

func (m *MockAutomationRepository) Get(ctx context.Context, planName string, id int64) (*models.Automation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, planName, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAutomationRepository) ListByPlan(ctx context.Context, planName string) ([]*models.Automation, error) {
	if m.ListByPlanFunc != nil {
		return m.ListByPlanFunc(ctx, planName)
	}
	return []*models.Automation{}, nil
}

func (m *MockAutomationRepository) Update(ctx context.Context, a *models.Automation) (*models.Automation, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	return a, nil
}

func (m *MockAutomationRepository) SetPaused(ctx context.Context, planName string, id int64, paused bool) (*models.Automation, error) {
	if m.SetPausedFunc != nil {
		return m.SetPausedFunc(ctx, planName, id, paused)
	}
	return &models.Automation{ID: id, PlanName: planName, IsPaused: paused}, nil
}

func (m *MockAutomationRepository) Delete(ctx context.Context, planName string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, planName, id)
	}
	return nil
}

// MockNotificationRepository implements NotificationRepository for testing
type MockNotificationRepository struct {
	CreateFunc       func(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetFunc          func(ctx context.Context, planName string, id int64) (*models.Notification, error)
	ListFunc         func(ctx context.Context, planName, status string) ([]*models.Notification, error)
	UpdateStatusFunc func(ctx context.Context, planName string, id int64, status string) (*models.Notification, error)
	DeleteFunc       func(ctx context.Context, planName string, id int64) error
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	n.ID = 1
	return n, nil
}

func (m *MockNotificationRepository) Get(ctx context.Context, planName string, id int64) (*models.Notification, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, planName, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockNotificationRepository) List(ctx context.Context, planName, status string) ([]*models.Notification, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, planName, status)
	}
	return []*models.Notification{}, nil
}

func (m *MockNotificationRepository) UpdateStatus(ctx context.Context, planName string, id int64, status string) (*models.Notification, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, planName, id, status)
	}
	return &models.Notification{ID: id, PlanName: planName, Status: status}, nil
}

func (m *MockNotificationRepository) Delete(ctx context.Context, planName string, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, planName, id)
	}
	return nil
}

// MockTOTPProvider implements TOTPProvider. Sealing is reversible by
// prefixing "sealed:" so tests can inspect stored values.
type MockTOTPProvider struct {
	ValidCode string
}

func (m *MockTOTPProvider) NewSetup(accountName string) (*auth.TOTPSetup, error) {
	return &auth.TOTPSetup{
		Secret: "JBSWY3DPEHPK3PXP",
		URL:    "otpauth://totp/Finance%20Fusion:" + accountName,
		QRCode: "data:image/png;base64,AAAA",
	}, nil
}

func (m *MockTOTPProvider) Validate(secret, code string) bool {
	return code == m.ValidCode
}

func (m *MockTOTPProvider) Seal(secret string) (string, error) {
	return "sealed:" + secret, nil
}

func (m *MockTOTPProvider) Open(sealed string) (string, error) {
	return sealed[len("sealed:"):], nil
}

// NewTestUser returns a user with the schema's default lockout settings.
func NewTestUser(id int64, username, passwordHash string) *models.User {
	return &models.User{
		ID:                 id,
		Username:           username,
		PasswordHash:       passwordHash,
		CreatedAt:          time.Now().UTC(),
		LockDurationS:      models.DefaultLockDurationS,
		LockDurationFactor: models.DefaultLockDurationFactor,
		LockDurationCapS:   models.DefaultLockDurationCapS,
	}
}
