package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/internal/pagination"
	"github.com/financefusion/api/internal/services"
	pkghttp "github.com/financefusion/api/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext attaches a live session for userID, as RequireSession would.
func WithSessionContext(req *http.Request, userID int64) *http.Request {
	session := &models.Session{
		ID:        1,
		Token:     "00000000-0000-0000-0000-000000000001",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(auth.WithSession(req.Context(), session))
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc   func(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	LogoutFunc  func(ctx context.Context, session *models.Session) error
	RefreshFunc func(ctx context.Context, session *models.Session) (*services.LoginResult, error)
}

func (m *MockAuthService) Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, in)
}

func (m *MockAuthService) Logout(ctx context.Context, session *models.Session) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, session)
}

func (m *MockAuthService) Refresh(ctx context.Context, session *models.Session) (*services.LoginResult, error) {
	if m.RefreshFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.RefreshFunc(ctx, session)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	RegisterFunc       func(ctx context.Context, username, password string) (*models.User, error)
	GetByIDFunc        func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
	ChangePasswordFunc func(ctx context.Context, id int64, current, next, ip string) error
	SetDevModeFunc     func(ctx context.Context, id int64, enabled bool) (*models.User, error)
	DeleteUserFunc     func(ctx context.Context, id int64, ip string) error
}

func (m *MockUserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, username, password)
}

func (m *MockUserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *MockUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetByUsernameFunc(ctx, username)
}

func (m *MockUserService) ChangePassword(ctx context.Context, id int64, current, next, ip string) error {
	if m.ChangePasswordFunc == nil {
		return nil
	}
	return m.ChangePasswordFunc(ctx, id, current, next, ip)
}

func (m *MockUserService) SetDevMode(ctx context.Context, id int64, enabled bool) (*models.User, error) {
	if m.SetDevModeFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SetDevModeFunc(ctx, id, enabled)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id int64, ip string) error {
	if m.DeleteUserFunc == nil {
		return nil
	}
	return m.DeleteUserFunc(ctx, id, ip)
}

// MockTwoFactorService implements TwoFactorServiceInterface for testing
type MockTwoFactorService struct {
	BeginSetupFunc func(ctx context.Context, userID int64) (*auth.TOTPSetup, error)
	EnableFunc     func(ctx context.Context, userID int64, secret, code string) error
	DisableFunc    func(ctx context.Context, userID int64, code string) error
}

func (m *MockTwoFactorService) BeginSetup(ctx context.Context, userID int64) (*auth.TOTPSetup, error) {
	if m.BeginSetupFunc == nil {
		return nil, models.ErrTwoFactorUnavailable
	}
	return m.BeginSetupFunc(ctx, userID)
}

func (m *MockTwoFactorService) Enable(ctx context.Context, userID int64, secret, code string) error {
	if m.EnableFunc == nil {
		return nil
	}
	return m.EnableFunc(ctx, userID, secret, code)
}

func (m *MockTwoFactorService) Disable(ctx context.Context, userID int64, code string) error {
	if m.DisableFunc == nil {
		return nil
	}
	return m.DisableFunc(ctx, userID, code)
}

// MockPlanService implements PlanServiceInterface for testing
type MockPlanService struct {
	CreateFunc func(ctx context.Context, userID int64, name string) (*models.Plan, error)
	ListFunc   func(ctx context.Context, userID int64) ([]*models.Plan, error)
	GetFunc    func(ctx context.Context, userID int64, planName string) (*models.Plan, error)
	DeleteFunc func(ctx context.Context, userID int64, planName string) error
}

func (m *MockPlanService) Create(ctx context.Context, userID int64, name string) (*models.Plan, error) {
	if m.CreateFunc == nil {
		return &models.Plan{Name: name, UserID: userID, LastModified: time.Now().UTC()}, nil
	}
	return m.CreateFunc(ctx, userID, name)
}

func (m *MockPlanService) List(ctx context.Context, userID int64) ([]*models.Plan, error) {
	if m.ListFunc == nil {
		return []*models.Plan{}, nil
	}
	return m.ListFunc(ctx, userID)
}

func (m *MockPlanService) Get(ctx context.Context, userID int64, planName string) (*models.Plan, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, planName)
}

func (m *MockPlanService) Delete(ctx context.Context, userID int64, planName string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, planName)
}

// MockCurrencyService implements CurrencyServiceInterface for testing
type MockCurrencyService struct {
	CreateFunc func(ctx context.Context, userID int64, code, name string) (*models.Currency, error)
	GetFunc    func(ctx context.Context, code string) (*models.Currency, error)
	ListFunc   func(ctx context.Context, userID int64, mine bool) ([]*models.Currency, error)
	DeleteFunc func(ctx context.Context, userID int64, code string) error
}

func (m *MockCurrencyService) Create(ctx context.Context, userID int64, code, name string) (*models.Currency, error) {
	if m.CreateFunc == nil {
		return &models.Currency{Code: code, Name: name, UserID: userID}, nil
	}
	return m.CreateFunc(ctx, userID, code, name)
}

func (m *MockCurrencyService) Get(ctx context.Context, code string) (*models.Currency, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, code)
}

func (m *MockCurrencyService) List(ctx context.Context, userID int64, mine bool) ([]*models.Currency, error) {
	if m.ListFunc == nil {
		return []*models.Currency{}, nil
	}
	return m.ListFunc(ctx, userID, mine)
}

func (m *MockCurrencyService) Delete(ctx context.Context, userID int64, code string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, code)
}

// MockTagService implements TagServiceInterface for testing
type MockTagService struct {
	CreateFunc func(ctx context.Context, userID int64, name, icon string) (*models.Tag, error)
	ListFunc   func(ctx context.Context, userID int64) ([]*models.Tag, error)
	GetFunc    func(ctx context.Context, userID, id int64) (*models.Tag, error)
	UpdateFunc func(ctx context.Context, userID, id int64, name, icon string) (*models.Tag, error)
	DeleteFunc func(ctx context.Context, userID, id int64) error
}

func (m *MockTagService) Create(ctx context.Context, userID int64, name, icon string) (*models.Tag, error) {
	if m.CreateFunc == nil {
		return &models.Tag{ID: 1, UserID: userID, Name: name, Icon: icon}, nil
	}
	return m.CreateFunc(ctx, userID, name, icon)
}

func (m *MockTagService) List(ctx context.Context, userID int64) ([]*models.Tag, error) {
	if m.ListFunc == nil {
		return []*models.Tag{}, nil
	}
	return m.ListFunc(ctx, userID)
}

func (m *MockTagService) Get(ctx context.Context, userID, id int64) (*models.Tag, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, id)
}

func (m *MockTagService) Update(ctx context.Context, userID, id int64, name, icon string) (*models.Tag, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, userID, id, name, icon)
}

func (m *MockTagService) Delete(ctx context.Context, userID, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, id)
}

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	CreateFunc  func(ctx context.Context, userID int64, planName string, in services.AccountInput) (*models.Account, error)
	GetFunc     func(ctx context.Context, userID int64, planName string, id int64) (*models.Account, error)
	ListFunc    func(ctx context.Context, userID int64, planName string) ([]*models.Account, error)
	UpdateFunc  func(ctx context.Context, userID int64, planName string, id int64, in services.AccountInput) (*models.Account, error)
	DeleteFunc  func(ctx context.Context, userID int64, planName string, id int64) error
	SetTagsFunc func(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error)
}

func (m *MockAccountService) Create(ctx context.Context, userID int64, planName string, in services.AccountInput) (*models.Account, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CreateFunc(ctx, userID, planName, in)
}

func (m *MockAccountService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Account, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, planName, id)
}

func (m *MockAccountService) List(ctx context.Context, userID int64, planName string) ([]*models.Account, error) {
	if m.ListFunc == nil {
		return []*models.Account{}, nil
	}
	return m.ListFunc(ctx, userID, planName)
}

func (m *MockAccountService) Update(ctx context.Context, userID int64, planName string, id int64, in services.AccountInput) (*models.Account, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, userID, planName, id, in)
}

func (m *MockAccountService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, planName, id)
}

func (m *MockAccountService) SetTags(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error) {
	if m.SetTagsFunc == nil {
		return []*models.Tag{}, nil
	}
	return m.SetTagsFunc(ctx, userID, planName, id, tagIDs)
}

// MockBudgetService implements BudgetServiceInterface for testing
type MockBudgetService struct {
	CreateFunc func(ctx context.Context, userID int64, planName string, in services.BudgetInput) (*models.Budget, error)
	GetFunc    func(ctx context.Context, userID int64, planName string, id int64) (*models.Budget, error)
	ListFunc   func(ctx context.Context, userID int64, planName string) ([]*models.Budget, error)
	UpdateFunc func(ctx context.Context, userID int64, planName string, id int64, in services.BudgetInput) (*models.Budget, error)
	DeleteFunc func(ctx context.Context, userID int64, planName string, id int64) error
}

func (m *MockBudgetService) Create(ctx context.Context, userID int64, planName string, in services.BudgetInput) (*models.Budget, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CreateFunc(ctx, userID, planName, in)
}

func (m *MockBudgetService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Budget, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, planName, id)
}

func (m *MockBudgetService) List(ctx context.Context, userID int64, planName string) ([]*models.Budget, error) {
	if m.ListFunc == nil {
		return []*models.Budget{}, nil
	}
	return m.ListFunc(ctx, userID, planName)
}

func (m *MockBudgetService) Update(ctx context.Context, userID int64, planName string, id int64, in services.BudgetInput) (*models.Budget, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, userID, planName, id, in)
}

func (m *MockBudgetService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, planName, id)
}

// MockTransactionService implements TransactionServiceInterface for testing
type MockTransactionService struct {
	CreateFunc  func(ctx context.Context, userID int64, planName string, in services.FlowInput, tagIDs []int64) (*models.Transaction, error)
	GetFunc     func(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error)
	ListFunc    func(ctx context.Context, userID int64, planName string, opts services.TransactionListOptions) (pagination.PageResponse[*models.Transaction], error)
	CancelFunc  func(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error)
	DeleteFunc  func(ctx context.Context, userID int64, planName string, id int64) error
	SetTagsFunc func(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error)
}

func (m *MockTransactionService) Create(ctx context.Context, userID int64, planName string, in services.FlowInput, tagIDs []int64) (*models.Transaction, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CreateFunc(ctx, userID, planName, in, tagIDs)
}

func (m *MockTransactionService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, planName, id)
}

func (m *MockTransactionService) List(ctx context.Context, userID int64, planName string, opts services.TransactionListOptions) (pagination.PageResponse[*models.Transaction], error) {
	if m.ListFunc == nil {
		return pagination.NewPageResponse[*models.Transaction](nil, 1, pagination.DefaultPageSize, 0), nil
	}
	return m.ListFunc(ctx, userID, planName, opts)
}

func (m *MockTransactionService) Cancel(ctx context.Context, userID int64, planName string, id int64) (*models.Transaction, error) {
	if m.CancelFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CancelFunc(ctx, userID, planName, id)
}

func (m *MockTransactionService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, planName, id)
}

func (m *MockTransactionService) SetTags(ctx context.Context, userID int64, planName string, id int64, tagIDs []int64) ([]*models.Tag, error) {
	if m.SetTagsFunc == nil {
		return []*models.Tag{}, nil
	}
	return m.SetTagsFunc(ctx, userID, planName, id, tagIDs)
}

// MockAutomationService implements AutomationServiceInterface for testing
type MockAutomationService struct {
	CreateFunc func(ctx context.Context, userID int64, planName string, in services.AutomationInput) (*models.Automation, error)
	GetFunc    func(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)
	ListFunc   func(ctx context.Context, userID int64, planName string) ([]*models.Automation, error)
	UpdateFunc func(ctx context.Context, userID int64, planName string, id int64, in services.AutomationInput) (*models.Automation, error)
	PauseFunc  func(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)
	ResumeFunc func(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error)
	DeleteFunc func(ctx context.Context, userID int64, planName string, id int64) error
}

func (m *MockAutomationService) Create(ctx context.Context, userID int64, planName string, in services.AutomationInput) (*models.Automation, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CreateFunc(ctx, userID, planName, in)
}

func (m *MockAutomationService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, planName, id)
}

func (m *MockAutomationService) List(ctx context.Context, userID int64, planName string) ([]*models.Automation, error) {
	if m.ListFunc == nil {
		return []*models.Automation{}, nil
	}
	return m.ListFunc(ctx, userID, planName)
}

func (m *MockAutomationService) Update(ctx context.Context, userID int64, planName string, id int64, in services.AutomationInput) (*models.Automation, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, userID, planName, id, in)
}

func (m *MockAutomationService) Pause(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error) {
	if m.PauseFunc == nil {
		return &models.Automation{ID: id, PlanName: planName, IsPaused: true}, nil
	}
	return m.PauseFunc(ctx, userID, planName, id)
}

func (m *MockAutomationService) Resume(ctx context.Context, userID int64, planName string, id int64) (*models.Automation, error) {
	if m.ResumeFunc == nil {
		return &models.Automation{ID: id, PlanName: planName}, nil
	}
	return m.ResumeFunc(ctx, userID, planName, id)
}

func (m *MockAutomationService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, planName, id)
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	CreateFunc       func(ctx context.Context, userID int64, planName, kind, title, body string) (*models.Notification, error)
	GetFunc          func(ctx context.Context, userID int64, planName string, id int64) (*models.Notification, error)
	ListFunc         func(ctx context.Context, userID int64, planName, status string) ([]*models.Notification, error)
	UpdateStatusFunc func(ctx context.Context, userID int64, planName string, id int64, status string) (*models.Notification, error)
	DeleteFunc       func(ctx context.Context, userID int64, planName string, id int64) error
}

func (m *MockNotificationService) Create(ctx context.Context, userID int64, planName, kind, title, body string) (*models.Notification, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.CreateFunc(ctx, userID, planName, kind, title, body)
}

func (m *MockNotificationService) Get(ctx context.Context, userID int64, planName string, id int64) (*models.Notification, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, userID, planName, id)
}

func (m *MockNotificationService) List(ctx context.Context, userID int64, planName, status string) ([]*models.Notification, error) {
	if m.ListFunc == nil {
		return []*models.Notification{}, nil
	}
	return m.ListFunc(ctx, userID, planName, status)
}

func (m *MockNotificationService) UpdateStatus(ctx context.Context, userID int64, planName string, id int64, status string) (*models.Notification, error) {
	if m.UpdateStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateStatusFunc(ctx, userID, planName, id, status)
}

func (m *MockNotificationService) Delete(ctx context.Context, userID int64, planName string, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, userID, planName, id)
}
