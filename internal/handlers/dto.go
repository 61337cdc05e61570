package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financefusion/api/internal/models"
)

const dateLayout = "2006-01-02"

// Date is a calendar day carried as "YYYY-MM-DD". Budget and automation
// ranges are DATE columns, so any time-of-day component is dropped.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	y, m, day := t.Date()
	d.Time = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return nil
}

func datePtr(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func toDatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(models.AmountScale)
}

type UserResponse struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	CreatedAt        time.Time  `json:"created_at"`
	IsDevMode        bool       `json:"is_dev_mode"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LockedUntil      *time.Time `json:"locked_until,omitempty"`
}

// PublicUserResponse is what other users may see.
type PublicUserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		CreatedAt:        u.CreatedAt,
		IsDevMode:        u.IsDevMode,
		TwoFactorEnabled: u.TwoFactorEnabled(),
		LockedUntil:      u.LockedUntil,
	}
}

func toPublicUserResponse(u *models.User) PublicUserResponse {
	return PublicUserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

type SessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user,omitempty"`
}

type PlanResponse struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"last_modified"`
}

func toPlanResponse(p *models.Plan) PlanResponse {
	return PlanResponse{Name: p.Name, LastModified: p.LastModified}
}

type CurrencyResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
}

func toCurrencyResponse(c *models.Currency) CurrencyResponse {
	return CurrencyResponse{Code: c.Code, Name: c.Name, UserID: c.UserID}
}

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func toTagResponses(tags []*models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name, Icon: t.Icon})
	}
	return out
}

type AccountResponse struct {
	ID           int64         `json:"id"`
	PlanName     string        `json:"plan_name"`
	Name         string        `json:"name"`
	Balance      string        `json:"balance"`
	CurrencyCode string        `json:"currency_code"`
	SavingsType  *string       `json:"savings_type"`
	CreatedAt    time.Time     `json:"created_at"`
	Tags         []TagResponse `json:"tags"`
}

func toAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		PlanName:     a.PlanName,
		Name:         a.Name,
		Balance:      amount(a.Balance),
		CurrencyCode: a.CurrencyCode,
		SavingsType:  a.SavingsType,
		CreatedAt:    a.CreatedAt,
		Tags:         toTagResponses(a.Tags),
	}
}

type BudgetResponse struct {
	ID           int64  `json:"id"`
	PlanName     string `json:"plan_name"`
	Name         string `json:"name"`
	Amount       string `json:"amount"`
	Interval     string `json:"interval"`
	CurrencyCode string `json:"currency_code"`
	StartDate    Date   `json:"start_date"`
	EndDate      *Date  `json:"end_date"`
}

func toBudgetResponse(b *models.Budget) BudgetResponse {
	return BudgetResponse{
		ID:           b.ID,
		PlanName:     b.PlanName,
		Name:         b.Name,
		Amount:       amount(b.Amount),
		Interval:     b.Interval,
		CurrencyCode: b.CurrencyCode,
		StartDate:    Date{Time: b.StartDate},
		EndDate:      toDatePtr(b.EndDate),
	}
}

type TransactionResponse struct {
	ID           int64         `json:"id"`
	PlanName     string        `json:"plan_name"`
	Type         string        `json:"type"`
	FromAccount  *int64        `json:"from_account"`
	ToAccount    *int64        `json:"to_account"`
	Amount       string        `json:"amount"`
	CurrencyCode string        `json:"currency_code"`
	Statement    string        `json:"statement"`
	IsCancelled  bool          `json:"is_cancelled"`
	CreatedAt    time.Time     `json:"created_at"`
	Tags         []TagResponse `json:"tags"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		PlanName:     t.PlanName,
		Type:         string(t.Type),
		FromAccount:  t.FromAccount,
		ToAccount:    t.ToAccount,
		Amount:       amount(t.Amount),
		CurrencyCode: t.CurrencyCode,
		Statement:    t.Statement,
		IsCancelled:  t.IsCancelled,
		CreatedAt:    t.CreatedAt,
		Tags:         toTagResponses(t.Tags),
	}
}

type AutomationResponse struct {
	ID           int64  `json:"id"`
	PlanName     string `json:"plan_name"`
	Type         string `json:"type"`
	FromAccount  *int64 `json:"from_account"`
	ToAccount    *int64 `json:"to_account"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Statement    string `json:"statement"`
	Frequency    string `json:"frequency"`
	StartDate    Date   `json:"start_date"`
	EndDate      *Date  `json:"end_date"`
	IsPaused     bool   `json:"is_paused"`
}

func toAutomationResponse(a *models.Automation) AutomationResponse {
	return AutomationResponse{
		ID:           a.ID,
		PlanName:     a.PlanName,
		Type:         string(a.Type),
		FromAccount:  a.FromAccount,
		ToAccount:    a.ToAccount,
		Amount:       amount(a.Amount),
		CurrencyCode: a.CurrencyCode,
		Statement:    a.Statement,
		Frequency:    a.Frequency,
		StartDate:    Date{Time: a.StartDate},
		EndDate:      toDatePtr(a.EndDate),
		IsPaused:     a.IsPaused,
	}
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	PlanName  string    `json:"plan_name"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		PlanName:  n.PlanName,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
	}
}

// mapSlice converts a service result list into response DTOs.
func mapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
