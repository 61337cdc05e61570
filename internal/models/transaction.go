package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

type Transaction struct {
	ID           int64
	PlanName     string
	Type         TransactionType
	FromAccount  *int64
	ToAccount    *int64
	Amount       decimal.Decimal
	CurrencyCode string
	Statement    string
	IsCancelled  bool
	CreatedAt    time.Time
	Tags         []*Tag
}

// Automation is a recurring transaction template. Nothing in this service
// materializes automations into transactions.
type Automation struct {
	ID           int64
	PlanName     string
	Type         TransactionType
	FromAccount  *int64
	ToAccount    *int64
	Amount       decimal.Decimal
	CurrencyCode string
	Statement    string
	Frequency    string
	StartDate    time.Time
	EndDate      *time.Time
	IsPaused     bool
}

// ValidateFlow checks which of from/to must be populated for the given type.
func ValidateFlow(t TransactionType, from, to *int64) error {
	switch t {
	case TransactionIncome:
		if to == nil {
			return fmt.Errorf("%w: income requires to_account", ErrBadRequest)
		}
		if from != nil {
			return fmt.Errorf("%w: income must not set from_account", ErrBadRequest)
		}
	case TransactionExpense:
		if from == nil {
			return fmt.Errorf("%w: expense requires from_account", ErrBadRequest)
		}
		if to != nil {
			return fmt.Errorf("%w: expense must not set to_account", ErrBadRequest)
		}
	case TransactionTransfer:
		if from == nil || to == nil {
			return fmt.Errorf("%w: transfer requires from_account and to_account", ErrBadRequest)
		}
		if *from == *to {
			return fmt.Errorf("%w: transfer accounts must differ", ErrBadRequest)
		}
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrBadRequest, t)
	}
	return nil
}

// ValidateDateRange rejects an end date that precedes the start date.
func ValidateDateRange(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return fmt.Errorf("%w: end_date is before start_date", ErrBadRequest)
	}
	return nil
}
