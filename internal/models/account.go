package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID           int64
	PlanName     string
	Name         string
	Balance      decimal.Decimal
	CurrencyCode string
	SavingsType  *string
	CreatedAt    time.Time
	Tags         []*Tag
}

// Recurrence descriptors shared by budgets and automations.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

type Budget struct {
	ID           int64
	PlanName     string
	Name         string
	Amount       decimal.Decimal
	Interval     string
	CurrencyCode string
	StartDate    time.Time
	EndDate      *time.Time
}
