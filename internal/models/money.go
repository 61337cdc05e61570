package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(12,2).
const AmountScale = 2

var maxAmount = decimal.New(1, 10) // exclusive bound on |amount|

// NormalizeAmount rounds to two fraction digits and checks the column range.
func NormalizeAmount(d decimal.Decimal) (decimal.Decimal, error) {
	d = d.Round(AmountScale)
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount %s out of range", ErrBadRequest, d.StringFixed(AmountScale))
	}
	return d, nil
}

// NormalizePositiveAmount is NormalizeAmount that additionally requires d > 0.
func NormalizePositiveAmount(d decimal.Decimal) (decimal.Decimal, error) {
	d, err := NormalizeAmount(d)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}
	return d, nil
}
