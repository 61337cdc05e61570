package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func id(v int64) *int64 { return &v }

func TestValidateFlow(t *testing.T) {
	tests := []struct {
		name    string
		typ     TransactionType
		from    *int64
		to      *int64
		wantErr bool
	}{
		{"income with destination", TransactionIncome, nil, id(1), false},
		{"income without destination", TransactionIncome, nil, nil, true},
		{"income with source", TransactionIncome, id(1), id(2), true},
		{"expense with source", TransactionExpense, id(1), nil, false},
		{"expense without source", TransactionExpense, nil, nil, true},
		{"expense with destination", TransactionExpense, id(1), id(2), true},
		{"transfer with both", TransactionTransfer, id(1), id(2), false},
		{"transfer missing destination", TransactionTransfer, id(1), nil, true},
		{"transfer to same account", TransactionTransfer, id(1), id(1), true},
		{"unknown type", TransactionType("refund"), id(1), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlow(tt.typ, tt.from, tt.to)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrBadRequest))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)
	after := start.AddDate(0, 1, 0)

	assert.NoError(t, ValidateDateRange(start, nil))
	assert.NoError(t, ValidateDateRange(start, &start))
	assert.NoError(t, ValidateDateRange(start, &after))
	assert.ErrorIs(t, ValidateDateRange(start, &before), ErrBadRequest)
}

func TestNormalizeAmount(t *testing.T) {
	d, err := NormalizeAmount(decimal.RequireFromString("100.005"))
	assert.NoError(t, err)
	assert.Equal(t, "100.01", d.StringFixed(2))

	d, err = NormalizeAmount(decimal.RequireFromString("-42.5"))
	assert.NoError(t, err)
	assert.Equal(t, "-42.50", d.StringFixed(2))

	_, err = NormalizeAmount(decimal.RequireFromString("9999999999.99"))
	assert.NoError(t, err)

	_, err = NormalizeAmount(decimal.RequireFromString("10000000000"))
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestNormalizePositiveAmount(t *testing.T) {
	_, err := NormalizePositiveAmount(decimal.Zero)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = NormalizePositiveAmount(decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrBadRequest)

	d, err := NormalizePositiveAmount(decimal.RequireFromString("0.004"))
	assert.ErrorIs(t, err, ErrBadRequest, "rounds to zero")
	assert.True(t, d.IsZero())

	d, err = NormalizePositiveAmount(decimal.RequireFromString("12.3"))
	assert.NoError(t, err)
	assert.Equal(t, "12.30", d.StringFixed(2))
}
