// Package money provides currency-safe formatting for extracted invoice
// amounts. It wraps go-money for ISO-4217 aware display and shopspring/decimal
// for precise float-to-string conversion.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromFloat creates Money from a floating-point major-unit amount, using
// decimal arithmetic instead of float multiplication for the cent conversion.
func NewFromFloat(amount float64, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}
	d := decimal.NewFromFloat(amount)
	cents := d.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(cents, currency.Code)
}

// NewFromString parses a plain decimal amount string like "42.50".
func NewFromString(amount string, currencyCode string) (*Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}
	cents := d.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(cents, currency.Code), nil
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display renders the value with its currency symbol, e.g. "€42.50".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// FormatNumber renders a float with exactly two decimal places. This is the
// display rule for every number cell in the dashboard and CSV export.
func FormatNumber(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ParseNumber parses a plain decimal string into a float. An error means the
// input is not a number at all; callers decide whether to revert or reject.
func ParseNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}
