package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor units digits; all supported currencies use cents.
const Scale = 2

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrInexactAmount    = errors.New("money: amount has more than two decimal places")
)

// Money is an amount in integer minor units with its ISO 4217 currency.
type Money struct {
	Amount   int64
	Currency string
}

// New validates the currency code and returns a Money of amount minor units.
func New(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount in currency.
func Zero(currency string) Money {
	return Money{Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Parse reads a major-unit decimal string such as "400.00". It refuses values
// that cannot be represented in minor units without rounding.
func Parse(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("money: parse amount %q: %w", amount, err)
	}
	minor := d.Shift(Scale)
	if !minor.IsInteger() {
		return Money{}, ErrInexactAmount
	}
	return New(minor.IntPart(), currency)
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sum adds parts to a zero amount of currency.
func Sum(currency string, parts ...Money) (Money, error) {
	total := Zero(currency)
	for _, part := range parts {
		next, err := total.Add(part)
		if err != nil {
			return Money{}, err
		}
		total = next
	}
	return total, nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -Scale)
}

// String renders the major-unit amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

type wireMoney struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{Amount: m.String(), Currency: m.Currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var wire wireMoney
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	parsed, err := Parse(wire.Amount, wire.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
