package money

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCurrencyMismatch is returned when two amounts in different currencies are compared.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an amount in minor units paired with its ISO 4217 currency code.
type Money struct {
	Amount   int64
	Currency string
}

// New returns Money with a normalized (upper-case) currency code.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: NormalizeCurrency(currency)}
}

func NormalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

// Compare returns -1, 0 or 1 when m is less than, equal to or greater than o.
// Both values must share a currency; convert first.
func (m Money) Compare(o Money) (int, error) {
	if m.Currency != o.Currency {
		return 0, fmt.Errorf("compare %s with %s: %w", m.Currency, o.Currency, ErrCurrencyMismatch)
	}
	switch {
	case m.Amount < o.Amount:
		return -1, nil
	case m.Amount > o.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

func (m Money) IsZero() bool { return m.Amount == 0 }

// String renders the amount with two decimals, e.g. "12.50 EUR".
func (m Money) String() string {
	sign := ""
	a := m.Amount
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, a/100, a%100, m.Currency)
}
