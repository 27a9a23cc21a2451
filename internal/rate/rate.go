package rate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"shippinginfra/internal/money"
)

// ErrUnknownCurrency is returned when no exchange rate is known for a currency.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrOutOfRange is returned when a converted amount does not fit in int64 minor units.
var ErrOutOfRange = errors.New("converted amount out of range")

// Converter converts an amount into a target currency.
type Converter interface {
	Convert(m money.Money, currency string) (money.Money, error)
}

// Identity performs no conversion. Amounts already in the target currency
// are returned as-is; anything else is reported as unknown.
type Identity struct{}

func NewIdentity() *Identity { return &Identity{} }

func (i *Identity) Convert(m money.Money, currency string) (money.Money, error) {
	currency = money.NormalizeCurrency(currency)
	if m.Currency != currency {
		return money.Money{}, fmt.Errorf("convert %s to %s: %w", m.Currency, currency, ErrUnknownCurrency)
	}
	return m, nil
}

// Table converts through a static table of rates expressed as units of
// each currency per one unit of a common base.
type Table struct {
	rates map[string]float64
}

func NewTable(rates map[string]float64) *Table {
	t := &Table{rates: make(map[string]float64, len(rates))}
	for c, r := range rates {
		t.rates[money.NormalizeCurrency(c)] = r
	}
	return t
}

// ParseTable reads rates in the form "USD=1,EUR=0.92".
func ParseTable(s string) (*Table, error) {
	rates := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("parse rate %q: missing '='", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("parse rate %q: %w", part, err)
		}
		if f <= 0 || math.IsInf(f, 0) {
			return nil, fmt.Errorf("parse rate %q: rate must be a positive number", part)
		}
		rates[code] = f
	}
	return NewTable(rates), nil
}

func (t *Table) Convert(m money.Money, currency string) (money.Money, error) {
	currency = money.NormalizeCurrency(currency)
	if m.Currency == currency {
		return m, nil
	}
	from, ok := t.rates[m.Currency]
	if !ok {
		return money.Money{}, fmt.Errorf("convert from %s: %w", m.Currency, ErrUnknownCurrency)
	}
	to, ok := t.rates[currency]
	if !ok {
		return money.Money{}, fmt.Errorf("convert to %s: %w", currency, ErrUnknownCurrency)
	}
	amount := math.Round(float64(m.Amount) * to / from)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(amount) || amount >= float64(math.MaxInt64) || amount <= float64(math.MinInt64) {
		return money.Money{}, fmt.Errorf("convert %s to %s: %w", m, currency, ErrOutOfRange)
	}
	return money.Money{Amount: int64(amount), Currency: currency}, nil
}

// IsKnown reports whether NewByName recognizes the provider name.
func IsKnown(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "identity", "", "table":
		return true
	}
	return false
}

// NewByName returns a Converter by provider name.
// Unknown names fall back to Identity; check IsKnown to report that.
func NewByName(name, rates string) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "identity", "":
		return NewIdentity(), nil
	case "table":
		return ParseTable(rates)
	default:
		return NewIdentity(), nil
	}
}
