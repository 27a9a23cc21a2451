package shipping

import (
	"log"
	"math"

	"shippinginfra/internal/money"
	"shippinginfra/internal/rate"
)

// ZoneFunc reports whether a range's geographic zones accept the cart.
type ZoneFunc func(cart Cart, r CarrierRange) bool

// AnyZone accepts every cart for every range.
func AnyZone(Cart, CarrierRange) bool { return true }

// Matcher decides whether a single carrier range is satisfied by a cart.
type Matcher struct {
	converter rate.Converter
	zones     ZoneFunc
}

type MatcherOption func(*Matcher)

// WithZoneFunc replaces the zone predicate used by all range kinds.
func WithZoneFunc(f ZoneFunc) MatcherOption {
	return func(m *Matcher) {
		if f != nil {
			m.zones = f
		}
	}
}

func NewMatcher(converter rate.Converter, opts ...MatcherOption) *Matcher {
	m := &Matcher{converter: converter, zones: AnyZone}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsSatisfied dispatches on the range kind. Unknown kinds are never satisfied.
func (m *Matcher) IsSatisfied(cart Cart, r CarrierRange) bool {
	switch cr := r.(type) {
	case *PriceRange:
		if cr == nil {
			return false
		}
		return m.PriceRangeSatisfied(cart, cr)
	case *WeightRange:
		if cr == nil {
			return false
		}
		return m.WeightRangeSatisfied(cart, cr)
	default:
		return false
	}
}

// PriceRangeSatisfied converts both bounds into the cart currency and checks
// from <= amount <= to.
func (m *Matcher) PriceRangeSatisfied(cart Cart, r *PriceRange) bool {
	if !m.ZonesSatisfied(cart, r) {
		return false
	}
	cmpFrom, ok := m.compareConverted(r, r.FromPrice, cart.Amount)
	if !ok || cmpFrom > 0 {
		return false
	}
	cmpTo, ok := m.compareConverted(r, r.ToPrice, cart.Amount)
	return ok && cmpTo >= 0
}

// WeightRangeSatisfied checks from <= weight <= to with both bounds valid.
func (m *Matcher) WeightRangeSatisfied(cart Cart, r *WeightRange) bool {
	if !m.ZonesSatisfied(cart, r) {
		return false
	}
	if !validWeight(r.FromWeight) || !validWeight(r.ToWeight) {
		return false
	}
	return cart.Weight >= *r.FromWeight && cart.Weight <= *r.ToWeight
}

// ZonesSatisfied is the geographic eligibility hook shared by all range kinds.
func (m *Matcher) ZonesSatisfied(cart Cart, r CarrierRange) bool {
	return m.zones(cart, r)
}

// compareConverted returns bound <=> amount after converting bound into
// amount's currency. ok is false when conversion or comparison fails.
func (m *Matcher) compareConverted(r CarrierRange, bound, amount money.Money) (int, bool) {
	if m.converter == nil {
		log.Printf("range %s: no currency converter configured", r.Info().ID)
		return 0, false
	}
	converted, err := m.converter.Convert(bound, amount.Currency)
	if err != nil {
		log.Printf("range %s: %v", r.Info().ID, err)
		return 0, false
	}
	c, err := converted.Compare(amount)
	if err != nil {
		log.Printf("range %s: %v", r.Info().ID, err)
		return 0, false
	}
	return c, true
}

func validWeight(w *float64) bool {
	return w != nil && !math.IsNaN(*w) && *w >= 0
}
