package shipping

import (
	"context"
	"fmt"
)

// CarrierProvider collects, per enabled carrier, the first range a cart satisfies.
type CarrierProvider struct {
	repo    CarrierRepository
	matcher *Matcher
}

func NewCarrierProvider(repo CarrierRepository, matcher *Matcher) *CarrierProvider {
	return &CarrierProvider{repo: repo, matcher: matcher}
}

// ProvideSatisfiedRanges returns at most one range per enabled carrier, in
// repository order. Only repository failures are reported as errors.
func (p *CarrierProvider) ProvideSatisfiedRanges(ctx context.Context, cart Cart) ([]CarrierRange, error) {
	carriers, err := p.repo.FindEnabledCarriers(ctx)
	if err != nil {
		return nil, fmt.Errorf("provide satisfied ranges: find enabled carriers: %w", err)
	}

	satisfied := make([]CarrierRange, 0, len(carriers))
	for _, c := range carriers {
		if !c.Enabled {
			continue
		}
		if r, ok := p.FirstSatisfiedRange(cart, c); ok {
			satisfied = append(satisfied, r)
		}
	}
	return satisfied, nil
}

// FirstSatisfiedRange returns the carrier's first range, in its defined
// order, satisfied by the cart.
func (p *CarrierProvider) FirstSatisfiedRange(cart Cart, carrier Carrier) (CarrierRange, bool) {
	for _, r := range carrier.Ranges {
		if p.matcher.IsSatisfied(cart, r) {
			return r, true
		}
	}
	return nil, false
}
