package shipping

import "context"

// Resolver reduces the satisfied ranges of all carriers to the final valid set.
// The selection policy belongs to the caller.
type Resolver interface {
	Resolve(ranges []CarrierRange) []CarrierRange
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ranges []CarrierRange) []CarrierRange

func (f ResolverFunc) Resolve(ranges []CarrierRange) []CarrierRange { return f(ranges) }

// PassThrough returns its input unchanged.
var PassThrough Resolver = ResolverFunc(func(ranges []CarrierRange) []CarrierRange { return ranges })

// Provider is the checkout-facing entry point: carrier provider, then resolver.
type Provider struct {
	carriers *CarrierProvider
	resolver Resolver
}

// NewProvider builds a Provider. A nil resolver means PassThrough.
func NewProvider(carriers *CarrierProvider, resolver Resolver) *Provider {
	if resolver == nil {
		resolver = PassThrough
	}
	return &Provider{carriers: carriers, resolver: resolver}
}

// ValidCarrierRanges returns the resolved ranges satisfied by the cart.
func (p *Provider) ValidCarrierRanges(ctx context.Context, cart Cart) ([]CarrierRange, error) {
	ranges, err := p.AllCarrierRanges(ctx, cart)
	if err != nil {
		return nil, err
	}
	return p.resolver.Resolve(ranges), nil
}

// AllCarrierRanges returns every satisfied range before resolution.
func (p *Provider) AllCarrierRanges(ctx context.Context, cart Cart) ([]CarrierRange, error) {
	return p.carriers.ProvideSatisfiedRanges(ctx, cart)
}
