package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"shippinginfra/internal/rate"
)

type fakeRepo struct {
	carriers []Carrier
	err      error
}

func (f *fakeRepo) FindEnabledCarriers(ctx context.Context) ([]Carrier, error) {
	return f.carriers, f.err
}

// carrierWith builds a carrier holding a price range followed by a weight range.
func carrierWith(fromPrice, toPrice int64, fromWeight, toWeight float64) Carrier {
	id := uuid.New()
	pr := priceRange(fromPrice, toPrice, "USD")
	pr.CarrierID = id
	wr := weightRange(Weight(fromWeight), Weight(toWeight))
	wr.CarrierID = id
	return Carrier{ID: id, Code: id.String()[:8], Enabled: true, Ranges: []CarrierRange{pr, wr}}
}

func TestFirstSatisfiedRange_OrderFirstMatch(t *testing.T) {
	p := NewCarrierProvider(&fakeRepo{}, NewMatcher(rate.NewIdentity()))
	c := carrierWith(50, 100, 10, 15)

	r, ok := p.FirstSatisfiedRange(testCart(), c)
	if !ok {
		t.Fatalf("expected a satisfied range")
	}
	if r != c.Ranges[0] || r.Kind() != KindPrice {
		t.Fatalf("expected the price range first, got %s", r.Kind())
	}
}

func TestFirstSatisfiedRange_NoMatch(t *testing.T) {
	p := NewCarrierProvider(&fakeRepo{}, NewMatcher(rate.NewIdentity()))
	r, ok := p.FirstSatisfiedRange(testCart(), carrierWith(10, 20, 50, 55))
	if ok || r != nil {
		t.Fatalf("expected no match, got %v", r)
	}
}

func TestFirstSatisfiedRange_SkipsUnknownKinds(t *testing.T) {
	p := NewCarrierProvider(&fakeRepo{}, NewMatcher(rate.NewIdentity()))
	wr := weightRange(Weight(0), Weight(100))
	c := Carrier{Enabled: true, Ranges: []CarrierRange{&UnknownRange{RawKind: "zone"}, wr}}
	r, ok := p.FirstSatisfiedRange(testCart(), c)
	if !ok || r != wr {
		t.Fatalf("expected weight range after unknown kind, got %v", r)
	}
}

func TestProvideSatisfiedRanges(t *testing.T) {
	c1 := carrierWith(100, 110, 40, 50)
	c2 := carrierWith(120, 300, 500, 1000)
	c3 := carrierWith(50, 101, 10, 10)
	repo := &fakeRepo{carriers: []Carrier{c1, c2, c3}}
	p := NewCarrierProvider(repo, NewMatcher(rate.NewIdentity()))

	ranges, err := p.ProvideSatisfiedRanges(context.Background(), testCart())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0].Info().CarrierID != c1.ID || ranges[1].Info().CarrierID != c3.ID {
		t.Fatalf("expected ranges from first and third carriers")
	}
}

func TestProvideSatisfiedRanges_DisabledCarrier(t *testing.T) {
	c := carrierWith(0, 1000, 0, 1000)
	c.Enabled = false
	p := NewCarrierProvider(&fakeRepo{carriers: []Carrier{c}}, NewMatcher(rate.NewIdentity()))

	ranges, err := p.ProvideSatisfiedRanges(context.Background(), testCart())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranges) != 0 {
		t.Fatalf("expected no ranges from a disabled carrier, got %d", len(ranges))
	}
}

func TestProvideSatisfiedRanges_RepositoryError(t *testing.T) {
	boom := errors.New("boom")
	p := NewCarrierProvider(&fakeRepo{err: boom}, NewMatcher(rate.NewIdentity()))
	if _, err := p.ProvideSatisfiedRanges(context.Background(), testCart()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}
