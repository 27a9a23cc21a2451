package shipping

import (
	"context"

	"github.com/google/uuid"

	"shippinginfra/internal/money"
)

// Cart is the order context presented to carrier eligibility checks.
type Cart struct {
	ID     uuid.UUID
	Amount money.Money
	Weight float64
}

// Carrier is a shipping method with an ordered list of eligibility ranges.
type Carrier struct {
	ID      uuid.UUID
	Code    string
	Name    string
	Enabled bool
	Ranges  []CarrierRange
}

// RangeInfo holds the fields shared by every range variant.
// Price is what the customer pays for shipping when the range applies.
type RangeInfo struct {
	ID        uuid.UUID
	CarrierID uuid.UUID
	Name      string
	Price     money.Money
}

func (i RangeInfo) Info() RangeInfo { return i }

// CarrierRange is an eligibility bracket attached to a carrier.
// Implemented by *PriceRange, *WeightRange and *UnknownRange.
type CarrierRange interface {
	Info() RangeInfo
	Kind() string
}

const (
	KindPrice  = "price"
	KindWeight = "weight"
)

// PriceRange matches carts whose amount lies within [FromPrice, ToPrice].
type PriceRange struct {
	RangeInfo
	FromPrice money.Money
	ToPrice   money.Money
}

func (r *PriceRange) Kind() string { return KindPrice }

// WeightRange matches carts whose weight lies within [FromWeight, ToWeight].
// A nil, NaN or negative bound makes the range unusable.
type WeightRange struct {
	RangeInfo
	FromWeight *float64
	ToWeight   *float64
}

func (r *WeightRange) Kind() string { return KindWeight }

// UnknownRange is a persisted range of a kind this build does not evaluate.
type UnknownRange struct {
	RangeInfo
	RawKind string
}

func (r *UnknownRange) Kind() string { return r.RawKind }

// CarrierRepository loads carriers for a resolution request.
type CarrierRepository interface {
	FindEnabledCarriers(ctx context.Context) ([]Carrier, error)
}

// Weight returns a pointer to w, for building WeightRange bounds.
func Weight(w float64) *float64 { return &w }
