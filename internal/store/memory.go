package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shippinginfra/internal/shipping"
)

// MemoryCarrierRepository keeps carriers in insertion order.
type MemoryCarrierRepository struct {
	mu       sync.RWMutex
	carriers []shipping.Carrier
}

func NewMemoryCarrierRepository(carriers ...shipping.Carrier) *MemoryCarrierRepository {
	r := &MemoryCarrierRepository{}
	for _, c := range carriers {
		r.Put(c)
	}
	return r
}

// Put adds a carrier or replaces the one with the same ID in place.
// Carriers without an ID are always appended.
func (r *MemoryCarrierRepository) Put(c shipping.Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID != uuid.Nil {
		for i := range r.carriers {
			if r.carriers[i].ID == c.ID {
				r.carriers[i] = c
				return
			}
		}
	}
	r.carriers = append(r.carriers, c)
}

func (r *MemoryCarrierRepository) FindEnabledCarriers(ctx context.Context) ([]shipping.Carrier, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return enabledOnly(r.carriers), nil
}

func enabledOnly(carriers []shipping.Carrier) []shipping.Carrier {
	out := make([]shipping.Carrier, 0, len(carriers))
	for _, c := range carriers {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}
