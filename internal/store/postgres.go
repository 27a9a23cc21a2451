package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shippinginfra/internal/money"
	"shippinginfra/internal/shipping"
)

// ErrDuplicateCarrierCode is returned when seeding a carrier whose code is
// already taken by a carrier with a different id.
var ErrDuplicateCarrierCode = errors.New("duplicate carrier code")

// PostgresCarrierRepository loads carriers and their ranges from Postgres.
type PostgresCarrierRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCarrierRepository(db *pgxpool.Pool) *PostgresCarrierRepository {
	return &PostgresCarrierRepository{db: db}
}

const enabledCarriersQuery = `
	SELECT c.id, c.code, c.name, c.enabled,
	       r.id, r.kind, r.name, r.price_amount, r.price_currency,
	       r.from_price_amount, r.from_price_currency,
	       r.to_price_amount, r.to_price_currency,
	       r.from_weight, r.to_weight
	FROM carriers c
	LEFT JOIN carrier_ranges r ON r.carrier_id = c.id
	WHERE c.enabled = true
	ORDER BY c.position, c.code, r.position
`

type rangeRow struct {
	id                *uuid.UUID
	kind              *string
	name              *string
	priceAmount       *int64
	priceCurrency     *string
	fromPriceAmount   *int64
	fromPriceCurrency *string
	toPriceAmount     *int64
	toPriceCurrency   *string
	fromWeight        *float64
	toWeight          *float64
}

// FindEnabledCarriers returns enabled carriers ordered by position, each with
// its ranges in their defined order.
func (s *PostgresCarrierRepository) FindEnabledCarriers(ctx context.Context) ([]shipping.Carrier, error) {
	if s.db == nil {
		return nil, errors.New("postgres carrier repository: pool is nil")
	}
	rows, err := s.db.Query(ctx, enabledCarriersQuery)
	if err != nil {
		return nil, fmt.Errorf("find enabled carriers: query: %w", err)
	}
	defer rows.Close()

	var carriers []shipping.Carrier
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var c shipping.Carrier
		var r rangeRow
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Name, &c.Enabled,
			&r.id, &r.kind, &r.name, &r.priceAmount, &r.priceCurrency,
			&r.fromPriceAmount, &r.fromPriceCurrency,
			&r.toPriceAmount, &r.toPriceCurrency,
			&r.fromWeight, &r.toWeight,
		); err != nil {
			return nil, fmt.Errorf("find enabled carriers: scan row: %w", err)
		}
		i, ok := index[c.ID]
		if !ok {
			i = len(carriers)
			index[c.ID] = i
			carriers = append(carriers, c)
		}
		if r.id == nil {
			continue
		}
		carriers[i].Ranges = append(carriers[i].Ranges, r.toRange(c.ID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find enabled carriers: row iteration: %w", err)
	}
	return carriers, nil
}

func (r rangeRow) toRange(carrierID uuid.UUID) shipping.CarrierRange {
	info := shipping.RangeInfo{
		ID:        *r.id,
		CarrierID: carrierID,
		Name:      deref(r.name),
		Price:     money.New(deref(r.priceAmount), deref(r.priceCurrency)),
	}
	switch kind := deref(r.kind); kind {
	case shipping.KindPrice:
		return &shipping.PriceRange{
			RangeInfo: info,
			FromPrice: money.New(deref(r.fromPriceAmount), deref(r.fromPriceCurrency)),
			ToPrice:   money.New(deref(r.toPriceAmount), deref(r.toPriceCurrency)),
		}
	case shipping.KindWeight:
		return &shipping.WeightRange{RangeInfo: info, FromWeight: r.fromWeight, ToWeight: r.toWeight}
	default:
		return &shipping.UnknownRange{RangeInfo: info, RawKind: kind}
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// SeedCarriers upserts carriers and replaces their ranges in one transaction.
// Carrier order in the slice becomes their position.
func SeedCarriers(ctx context.Context, pool *pgxpool.Pool, carriers []shipping.Carrier) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed carriers: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for pos, c := range carriers {
		_, err := tx.Exec(ctx, `
			INSERT INTO carriers (id, code, name, enabled, position)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET code = EXCLUDED.code, name = EXCLUDED.name, enabled = EXCLUDED.enabled,
			    position = EXCLUDED.position, updated_at = now()
		`, c.ID, c.Code, c.Name, c.Enabled, pos)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
				return fmt.Errorf("seed carriers: carrier %q: %w", c.Code, ErrDuplicateCarrierCode)
			}
			return fmt.Errorf("seed carriers: upsert carrier %q: %w", c.Code, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM carrier_ranges WHERE carrier_id = $1`, c.ID); err != nil {
			return fmt.Errorf("seed carriers: clear ranges of %q: %w", c.Code, err)
		}
		for rpos, r := range c.Ranges {
			if err := insertRange(ctx, tx, c.ID, rpos, r); err != nil {
				return fmt.Errorf("seed carriers: carrier %q range #%d: %w", c.Code, rpos+1, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed carriers: commit tx: %w", err)
	}
	return nil
}

func insertRange(ctx context.Context, tx pgx.Tx, carrierID uuid.UUID, pos int, r shipping.CarrierRange) error {
	info := r.Info()
	var (
		fromAmount, toAmount     *int64
		fromCurrency, toCurrency *string
		fromWeight, toWeight     *float64
	)
	switch cr := r.(type) {
	case *shipping.PriceRange:
		fromAmount, fromCurrency = &cr.FromPrice.Amount, &cr.FromPrice.Currency
		toAmount, toCurrency = &cr.ToPrice.Amount, &cr.ToPrice.Currency
	case *shipping.WeightRange:
		fromWeight, toWeight = cr.FromWeight, cr.ToWeight
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO carrier_ranges (
			id, carrier_id, position, kind, name, price_amount, price_currency,
			from_price_amount, from_price_currency, to_price_amount, to_price_currency,
			from_weight, to_weight
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		info.ID, carrierID, pos, r.Kind(), info.Name, info.Price.Amount, info.Price.Currency,
		fromAmount, fromCurrency, toAmount, toCurrency,
		fromWeight, toWeight,
	)
	return err
}
