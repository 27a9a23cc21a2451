package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"shippinginfra/internal/money"
	"shippinginfra/internal/shipping"
)

// ErrEmptyCatalog is returned when a catalog file defines no carriers.
var ErrEmptyCatalog = errors.New("catalog defines no carriers")

// catalogNamespace derives stable ids for catalog entries without an explicit id.
var catalogNamespace = uuid.MustParse("6f1c2a3e-8d4b-4e0a-9b7c-1d2e3f405a6b")

type catalogFile struct {
	Carriers []catalogCarrier `yaml:"carriers"`
}

type catalogCarrier struct {
	ID      string         `yaml:"id"`
	Code    string         `yaml:"code"`
	Name    string         `yaml:"name"`
	Enabled *bool          `yaml:"enabled"`
	Ranges  []catalogRange `yaml:"ranges"`
}

type catalogRange struct {
	ID         string       `yaml:"id"`
	Kind       string       `yaml:"kind"`
	Name       string       `yaml:"name"`
	Price      catalogMoney `yaml:"price"`
	FromPrice  catalogMoney `yaml:"from_price"`
	ToPrice    catalogMoney `yaml:"to_price"`
	FromWeight any          `yaml:"from_weight"`
	ToWeight   any          `yaml:"to_weight"`
}

type catalogMoney struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

func (m catalogMoney) toMoney() money.Money { return money.New(m.Amount, m.Currency) }

// ParseCatalog decodes a YAML carrier catalog. Carriers default to enabled.
func ParseCatalog(data []byte) ([]shipping.Carrier, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Carriers) == 0 {
		return nil, ErrEmptyCatalog
	}

	carriers := make([]shipping.Carrier, 0, len(f.Carriers))
	seen := make(map[string]struct{}, len(f.Carriers))
	carrierIDs := make(map[uuid.UUID]struct{}, len(f.Carriers))
	rangeIDs := make(map[uuid.UUID]struct{})
	for i, cc := range f.Carriers {
		code := strings.TrimSpace(cc.Code)
		if code == "" {
			return nil, fmt.Errorf("parse catalog: carrier #%d: code required", i+1)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("parse catalog: carrier #%d: duplicate code %q", i+1, code)
		}
		seen[code] = struct{}{}

		id, err := catalogID(cc.ID, "carrier:"+code)
		if err != nil {
			return nil, fmt.Errorf("parse catalog: carrier %q: %w", code, err)
		}
		if _, dup := carrierIDs[id]; dup {
			return nil, fmt.Errorf("parse catalog: carrier %q: duplicate id %s", code, id)
		}
		carrierIDs[id] = struct{}{}
		c := shipping.Carrier{
			ID:      id,
			Code:    code,
			Name:    orDefault(cc.Name, code),
			Enabled: cc.Enabled == nil || *cc.Enabled,
		}
		for j, cr := range cc.Ranges {
			rid, err := catalogID(cr.ID, fmt.Sprintf("range:%s:%d", code, j))
			if err != nil {
				return nil, fmt.Errorf("parse catalog: carrier %q range #%d: %w", code, j+1, err)
			}
			if _, dup := rangeIDs[rid]; dup {
				return nil, fmt.Errorf("parse catalog: carrier %q range #%d: duplicate id %s", code, j+1, rid)
			}
			rangeIDs[rid] = struct{}{}
			info := shipping.RangeInfo{ID: rid, CarrierID: id, Name: cr.Name, Price: cr.Price.toMoney()}
			c.Ranges = append(c.Ranges, buildRange(info, cr))
		}
		carriers = append(carriers, c)
	}
	return carriers, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) ([]shipping.Carrier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: read %q: %w", path, err)
	}
	return ParseCatalog(data)
}

func buildRange(info shipping.RangeInfo, cr catalogRange) shipping.CarrierRange {
	switch kind := strings.ToLower(strings.TrimSpace(cr.Kind)); kind {
	case shipping.KindPrice:
		return &shipping.PriceRange{RangeInfo: info, FromPrice: cr.FromPrice.toMoney(), ToPrice: cr.ToPrice.toMoney()}
	case shipping.KindWeight:
		return &shipping.WeightRange{RangeInfo: info, FromWeight: toWeight(cr.FromWeight), ToWeight: toWeight(cr.ToWeight)}
	default:
		return &shipping.UnknownRange{RangeInfo: info, RawKind: kind}
	}
}

// toWeight maps a decoded YAML scalar to a weight bound. Anything that is
// not a number yields nil, which never matches.
func toWeight(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func catalogID(raw, name string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.NewSHA1(catalogNamespace, []byte(name)), nil
	}
	return uuid.Parse(strings.TrimSpace(raw))
}

func orDefault(s, d string) string {
	if strings.TrimSpace(s) == "" {
		return d
	}
	return s
}

// FileCarrierRepository reads the catalog file on every lookup so edits are
// picked up without a restart.
type FileCarrierRepository struct {
	path string
}

func NewFileCarrierRepository(path string) *FileCarrierRepository {
	return &FileCarrierRepository{path: path}
}

func (r *FileCarrierRepository) FindEnabledCarriers(ctx context.Context) ([]shipping.Carrier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	carriers, err := LoadCatalog(r.path)
	if err != nil {
		return nil, fmt.Errorf("find enabled carriers: %w", err)
	}
	return enabledOnly(carriers), nil
}
