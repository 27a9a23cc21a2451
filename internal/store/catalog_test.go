package store

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shippinginfra/internal/money"
	"shippinginfra/internal/rate"
	"shippinginfra/internal/shipping"
)

const testCatalog = `
carriers:
  - code: ups
    name: UPS Ground
    ranges:
      - kind: price
        name: standard
        price: {amount: 500, currency: USD}
        from_price: {amount: 100, currency: USD}
        to_price: {amount: 110, currency: USD}
      - kind: weight
        from_weight: 40
        to_weight: 50
  - code: dhl
    enabled: false
    ranges:
      - kind: weight
        from_weight: 0
        to_weight: 1000
  - code: post
    ranges:
      - kind: zone
      - kind: weight
        from_weight: "10"
        to_weight: 10.0
  - code: odd
    ranges:
      - kind: weight
        from_weight: true
        to_weight: ~
      - kind: weight
        from_weight: 0
        to_weight: .inf
`

func TestParseCatalog(t *testing.T) {
	carriers, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var codes []string
	for _, c := range carriers {
		codes = append(codes, c.Code)
	}
	if diff := cmp.Diff([]string{"ups", "dhl", "post", "odd"}, codes); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	ups := carriers[0]
	if !ups.Enabled || ups.Name != "UPS Ground" || len(ups.Ranges) != 2 {
		t.Fatalf("unexpected ups carrier: %+v", ups)
	}
	pr, ok := ups.Ranges[0].(*shipping.PriceRange)
	if !ok {
		t.Fatalf("expected price range, got %T", ups.Ranges[0])
	}
	if pr.FromPrice != money.New(100, "USD") || pr.ToPrice != money.New(110, "USD") || pr.Price != money.New(500, "USD") {
		t.Fatalf("unexpected price range: %+v", pr)
	}
	if pr.CarrierID != ups.ID {
		t.Fatalf("range carrier id %s, want %s", pr.CarrierID, ups.ID)
	}

	if carriers[1].Enabled {
		t.Fatalf("expected dhl disabled")
	}

	post := carriers[2]
	if _, ok := post.Ranges[0].(*shipping.UnknownRange); !ok || post.Ranges[0].Kind() != "zone" {
		t.Fatalf("expected unknown zone range, got %T", post.Ranges[0])
	}
	wr := post.Ranges[1].(*shipping.WeightRange)
	if wr.FromWeight == nil || *wr.FromWeight != 10 || wr.ToWeight == nil || *wr.ToWeight != 10 {
		t.Fatalf("unexpected weight bounds: %+v", wr)
	}

	odd := carriers[3]
	bad := odd.Ranges[0].(*shipping.WeightRange)
	if bad.FromWeight != nil || bad.ToWeight != nil {
		t.Fatalf("expected non-numeric bounds to be nil: %+v", bad)
	}
	open := odd.Ranges[1].(*shipping.WeightRange)
	if open.ToWeight == nil || !math.IsInf(*open.ToWeight, 1) {
		t.Fatalf("expected open upper bound: %+v", open)
	}
}

func TestParseCatalog_StableIDs(t *testing.T) {
	a, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if a[0].ID != b[0].ID || a[0].Ranges[1].Info().ID != b[0].Ranges[1].Info().ID {
		t.Fatalf("expected ids to be stable across parses")
	}
	if a[0].ID == a[2].ID {
		t.Fatalf("expected distinct carrier ids")
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	if _, err := ParseCatalog([]byte("carriers: []")); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}
	const dupID = "a3c19b2d-2e41-4d8a-a6f7-0b9d5f3c4f60"
	cases := map[string]string{
		"missing code":         "carriers:\n  - name: x\n",
		"duplicate code":       "carriers:\n  - code: a\n  - code: a\n",
		"bad id":               "carriers:\n  - code: a\n    id: nope\n",
		"bad yaml":             "carriers: [",
		"duplicate carrier id": "carriers:\n  - code: a\n    id: " + dupID + "\n  - code: b\n    id: " + dupID + "\n",
		"duplicate range id":   "carriers:\n  - code: a\n    ranges: [{kind: weight, id: " + dupID + "}]\n  - code: b\n    ranges: [{kind: weight, id: " + dupID + "}]\n",
	}
	for name, doc := range cases {
		if _, err := ParseCatalog([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFileCarrierRepository_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carriers.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	repo := NewFileCarrierRepository(path)

	enabled, err := repo.FindEnabledCarriers(context.Background())
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(enabled) != 3 {
		t.Fatalf("expected 3 enabled carriers, got %d", len(enabled))
	}

	cp := shipping.NewCarrierProvider(repo, shipping.NewMatcher(rate.NewIdentity()))
	cart := shipping.Cart{Amount: money.New(100, "USD"), Weight: 10}
	ranges, err := shipping.NewProvider(cp, nil).ValidCarrierRanges(context.Background(), cart)
	if err != nil {
		t.Fatalf("valid ranges failed: %v", err)
	}
	// ups matches on price, post on weight [10,10], odd on the open range.
	if len(ranges) != 3 {
		t.Fatalf("expected 3 ranges, got %d", len(ranges))
	}
	if ranges[0].Kind() != shipping.KindPrice || ranges[1].Kind() != shipping.KindWeight {
		t.Fatalf("unexpected kinds: %s, %s", ranges[0].Kind(), ranges[1].Kind())
	}
}

func TestFileCarrierRepository_MissingFile(t *testing.T) {
	repo := NewFileCarrierRepository(filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := repo.FindEnabledCarriers(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
