package server

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"shippinginfra/internal/money"
	"shippinginfra/internal/shipping"
)

// Server exposes carrier eligibility for diagnostics and checkout callers.
// It holds no eligibility logic of its own.
type Server struct {
	provider *shipping.Provider
	carriers shipping.CarrierRepository
}

func New(provider *shipping.Provider, carriers shipping.CarrierRepository) http.Handler {
	s := &Server{provider: provider, carriers: carriers}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Logger)
	r.Get("/healthz", s.handleHealth)
	r.Get("/carriers", s.handleListCarriers)
	r.Get("/shipping/ranges", s.handleGetRanges)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type MoneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyJSON(m money.Money) MoneyJSON {
	return MoneyJSON{Amount: m.Amount, Currency: m.Currency}
}

type CarrierResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Ranges int    `json:"ranges"`
}

func (s *Server) handleListCarriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := s.carriers.FindEnabledCarriers(r.Context())
	if err != nil {
		log.Println("list carriers error:", err)
		writeErrorJSON(w, http.StatusInternalServerError, "carrier_lookup_failed", "failed to load carriers")
		return
	}
	res := make([]CarrierResponse, 0, len(carriers))
	for _, c := range carriers {
		res = append(res, CarrierResponse{ID: c.ID.String(), Code: c.Code, Name: c.Name, Ranges: len(c.Ranges)})
	}
	writeJSON(w, res)
}

type RangeResponse struct {
	ID         string     `json:"id"`
	CarrierID  string     `json:"carrier_id"`
	Kind       string     `json:"kind"`
	Name       string     `json:"name"`
	Price      MoneyJSON  `json:"price"`
	FromPrice  *MoneyJSON `json:"from_price,omitempty"`
	ToPrice    *MoneyJSON `json:"to_price,omitempty"`
	FromWeight *float64   `json:"from_weight,omitempty"`
	ToWeight   *float64   `json:"to_weight,omitempty"`
}

type RangesResponse struct {
	Cart struct {
		Amount MoneyJSON `json:"amount"`
		Weight float64   `json:"weight"`
	} `json:"cart"`
	Resolved bool            `json:"resolved"`
	Ranges   []RangeResponse `json:"ranges"`
}

// handleGetRanges evaluates a cart given as query parameters:
// amount (minor units), currency, weight and optionally all=true to skip
// resolution.
func (s *Server) handleGetRanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cart, code, msg := parseCart(q.Get("amount"), q.Get("currency"), q.Get("weight"))
	if code != "" {
		writeErrorJSON(w, http.StatusBadRequest, code, msg)
		return
	}
	all, _ := strconv.ParseBool(q.Get("all"))

	var (
		ranges []shipping.CarrierRange
		err    error
	)
	if all {
		ranges, err = s.provider.AllCarrierRanges(r.Context(), cart)
	} else {
		ranges, err = s.provider.ValidCarrierRanges(r.Context(), cart)
	}
	if err != nil {
		log.Println("carrier ranges error:", err)
		writeErrorJSON(w, http.StatusInternalServerError, "carrier_lookup_failed", "failed to load carriers")
		return
	}

	var res RangesResponse
	res.Cart.Amount = toMoneyJSON(cart.Amount)
	res.Cart.Weight = cart.Weight
	res.Resolved = !all
	res.Ranges = make([]RangeResponse, 0, len(ranges))
	for _, cr := range ranges {
		res.Ranges = append(res.Ranges, toRangeResponse(cr))
	}
	writeJSON(w, res)
}

func parseCart(amount, currency, weight string) (shipping.Cart, string, string) {
	var cart shipping.Cart
	a, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
	if err != nil {
		return cart, "invalid_amount", "amount must be an integer in minor units"
	}
	currency = money.NormalizeCurrency(currency)
	if len(currency) != 3 {
		return cart, "invalid_currency", "currency must be a 3-letter code"
	}
	var wt float64
	if strings.TrimSpace(weight) != "" {
		wt, err = strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil || math.IsNaN(wt) || math.IsInf(wt, 0) || wt < 0 {
			return cart, "invalid_weight", "weight must be a non-negative number"
		}
	}
	cart.ID = uuid.New()
	cart.Amount = money.New(a, currency)
	cart.Weight = wt
	return cart, "", ""
}

func toRangeResponse(cr shipping.CarrierRange) RangeResponse {
	info := cr.Info()
	res := RangeResponse{
		ID:        info.ID.String(),
		CarrierID: info.CarrierID.String(),
		Kind:      cr.Kind(),
		Name:      info.Name,
		Price:     toMoneyJSON(info.Price),
	}
	switch t := cr.(type) {
	case *shipping.PriceRange:
		from, to := toMoneyJSON(t.FromPrice), toMoneyJSON(t.ToPrice)
		res.FromPrice, res.ToPrice = &from, &to
	case *shipping.WeightRange:
		res.FromWeight = finite(t.FromWeight)
		res.ToWeight = finite(t.ToWeight)
	}
	return res
}

// finite drops bounds JSON cannot encode; an omitted to_weight reads as open.
func finite(p *float64) *float64 {
	if p == nil || math.IsInf(*p, 0) || math.IsNaN(*p) {
		return nil
	}
	return p
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}
