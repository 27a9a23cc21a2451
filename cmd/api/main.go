package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"shippinginfra/internal/config"
	"shippinginfra/internal/db"
	"shippinginfra/internal/rate"
	"shippinginfra/internal/server"
	"shippinginfra/internal/shipping"
	"shippinginfra/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	cfg := config.Load()

	var repo shipping.CarrierRepository
	switch cfg.CarrierSource {
	case config.SourcePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			log.Fatalf("DATABASE_URL not set. Please export DATABASE_URL or use CARRIER_SOURCE=file.")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.ReadOnly())
		if err != nil {
			cancel()
			log.Fatalf("failed to connect db: %v", err)
		}
		defer pool.Close()
		err = pool.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatalf("database ping failed: %v", err)
		}
		repo = store.NewPostgresCarrierRepository(pool)
	case config.SourceFile:
		if _, err := store.LoadCatalog(cfg.CarriersFile); err != nil {
			log.Fatalf("invalid carrier catalog: %v", err)
		}
		repo = store.NewFileCarrierRepository(cfg.CarriersFile)
	default:
		log.Fatalf("unsupported CARRIER_SOURCE %q", cfg.CarrierSource)
	}

	if !rate.IsKnown(cfg.RateProvider) {
		log.Printf("unknown RATE_PROVIDER %q, falling back to identity; foreign-currency price ranges will not match", cfg.RateProvider)
	}
	conv, err := rate.NewByName(cfg.RateProvider, cfg.ExchangeRates)
	if err != nil {
		log.Fatalf("invalid EXCHANGE_RATES: %v", err)
	}

	carriers := shipping.NewCarrierProvider(repo, shipping.NewMatcher(conv))
	// Selection policy is left to the checkout caller; this adapter reports every satisfied range.
	provider := shipping.NewProvider(carriers, shipping.PassThrough)
	r := server.New(provider, repo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rateProvider := cfg.RateProvider
	if !rate.IsKnown(rateProvider) || strings.TrimSpace(rateProvider) == "" {
		rateProvider = "identity"
	}
	log.Printf("api listening on :%s (CARRIER_SOURCE=%s RATE_PROVIDER=%s)", cfg.Port, cfg.CarrierSource, rateProvider)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}
