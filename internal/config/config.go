package config

import (
	"os"
	"strings"
)

const (
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

type Config struct {
	DatabaseURL   string
	Port          string
	CarrierSource string
	CarriersFile  string
	RateProvider  string
	ExchangeRates string
}

func Load() Config {
	cfg := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          getEnv("PORT", "8080"),
		CarrierSource: strings.ToLower(strings.TrimSpace(os.Getenv("CARRIER_SOURCE"))),
		CarriersFile:  getEnv("CARRIERS_FILE", "data/carriers.yaml"),
		RateProvider:  os.Getenv("RATE_PROVIDER"),
		ExchangeRates: os.Getenv("EXCHANGE_RATES"),
	}
	if cfg.CarrierSource == "" {
		cfg.CarrierSource = SourceFile
		if strings.TrimSpace(cfg.DatabaseURL) != "" {
			cfg.CarrierSource = SourcePostgres
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
