package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"shippinginfra/internal/config"
	"shippinginfra/internal/db"
	"shippinginfra/internal/store"
)

// dbtool creates the carrier schema and seeds it from the YAML catalog.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	cfg := config.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer pool.Close()

	log.Println("Initializing database schema...")
	if err := store.InitSchema(ctx, pool); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	carriers, err := store.LoadCatalog(cfg.CarriersFile)
	if err != nil {
		log.Fatalf("load catalog failed: %v", err)
	}
	log.Printf("Seeding %d carriers from %s...", len(carriers), cfg.CarriersFile)
	if err := store.SeedCarriers(ctx, pool, carriers); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
