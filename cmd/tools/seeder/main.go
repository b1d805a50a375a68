// Seeder populates the reference catalog: products and offers.
// Safe to re-run; rows are upserted by primary key.
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aquaris-labs/backend-aquaris/internal/db"
)

var products = []db.Product{
	{ID: "P1", Name: "Widget", Price: 1000},
	{ID: "P2", Name: "Gadget", Price: 2500},
	{ID: "P3", Name: "Gizmo", Price: 4000},
	{ID: "P4", Name: "Doohickey", Price: 750},
}

var offers = []db.Offer{
	{Code: "FLAT20", Kind: "FLAT", Value: 2000},
	{Code: "SAVE10", Kind: "PERCENT", Value: 1000},
	{Code: "SAVE25", Kind: "PERCENT", Value: 2500},
}

func main() {
	_ = godotenv.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	queries := db.New(pool)

	for _, p := range products {
		if err := queries.UpsertProduct(ctx, p); err != nil {
			logger.Fatal().Err(err).Str("product", p.ID).Msg("seed product")
		}
		logger.Info().Str("product", p.ID).Str("name", p.Name).Int64("price", p.Price).Msg("seeded product")
	}

	for _, o := range offers {
		if err := queries.UpsertOffer(ctx, o); err != nil {
			logger.Fatal().Err(err).Str("offer", o.Code).Msg("seed offer")
		}
		logger.Info().Str("offer", o.Code).Str("kind", o.Kind).Int64("value", o.Value).Msg("seeded offer")
	}

	logger.Info().Int("products", len(products)).Int("offers", len(offers)).Msg("seed complete")
}
