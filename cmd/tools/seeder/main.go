package main

import (
	"context"
	"flag"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/config"
	"github.com/noah-isme/ngepos/internal/obs"
	"github.com/noah-isme/ngepos/internal/storage"
)

const upsertProductSQL = `
INSERT INTO products (id, name, price, image, active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, price = EXCLUDED.price, image = EXCLUDED.image, active = TRUE, updated_at = now()`

func main() {
	skipMigrate := flag.Bool("skip-migrate", false, "do not run schema migrations before seeding")
	flag.Parse()

	logger := obs.NewLogger("console", "info")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	if !*skipMigrate {
		if err := storage.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migrate database")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	batch := &pgx.Batch{}
	for _, p := range catalog.DefaultMenu {
		batch.Queue(upsertProductSQL, p.ID, p.Name, int64(p.Price), p.Image)
	}
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		logger.Fatal().Err(err).Msg("seed products")
	}

	logger.Info().Int("products", len(catalog.DefaultMenu)).Msg("seeding completed")
}
