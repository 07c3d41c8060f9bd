package main

import (
	"os"

	"github.com/rs/zerolog"

	"betterme/backend/internal/config"
	"betterme/backend/internal/db"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "migrate").Logger()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	logger.Info().Msg("migrations applied successfully")
}
