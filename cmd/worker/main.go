package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"betterme/backend/internal/config"
	"betterme/backend/internal/db"
	"betterme/backend/internal/queue"
	"betterme/backend/internal/repository"
	"betterme/backend/internal/storage"
	"betterme/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "worker").Logger()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	consumer, err := queue.NewKafkaConsumer(queue.KafkaConfig{
		Brokers:   cfg.KafkaBrokers,
		TopicHigh: cfg.AudioTopicHigh,
		TopicLow:  cfg.AudioTopicLow,
		GroupID:   cfg.AudioGroupID,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create queue consumer")
	}
	defer consumer.Close()

	store, err := storage.NewLocalStore(cfg.AudioStorageDir, cfg.PublicFilesURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("create object store")
	}

	w, err := worker.New(worker.Config{
		Consumer:      consumer,
		AudioRepo:     repository.NewAudioRepository(database),
		Store:         store,
		Downloader:    worker.NewYTDLPDownloader(),
		JobsPerMinute: cfg.WorkerJobsPerMinute,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("worker failed")
	}
}
