package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"betterme/backend/internal/config"
	"betterme/backend/internal/db"
	"betterme/backend/internal/handler"
	"betterme/backend/internal/queue"
	"betterme/backend/internal/repository"
	"betterme/backend/internal/router"
	"betterme/backend/internal/service"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "api").Logger()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	producer, err := queue.NewKafkaProducer(queue.KafkaConfig{
		Brokers:   cfg.KafkaBrokers,
		TopicHigh: cfg.AudioTopicHigh,
		TopicLow:  cfg.AudioTopicLow,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create queue producer")
	}
	defer producer.Close()

	userRepo := repository.NewUserRepository(database)
	pomodoroRepo := repository.NewPomodoroRepository(database)
	audioRepo := repository.NewAudioRepository(database)
	taskRepo := repository.NewTaskRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	pomodoroService := service.NewPomodoroService(pomodoroRepo, userRepo)
	audioService := service.NewAudioService(audioRepo, producer, logger)
	settingsService := service.NewSettingsService(userRepo)
	taskService := service.NewTaskService(taskRepo)

	engine := router.New(authService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Pomodoro: handler.NewPomodoroHandler(pomodoroService),
		Audio:    handler.NewAudioHandler(audioService),
		Settings: handler.NewSettingsHandler(settingsService),
		Task:     handler.NewTaskHandler(taskService),
	}, cfg.CORSOrigins, cfg.AudioStorageDir)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("serve")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
