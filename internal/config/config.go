package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	TokenTTL      time.Duration
	CORSOrigins   []string
	MigrationsDir string

	KafkaBrokers    []string
	AudioTopicHigh  string
	AudioTopicLow   string
	AudioGroupID    string
	AudioStorageDir string
	PublicFilesURL  string

	// WorkerJobsPerMinute caps how often the worker starts a download, as a
	// rate limit against the upstream media providers.
	WorkerJobsPerMinute float64
}

func Load() Config {
	// Optional; real deployments set env vars directly.
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./data/betterme.db"),
		JWTSecret:     getEnv("JWT_SECRET", "change-this-secret"),
		TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),

		KafkaBrokers:    getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
		AudioTopicHigh:  getEnv("AUDIO_TOPIC_HIGH", "audio-jobs-high"),
		AudioTopicLow:   getEnv("AUDIO_TOPIC_LOW", "audio-jobs-low"),
		AudioGroupID:    getEnv("AUDIO_GROUP_ID", "audio-worker"),
		AudioStorageDir: getEnv("AUDIO_STORAGE_DIR", "./data/audios"),
		PublicFilesURL:  getEnv("PUBLIC_FILES_URL", "http://localhost:8080/files"),

		WorkerJobsPerMinute: getEnvFloat("WORKER_JOBS_PER_MINUTE", 4),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
