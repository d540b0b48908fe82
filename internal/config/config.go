package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the kernel processes.
type Config struct {
	AppMode string
	DBPath  string

	BatchFlushInterval time.Duration
	BatchSizeThreshold int
	BatchMaxQueueDepth int

	PollInterval       time.Duration
	ScheduleMaxRetries int

	RedisAddr           string
	RedisPassword       string
	OutboxBatchSize     int
	OutboxPollInterval  time.Duration
	OutboxMaxRetries    int
	OutboxChannelPrefix string
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppMode: getEnv("APP_MODE", "development"),
		DBPath:  getEnv("DB_PATH", "commerce.db"),

		BatchFlushInterval: getEnvAsDuration("BATCH_FLUSH_INTERVAL_MS", 50*time.Millisecond),
		BatchSizeThreshold: getEnvAsInt("BATCH_SIZE_THRESHOLD", 200),
		BatchMaxQueueDepth: getEnvAsInt("BATCH_MAX_QUEUE_DEPTH", 5000),

		PollInterval:       getEnvAsDuration("POLL_INTERVAL_MS", 5*time.Second),
		ScheduleMaxRetries: getEnvAsInt("SCHEDULE_MAX_RETRIES", 5),

		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		OutboxBatchSize:     getEnvAsInt("OUTBOX_BATCH_SIZE", 100),
		OutboxPollInterval:  getEnvAsDuration("OUTBOX_POLL_INTERVAL_MS", 2*time.Second),
		OutboxMaxRetries:    getEnvAsInt("OUTBOX_MAX_RETRIES", 5),
		OutboxChannelPrefix: getEnv("OUTBOX_PUBLISH_CHANNEL_PREFIX", "events:"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if ms, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
