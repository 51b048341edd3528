package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// HistoryLimit is the number of messages pushed to a client right after it
	// joins a room.
	HistoryLimit = 30

	// WebSocket timing
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096

	// SendBufferSize is the per-client outbound queue. A client that falls this
	// far behind the fan-out is dropped.
	SendBufferSize = 256
)

// Config holds the runtime settings for the service.
type Config struct {
	DatabaseDSN string
	RedisAddr   string
	RedisDB     int
	JWTSecret   string
	ListenAddr  string
}

// Load reads configuration from the environment, after loading a .env file if
// one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	return &Config{
		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=user password=password dbname=pairchat port=5432 sslmode=disable"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		JWTSecret:  getEnv("JWT_SECRET", "dev-only-secret"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
