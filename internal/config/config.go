package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	Env            string // "development" | "production"
	DatabaseURL    string // optional: question bank from Postgres
	QuestionsFile  string // optional: question bank from a JSON file
	RoomIdleTTL    time.Duration
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Addr:           getEnv("ADDR", ":8080"),
		Env:            getEnv("APP_ENV", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		QuestionsFile:  getEnv("QUESTIONS_FILE", ""),
		RoomIdleTTL:    getDuration("ROOM_IDLE_TTL", 30*time.Minute),
		AllowedOrigins: getList("ALLOWED_ORIGINS", nil),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
