// Package config loads application settings from the environment, with an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLen = 32

// Config holds every runtime setting.
type Config struct {
	AppName     string
	Addr        string
	DatabaseURL string
	RedisAddr   string
	SecretKey   string
	TokenTTL    time.Duration
	Debug       bool

	AllowedOrigins []string

	// Reserved for the bot integration; no component reads these yet.
	TelegramBotToken string
	TelegramAdminID  int64
}

// Load reads .env (if present) and the environment. SECRET_KEY is required
// and must be at least 32 bytes.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		AppName:     getEnv("APP_NAME", "HomeLibrary"),
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", "homelibrary.db"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		SecretKey:   os.Getenv("SECRET_KEY"),
	}

	if len(cfg.SecretKey) < minSecretLen {
		return nil, fmt.Errorf("config: SECRET_KEY must be set and at least %d bytes", minSecretLen)
	}

	minutes, err := getEnvInt("TOKEN_TTL_MINUTES", 7*24*60)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL = time.Duration(minutes) * time.Minute

	cfg.Debug, err = getEnvBool("DEBUG", false)
	if err != nil {
		return nil, err
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8000")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if raw := os.Getenv("TELEGRAM_ADMIN_ID"); raw != "" {
		cfg.TelegramAdminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: TELEGRAM_ADMIN_ID: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}
