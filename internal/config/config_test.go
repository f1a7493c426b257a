package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IrishAnn-code/HomeLibrary/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "HomeLibrary", cfg.AppName)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "homelibrary.db", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.Debug)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "too-short")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("ADDR", ":9999")
	t.Setenv("TOKEN_TTL_MINUTES", "60")
	t.Setenv("DEBUG", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://lib.example.com, https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://lib.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_BadTTL(t *testing.T) {
	t.Setenv("SECRET_KEY", testSecret)
	t.Setenv("TOKEN_TTL_MINUTES", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}
