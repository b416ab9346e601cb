package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "mongo", cfg.Store)
	assert.Equal(t, 168*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "portfolio-api", cfg.JWT.Issuer)
	assert.Equal(t, "portfolio", cfg.Mongo.Database)
	assert.Equal(t, 5, cfg.RateLimit.Login)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"JWT_EXPIRES_IN":    "2h",
		"ENV":               "production",
		"STORE":             "memory",
		"CORS_ORIGINS":      "https://a.dev,https://b.dev",
		"SMTP_HOST":         "smtp.example.com",
		"CONTACT_NOTIFY_TO": "me@example.com",
		"NOTIFY_WORKERS":    "4",
	}))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.CORSOrigins)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 4, cfg.Dispatcher.Workers)
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"STORE":      "postgres",
	}))
	assert.ErrorContains(t, err, "STORE")
}
