package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("DEFAULT_COMMISSION_RATE", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "10", cfg.DefaultCommissionRate.String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("DEFAULT_COMMISSION_RATE", "12.5")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("ALLOW_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "12.5", cfg.DefaultCommissionRate.String())
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, "http://a.test,http://b.test", cfg.AllowedOrigins())
}
