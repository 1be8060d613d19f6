package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/villamarea_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 8000, cfg.Booking.DaytimeRate)
	assert.Equal(t, 30, cfg.Booking.DownpaymentPercent)
	assert.Equal(t, 2000, cfg.Booking.SecurityBond)
	assert.Equal(t, "*/15 * * * *", cfg.Jobs.ExpireSchedule)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_NIGHTTIME", "9500")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9500, cfg.Booking.NighttimeRate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateDownpaymentBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DOWNPAYMENT_PERCENT", "150")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateJobsKeyInProduction(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JOBS_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}
