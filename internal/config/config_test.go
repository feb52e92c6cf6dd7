package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/library")
	t.Setenv("LOAN_PERIOD_DAYS", "")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "")
	t.Setenv("LOG_DIR", "")

	cfg := Load()
	assert.Equal(t, "postgres://localhost:5432/library", cfg.DatabaseURL)
	assert.Equal(t, 14, cfg.LoanPeriodDays)
	assert.Zero(t, cfg.SweepIntervalSeconds)
	assert.Empty(t, cfg.LogDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/library")
	t.Setenv("LOAN_PERIOD_DAYS", "21")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "300")
	t.Setenv("LOG_DIR", "storage/logs")

	cfg := Load()
	assert.Equal(t, 21, cfg.LoanPeriodDays)
	assert.Equal(t, 300, cfg.SweepIntervalSeconds)
	assert.Equal(t, "storage/logs", cfg.LogDir)
}

func TestEnvOrIntIgnoresGarbage(t *testing.T) {
	t.Setenv("LOAN_PERIOD_DAYS", "not-a-number")
	assert.Equal(t, 14, envOrInt("LOAN_PERIOD_DAYS", 14))
}
