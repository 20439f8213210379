package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TWITTER_ACCESS_TOKEN", "")
	t.Setenv("SCHEDULER_TICK_MS", "")

	cfg := Load()

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, time.Second, cfg.SchedulerTick)
	assert.False(t, cfg.Platforms.Twitter.Complete())
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TWITTER_ACCESS_TOKEN", "tok")
	t.Setenv("MAX_CONCURRENCY", "8")
	t.Setenv("SCHEDULER_TICK_MS", "250")
	t.Setenv("RATE_LIMIT_MS", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.Platforms.Twitter.Complete())
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.SchedulerTick)
	assert.Equal(t, 500, cfg.RateLimitMs, "unparsable ints fall back to the default")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.MaxConcurrency = 0
	cfg.SchedulerTick = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_CONCURRENCY")
	assert.Contains(t, err.Error(), "SCHEDULER_TICK_MS")
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", cfg.DSN())
}
