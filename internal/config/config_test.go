package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REPORT_COOLDOWN", "")
	t.Setenv("VOTE_DEBOUNCE", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, 20*time.Minute, cfg.ReportCooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.VoteDebounce)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, "forums.json", cfg.ForumsConfigPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REPORT_COOLDOWN", "90s")
	t.Setenv("VOTE_DEBOUNCE", "not-a-duration")
	t.Setenv("LOG_RETENTION_DAYS", "7")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "secret")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.ReportCooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.VoteDebounce, "invalid durations fall back")
	assert.Equal(t, 7, cfg.LogRetentionDays)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "password=secret")
	assert.Contains(t, cfg.DSN(), "TimeZone=UTC")
}
