package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/newsletters")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("CRON_SECRET", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ResearchTimeout)
	assert.Equal(t, 45*time.Minute, cfg.ResearchMaxWait)
	assert.Equal(t, 4, cfg.SweepConcurrency)
	assert.False(t, cfg.ExportEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RESEARCH_TIMEOUT", "1m")
	t.Setenv("RESEARCH_MAX_WAIT", "2h")
	t.Setenv("SWEEP_CONCURRENCY", "8")
	t.Setenv("RESEARCH_MODEL", "o3-deep-research")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, time.Minute, cfg.ResearchTimeout)
	assert.Equal(t, 2*time.Hour, cfg.ResearchMaxWait)
	assert.Equal(t, 8, cfg.SweepConcurrency)
	assert.Equal(t, "o3-deep-research", cfg.ResearchModel)
}

func TestFromEnvMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"Missing DATABASE_URL", "DATABASE_URL"},
		{"Missing OPENAI_API_KEY", "OPENAI_API_KEY"},
		{"Missing GEMINI_API_KEY", "GEMINI_API_KEY"},
		{"Missing CRON_SECRET", "CRON_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.unset)
		})
	}
}

func TestFromEnvInvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RESEARCH_MAX_WAIT", "forever")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestExportEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.ExportEnabled())

	cfg.GoogleCredentialsJSON = `{"type":"service_account"}`
	assert.False(t, cfg.ExportEnabled())

	cfg.DriveParentFolderID = "folder-id"
	assert.True(t, cfg.ExportEnabled())
}
