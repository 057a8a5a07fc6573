package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NOTIFICATION_RECIPIENTS", "")
	t.Setenv("MAX_REQUESTS_PER_MINUTE", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, defaultRecipients, cfg.NotificationRecipients)
	assert.Equal(t, 60.0, cfg.MaxRequestsPerMinute)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("NOTIFICATION_RECIPIENTS", " a@example.com, ,b@example.com ")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("ALLOWED_HOSTS", "admin.example.com")

	cfg := LoadConfig()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.NotificationRecipients)
	assert.Equal(t, int64(12<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"admin.example.com"}, cfg.AllowedHosts)
}

func TestLoadConfig_GinMode(t *testing.T) {
	tests := map[string]string{
		"":           "debug",
		"release":    "release",
		"test":       "test",
		"debug":      "debug",
		"production": "debug",
		"Release":    "debug",
	}
	for raw, want := range tests {
		t.Setenv("GIN_MODE", raw)
		assert.Equal(t, want, LoadConfig().GinMode, "GIN_MODE=%q", raw)
	}
}
