package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray .env
	unsetEnv(t, "PORT", "DATABASE_PATH", "TOKEN_TTL", "GEMINI_MODEL", "AI_TIMEOUT",
		"AI_SILENT_FAILURE", "CORS_ALLOWED_ORIGINS", "MAINTENANCE_SCHEDULE", "APP_ENV")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./chat.db", cfg.DatabasePath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 20*time.Second, cfg.AITimeout)
	assert.False(t, cfg.AISilentFailure)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "@every 1h", cfg.MaintenanceSchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/room.db")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("AI_TIMEOUT", "15s")
	t.Setenv("AI_SILENT_FAILURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MAINTENANCE_SCHEDULE", "")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "/tmp/room.db", cfg.DatabasePath)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.True(t, cfg.AISilentFailure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.MaintenanceSchedule)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "bad port", env: map[string]string{"PORT": "eighty"}},
		{name: "bad ttl", env: map[string]string{"TOKEN_TTL": "forever"}},
		{name: "bad timeout", env: map[string]string{"AI_TIMEOUT": "soon"}},
		{name: "bad silent flag", env: map[string]string{"AI_SILENT_FAILURE": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}
