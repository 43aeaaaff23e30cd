package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultGeminiModel, cfg.GeminiModel)
	assert.Equal(t, DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, DefaultChatTimeout, cfg.ChatTimeout)
	assert.Equal(t, DefaultMatchPolicy, cfg.MatchPolicy)
	assert.Equal(t, DefaultBookDetailBase, cfg.BookDetailBase)
	assert.Equal(t, DefaultMaxSessions, cfg.MaxSessions)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"ENV":             "production",
		"PORT":            "9090",
		"GEMINI_API_KEY":  "  secret  ",
		"CATALOG_API_URL": "https://catalog.example.com/api/",
		"CHAT_TIMEOUT":    "5s",
		"MATCH_POLICY":    "Fuzzy",
		"ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com",
		"DAILY_QUOTA":     "50",
		"MAX_SESSIONS":    "25",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, "https://catalog.example.com/api", cfg.CatalogURL)
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.Equal(t, "fuzzy", cfg.MatchPolicy)
	assert.Equal(t, int64(50), cfg.DailyQuota)
	assert.Equal(t, 25, cfg.MaxSessions)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"CHAT_TIMEOUT": "soon"}},
		{"negative duration", map[string]string{"SESSION_TTL": "-1m"}},
		{"zero session cap", map[string]string{"MAX_SESSIONS": "0"}},
		{"bad rps", map[string]string{"RATE_LIMIT_RPS": "fast"}},
		{"zero quota", map[string]string{"DAILY_QUOTA": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			assert.Error(t, err)
		})
	}
}
