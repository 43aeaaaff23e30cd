package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process settings read from the environment.
type Config struct {
	Env  string
	Port string

	GeminiAPIKey string
	GeminiModel  string

	CatalogURL     string
	CatalogTimeout time.Duration
	CatalogRPS     float64

	ChatTimeout time.Duration
	SessionTTL  time.Duration
	MaxSessions int
	MatchPolicy string

	AllowedOrigins []string
	BookDetailBase string
	VocabularyFile string
	LogLevel       string

	RateLimitRPS   float64
	RateLimitBurst int
	DailyQuota     int64
}

const (
	DefaultPort           = "8080"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultCatalogURL     = "http://localhost:3001/api"
	DefaultCatalogTimeout = 10 * time.Second
	DefaultChatTimeout    = 30 * time.Second
	DefaultSessionTTL     = 2 * time.Hour
	DefaultMaxSessions    = 1000
	DefaultMatchPolicy    = "substring"
	DefaultBookDetailBase = "/collections/book"
)

// Load reads .env.local (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Env:            getenv("ENV"),
		Port:           withDefault(getenv("PORT"), DefaultPort),
		GeminiAPIKey:   strings.TrimSpace(getenv("GEMINI_API_KEY")),
		GeminiModel:    withDefault(getenv("GEMINI_MODEL"), DefaultGeminiModel),
		CatalogURL:     strings.TrimRight(withDefault(getenv("CATALOG_API_URL"), DefaultCatalogURL), "/"),
		MatchPolicy:    strings.ToLower(withDefault(getenv("MATCH_POLICY"), DefaultMatchPolicy)),
		BookDetailBase: strings.TrimRight(withDefault(getenv("BOOK_DETAIL_BASE"), DefaultBookDetailBase), "/"),
		VocabularyFile: getenv("ASSISTANT_VOCABULARY"),
		LogLevel:       withDefault(getenv("LOG_LEVEL"), "info"),
	}

	var err error
	if cfg.CatalogTimeout, err = durationEnv(getenv, "CATALOG_TIMEOUT", DefaultCatalogTimeout); err != nil {
		return nil, err
	}
	if cfg.ChatTimeout, err = durationEnv(getenv, "CHAT_TIMEOUT", DefaultChatTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv(getenv, "SESSION_TTL", DefaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.CatalogRPS, err = floatEnv(getenv, "CATALOG_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = floatEnv(getenv, "RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	maxSessions, err := intEnv(getenv, "MAX_SESSIONS", DefaultMaxSessions)
	if err != nil {
		return nil, err
	}
	cfg.MaxSessions = int(maxSessions)
	burst, err := intEnv(getenv, "RATE_LIMIT_BURST", 3)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBurst = int(burst)
	if cfg.DailyQuota, err = intEnv(getenv, "DAILY_QUOTA", 1000); err != nil {
		return nil, err
	}

	if !cfg.IsProduction() {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, "http://localhost:3000", "http://localhost:5173")
	}
	if cloudRunURL := getenv("CLOUD_RUN_URL"); cloudRunURL != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, cloudRunURL)
	}
	if extra := getenv("ALLOWED_ORIGINS"); extra != "" {
		for _, origin := range strings.Split(extra, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func durationEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive duration like 30s", key, raw)
	}
	return d, nil
}

func floatEnv(getenv func(string) string, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive number", key, raw)
	}
	return f, nil
}

func intEnv(getenv func(string) string, key string, def int64) (int64, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive integer", key, raw)
	}
	return n, nil
}
