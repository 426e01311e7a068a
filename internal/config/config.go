// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// League website defaults
// --------------------------------------------------------------------------

const (
	DefaultSiteBaseURL = "https://stats.sharksice.timetoscore.com/"
	DefaultLeagueID    = 1
	DefaultTimezone    = "America/Los_Angeles"
	DefaultMinSeason   = 60
)

// --------------------------------------------------------------------------
// Table names used by store/schema.go
// --------------------------------------------------------------------------

const (
	SeasonsTable   = "seasons"
	DivisionsTable = "divisions"
	TeamsTable     = "teams"
	TeamStatsTable = "team_stats"
	GamesTable     = "games"
)

// --------------------------------------------------------------------------
// Config, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// League website
	SiteBaseURL             string
	SiteLeagueID            int
	SiteTimezone            string
	ScrapeTimeout           time.Duration
	ScrapeRequestsPerMinute int

	// Page cache (fetched HTML)
	PageCacheEnabled bool
	PageCacheTTL     time.Duration
	RedisURL         string

	// Sync
	SyncMinSeason   int
	SyncMaxFailures int
	SyncSchedule    string // cron spec, empty = no periodic sync
	PeriodLength    time.Duration

	// API response cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", "sqlite://hockey_league.db"),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  envDuration("DB_POOL_MAX_LIFE_MINUTES", 30, time.Minute),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", 60, time.Second),

		SiteBaseURL:             envOr("SITE_BASE_URL", DefaultSiteBaseURL),
		SiteLeagueID:            envInt("SITE_LEAGUE_ID", DefaultLeagueID),
		SiteTimezone:            envOr("SITE_TIMEZONE", DefaultTimezone),
		ScrapeTimeout:           envDuration("SCRAPE_TIMEOUT_SECONDS", 30, time.Second),
		ScrapeRequestsPerMinute: envInt("SCRAPE_REQUESTS_PER_MINUTE", 60),

		PageCacheEnabled: envBool("PAGE_CACHE_ENABLED", false),
		PageCacheTTL:     envDuration("PAGE_CACHE_TTL_MINUTES", 24*60, time.Minute),
		RedisURL:         envOr("REDIS_URL", ""),

		SyncMinSeason:   envInt("SYNC_MIN_SEASON", DefaultMinSeason),
		SyncMaxFailures: envInt("SYNC_MAX_SEASON_FAILURES", 4),
		SyncSchedule:    envOr("SYNC_SCHEDULE", ""),
		PeriodLength:    envDuration("PERIOD_MINUTES", 22, time.Minute),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}

	if cfg.SyncMaxFailures < 1 {
		return nil, fmt.Errorf("SYNC_MAX_SEASON_FAILURES must be at least 1, got %d", cfg.SyncMaxFailures)
	}
	if cfg.PeriodLength <= 0 {
		return nil, fmt.Errorf("PERIOD_MINUTES must be positive")
	}
	if !strings.HasSuffix(cfg.SiteBaseURL, "/") {
		cfg.SiteBaseURL += "/"
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location loads the site's time zone, falling back to UTC when the zone
// database does not know it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration reads a count of unit, or a Go duration string such as "90s".
func envDuration(key string, fallback int, unit time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * unit
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * unit
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return time.Duration(fallback) * unit
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
