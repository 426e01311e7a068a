package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite://hockey_league.db", cfg.DatabaseURL)
	assert.Equal(t, DefaultSiteBaseURL, cfg.SiteBaseURL)
	assert.Equal(t, DefaultLeagueID, cfg.SiteLeagueID)
	assert.Equal(t, 4, cfg.SyncMaxFailures)
	assert.Equal(t, 22*time.Minute, cfg.PeriodLength)
	assert.False(t, cfg.PageCacheEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/siahl")
	t.Setenv("SITE_BASE_URL", "http://example.test")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.test, ,https://b.test ")
	t.Setenv("PERIOD_MINUTES", "15")
	t.Setenv("PAGE_CACHE_ENABLED", "true")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/siahl", cfg.DatabaseURL)
	assert.Equal(t, "http://example.test/", cfg.SiteBaseURL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 15*time.Minute, cfg.PeriodLength)
	assert.True(t, cfg.PageCacheEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsZeroFailureBudget(t *testing.T) {
	t.Setenv("SYNC_MAX_SEASON_FAILURES", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{SiteTimezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 30 * time.Second},
		{"45", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"soon", 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("SCRAPE_TIMEOUT_SECONDS", tt.raw)
			assert.Equal(t, tt.want, envDuration("SCRAPE_TIMEOUT_SECONDS", 30, time.Second))
		})
	}
}
