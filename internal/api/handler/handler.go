// Package handler provides HTTP handlers for all API endpoints.
// Reads come from the store; division player stats and on-demand box
// scores are scraped live.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rinkstats/siahl/internal/api/respond"
	"github.com/rinkstats/siahl/internal/cache"
	"github.com/rinkstats/siahl/internal/config"
	"github.com/rinkstats/siahl/internal/livebarn"
	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/scraper"
	"github.com/rinkstats/siahl/internal/store"
)

// Store is the read side of the relational store.
type Store interface {
	ListSeasons(ctx context.Context) ([]provider.Season, error)
	GetSeason(ctx context.Context, id int) (provider.Season, error)
	GetCurrentSeason(ctx context.Context) (provider.Season, error)
	ListDivisions(ctx context.Context, seasonID int) ([]provider.Division, error)
	ListTeams(ctx context.Context, f store.TeamFilter) ([]store.TeamRow, error)
	ListGames(ctx context.Context, f store.GameFilter) ([]provider.Game, error)
	GetGame(ctx context.Context, id string) (provider.Game, error)
}

// Site scrapes pages that are not stored.
type Site interface {
	DivisionPlayers(ctx context.Context, seasonID, divisionID, conferenceID int) (*provider.DivisionPlayers, error)
}

// StatsRefresher scrapes and stores one game's box score on demand.
type StatsRefresher interface {
	RefreshGameStats(ctx context.Context, gameID string) (*provider.GameStats, bool, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the handler dependencies. Site and Stats may be nil, which
// disables live scraping.
type Deps struct {
	Store  Store
	Site   Site
	Stats  StatsRefresher
	DB     Pinger
	Cache  *cache.Cache
	Config *config.Config
	Logger *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    Store
	site     Site
	stats    StatsRefresher
	db       Pinger
	cache    *cache.Cache
	cfg      *config.Config
	logger   *slog.Logger
	livebarn livebarn.Builder
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := d.Cache
	if c == nil {
		c = cache.New(false)
	}
	return &Handler{
		store:  d.Store,
		site:   d.Site,
		stats:  d.Stats,
		db:     d.DB,
		cache:  c,
		cfg:    d.Config,
		logger: logger,
		livebarn: livebarn.Builder{
			PeriodLength: d.Config.PeriodLength,
			Location:     d.Config.Location(),
		},
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the resource list.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.Object(w, http.StatusOK, map[string]interface{}{
		"name":    "SIAHL Stats API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"resources": []string{
			"/api/v1/seasons",
			"/api/v1/seasons/current",
			"/api/v1/seasons/{seasonID}/divisions",
			"/api/v1/seasons/{seasonID}/divisions/{divisionID}/conference/{conferenceID}",
			"/api/v1/seasons/{seasonID}/teams",
			"/api/v1/seasons/{seasonID}/teams/{teamID}",
			"/api/v1/games",
			"/api/v1/games/{gameID}",
			"/api/v1/games/{gameID}/livebarn",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.Object(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies database connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.db == nil || h.db.HealthCheck(r.Context()) != nil {
		respond.Object(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.Object(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns response cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.Object(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// transient marks a payload that is written but not stored, because a
// later request may see newer data for it.
type transient struct{ v interface{} }

// serveCached answers from the response cache when possible, otherwise
// builds the payload, caches it for ttl and writes it. A request with
// reload=true skips the cache read.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, ttl time.Duration, build func() (interface{}, error)) {
	key := r.URL.Path + "?" + r.URL.RawQuery
	if !isReload(r) {
		if data, etag, ok := h.cache.Get(key); ok {
			if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
				respond.NotModified(w, etag)
				return
			}
			respond.JSON(w, data, respond.Meta{ETag: etag, TTL: ttl, Hit: true})
			return
		}
	}

	v, err := build()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	keep := true
	if t, ok := v.(transient); ok {
		v, keep, ttl = t.v, false, 0
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	etag := cache.ComputeETag(data)
	if keep {
		etag = h.cache.Set(key, data, ttl)
	}
	respond.JSON(w, data, respond.Meta{ETag: etag, TTL: ttl})
}

// scrapeContext carries reload=true through to the page cache.
func scrapeContext(r *http.Request) context.Context {
	if isReload(r) {
		return scraper.WithReload(r.Context())
	}
	return r.Context()
}

func isReload(r *http.Request) bool {
	switch r.URL.Query().Get("reload") {
	case "1", "true", "yes":
		return true
	}
	return false
}
