// Command api is the SIAHL stats API server.
//
// Usage:
//
//	siahl-api
//	API_PORT=8080 SYNC_SCHEDULE="@every 6h" siahl-api

// @title SIAHL Stats API
// @version 1.0.0
// @description Seasons, standings, schedules and box scores scraped from the league website.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name rinkstats
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/rinkstats/siahl/internal/api"
	"github.com/rinkstats/siahl/internal/api/handler"
	"github.com/rinkstats/siahl/internal/cache"
	"github.com/rinkstats/siahl/internal/config"
	"github.com/rinkstats/siahl/internal/db"
	"github.com/rinkstats/siahl/internal/provider/siahl"
	"github.com/rinkstats/siahl/internal/scraper"
	"github.com/rinkstats/siahl/internal/store"
	"github.com/rinkstats/siahl/internal/syncer"

	_ "time/tzdata"

	_ "github.com/rinkstats/siahl/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Connecting to database...")
	d, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer d.Close()

	st := store.New(d, store.WithLocation(cfg.Location()))
	if err := st.Migrate(ctx); err != nil {
		logger.Error("Failed to migrate schema", "error", err)
		os.Exit(1)
	}
	logger.Info("Database ready", "driver", d.Driver)

	// Response cache
	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	pages, closePages, err := openPages(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open page cache", "error", err)
		os.Exit(1)
	}
	defer closePages()

	fetcher, err := scraper.NewClient(scraper.Options{
		BaseURL:           cfg.SiteBaseURL,
		Timeout:           cfg.ScrapeTimeout,
		RequestsPerMinute: cfg.ScrapeRequestsPerMinute,
		Pages:             pages,
		PageTTL:           cfg.PageCacheTTL,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("Failed to create scraper", "error", err)
		os.Exit(1)
	}
	site := siahl.NewClient(fetcher, cfg.SiteLeagueID,
		siahl.WithLocation(cfg.Location()),
		siahl.WithLogger(logger))

	sync := syncer.New(site, st, syncer.Options{
		MinSeason:   cfg.SyncMinSeason,
		MaxFailures: cfg.SyncMaxFailures,
		Logger:      logger,
	})

	if cfg.SyncSchedule != "" {
		cronLog := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
		c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog)))
		_, err := c.AddFunc(cfg.SyncSchedule, func() {
			start := time.Now()
			result := sync.Sync(ctx)
			logger.Info("Scheduled sync finished",
				"duration", time.Since(start).Round(time.Second),
				"summary", result.Summary())
			for _, e := range result.Errors {
				logger.Error("sync error", "error", e)
			}
		})
		if err != nil {
			logger.Error("Invalid SYNC_SCHEDULE", "schedule", cfg.SyncSchedule, "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		logger.Info("Sync scheduler started", "schedule", cfg.SyncSchedule)
	}

	router := api.NewRouter(handler.Deps{
		Store:  st,
		Site:   site,
		Stats:  sync,
		DB:     d,
		Cache:  appCache,
		Logger: logger,
	}, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.ScrapeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting SIAHL Stats API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// openPages picks the fetched-page store: Redis when REDIS_URL is set,
// the in-process cache when PAGE_CACHE_ENABLED, otherwise none.
func openPages(ctx context.Context, cfg *config.Config) (cache.PageStore, func(), error) {
	if cfg.RedisURL != "" {
		r, err := cache.OpenRedisPages(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	}
	if cfg.PageCacheEnabled {
		c := cache.New(true)
		return c, c.Close, nil
	}
	return nil, func() {}, nil
}
