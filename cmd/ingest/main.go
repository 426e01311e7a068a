// Command ingest is the SIAHL scrape and sync CLI.
//
// Usage:
//
//	siahl-ingest migrate
//	siahl-ingest sync --min-season 60
//	siahl-ingest season 64
//	siahl-ingest stats --season 64
//	siahl-ingest scrape seasons
//	siahl-ingest scrape schedule 64 1234
//	siahl-ingest scrape game 123456
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rinkstats/siahl/internal/cache"
	"github.com/rinkstats/siahl/internal/config"
	"github.com/rinkstats/siahl/internal/db"
	"github.com/rinkstats/siahl/internal/provider/siahl"
	"github.com/rinkstats/siahl/internal/scraper"
	"github.com/rinkstats/siahl/internal/store"
	"github.com/rinkstats/siahl/internal/syncer"

	_ "time/tzdata"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "siahl-ingest",
		Short: "SIAHL scrape and sync CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(seasonCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(scrapeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// store commands
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and sentinel rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStore(func(ctx context.Context, _ *config.Config, st *store.Store) error {
				logger.Info("Schema migrated")
				return nil
			})
		},
	}
}

func syncCmd() *cobra.Command {
	var minSeason, maxFailures int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync every season from --min-season upward",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(func(ctx context.Context, cfg *config.Config, s *syncer.Syncer) error {
				start := time.Now()
				result := s.Sync(ctx)
				logResult("Sync finished", start, result)
				return nil
			}, func(o *syncer.Options) {
				if cmd.Flags().Changed("min-season") {
					o.MinSeason = minSeason
				}
				if cmd.Flags().Changed("max-failures") {
					o.MaxFailures = maxFailures
				}
			})
		},
	}
	cmd.Flags().IntVar(&minSeason, "min-season", config.DefaultMinSeason, "First season id to visit")
	cmd.Flags().IntVar(&maxFailures, "max-failures", syncer.DefaultMaxFailures, "Consecutive empty seasons before stopping")
	return cmd
}

func seasonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "season <id>",
		Short: "Sync one season: divisions, teams, games and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seasonID, err := intArg("season", args[0])
			if err != nil {
				return err
			}
			return runSync(func(ctx context.Context, cfg *config.Config, s *syncer.Syncer) error {
				start := time.Now()
				state, result, err := s.SyncSeason(ctx, seasonID)
				logResult("Season sync finished", start, result, "season_id", seasonID, "state", state.String())
				return err
			}, nil)
		},
	}
}

func statsCmd() *cobra.Command {
	var seasonID int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Scrape box scores for finished games that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(func(ctx context.Context, cfg *config.Config, s *syncer.Syncer) error {
				start := time.Now()
				result := s.SyncStats(ctx, store.GameFilter{SeasonID: seasonID})
				logResult("Stats sync finished", start, result, "season_id", seasonID)
				return nil
			}, nil)
		},
	}
	cmd.Flags().IntVar(&seasonID, "season", 0, "Limit to one season; 0 = all")
	return cmd
}

// --------------------------------------------------------------------------
// scrape command: fetch and print, nothing stored
// --------------------------------------------------------------------------

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape one page and print it as JSON",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seasons",
		Short: "List seasons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(func(ctx context.Context, c *siahl.Client) (interface{}, error) {
				return c.Seasons(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "divisions <season>",
		Short: "Divisions and team standings of a season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seasonID, err := intArg("season", args[0])
			if err != nil {
				return err
			}
			return runScrape(func(ctx context.Context, c *siahl.Client) (interface{}, error) {
				return c.Divisions(ctx, seasonID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schedule <season> <team>",
		Short: "A team's schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seasonID, err := intArg("season", args[0])
			if err != nil {
				return err
			}
			teamID, err := intArg("team", args[1])
			if err != nil {
				return err
			}
			return runScrape(func(ctx context.Context, c *siahl.Client) (interface{}, error) {
				return c.TeamSchedule(ctx, seasonID, teamID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "game <id>",
		Short: "A game's box score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(func(ctx context.Context, c *siahl.Client) (interface{}, error) {
				return c.GameStats(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "players <season> <division> [conference]",
		Short: "Player stats of a division",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 3)
			names := []string{"season", "division", "conference"}
			for i, a := range args {
				n, err := intArg(names[i], a)
				if err != nil {
					return err
				}
				ids[i] = n
			}
			return runScrape(func(ctx context.Context, c *siahl.Client) (interface{}, error) {
				return c.DivisionPlayers(ctx, ids[0], ids[1], ids[2])
			})
		},
	})

	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runStore handles config loading, DB connection, migration and context
// cancellation.
func runStore(fn func(ctx context.Context, cfg *config.Config, st *store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	d, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer d.Close()

	st := store.New(d, store.WithLocation(cfg.Location()))
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(ctx, cfg, st)
}

// runSync wires a syncer over the store and a live site client.
func runSync(fn func(ctx context.Context, cfg *config.Config, s *syncer.Syncer) error, tune func(*syncer.Options)) error {
	return runStore(func(ctx context.Context, cfg *config.Config, st *store.Store) error {
		site, err := newSite(cfg)
		if err != nil {
			return err
		}
		opts := syncer.Options{
			MinSeason:   cfg.SyncMinSeason,
			MaxFailures: cfg.SyncMaxFailures,
			Logger:      logger,
		}
		if tune != nil {
			tune(&opts)
		}
		return fn(ctx, cfg, syncer.New(site, st, opts))
	})
}

// runScrape fetches without touching the database and prints the result.
func runScrape(fn func(ctx context.Context, c *siahl.Client) (interface{}, error)) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	site, err := newSite(cfg)
	if err != nil {
		return err
	}
	v, err := fn(ctx, site)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSite(cfg *config.Config) (*siahl.Client, error) {
	var pages cache.PageStore
	if cfg.PageCacheEnabled {
		pages = cache.New(true)
	}
	fetcher, err := scraper.NewClient(scraper.Options{
		BaseURL:           cfg.SiteBaseURL,
		Timeout:           cfg.ScrapeTimeout,
		RequestsPerMinute: cfg.ScrapeRequestsPerMinute,
		Pages:             pages,
		PageTTL:           cfg.PageCacheTTL,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create scraper: %w", err)
	}
	return siahl.NewClient(fetcher, cfg.SiteLeagueID,
		siahl.WithLocation(cfg.Location()),
		siahl.WithLogger(logger)), nil
}

func logResult(msg string, start time.Time, result syncer.Result, attrs ...interface{}) {
	attrs = append(attrs,
		"duration", time.Since(start).Round(time.Second),
		"summary", result.Summary())
	logger.Info(msg, attrs...)
	for _, e := range result.Errors {
		logger.Error("sync error", "error", e)
	}
}

func intArg(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", name, raw)
	}
	return n, nil
}
