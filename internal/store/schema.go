package store

import (
	"context"
	"fmt"

	"github.com/rinkstats/siahl/internal/config"
	"github.com/rinkstats/siahl/internal/provider"
)

// schema is portable between SQLite and Postgres. Timestamps are unix
// milliseconds; info and stats payloads are JSON text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + config.SeasonsTable + ` (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.DivisionsTable + ` (
		id            INTEGER NOT NULL,
		conference_id INTEGER NOT NULL,
		name          TEXT NOT NULL,
		PRIMARY KEY (id, conference_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.TeamsTable + ` (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS teams_name_idx ON ` + config.TeamsTable + ` (name)`,
	`CREATE TABLE IF NOT EXISTS ` + config.TeamStatsTable + ` (
		season_id     INTEGER NOT NULL,
		division_id   INTEGER NOT NULL,
		conference_id INTEGER NOT NULL,
		team_id       INTEGER NOT NULL,
		stats         TEXT NOT NULL,
		PRIMARY KEY (season_id, division_id, conference_id, team_id)
	)`,
	`CREATE INDEX IF NOT EXISTS team_stats_team_idx ON ` + config.TeamStatsTable + ` (team_id)`,
	`CREATE TABLE IF NOT EXISTS ` + config.GamesTable + ` (
		id            TEXT PRIMARY KEY,
		season_id     INTEGER NOT NULL,
		division_id   INTEGER NOT NULL,
		conference_id INTEGER NOT NULL,
		home_id       INTEGER NOT NULL,
		away_id       INTEGER NOT NULL,
		rink          TEXT NOT NULL,
		start_ms      BIGINT NOT NULL,
		info          TEXT NOT NULL,
		stats         TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS games_season_idx ON ` + config.GamesTable + ` (season_id)`,
	`CREATE INDEX IF NOT EXISTS games_home_idx ON ` + config.GamesTable + ` (home_id)`,
	`CREATE INDEX IF NOT EXISTS games_away_idx ON ` + config.GamesTable + ` (away_id)`,
}

// Migrate creates missing tables and the UNKNOWN sentinel rows that
// unresolved games point at. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	unknown := provider.UnknownID
	if _, err := s.UpsertSeason(ctx, provider.Season{ID: unknown, Name: provider.UnknownName}); err != nil {
		return fmt.Errorf("seed unknown season: %w", err)
	}
	if _, err := s.UpsertDivision(ctx, provider.Division{ID: unknown, ConferenceID: unknown, Name: provider.UnknownName}); err != nil {
		return fmt.Errorf("seed unknown division: %w", err)
	}
	team := provider.Team{ID: unknown, Name: provider.UnknownName, Stats: map[string]interface{}{}}
	if _, err := s.UpsertTeam(ctx, unknown, unknown, unknown, team); err != nil {
		return fmt.Errorf("seed unknown team: %w", err)
	}
	return nil
}
