package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rinkstats/siahl/internal/config"
	"github.com/rinkstats/siahl/internal/provider"
)

// ListSeasons returns every stored season except the UNKNOWN sentinel,
// newest first.
func (s *Store) ListSeasons(ctx context.Context) ([]provider.Season, error) {
	rows, err := s.query(ctx, `SELECT id, name FROM `+config.SeasonsTable+` WHERE id > 0 ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	seasons := []provider.Season{}
	for rows.Next() {
		var season provider.Season
		if err := rows.Scan(&season.ID, &season.Name); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}

// GetSeason returns one season.
func (s *Store) GetSeason(ctx context.Context, id int) (provider.Season, error) {
	season := provider.Season{ID: id}
	err := s.queryRow(ctx, `SELECT name FROM `+config.SeasonsTable+` WHERE id = ?`, id).Scan(&season.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return provider.Season{}, ErrNotFound
	}
	if err != nil {
		return provider.Season{}, fmt.Errorf("get season %d: %w", id, err)
	}
	return season, nil
}

// GetCurrentSeason returns the season with the highest real identifier.
func (s *Store) GetCurrentSeason(ctx context.Context) (provider.Season, error) {
	var season provider.Season
	err := s.queryRow(ctx, `
		SELECT id, name FROM `+config.SeasonsTable+`
		WHERE id > 0 ORDER BY id DESC LIMIT 1`).Scan(&season.ID, &season.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return provider.Season{}, ErrNotFound
	}
	if err != nil {
		return provider.Season{}, fmt.Errorf("get current season: %w", err)
	}
	return season, nil
}

// ListDivisions returns a season's divisions with their teams, both sorted
// by name.
func (s *Store) ListDivisions(ctx context.Context, seasonID int) ([]provider.Division, error) {
	rows, err := s.query(ctx, `
		SELECT d.id, d.conference_id, d.name, t.id, t.name
		FROM `+config.TeamStatsTable+` ts
		JOIN `+config.DivisionsTable+` d ON d.id = ts.division_id AND d.conference_id = ts.conference_id
		JOIN `+config.TeamsTable+` t ON t.id = ts.team_id
		WHERE ts.season_id = ?`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list divisions for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	type key struct{ id, conf int }
	byKey := map[key]*provider.Division{}
	var order []key
	for rows.Next() {
		var (
			k    key
			name string
			team provider.Team
		)
		if err := rows.Scan(&k.id, &k.conf, &name, &team.ID, &team.Name); err != nil {
			return nil, fmt.Errorf("scan division: %w", err)
		}
		div, ok := byKey[k]
		if !ok {
			div = &provider.Division{ID: k.id, ConferenceID: k.conf, SeasonID: seasonID, Name: name}
			byKey[k] = div
			order = append(order, k)
		}
		div.Teams = append(div.Teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list divisions for season %d: %w", seasonID, err)
	}

	divisions := make([]provider.Division, 0, len(order))
	for _, k := range order {
		div := byKey[k]
		sort.SliceStable(div.Teams, func(i, j int) bool { return div.Teams[i].Name < div.Teams[j].Name })
		divisions = append(divisions, *div)
	}
	sort.SliceStable(divisions, func(i, j int) bool {
		if divisions[i].Name != divisions[j].Name {
			return divisions[i].Name < divisions[j].Name
		}
		return divisions[i].ConferenceID < divisions[j].ConferenceID
	})
	return divisions, nil
}

// TeamRow is a team's stats row in one season and division.
type TeamRow struct {
	TeamID       int                    `json:"team_id"`
	Name         string                 `json:"name"`
	SeasonID     int                    `json:"season_id"`
	Season       string                 `json:"season"`
	DivisionID   int                    `json:"division_id"`
	ConferenceID int                    `json:"conference_id"`
	Level        string                 `json:"level"`
	Stats        map[string]interface{} `json:"stats"`
}

// TeamFilter narrows ListTeams. Zero values match everything.
type TeamFilter struct {
	SeasonID int
	Name     string
	TeamIDs  []int
}

// ListTeams returns team stats rows ordered by season then team id.
func (s *Store) ListTeams(ctx context.Context, f TeamFilter) ([]TeamRow, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.SeasonID != 0 {
		where = append(where, "ts.season_id = ?")
		args = append(args, f.SeasonID)
	}
	if f.Name != "" {
		where = append(where, "t.name = ?")
		args = append(args, f.Name)
	}
	if len(f.TeamIDs) > 0 {
		where = append(where, "ts.team_id IN ("+placeholders(len(f.TeamIDs))+")")
		args = append(args, intArgs(f.TeamIDs)...)
	}

	q := `
		SELECT ts.team_id, t.name, ts.season_id, se.name, ts.division_id, ts.conference_id, d.name, ts.stats
		FROM ` + config.TeamStatsTable + ` ts
		JOIN ` + config.TeamsTable + ` t ON t.id = ts.team_id
		JOIN ` + config.SeasonsTable + ` se ON se.id = ts.season_id
		JOIN ` + config.DivisionsTable + ` d ON d.id = ts.division_id AND d.conference_id = ts.conference_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY ts.season_id, ts.team_id, ts.division_id, ts.conference_id"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []TeamRow{}
	for rows.Next() {
		var (
			r     TeamRow
			stats string
		)
		if err := rows.Scan(&r.TeamID, &r.Name, &r.SeasonID, &r.Season, &r.DivisionID, &r.ConferenceID, &r.Level, &stats); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &r.Stats); err != nil {
			return nil, fmt.Errorf("decode team %d stats: %w", r.TeamID, err)
		}
		teams = append(teams, r)
	}
	return teams, rows.Err()
}

// GameFilter narrows ListGames. Zero values match everything.
type GameFilter struct {
	SeasonID  int
	MinSeason int
	// TeamIDs matches games where either side is one of the teams.
	TeamIDs []int
	// MissingStats keeps only games without a stored box score.
	MissingStats bool
	// StartedBefore keeps only games scheduled at or before the instant.
	StartedBefore time.Time
}

const gameColumns = `id, season_id, division_id, conference_id, home_id, away_id, rink, start_ms, info, stats`

// ListGames returns games ordered by start time.
func (s *Store) ListGames(ctx context.Context, f GameFilter) ([]provider.Game, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.SeasonID != 0 {
		where = append(where, "season_id = ?")
		args = append(args, f.SeasonID)
	}
	if f.MinSeason != 0 {
		where = append(where, "season_id >= ?")
		args = append(args, f.MinSeason)
	}
	if len(f.TeamIDs) > 0 {
		in := placeholders(len(f.TeamIDs))
		where = append(where, "(home_id IN ("+in+") OR away_id IN ("+in+"))")
		args = append(args, intArgs(f.TeamIDs)...)
		args = append(args, intArgs(f.TeamIDs)...)
	}
	if f.MissingStats {
		where = append(where, "stats IS NULL")
	}
	if !f.StartedBefore.IsZero() {
		where = append(where, "start_ms <= ?")
		args = append(args, f.StartedBefore.UnixMilli())
	}

	q := `SELECT ` + gameColumns + ` FROM ` + config.GamesTable
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY start_ms, id"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []provider.Game{}
	for rows.Next() {
		g, err := s.scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetGame returns one game with its stats when stored.
func (s *Store) GetGame(ctx context.Context, id string) (provider.Game, error) {
	id = provider.StripGameID(id)
	row := s.queryRow(ctx, `SELECT `+gameColumns+` FROM `+config.GamesTable+` WHERE id = ?`, id)
	g, err := s.scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return provider.Game{}, ErrNotFound
	}
	return g, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanGame(sc scanner) (provider.Game, error) {
	var (
		g       provider.Game
		startMS int64
		info    string
		stats   sql.NullString
	)
	err := sc.Scan(&g.ID, &g.SeasonID, &g.DivisionID, &g.ConferenceID, &g.HomeID, &g.AwayID,
		&g.Rink, &startMS, &info, &stats)
	if errors.Is(err, sql.ErrNoRows) {
		return provider.Game{}, err
	}
	if err != nil {
		return provider.Game{}, fmt.Errorf("scan game: %w", err)
	}
	g.Start = time.UnixMilli(startMS).In(s.loc)
	if err := json.Unmarshal([]byte(info), &g.Info); err != nil {
		return provider.Game{}, fmt.Errorf("decode game %s info: %w", g.ID, err)
	}
	if stats.Valid {
		g.Stats = &provider.GameStats{}
		if err := json.Unmarshal([]byte(stats.String), g.Stats); err != nil {
			return provider.Game{}, fmt.Errorf("decode game %s stats: %w", g.ID, err)
		}
	}
	return g, nil
}
