package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rinkstats/siahl/internal/config"
	"github.com/rinkstats/siahl/internal/provider"
)

// UpsertSeason writes a season. An unchanged name is a no-op.
func (s *Store) UpsertSeason(ctx context.Context, season provider.Season) (Change, error) {
	var change Change
	err := s.withTx(ctx, func(t tx) error {
		var err error
		change, err = upsertName(ctx, t, config.SeasonsTable,
			"id = ?", []interface{}{season.ID},
			"id, name", []interface{}{season.ID, season.Name},
			season.Name)
		return err
	})
	if err != nil {
		return Change{}, fmt.Errorf("upsert season %d: %w", season.ID, err)
	}
	return change, nil
}

// UpsertDivision writes a division keyed by (ID, ConferenceID).
func (s *Store) UpsertDivision(ctx context.Context, div provider.Division) (Change, error) {
	var change Change
	err := s.withTx(ctx, func(t tx) error {
		var err error
		change, err = upsertName(ctx, t, config.DivisionsTable,
			"id = ? AND conference_id = ?", []interface{}{div.ID, div.ConferenceID},
			"id, conference_id, name", []interface{}{div.ID, div.ConferenceID, div.Name},
			div.Name)
		return err
	})
	if err != nil {
		return Change{}, fmt.Errorf("upsert division (%d, %d): %w", div.ID, div.ConferenceID, err)
	}
	return change, nil
}

// UpsertTeam writes a team and its stats row for one season/division triple.
// The returned change is Unchanged only when both the name and the stats
// payload are already stored as given.
func (s *Store) UpsertTeam(ctx context.Context, seasonID, divisionID, conferenceID int, team provider.Team) (Change, error) {
	stats, err := json.Marshal(nonNilMap(team.Stats))
	if err != nil {
		return Change{}, fmt.Errorf("encode team %d stats: %w", team.ID, err)
	}

	var change Change
	err = s.withTx(ctx, func(t tx) error {
		var err error
		change, err = upsertName(ctx, t, config.TeamsTable,
			"id = ?", []interface{}{team.ID},
			"id, name", []interface{}{team.ID, team.Name},
			team.Name)
		if err != nil {
			return err
		}

		var stored string
		err = t.queryRow(ctx, `
			SELECT stats FROM `+config.TeamStatsTable+`
			WHERE season_id = ? AND division_id = ? AND conference_id = ? AND team_id = ?`,
			seasonID, divisionID, conferenceID, team.ID,
		).Scan(&stored)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = t.exec(ctx, `
				INSERT INTO `+config.TeamStatsTable+` (season_id, division_id, conference_id, team_id, stats)
				VALUES (?, ?, ?, ?, ?)`,
				seasonID, divisionID, conferenceID, team.ID, string(stats))
			if err != nil {
				return fmt.Errorf("insert stats: %w", err)
			}
			if change.Kind == Unchanged {
				change.Kind = Updated
			}
		case err != nil:
			return fmt.Errorf("read stats: %w", err)
		case stored != string(stats):
			_, err = t.exec(ctx, `
				UPDATE `+config.TeamStatsTable+` SET stats = ?
				WHERE season_id = ? AND division_id = ? AND conference_id = ? AND team_id = ?`,
				string(stats), seasonID, divisionID, conferenceID, team.ID)
			if err != nil {
				return fmt.Errorf("update stats: %w", err)
			}
			if change.Kind == Unchanged {
				change.Kind = Updated
			}
		}
		return nil
	})
	if err != nil {
		return Change{}, fmt.Errorf("upsert team %d: %w", team.ID, err)
	}
	return change, nil
}

// upsertName inserts a keyed row or renames it when the stored name differs.
func upsertName(ctx context.Context, t tx, table, where string, key []interface{}, cols string, values []interface{}, name string) (Change, error) {
	var stored string
	err := t.queryRow(ctx, `SELECT name FROM `+table+` WHERE `+where, key...).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = t.exec(ctx, `INSERT INTO `+table+` (`+cols+`) VALUES (`+placeholders(len(values))+`)`, values...)
		if err != nil {
			return Change{}, fmt.Errorf("insert: %w", err)
		}
		return Change{Kind: Inserted}, nil
	case err != nil:
		return Change{}, fmt.Errorf("select: %w", err)
	case stored == name:
		return Change{Kind: Unchanged}, nil
	}

	args := append([]interface{}{name}, key...)
	if _, err := t.exec(ctx, `UPDATE `+table+` SET name = ? WHERE `+where, args...); err != nil {
		return Change{}, fmt.Errorf("update: %w", err)
	}
	return Change{Kind: Updated, OldName: stored}, nil
}

type gameRow struct {
	seasonID, divisionID, conferenceID int
	homeID, awayID                     int
	rink                               string
	startMS                            int64
	info                               string
}

// keepKnown returns stored when incoming is the UNKNOWN sentinel.
func keepKnown(incoming, stored int) int {
	if incoming == provider.UnknownID && stored != provider.UnknownID {
		return stored
	}
	return incoming
}

// UpsertGame writes a game keyed by its stripped id. A game seen from both
// teams' schedules collapses to one row; a resolved identifier already
// stored is never replaced by the UNKNOWN sentinel. Stats are left alone.
func (s *Store) UpsertGame(ctx context.Context, game provider.Game) (Change, error) {
	id := provider.StripGameID(game.ID)
	if id == "" {
		return Change{}, fmt.Errorf("upsert game: empty id")
	}
	info, err := json.Marshal(game.Info)
	if err != nil {
		return Change{}, fmt.Errorf("encode game %s info: %w", id, err)
	}
	next := gameRow{
		seasonID:     game.SeasonID,
		divisionID:   game.DivisionID,
		conferenceID: game.ConferenceID,
		homeID:       game.HomeID,
		awayID:       game.AwayID,
		rink:         game.Rink,
		startMS:      game.Start.UnixMilli(),
		info:         string(info),
	}

	var change Change
	err = s.withTx(ctx, func(t tx) error {
		var cur gameRow
		err := t.queryRow(ctx, `
			SELECT season_id, division_id, conference_id, home_id, away_id, rink, start_ms, info
			FROM `+config.GamesTable+` WHERE id = ?`, id,
		).Scan(&cur.seasonID, &cur.divisionID, &cur.conferenceID, &cur.homeID, &cur.awayID,
			&cur.rink, &cur.startMS, &cur.info)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = t.exec(ctx, `
				INSERT INTO `+config.GamesTable+`
					(id, season_id, division_id, conference_id, home_id, away_id, rink, start_ms, info)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, next.seasonID, next.divisionID, next.conferenceID, next.homeID, next.awayID,
				next.rink, next.startMS, next.info)
			if err != nil {
				return fmt.Errorf("insert: %w", err)
			}
			change = Change{Kind: Inserted}
			return nil
		case err != nil:
			return fmt.Errorf("select: %w", err)
		}

		next.seasonID = keepKnown(next.seasonID, cur.seasonID)
		next.divisionID = keepKnown(next.divisionID, cur.divisionID)
		next.conferenceID = keepKnown(next.conferenceID, cur.conferenceID)
		next.homeID = keepKnown(next.homeID, cur.homeID)
		next.awayID = keepKnown(next.awayID, cur.awayID)
		if next == cur {
			change = Change{Kind: Unchanged}
			return nil
		}

		_, err = t.exec(ctx, `
			UPDATE `+config.GamesTable+` SET
				season_id = ?, division_id = ?, conference_id = ?, home_id = ?, away_id = ?,
				rink = ?, start_ms = ?, info = ?
			WHERE id = ?`,
			next.seasonID, next.divisionID, next.conferenceID, next.homeID, next.awayID,
			next.rink, next.startMS, next.info, id)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		change = Change{Kind: Updated}
		return nil
	})
	if err != nil {
		return Change{}, fmt.Errorf("upsert game %s: %w", id, err)
	}
	return change, nil
}

// SetGameStats stores a game's box score once. It reports false without
// writing when stats are already stored, and ErrNotFound when the game
// row does not exist.
func (s *Store) SetGameStats(ctx context.Context, gameID string, stats *provider.GameStats) (bool, error) {
	id := provider.StripGameID(gameID)
	if stats == nil {
		return false, fmt.Errorf("set game %s stats: nil stats", id)
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return false, fmt.Errorf("encode game %s stats: %w", id, err)
	}

	var written bool
	err = s.withTx(ctx, func(t tx) error {
		res, err := t.exec(ctx, `UPDATE `+config.GamesTable+` SET stats = ? WHERE id = ? AND stats IS NULL`,
			string(payload), id)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n > 0 {
			written = true
			return nil
		}

		var exists int
		err = t.queryRow(ctx, `SELECT 1 FROM `+config.GamesTable+` WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("set game %s stats: %w", id, err)
	}
	return written, nil
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
