// Package syncer pulls league data through the site extractors and upserts
// it into the store, one season at a time.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/store"
)

// Defaults for Options.
const (
	DefaultMaxFailures   = 4
	DefaultStatsLookback = time.Hour
)

// ErrNoDivisions means a season page listed no divisions, which is how an
// unpublished season looks.
var ErrNoDivisions = errors.New("no divisions found")

// ErrSyncRunning is recorded when Sync is called while another full sync
// is still in progress.
var ErrSyncRunning = errors.New("sync already running")

// Source is the league website as seen by the syncer.
type Source interface {
	Seasons(ctx context.Context) (*provider.SeasonList, error)
	Divisions(ctx context.Context, seasonID int) ([]provider.Division, error)
	TeamSchedule(ctx context.Context, seasonID, teamID int) ([]provider.ScheduledGame, error)
	GameStats(ctx context.Context, gameID string) (*provider.GameStats, error)
}

// Store is the persistence the syncer writes through.
type Store interface {
	UpsertSeason(ctx context.Context, season provider.Season) (store.Change, error)
	UpsertDivision(ctx context.Context, div provider.Division) (store.Change, error)
	UpsertTeam(ctx context.Context, seasonID, divisionID, conferenceID int, team provider.Team) (store.Change, error)
	UpsertGame(ctx context.Context, game provider.Game) (store.Change, error)
	SetGameStats(ctx context.Context, gameID string, stats *provider.GameStats) (bool, error)
	ListTeams(ctx context.Context, f store.TeamFilter) ([]store.TeamRow, error)
	ListGames(ctx context.Context, f store.GameFilter) ([]provider.Game, error)
}

// State is how far one season's sync progressed.
type State int

const (
	NotStarted State = iota
	TeamsSynced
	GamesSynced
	StatsSynced
)

func (s State) String() string {
	switch s {
	case TeamsSynced:
		return "teams_synced"
	case GamesSynced:
		return "games_synced"
	case StatsSynced:
		return "stats_synced"
	default:
		return "not_started"
	}
}

// Options configures a Syncer.
type Options struct {
	// MinSeason is the first season id a full sync visits.
	MinSeason int
	// MaxFailures is how many consecutive seasons may fail before a full
	// sync stops.
	MaxFailures int
	// StatsLookback keeps stats scrapes to games that started at least
	// this long ago.
	StatsLookback time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// Syncer drives the extractors and writes their output.
type Syncer struct {
	src    Source
	store  Store
	opts   Options
	logger *slog.Logger

	running sync.Mutex

	mu    sync.Mutex
	names map[int]string
}

// New creates a Syncer.
func New(src Source, st Store, opts Options) *Syncer {
	if opts.MaxFailures < 1 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.StatsLookback <= 0 {
		opts.StatsLookback = DefaultStatsLookback
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{src: src, store: st, opts: opts, logger: logger}
}

// Sync visits seasons upward from MinSeason until MaxFailures consecutive
// seasons yield no divisions. Item failures are recorded, never fatal.
func (s *Syncer) Sync(ctx context.Context) Result {
	var result Result
	if !s.running.TryLock() {
		s.logger.Warn("Sync skipped", "error", ErrSyncRunning)
		result.AddErrorf("%v", ErrSyncRunning)
		return result
	}
	defer s.running.Unlock()

	s.loadSeasonNames(ctx)

	failures := 0
	for seasonID := s.opts.MinSeason; failures < s.opts.MaxFailures; seasonID++ {
		if err := ctx.Err(); err != nil {
			result.AddErrorf("sync stopped at season %d: %v", seasonID, err)
			break
		}
		state, seasonResult, err := s.SyncSeason(ctx, seasonID)
		result.Add(seasonResult)
		if state == NotStarted {
			failures++
			result.SeasonsFailed++
			s.logger.Warn("Season not synced", "season_id", seasonID, "consecutive_failures", failures, "error", err)
			continue
		}
		failures = 0
		result.SeasonsSynced++
	}

	s.logger.Info("Sync complete", "summary", result.Summary())
	return result
}

// SyncSeason runs one season through teams, games and stats. It returns
// the last state reached; NotStarted comes with the reason.
func (s *Syncer) SyncSeason(ctx context.Context, seasonID int) (State, Result, error) {
	var result Result

	divisions, err := s.syncTeams(ctx, seasonID, &result)
	if err != nil {
		return NotStarted, result, err
	}

	s.syncGames(ctx, seasonID, divisions, &result)
	if err := ctx.Err(); err != nil {
		return GamesSynced, result, err
	}

	s.syncStats(ctx, store.GameFilter{SeasonID: seasonID}, &result)
	s.logger.Info("Season synced", "season_id", seasonID, "summary", result.Summary())
	return StatsSynced, result, nil
}

func (s *Syncer) syncTeams(ctx context.Context, seasonID int, result *Result) ([]provider.Division, error) {
	s.logger.Info("Scraping divisions", "season_id", seasonID)
	divisions, err := s.src.Divisions(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("fetch season %d divisions: %w", seasonID, err)
	}
	if len(divisions) == 0 {
		return nil, fmt.Errorf("season %d: %w", seasonID, ErrNoDivisions)
	}

	season := provider.Season{ID: seasonID, Name: s.seasonName(ctx, seasonID)}
	if _, err := s.store.UpsertSeason(ctx, season); err != nil {
		return nil, err
	}

	for _, div := range divisions {
		change, err := s.store.UpsertDivision(ctx, div)
		if err != nil {
			result.AddErrorf("%v", err)
			continue
		}
		result.DivisionsUpserted++
		if change.Renamed() {
			s.logger.Warn("Division renamed", "division_id", div.ID, "conference_id", div.ConferenceID,
				"old_name", change.OldName, "new_name", div.Name)
		}

		for _, team := range div.Teams {
			change, err := s.store.UpsertTeam(ctx, seasonID, div.ID, div.ConferenceID, team)
			if err != nil {
				result.AddErrorf("%v", err)
				continue
			}
			result.TeamsUpserted++
			if change.Renamed() {
				result.TeamsRenamed++
				s.logger.Warn("Team renamed", "team_id", team.ID, "old_name", change.OldName, "new_name", team.Name)
			}
		}
	}
	s.logger.Info("Teams synced", "season_id", seasonID, "divisions", len(divisions), "teams", result.TeamsUpserted)
	return divisions, nil
}

func (s *Syncer) syncGames(ctx context.Context, seasonID int, divisions []provider.Division, result *Result) {
	resolver := newTeamResolver(s.store, seasonID)
	seen := map[string]bool{}

	for _, div := range divisions {
		for _, team := range div.Teams {
			if ctx.Err() != nil {
				return
			}
			schedule, err := s.src.TeamSchedule(ctx, seasonID, team.ID)
			if err != nil {
				result.AddErrorf("team %d schedule: %v", team.ID, err)
				continue
			}
			for _, sg := range schedule {
				id := provider.StripGameID(sg.ID)
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true

				game := provider.Game{
					ID:           id,
					SeasonID:     seasonID,
					DivisionID:   div.ID,
					ConferenceID: div.ConferenceID,
					Rink:         sg.Rink,
					Start:        sg.Start,
					Info:         sg.Info(),
				}
				game.HomeID = s.resolveSide(ctx, resolver, id, sg.Home, result)
				game.AwayID = s.resolveSide(ctx, resolver, id, sg.Away, result)

				change, err := s.store.UpsertGame(ctx, game)
				if err != nil {
					result.AddErrorf("%v", err)
					continue
				}
				if change.Kind == store.Unchanged {
					result.GamesUnchanged++
				} else {
					result.GamesUpserted++
				}
			}
		}
	}
	s.logger.Info("Games synced", "season_id", seasonID, "games", len(seen))
}

func (s *Syncer) resolveSide(ctx context.Context, r *teamResolver, gameID, name string, result *Result) int {
	id, err := r.resolve(ctx, name)
	if err == nil {
		return id
	}
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		result.UnresolvedTeams++
		s.logger.Warn("Unresolved team", "game_id", gameID, "team", name, "season_id", r.seasonID)
	} else {
		result.AddErrorf("resolve team %q for game %s: %v", name, gameID, err)
	}
	return provider.UnknownID
}

// seasonName looks a season up in the site's season list, falling back to
// a synthetic name when the list is unavailable.
func (s *Syncer) seasonName(ctx context.Context, seasonID int) string {
	s.mu.Lock()
	loaded := s.names != nil
	s.mu.Unlock()
	if !loaded {
		s.loadSeasonNames(ctx)
	}
	s.mu.Lock()
	name, ok := s.names[seasonID]
	s.mu.Unlock()
	if ok {
		return name
	}
	return fmt.Sprintf("Season %d", seasonID)
}

func (s *Syncer) loadSeasonNames(ctx context.Context) {
	names := map[int]string{}
	list, err := s.src.Seasons(ctx)
	if err != nil {
		s.logger.Warn("Season list unavailable", "error", err)
	} else {
		for _, season := range list.Seasons {
			names[season.ID] = season.Name
		}
	}
	s.mu.Lock()
	s.names = names
	s.mu.Unlock()
}
