package syncer

import (
	"context"
	"fmt"

	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/scraper"
	"github.com/rinkstats/siahl/internal/store"
)

// SyncStats scrapes box scores for stored games that have none yet and
// started at least StatsLookback ago. Filter fields other than
// MissingStats and StartedBefore narrow the candidates.
func (s *Syncer) SyncStats(ctx context.Context, f store.GameFilter) Result {
	var result Result
	s.syncStats(ctx, f, &result)
	return result
}

func (s *Syncer) syncStats(ctx context.Context, f store.GameFilter, result *Result) {
	f.MissingStats = true
	f.StartedBefore = s.opts.Now().Add(-s.opts.StatsLookback)

	games, err := s.store.ListGames(ctx, f)
	if err != nil {
		result.AddErrorf("list games missing stats: %v", err)
		return
	}

	for _, g := range games {
		if ctx.Err() != nil {
			return
		}
		written, err := s.fetchStats(ctx, g.ID)
		switch {
		case scraper.IsMissingStats(err):
			result.StatsPending++
			s.logger.Debug("Stats not available yet", "game_id", g.ID)
		case err != nil:
			result.AddErrorf("%v", err)
		case written:
			result.StatsWritten++
		}
	}
	s.logger.Info("Stats synced", "season_id", f.SeasonID, "candidates", len(games),
		"written", result.StatsWritten, "pending", result.StatsPending)
}

func (s *Syncer) fetchStats(ctx context.Context, gameID string) (bool, error) {
	stats, err := s.src.GameStats(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("game %s stats: %w", gameID, err)
	}
	return s.store.SetGameStats(ctx, gameID, stats)
}

// RefreshGameStats scrapes one game's box score now and stores it unless
// stats already exist. The scraped stats are returned either way.
func (s *Syncer) RefreshGameStats(ctx context.Context, gameID string) (*provider.GameStats, bool, error) {
	id := provider.StripGameID(gameID)
	stats, err := s.src.GameStats(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("game %s stats: %w", id, err)
	}
	written, err := s.store.SetGameStats(ctx, id, stats)
	if err != nil {
		return stats, false, err
	}
	return stats, written, nil
}
