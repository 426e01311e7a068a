package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinkstats/siahl/internal/db"
	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/scraper"
	"github.com/rinkstats/siahl/internal/store"
)

type fakeSource struct {
	divisions     map[int][]provider.Division
	schedules     map[int][]provider.ScheduledGame
	stats         map[string]*provider.GameStats
	divisionCalls []int
	statsCalls    int
}

func (f *fakeSource) Seasons(context.Context) (*provider.SeasonList, error) {
	return &provider.SeasonList{Seasons: []provider.Season{{ID: 60, Name: "Fall 2023"}}, CurrentID: 60}, nil
}

func (f *fakeSource) Divisions(_ context.Context, seasonID int) ([]provider.Division, error) {
	f.divisionCalls = append(f.divisionCalls, seasonID)
	return f.divisions[seasonID], nil
}

func (f *fakeSource) TeamSchedule(_ context.Context, _, teamID int) ([]provider.ScheduledGame, error) {
	games, ok := f.schedules[teamID]
	if !ok {
		return nil, &scraper.FetchError{URL: "display-schedule", StatusCode: 500}
	}
	return games, nil
}

func (f *fakeSource) GameStats(_ context.Context, gameID string) (*provider.GameStats, error) {
	f.statsCalls++
	if s, ok := f.stats[gameID]; ok {
		return s, nil
	}
	return nil, &scraper.MissingStatsError{GameID: gameID, Field: "scorekeeper"}
}

var (
	gameStart = time.Date(2023, 9, 10, 20, 0, 0, 0, time.UTC)
	now       = time.Date(2023, 9, 20, 12, 0, 0, 0, time.UTC)
)

func newFixture() *fakeSource {
	shared := provider.ScheduledGame{ID: "100*", Start: gameStart, Rink: "North", Home: "Sharks A", Away: "Ducks B", HomeGoals: "4", AwayGoals: "2"}
	return &fakeSource{
		divisions: map[int][]provider.Division{
			60: {{
				ID: 7, ConferenceID: 1, SeasonID: 60, Name: "Div 7A",
				Teams: []provider.Team{
					{ID: 1001, Name: "Sharks A", Stats: map[string]interface{}{"wins": 6, "place": "1st"}},
					{ID: 1002, Name: "Ducks B", Stats: map[string]interface{}{"wins": 2, "place": "2nd"}},
				},
			}},
		},
		schedules: map[int][]provider.ScheduledGame{
			1001: {
				shared,
				{ID: "101", Start: gameStart.Add(7 * 24 * time.Hour), Rink: "East", Home: "Mystery", Away: "Sharks A"},
			},
			1002: {shared},
		},
		stats: map[string]*provider.GameStats{
			"100": {GameID: "100", Scorekeeper: "Pat", Layout: "nested"},
		},
	}
}

func newTestSyncer(t *testing.T, src Source) (*Syncer, *store.Store) {
	t.Helper()
	d, err := db.OpenURL(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "league.db"), db.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	st := store.New(d)
	require.NoError(t, st.Migrate(context.Background()))

	s := New(src, st, Options{
		MinSeason: 60,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       func() time.Time { return now },
	})
	return s, st
}

func TestResolveTeam(t *testing.T) {
	rows := []store.TeamRow{
		{TeamID: 64001, Name: "Sharks A", SeasonID: 64},
		{TeamID: 60001, Name: "Sharks A", SeasonID: 60},
		{TeamID: 61005, Name: "Ducks B", SeasonID: 61},
		{TeamID: 61005, Name: "Ducks B", SeasonID: 62},
		{TeamID: 70001, Name: "Kings", SeasonID: 70},
		{TeamID: 58001, Name: "Kings", SeasonID: 58},
	}

	tests := []struct {
		name   string
		team   string
		season int
		want   int
	}{
		{"equidistant seasons pick the lower season", "Sharks A", 62, 60001},
		{"nearest season wins", "Sharks A", 63, 64001},
		{"single identifier across seasons", "Ducks B", 80, 61005},
		{"nearest even from below", "Kings", 66, 70001},
		{"empty name is unknown", "", 62, provider.UnknownID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTeam(rows, tt.team, tt.season)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	id, err := ResolveTeam(rows, "Yetis", 62)
	assert.Equal(t, provider.UnknownID, id)
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "Yetis", resErr.Name)
}

func TestResolveTeamDeterministic(t *testing.T) {
	a := []store.TeamRow{{TeamID: 2, Name: "X", SeasonID: 60}, {TeamID: 1, Name: "X", SeasonID: 60}}
	b := []store.TeamRow{a[1], a[0]}
	idA, _ := ResolveTeam(a, "X", 60)
	idB, _ := ResolveTeam(b, "X", 60)
	assert.Equal(t, 1, idA)
	assert.Equal(t, idA, idB)
}

func TestSyncSeason(t *testing.T) {
	src := newFixture()
	s, st := newTestSyncer(t, src)
	ctx := context.Background()

	state, result, err := s.SyncSeason(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, StatsSynced, state)
	assert.Equal(t, 1, result.DivisionsUpserted)
	assert.Equal(t, 2, result.TeamsUpserted)
	assert.Equal(t, 2, result.GamesUpserted)
	assert.Equal(t, 1, result.UnresolvedTeams)
	assert.Equal(t, 1, result.StatsWritten)
	assert.Equal(t, 1, result.StatsPending)
	assert.Empty(t, result.Errors)

	season, err := st.GetSeason(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, "Fall 2023", season.Name)

	shared, err := st.GetGame(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 1001, shared.HomeID)
	assert.Equal(t, 1002, shared.AwayID)
	assert.Equal(t, 7, shared.DivisionID)
	assert.Equal(t, "4", shared.Info.HomeGoals)
	require.NotNil(t, shared.Stats)
	assert.Equal(t, "Pat", shared.Stats.Scorekeeper)

	unresolved, err := st.GetGame(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, provider.UnknownID, unresolved.HomeID)
	assert.Equal(t, 1001, unresolved.AwayID)
	assert.Nil(t, unresolved.Stats)
}

func TestSyncSeasonIsIdempotent(t *testing.T) {
	src := newFixture()
	s, st := newTestSyncer(t, src)
	ctx := context.Background()

	_, _, err := s.SyncSeason(ctx, 60)
	require.NoError(t, err)

	src.stats["100"] = &provider.GameStats{GameID: "100", Scorekeeper: "Someone Else"}
	_, result, err := s.SyncSeason(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, 0, result.GamesUpserted)
	assert.Equal(t, 2, result.GamesUnchanged)
	assert.Equal(t, 0, result.StatsWritten)

	g, err := st.GetGame(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "Pat", g.Stats.Scorekeeper)
}

func TestSyncSeasonLogsRename(t *testing.T) {
	src := newFixture()
	s, _ := newTestSyncer(t, src)
	ctx := context.Background()

	_, _, err := s.SyncSeason(ctx, 60)
	require.NoError(t, err)

	src.divisions[60][0].Teams[1].Name = "Ducks B2"
	_, result, err := s.SyncSeason(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TeamsRenamed)
}

func TestSyncSeasonSkipsFailedSchedules(t *testing.T) {
	src := newFixture()
	delete(src.schedules, 1002)
	s, _ := newTestSyncer(t, src)

	state, result, err := s.SyncSeason(context.Background(), 60)
	require.NoError(t, err)
	assert.Equal(t, StatsSynced, state)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.GamesUpserted)
}

func TestSyncSeasonWithoutDivisions(t *testing.T) {
	s, _ := newTestSyncer(t, newFixture())
	state, _, err := s.SyncSeason(context.Background(), 61)
	assert.Equal(t, NotStarted, state)
	assert.ErrorIs(t, err, ErrNoDivisions)
}

func TestSyncStopsAfterConsecutiveFailures(t *testing.T) {
	src := newFixture()
	s, _ := newTestSyncer(t, src)

	result := s.Sync(context.Background())
	assert.Equal(t, []int{60, 61, 62, 63, 64}, src.divisionCalls)
	assert.Equal(t, 1, result.SeasonsSynced)
	assert.Equal(t, 4, result.SeasonsFailed)
}

func TestSyncStatsRespectsLookback(t *testing.T) {
	src := newFixture()
	src.schedules[1001][1].Start = now.Add(-10 * time.Minute)
	s, _ := newTestSyncer(t, src)

	_, result, err := s.SyncSeason(context.Background(), 60)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StatsWritten)
	assert.Equal(t, 0, result.StatsPending)
	assert.Equal(t, 1, src.statsCalls)
}

func TestRefreshGameStats(t *testing.T) {
	src := newFixture()
	s, st := newTestSyncer(t, src)
	ctx := context.Background()
	_, err := st.UpsertGame(ctx, provider.Game{ID: "100", SeasonID: 60, Start: gameStart})
	require.NoError(t, err)

	stats, written, err := s.RefreshGameStats(ctx, "100^")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "Pat", stats.Scorekeeper)

	_, written, err = s.RefreshGameStats(ctx, "100")
	require.NoError(t, err)
	assert.False(t, written)

	_, _, err = s.RefreshGameStats(ctx, "555")
	assert.True(t, scraper.IsMissingStats(err))
}

// blockingSource holds the season list request open until released.
type blockingSource struct {
	*fakeSource
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSource) Seasons(ctx context.Context) (*provider.SeasonList, error) {
	close(b.entered)
	<-b.release
	return b.fakeSource.Seasons(ctx)
}

func TestSyncRejectsOverlappingRun(t *testing.T) {
	src := &blockingSource{fakeSource: newFixture(), entered: make(chan struct{}), release: make(chan struct{})}
	s, _ := newTestSyncer(t, src)
	s.opts.MaxFailures = 1

	done := make(chan Result)
	go func() { done <- s.Sync(context.Background()) }()
	<-src.entered

	second := s.Sync(context.Background())
	require.Len(t, second.Errors, 1)
	assert.Contains(t, second.Errors[0], ErrSyncRunning.Error())
	assert.Zero(t, second.SeasonsSynced)

	close(src.release)
	first := <-done
	assert.Equal(t, 1, first.SeasonsSynced)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "stats_synced", StatsSynced.String())
}
