package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinkstats/siahl/internal/db"
	"github.com/rinkstats/siahl/internal/provider"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenURL(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "league.db"), db.PoolOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	s := New(d)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE a = ? AND b IN (?, ?)"
	assert.Equal(t, q, DialectSQLite.Rebind(q))
	assert.Equal(t, "SELECT a FROM t WHERE a = $1 AND b IN ($2, $3)", DialectPostgres.Rebind(q))
}

func TestMigrateIdempotentWithSentinels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))

	season, err := s.GetSeason(ctx, provider.UnknownID)
	require.NoError(t, err)
	assert.Equal(t, provider.UnknownName, season.Name)

	teams, err := s.ListTeams(ctx, TeamFilter{SeasonID: provider.UnknownID})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, provider.UnknownID, teams[0].TeamID)

	_, err = s.GetCurrentSeason(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertSeasonChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertSeason(ctx, provider.Season{ID: 60, Name: "Fall 2023"})
	require.NoError(t, err)
	assert.Equal(t, Inserted, c.Kind)

	c, err = s.UpsertSeason(ctx, provider.Season{ID: 60, Name: "Fall 2023"})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, c.Kind)
	assert.False(t, c.Renamed())

	c, err = s.UpsertSeason(ctx, provider.Season{ID: 60, Name: "Fall 2023/24"})
	require.NoError(t, err)
	assert.Equal(t, Updated, c.Kind)
	assert.Equal(t, "Fall 2023", c.OldName)

	_, err = s.UpsertSeason(ctx, provider.Season{ID: 61, Name: "Winter 2024"})
	require.NoError(t, err)

	current, err := s.GetCurrentSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, 61, current.ID)

	seasons, err := s.ListSeasons(ctx)
	require.NoError(t, err)
	assert.Equal(t, []provider.Season{{ID: 61, Name: "Winter 2024"}, {ID: 60, Name: "Fall 2023/24"}}, seasons)
}

func TestUpsertTeamStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.UpsertSeason(ctx, provider.Season{ID: 60, Name: "Fall 2023"})
	require.NoError(t, err)
	_, err = s.UpsertDivision(ctx, provider.Division{ID: 7, ConferenceID: 1, Name: "Div 7A"})
	require.NoError(t, err)

	team := provider.Team{ID: 1001, Name: "Sharks A", Stats: map[string]interface{}{"wins": 6, "place": "1st"}}
	c, err := s.UpsertTeam(ctx, 60, 7, 1, team)
	require.NoError(t, err)
	assert.Equal(t, Inserted, c.Kind)

	c, err = s.UpsertTeam(ctx, 60, 7, 1, team)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, c.Kind)

	team.Stats = map[string]interface{}{"wins": 7, "place": "1st"}
	c, err = s.UpsertTeam(ctx, 60, 7, 1, team)
	require.NoError(t, err)
	assert.Equal(t, Updated, c.Kind)
	assert.False(t, c.Renamed())

	rows, err := s.ListTeams(ctx, TeamFilter{SeasonID: 60, TeamIDs: []int{1001}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sharks A", rows[0].Name)
	assert.Equal(t, "Fall 2023", rows[0].Season)
	assert.Equal(t, "Div 7A", rows[0].Level)
	assert.Equal(t, float64(7), rows[0].Stats["wins"])

	divisions, err := s.ListDivisions(ctx, 60)
	require.NoError(t, err)
	require.Len(t, divisions, 1)
	assert.Equal(t, []provider.Team{{ID: 1001, Name: "Sharks A"}}, divisions[0].Teams)
}

func TestListDivisionsSortsTeams(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.UpsertSeason(ctx, provider.Season{ID: 60, Name: "Fall 2023"})
	require.NoError(t, err)
	for _, d := range []provider.Division{{ID: 7, ConferenceID: 1, Name: "Div 7A"}, {ID: 5, ConferenceID: 1, Name: "Div 5"}} {
		_, err := s.UpsertDivision(ctx, d)
		require.NoError(t, err)
	}
	for _, tc := range []struct {
		div  int
		team provider.Team
	}{
		{7, provider.Team{ID: 3, Name: "Yetis"}},
		{7, provider.Team{ID: 4, Name: "Ducks"}},
		{5, provider.Team{ID: 5, Name: "Kings"}},
	} {
		_, err := s.UpsertTeam(ctx, 60, tc.div, 1, tc.team)
		require.NoError(t, err)
	}

	divisions, err := s.ListDivisions(ctx, 60)
	require.NoError(t, err)
	require.Len(t, divisions, 2)
	assert.Equal(t, "Div 5", divisions[0].Name)
	assert.Equal(t, "Div 7A", divisions[1].Name)
	assert.Equal(t, "Ducks", divisions[1].Teams[0].Name)
	assert.Equal(t, "Yetis", divisions[1].Teams[1].Name)
}

func sampleGame() provider.Game {
	return provider.Game{
		ID:           "123456*",
		SeasonID:     60,
		DivisionID:   7,
		ConferenceID: 1,
		HomeID:       1001,
		AwayID:       provider.UnknownID,
		Rink:         "North",
		Start:        time.Date(2023, 9, 10, 20, 0, 0, 0, time.UTC),
		Info:         provider.GameInfo{Home: "Sharks A", Away: "Ducks B", Level: "Div 7A"},
	}
}

func TestUpsertGameCollapsesAndKeepsKnownIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := sampleGame()
	c, err := s.UpsertGame(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, Inserted, c.Kind)

	c, err = s.UpsertGame(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, c.Kind)

	// Same game seen from the away team's schedule.
	other := g
	other.ID = "123456"
	other.HomeID = provider.UnknownID
	other.AwayID = 2002
	c, err = s.UpsertGame(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, Updated, c.Kind)

	stored, err := s.GetGame(ctx, "123456^")
	require.NoError(t, err)
	assert.Equal(t, "123456", stored.ID)
	assert.Equal(t, 1001, stored.HomeID)
	assert.Equal(t, 2002, stored.AwayID)
	assert.True(t, g.Start.Equal(stored.Start))
	assert.Equal(t, "Ducks B", stored.Info.Away)
	assert.Nil(t, stored.Stats)

	games, err := s.ListGames(ctx, GameFilter{})
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestSetGameStatsWriteOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.UpsertGame(ctx, sampleGame())
	require.NoError(t, err)

	first := &provider.GameStats{GameID: "123456", Scorekeeper: "Pat", Layout: "nested"}
	ok, err := s.SetGameStats(ctx, "123456", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetGameStats(ctx, "123456", &provider.GameStats{GameID: "123456", Scorekeeper: "Other"})
	require.NoError(t, err)
	assert.False(t, ok)

	g, err := s.GetGame(ctx, "123456")
	require.NoError(t, err)
	require.NotNil(t, g.Stats)
	assert.Equal(t, "Pat", g.Stats.Scorekeeper)

	// A later schedule upsert leaves stats in place.
	_, err = s.UpsertGame(ctx, sampleGame())
	require.NoError(t, err)
	g, err = s.GetGame(ctx, "123456")
	require.NoError(t, err)
	require.NotNil(t, g.Stats)

	_, err = s.SetGameStats(ctx, "999", first)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetGame(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListGamesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 4, 19, 30, 0, 0, time.UTC)
	games := []provider.Game{
		{ID: "1", SeasonID: 60, HomeID: 10, AwayID: 11, Start: base},
		{ID: "2", SeasonID: 61, HomeID: 12, AwayID: 10, Start: base.Add(48 * time.Hour)},
		{ID: "3", SeasonID: 61, HomeID: 13, AwayID: 14, Start: base.Add(24 * time.Hour)},
	}
	for _, g := range games {
		_, err := s.UpsertGame(ctx, g)
		require.NoError(t, err)
	}
	_, err := s.SetGameStats(ctx, "3", &provider.GameStats{GameID: "3"})
	require.NoError(t, err)

	ids := func(gs []provider.Game) []string {
		out := []string{}
		for _, g := range gs {
			out = append(out, g.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter GameFilter
		want   []string
	}{
		{"all ordered by start", GameFilter{}, []string{"1", "3", "2"}},
		{"season", GameFilter{SeasonID: 61}, []string{"3", "2"}},
		{"team either side", GameFilter{TeamIDs: []int{10}}, []string{"1", "2"}},
		{"team from season", GameFilter{TeamIDs: []int{10}, MinSeason: 61}, []string{"2"}},
		{"missing stats", GameFilter{MissingStats: true}, []string{"1", "2"}},
		{"started before", GameFilter{MissingStats: true, StartedBefore: base.Add(time.Hour)}, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListGames(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}
