package livebarn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinkstats/siahl/internal/provider"
)

func TestSID(t *testing.T) {
	for rink, want := range map[string]int{
		"South":           547,
		"North":           546,
		"San Jose East":   548,
		"San Jose Center": 549,
	} {
		sid, ok := SID(rink)
		require.True(t, ok, rink)
		assert.Equal(t, want, sid)
	}
	_, ok := SID("Oakland")
	assert.False(t, ok)
}

func TestURLFloorsToHalfHour(t *testing.T) {
	at := time.Date(2024, 1, 4, 20, 40, 45, 0, time.UTC)
	assert.Equal(t, "https://livebarn.com/en/videov/?begindate=2024-01-04T20:30&sid=546", URL(at, 546))

	at = time.Date(2024, 1, 4, 20, 29, 59, 0, time.UTC)
	assert.Equal(t, "https://livebarn.com/en/videov/?begindate=2024-01-04T20:00&sid=547", URL(at, 547))
}

func scoredGame(rink string) provider.Game {
	return provider.Game{
		ID:    "123456",
		Rink:  rink,
		Start: time.Date(2024, 1, 4, 20, 0, 0, 0, time.UTC),
		Stats: &provider.GameStats{
			Visitor: provider.TeamSheet{
				Goals: []provider.Goal{{Period: 2, Time: "8:15", Scorer: provider.PlayerRef{Number: "9"}}},
			},
			Home: provider.TeamSheet{
				Penalties: []provider.Penalty{
					{Period: 1, OffIce: "12:00", Infraction: "Tripping", Player: provider.PlayerRef{Number: "4"}},
					{Period: 3, OffIce: "bogus"},
				},
			},
		},
	}
}

func TestForGame(t *testing.T) {
	links, err := Builder{PeriodLength: 22 * time.Minute}.ForGame(scoredGame("North"))
	require.NoError(t, err)
	assert.Equal(t, 546, links.SID)

	require.Len(t, links.Goals, 1)
	goal := links.Goals[0]
	assert.Equal(t, "visitor", goal.Side)
	require.NotNil(t, goal.Estimated)
	assert.Equal(t, time.Date(2024, 1, 4, 20, 40, 45, 0, time.UTC), *goal.Estimated)
	assert.Equal(t, "https://livebarn.com/en/videov/?begindate=2024-01-04T20:30&sid=546", goal.URL)

	require.Len(t, links.Penalties, 2)
	pen := links.Penalties[0]
	assert.Equal(t, "home", pen.Side)
	assert.Equal(t, "Tripping", pen.Detail)
	// 20:00 + 5m warmup + 10m elapsed.
	assert.Equal(t, time.Date(2024, 1, 4, 20, 15, 0, 0, time.UTC), *pen.Estimated)
	assert.Equal(t, "https://livebarn.com/en/videov/?begindate=2024-01-04T20:00&sid=546", pen.URL)

	assert.Nil(t, links.Penalties[1].Estimated)
	assert.Empty(t, links.Penalties[1].URL)
}

func TestForGameUnknownRink(t *testing.T) {
	links, err := Builder{}.ForGame(scoredGame("Oakland"))
	require.NoError(t, err)
	assert.Zero(t, links.SID)
	require.Len(t, links.Goals, 1)
	assert.NotNil(t, links.Goals[0].Estimated)
	assert.Empty(t, links.Goals[0].URL)
}

func TestForGameWithoutStats(t *testing.T) {
	_, err := Builder{}.ForGame(provider.Game{ID: "1"})
	assert.ErrorIs(t, err, ErrNoStats)
}

func TestForGameUsesLocation(t *testing.T) {
	loc := time.FixedZone("PST", -8*60*60)
	g := scoredGame("South")
	g.Start = time.Date(2024, 1, 5, 4, 0, 0, 0, time.UTC)

	links, err := Builder{Location: loc}.ForGame(g)
	require.NoError(t, err)
	assert.Equal(t, "https://livebarn.com/en/videov/?begindate=2024-01-04T20:30&sid=547", links.Goals[0].URL)
}
