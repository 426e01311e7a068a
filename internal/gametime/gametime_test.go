package gametime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.UTC
	}
	return loc
}

func TestParseClockDate(t *testing.T) {
	c, err := ParseClockDate("Thu Jan 4", "7:30 PM")
	require.NoError(t, err)
	assert.Equal(t, ClockDate{Month: time.January, Day: 4, Hour: 19, Minute: 30}, c)

	c, err = ParseClockDate("Sat Mar 2", "12 Noon")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Hour)
	assert.Equal(t, 0, c.Minute)

	c, err = ParseClockDate("Sun Mar 3", "12:15 AM")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Hour)
	assert.Equal(t, 15, c.Minute)

	c, err = ParseClockDate("Mon Mar 4", "12:15 PM")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Hour)

	for _, bad := range [][2]string{{"Jan", "7:30 PM"}, {"Thu Foo 4", "7:30 PM"}, {"Thu Jan 4", "7:30"}, {"Thu Jan 4", "13:00 PM"}} {
		_, err := ParseClockDate(bad[0], bad[1])
		assert.Error(t, err, "%v", bad)
	}
}

func TestResolveWithinAnchorYear(t *testing.T) {
	loc := pacific(t)
	r := NewResolver(time.Date(2024, 1, 1, 0, 0, 0, 0, loc))
	got, err := r.ResolveStrings("Thu Jan 4", "7:30 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 19, 30, 0, 0, loc), got)
}

func TestResolveRollsOverNewYear(t *testing.T) {
	loc := pacific(t)
	r := NewResolver(time.Date(2023, 9, 10, 0, 0, 0, 0, loc))

	dec, err := r.ResolveStrings("Fri Dec 29", "9:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 2023, dec.Year())

	jan, err := r.ResolveStrings("Thu Jan 4", "7:30 PM")
	require.NoError(t, err)
	assert.Equal(t, 2024, jan.Year())
	assert.True(t, jan.After(dec))
}

func TestResolveMonotonicAcrossSchedule(t *testing.T) {
	loc := pacific(t)
	r := NewResolver(time.Date(2023, 9, 10, 20, 0, 0, 0, loc))
	dates := []string{"Sun Sep 10", "Sun Oct 15", "Fri Nov 24", "Sat Dec 30", "Sat Jan 6", "Sat Feb 10", "Sun Mar 17"}
	var prev time.Time
	for _, d := range dates {
		got, err := r.ResolveStrings(d, "8:00 PM")
		require.NoError(t, err, d)
		assert.False(t, got.Before(time.Date(2023, 9, 10, 0, 0, 0, 0, loc)), d)
		assert.True(t, got.After(prev), d)
		prev = got
	}
}

func TestResolveEarlierGameOnAnchorDay(t *testing.T) {
	r := NewResolver(time.Date(2024, 1, 4, 21, 0, 0, 0, time.UTC))
	got, err := r.ResolveStrings("Thu Jan 4", "7:30 PM")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
}

func TestResolveLeapDay(t *testing.T) {
	r := NewResolver(time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC))
	got, err := r.ResolveStrings("Thu Feb 29", "8:00 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC), got)

	r = NewResolver(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err = r.ResolveStrings("Thu Feb 29", "8:00 PM")
	assert.Error(t, err)
}

func TestParseScoresheetDate(t *testing.T) {
	got, err := ParseScoresheetDate("Date: 01-04-24", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseScoresheetDate("Date:", time.UTC)
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	cases := map[string]time.Duration{
		"12:34": 12*time.Minute + 34*time.Second,
		"0:05":  5 * time.Second,
		"45":    45 * time.Second,
		"42.5":  42*time.Second + 500*time.Millisecond,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "a:10", "1:xx", "-3"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestEstimateEventTime(t *testing.T) {
	start := time.Date(2024, 1, 4, 20, 0, 0, 0, time.UTC)

	got, err := EstimateEventTime(start, 1, "22:00", DefaultPeriodLength)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 20, 5, 0, 0, time.UTC), got)

	got, err = EstimateEventTime(start, 2, "8:15", DefaultPeriodLength)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 20, 40, 45, 0, time.UTC), got)

	got, err = EstimateEventTime(start, 1, "0", 0)
	require.NoError(t, err)
	assert.Equal(t, start.Add(27*time.Minute), got)

	_, err = EstimateEventTime(start, 0, "10:00", DefaultPeriodLength)
	assert.Error(t, err)
	_, err = EstimateEventTime(start, 1, "25:00", DefaultPeriodLength)
	assert.Error(t, err)
}
