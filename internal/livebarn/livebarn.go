// Package livebarn builds rink-camera replay links for the goals and
// penalties of a scored game. Event wall times are estimates from the
// period clock, not exact.
package livebarn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rinkstats/siahl/internal/gametime"
	"github.com/rinkstats/siahl/internal/provider"
)

// BaseURL is the replay page the links point at.
const BaseURL = "https://livebarn.com/en/videov/"

// ErrNoStats means the game has no box score to link from.
var ErrNoStats = errors.New("game has no stats")

// rinks maps a rink to its camera surface id.
var rinks = map[string]int{
	"South":  547,
	"North":  546,
	"East":   548,
	"Center": 549,
}

// SID returns the camera surface id for a rink. Names with or without the
// "San Jose " prefix are accepted.
func SID(rink string) (int, bool) {
	sid, ok := rinks[strings.TrimPrefix(strings.TrimSpace(rink), "San Jose ")]
	return sid, ok
}

// URL renders a replay link starting at t floored to the half hour.
func URL(t time.Time, sid int) string {
	t = t.Add(-time.Duration(t.Minute()%30) * time.Minute)
	return fmt.Sprintf("%s?begindate=%s&sid=%d", BaseURL, t.Format("2006-01-02T15:04"), sid)
}

// Event is one goal or penalty with its estimated time and link.
type Event struct {
	Kind   string             `json:"kind"`
	Side   string             `json:"side"`
	Period int                `json:"period"`
	Clock  string             `json:"clock"`
	Player provider.PlayerRef `json:"player"`
	// Detail is the goal type or penalty infraction.
	Detail    string     `json:"detail,omitempty"`
	Estimated *time.Time `json:"estimated_time,omitempty"`
	URL       string     `json:"livebarn,omitempty"`
}

// Links is the set of replay links for one game.
type Links struct {
	GameID    string  `json:"game_id"`
	Rink      string  `json:"rink"`
	SID       int     `json:"sid,omitempty"`
	Goals     []Event `json:"goals"`
	Penalties []Event `json:"penalties"`
}

// Builder estimates event times and renders links.
type Builder struct {
	PeriodLength time.Duration
	Location     *time.Location
}

// ForGame builds links for every goal and penalty of a game. Penalties are
// timed from the off-ice clock. An unknown rink or an unreadable clock
// leaves the event without a link rather than failing.
func (b Builder) ForGame(g provider.Game) (*Links, error) {
	if g.Stats == nil {
		return nil, ErrNoStats
	}
	start := g.Start
	if b.Location != nil {
		start = start.In(b.Location)
	}

	links := &Links{GameID: g.ID, Rink: g.Rink, Goals: []Event{}, Penalties: []Event{}}
	sid, known := SID(g.Rink)
	if known {
		links.SID = sid
	}

	sides := []struct {
		name  string
		sheet provider.TeamSheet
	}{
		{"visitor", g.Stats.Visitor},
		{"home", g.Stats.Home},
	}
	for _, side := range sides {
		for _, goal := range side.sheet.Goals {
			e := Event{Kind: "goal", Side: side.name, Period: goal.Period, Clock: goal.Time, Player: goal.Scorer, Detail: goal.Type}
			b.place(&e, start, sid, known)
			links.Goals = append(links.Goals, e)
		}
		for _, pen := range side.sheet.Penalties {
			e := Event{Kind: "penalty", Side: side.name, Period: pen.Period, Clock: pen.OffIce, Player: pen.Player, Detail: pen.Infraction}
			b.place(&e, start, sid, known)
			links.Penalties = append(links.Penalties, e)
		}
	}
	return links, nil
}

func (b Builder) place(e *Event, start time.Time, sid int, known bool) {
	at, err := gametime.EstimateEventTime(start, e.Period, e.Clock, b.PeriodLength)
	if err != nil {
		return
	}
	e.Estimated = &at
	if known {
		e.URL = URL(at, sid)
	}
}
