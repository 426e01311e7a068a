// Package provider defines canonical data types that the league-site
// extractors normalize into. These structs are the contract between the
// extractors and the syncer: extractors output these, the syncer writes them
// to the store and the API reads them back out.
package provider

import "time"

// Sentinel identifiers used when a name cannot be mapped to a real entity.
const (
	UnknownID   = -1
	UnknownName = "UNKNOWN"
)

// Season is a year-long competitive cycle identified by a small integer.
type Season struct {
	ID   int    `json:"season_id"`
	Name string `json:"name"`
}

// SeasonList is the parsed season selector plus the resolved "current" alias.
type SeasonList struct {
	Seasons []Season `json:"seasons"`
	// CurrentID is the real identifier the "Current" pseudo-season points to.
	CurrentID int `json:"current_id"`
	// CurrentFromLink is true when CurrentID was read from a link on the page
	// rather than synthesized as max(id)+1.
	CurrentFromLink bool `json:"current_from_link"`
}

// Division is a league subdivision. The pair (ID, ConferenceID) is the key.
type Division struct {
	ID           int    `json:"division_id"`
	ConferenceID int    `json:"conference_id"`
	SeasonID     int    `json:"season_id,omitempty"`
	Name         string `json:"name"`
	Teams        []Team `json:"teams,omitempty"`
}

// Team is a team as listed in a division's standings.
// Stats is a flat map of stat key → value (gamesPlayed, wins, streak, place…).
type Team struct {
	ID    int                    `json:"team_id"`
	Name  string                 `json:"name"`
	Stats map[string]interface{} `json:"stats,omitempty"`
}

// ScheduledGame is one row of a team schedule with its start resolved to a
// full timestamp.
type ScheduledGame struct {
	ID        string    `json:"game_id"`
	Start     time.Time `json:"start_time"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Rink      string    `json:"rink"`
	League    string    `json:"league,omitempty"`
	Level     string    `json:"level,omitempty"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	HomeGoals string    `json:"home_goals,omitempty"`
	AwayGoals string    `json:"away_goals,omitempty"`
	Type      string    `json:"type,omitempty"`
}

// Info returns the schedule-level metadata stored with a game.
func (g ScheduledGame) Info() GameInfo {
	return GameInfo{
		League:    g.League,
		Level:     g.Level,
		Home:      g.Home,
		Away:      g.Away,
		HomeGoals: g.HomeGoals,
		AwayGoals: g.AwayGoals,
		Type:      g.Type,
		Date:      g.Date,
		Time:      g.Time,
	}
}

// GameInfo is schedule-level metadata: league, level, names and final score.
type GameInfo struct {
	League    string `json:"league,omitempty"`
	Level     string `json:"level,omitempty"`
	Home      string `json:"home,omitempty"`
	Away      string `json:"away,omitempty"`
	HomeGoals string `json:"home_goals,omitempty"`
	AwayGoals string `json:"away_goals,omitempty"`
	Type      string `json:"type,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
}

// Game is the stored game row. Stats is nil until the box score is scraped.
type Game struct {
	ID           string     `json:"game_id"`
	SeasonID     int        `json:"season_id"`
	DivisionID   int        `json:"division_id"`
	ConferenceID int        `json:"conference_id"`
	HomeID       int        `json:"home_id"`
	AwayID       int        `json:"away_id"`
	Rink         string     `json:"rink"`
	Start        time.Time  `json:"start_time"`
	Info         GameInfo   `json:"info"`
	Stats        *GameStats `json:"stats,omitempty"`
}

// GameStats is the detailed box score of a played game.
type GameStats struct {
	GameID      string    `json:"game_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	League      string    `json:"league,omitempty"`
	Level       string    `json:"level,omitempty"`
	Location    string    `json:"location,omitempty"`
	Scorekeeper string    `json:"scorekeeper"`
	Referees    []string  `json:"referees,omitempty"`
	Layout      string    `json:"layout"`
	Visitor     TeamSheet `json:"visitor"`
	Home        TeamSheet `json:"home"`
}

// TeamSheet is one side of a box score.
type TeamSheet struct {
	Name      string            `json:"name"`
	TeamID    int               `json:"team_id,omitempty"`
	Periods   map[string]string `json:"periods,omitempty"`
	Total     string            `json:"total,omitempty"`
	Players   []Player          `json:"players"`
	Goals     []Goal            `json:"goals"`
	Penalties []Penalty         `json:"penalties"`
	Shootout  []ShootoutAttempt `json:"shootout,omitempty"`
}

// PlayerByNumber returns the roster entry wearing the given jersey number.
func (s TeamSheet) PlayerByNumber(number string) (Player, bool) {
	for _, p := range s.Players {
		if p.Number == number {
			return p, true
		}
	}
	return Player{}, false
}

// Player is a rostered or stat-listed player. Info carries aggregated stats
// when the player comes from a stats table.
type Player struct {
	ID       int                    `json:"player_id,omitempty"`
	Number   string                 `json:"number,omitempty"`
	Position string                 `json:"position,omitempty"`
	Name     string                 `json:"name"`
	Team     string                 `json:"team,omitempty"`
	Info     map[string]interface{} `json:"info,omitempty"`
}

// PlayerRef points at a player by jersey number, with the name filled in when
// the roster knows the number.
type PlayerRef struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

// Goal is one scoring event. Time is the clock value remaining in the period.
type Goal struct {
	Period  int         `json:"period"`
	Time    string      `json:"time"`
	Type    string      `json:"type,omitempty"`
	Scorer  PlayerRef   `json:"scorer"`
	Assists []PlayerRef `json:"assists,omitempty"`
}

// Penalty is one penalty event. OffIce is the clock value when the player
// left the ice.
type Penalty struct {
	Period     int       `json:"period"`
	Player     PlayerRef `json:"player"`
	Infraction string    `json:"infraction"`
	Minutes    string    `json:"minutes"`
	OffIce     string    `json:"off_ice"`
	Start      string    `json:"start,omitempty"`
	End        string    `json:"end,omitempty"`
	OnIce      string    `json:"on_ice,omitempty"`
}

// ShootoutAttempt is one shootout round for one side.
type ShootoutAttempt struct {
	Round   int       `json:"round"`
	Shooter PlayerRef `json:"shooter"`
	Goalie  string    `json:"goalie,omitempty"`
	Result  string    `json:"result"`
}

// DivisionPlayers is the per-division player stats listing.
type DivisionPlayers struct {
	SeasonID     int      `json:"season_id"`
	DivisionID   int      `json:"division_id"`
	ConferenceID int      `json:"conference_id"`
	Players      []Player `json:"players"`
	Goalies      []Player `json:"goalies"`
}
