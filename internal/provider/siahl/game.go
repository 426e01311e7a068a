package siahl

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/scraper"
)

// Box score table columns.
const (
	colPeriod     = "Per"
	colTime       = "Time"
	colType       = "Type"
	colGoal       = "Goal"
	colAssist     = "Ass."
	colAssist2    = "Ass.2"
	colNumber     = "#"
	colInfraction = "Infraction"
	colMinutes    = "Min"
	colOffIce     = "Off Ice"
	colStart      = "Start"
	colEnd        = "End"
	colOnIce      = "On Ice"
	colShooter    = "Shooter"
	colGoalie     = "Goalie"
	colResult     = "Result"
)

func scoresheetParams(gameID string) url.Values {
	return url.Values{"game_id": {gameID}, "mode": {"display"}}
}

// GameStats scrapes a game's box score. A sheet that exists but has not
// been scored yet fails with *scraper.MissingStatsError.
func (c *Client) GameStats(ctx context.Context, gameID string) (*provider.GameStats, error) {
	id := provider.StripGameID(gameID)
	doc, err := c.get(ctx, PageScoresheet, scoresheetParams(id))
	if err != nil {
		return nil, err
	}
	return parseGameStats(doc, id, c.layouts)
}

func parseGameStats(doc *goquery.Document, gameID string, layouts []Layout) (*provider.GameStats, error) {
	layout, err := DetectLayout(doc, layouts)
	if err != nil {
		return nil, err
	}
	sheet, err := layout.Extract(doc, gameID)
	if err != nil {
		return nil, err
	}

	stats := &provider.GameStats{
		GameID:      gameID,
		Date:        sheet.Text[FieldDate],
		Time:        sheet.Text[FieldTime],
		League:      sheet.Text[FieldLeague],
		Level:       sheet.Text[FieldLevel],
		Location:    sheet.Text[FieldLocation],
		Scorekeeper: sheet.Text[FieldScorekeeper],
		Layout:      sheet.Layout,
	}
	if id := provider.StripGameID(sheet.Text[FieldGame]); id != "" {
		stats.GameID = id
	}
	for _, name := range []string{FieldReferee1, FieldReferee2} {
		if ref := sheet.Text[name]; ref != "" {
			stats.Referees = append(stats.Referees, ref)
		}
	}

	if err := readSummary(sheet.Tables[FieldSummary], &stats.Visitor, &stats.Home); err != nil {
		return nil, err
	}
	stats.Visitor.Players, stats.Home.Players = splitPlayers(sheet.Tables[FieldPlayers])

	sides := []struct {
		team      *provider.TeamSheet
		scoring   string
		penalties string
		shootout  string
	}{
		{&stats.Visitor, FieldVisitorScoring, FieldVisitorPenalties, FieldVisitorShootout},
		{&stats.Home, FieldHomeScoring, FieldHomePenalties, FieldHomeShootout},
	}
	for _, s := range sides {
		goals, err := readGoals(sheet.Tables[s.scoring], *s.team)
		if err != nil {
			return nil, err
		}
		s.team.Goals = goals

		penalties, err := readPenalties(sheet.Tables[s.penalties], *s.team)
		if err != nil {
			return nil, err
		}
		s.team.Penalties = penalties

		s.team.Shootout = readShootout(sheet.Tables[s.shootout], *s.team)
	}
	return stats, nil
}

// readSummary reads the score-by-period table: visitor row then home row.
// The first column is the team, the last is the total.
func readSummary(tbl *scraper.Table, visitor, home *provider.TeamSheet) error {
	if tbl == nil || len(tbl.Rows) < 2 || tbl.Width() < 2 {
		return &scraper.ParseError{Page: PageScoresheet, Element: FieldSummary, Reason: "want visitor and home rows"}
	}
	teamCol := tbl.Headers[0]
	totalCol := tbl.Headers[len(tbl.Headers)-1]
	for i, side := range []*provider.TeamSheet{visitor, home} {
		r := tbl.Rows[i]
		cell := r[teamCol]
		side.Name = trimSideLabel(cell.Text)
		if id, ok := cell.IntParam("team"); ok {
			side.TeamID = id
		}
		side.Total = r.Text(totalCol)
		side.Periods = make(map[string]string, tbl.Width()-2)
		for _, h := range tbl.Headers[1 : len(tbl.Headers)-1] {
			side.Periods[h] = r.Text(h)
		}
	}
	return nil
}

// trimSideLabel drops a "Visitor:" or "Home:" prefix from a team cell.
func trimSideLabel(s string) string {
	for _, label := range []string{"Visitor:", "Home:"} {
		if strings.HasPrefix(s, label) {
			return strings.TrimSpace(strings.TrimPrefix(s, label))
		}
	}
	return s
}

// splitPlayers unpacks the roster table. A six-wide table carries the
// visitor in its left three columns and the home team in its right three.
// A three-wide table names no side, so its rows are all read as visitor.
func splitPlayers(tbl *scraper.Table) (visitor, home []provider.Player) {
	visitor, home = []provider.Player{}, []provider.Player{}
	if tbl == nil || tbl.Width() < 3 {
		return visitor, home
	}
	left := tbl.Headers[0:3]
	var right []string
	if tbl.Width() >= 6 {
		right = tbl.Headers[3:6]
	}
	for _, r := range tbl.Rows {
		if p, ok := playerFrom(r, left); ok {
			visitor = append(visitor, p)
		}
		if right != nil {
			if p, ok := playerFrom(r, right); ok {
				home = append(home, p)
			}
		}
	}
	return visitor, home
}

// playerFrom reads number, position and name columns.
func playerFrom(r scraper.Row, cols []string) (provider.Player, bool) {
	p := provider.Player{
		Number:   r.Text(cols[0]),
		Position: r.Text(cols[1]),
		Name:     r.Text(cols[2]),
	}
	if p.Name == "" && p.Number == "" {
		return provider.Player{}, false
	}
	if id, ok := r[cols[2]].IntParam("player"); ok {
		p.ID = id
	}
	return p, true
}

func ref(team provider.TeamSheet, number string) provider.PlayerRef {
	number = strings.TrimSpace(number)
	r := provider.PlayerRef{Number: number}
	if p, ok := team.PlayerByNumber(number); ok {
		r.Name = p.Name
	}
	return r
}

func readGoals(tbl *scraper.Table, team provider.TeamSheet) ([]provider.Goal, error) {
	goals := []provider.Goal{}
	if tbl == nil {
		return goals, nil
	}
	for _, r := range tbl.Rows {
		if r.Text(colPeriod) == "" {
			continue
		}
		period, err := provider.ParsePeriod(r.Text(colPeriod))
		if err != nil {
			return nil, &scraper.ParseError{Page: PageScoresheet, Element: "scoring", Reason: err.Error()}
		}
		g := provider.Goal{
			Period: period,
			Time:   r.Text(colTime),
			Type:   r.Text(colType),
			Scorer: ref(team, r.Text(colGoal)),
		}
		for _, col := range []string{colAssist, colAssist2} {
			if n := r.Text(col); n != "" {
				g.Assists = append(g.Assists, ref(team, n))
			}
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func readPenalties(tbl *scraper.Table, team provider.TeamSheet) ([]provider.Penalty, error) {
	penalties := []provider.Penalty{}
	if tbl == nil {
		return penalties, nil
	}
	for _, r := range tbl.Rows {
		if r.Text(colPeriod) == "" {
			continue
		}
		period, err := provider.ParsePeriod(r.Text(colPeriod))
		if err != nil {
			return nil, &scraper.ParseError{Page: PageScoresheet, Element: "penalties", Reason: err.Error()}
		}
		penalties = append(penalties, provider.Penalty{
			Period:     period,
			Player:     ref(team, r.Text(colNumber)),
			Infraction: r.Text(colInfraction),
			Minutes:    r.Text(colMinutes),
			OffIce:     r.Text(colOffIce),
			Start:      r.Text(colStart),
			End:        r.Text(colEnd),
			OnIce:      r.Text(colOnIce),
		})
	}
	return penalties, nil
}

func readShootout(tbl *scraper.Table, team provider.TeamSheet) []provider.ShootoutAttempt {
	if tbl == nil {
		return nil
	}
	var attempts []provider.ShootoutAttempt
	for _, r := range tbl.Rows {
		if r.Text(colShooter) == "" {
			continue
		}
		attempts = append(attempts, provider.ShootoutAttempt{
			Round:   len(attempts) + 1,
			Shooter: ref(team, r.Text(colShooter)),
			Goalie:  r.Text(colGoalie),
			Result:  r.Text(colResult),
		})
	}
	return attempts
}
