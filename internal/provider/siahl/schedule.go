package siahl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rinkstats/siahl/internal/gametime"
	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/scraper"
)

// ScheduleColumns maps schedule headers to row fields. The site repeats
// "Goals" after Away and after Home; the normalizer suffixes the second.
var ScheduleColumns = map[string]string{
	"Game":   "game_id",
	"Date":   "date",
	"Time":   "time",
	"Rink":   "rink",
	"League": "league",
	"Level":  "level",
	"Away":   "away",
	"Goals":  "away_goals",
	"Home":   "home",
	"Goals2": "home_goals",
	"Type":   "type",
}

// ScheduleRow is one schedule line before year resolution.
type ScheduleRow struct {
	Game  provider.ScheduledGame
	Clock gametime.ClockDate
}

// TeamSchedule reads a team's schedule for a season and resolves every
// game's start. The year comes from the first scoresheet that prints one.
func (c *Client) TeamSchedule(ctx context.Context, seasonID, teamID int) ([]provider.ScheduledGame, error) {
	doc, err := c.get(ctx, PageSchedule, url.Values{
		"team":       {strconv.Itoa(teamID)},
		"season":     {strconv.Itoa(seasonID)},
		"league":     {c.league()},
		"stat_class": {"1"},
	})
	if err != nil {
		return nil, err
	}
	rows, err := parseSchedule(doc, c.logger)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	anchor, err := c.scheduleAnchor(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("anchor schedule team=%d season=%d: %w", teamID, seasonID, err)
	}
	resolver := gametime.NewResolver(anchor)

	games := make([]provider.ScheduledGame, 0, len(rows))
	for _, r := range rows {
		start, err := resolver.Resolve(r.Clock)
		if err != nil {
			c.logger.Warn("skipping schedule row", "game_id", r.Game.ID, "error", err)
			continue
		}
		g := r.Game
		g.Start = start
		games = append(games, g)
	}
	return games, nil
}

// scheduleAnchor asks the first few scoresheets for their printed date
// and returns an anchor for the first row.
func (c *Client) scheduleAnchor(ctx context.Context, rows []ScheduleRow) (time.Time, error) {
	var lastErr error
	for i := 0; i < len(rows) && i < anchorAttempts; i++ {
		t, err := c.GameDate(ctx, rows[i].Game.ID)
		if err == nil {
			return anchorFirstRow(rows[0].Clock, t, i), nil
		}
		lastErr = err
		c.logger.Debug("scoresheet date unavailable", "game_id", rows[i].Game.ID, "error", err)
	}
	return time.Time{}, lastErr
}

// anchorFirstRow moves a date read from row i back to row 0. Row 0 falls
// in the same year unless its month and day come after the sheet's, in
// which case the season crossed a new year in between.
func anchorFirstRow(first gametime.ClockDate, sheet time.Time, i int) time.Time {
	if i == 0 {
		return sheet
	}
	year := sheet.Year()
	if first.Month > sheet.Month() || (first.Month == sheet.Month() && first.Day > sheet.Day()) {
		year--
	}
	return time.Date(year, first.Month, first.Day, 0, 0, 0, 0, sheet.Location())
}

// GameDate reads the year-bearing date printed on a game's scoresheet.
func (c *Client) GameDate(ctx context.Context, gameID string) (time.Time, error) {
	doc, err := c.get(ctx, PageScoresheet, scoresheetParams(gameID))
	if err != nil {
		return time.Time{}, err
	}
	layout, err := DetectLayout(doc, c.layouts)
	if err != nil {
		return time.Time{}, err
	}
	date, err := layout.Text(doc, FieldDate)
	if err != nil {
		return time.Time{}, err
	}
	t, err := gametime.ParseScoresheetDate(date, c.loc)
	if err != nil {
		return time.Time{}, &scraper.ParseError{Page: PageScoresheet, Element: FieldDate, Reason: err.Error()}
	}
	return t, nil
}

// parseSchedule finds the first table with Game and Date columns and turns
// it into rows, dropping practices, rows with no teams and rows whose date
// or time cannot be read.
func parseSchedule(doc *goquery.Document, logger *slog.Logger) ([]ScheduleRow, error) {
	var tbl *scraper.Table
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t, err := scraper.NormalizeTable(PageSchedule, sel)
		if err != nil || !hasColumns(t, "Game", "Date", "Time") {
			return true
		}
		tbl = t
		return false
	})
	if tbl == nil {
		return nil, &scraper.ParseError{Page: PageSchedule, Element: "schedule table", Reason: "not found"}
	}

	var out []ScheduleRow
	for _, r := range tbl.Rows {
		fields := renameRow(r, ScheduleColumns)
		if strings.EqualFold(fields["type"], "Practice") {
			continue
		}
		if fields["home"] == "" && fields["away"] == "" {
			continue
		}
		id := provider.StripGameID(fields["game_id"])
		if id == "" {
			continue
		}
		clock, err := gametime.ParseClockDate(fields["date"], fields["time"])
		if err != nil {
			logger.Warn("skipping schedule row", "game_id", id, "date", fields["date"], "time", fields["time"], "error", err)
			continue
		}

		g := provider.ScheduledGame{
			ID:     id,
			Date:   fields["date"],
			Time:   fields["time"],
			Rink:   cleanRink(fields["rink"]),
			League: fields["league"],
			Level:  cleanLevel(fields["level"]),
			Home:   fields["home"],
			Away:   fields["away"],
			Type:   fields["type"],
		}
		if v, ok := provider.ExtractGoals(fields["home_goals"]); ok {
			g.HomeGoals = v
		}
		if v, ok := provider.ExtractGoals(fields["away_goals"]); ok {
			g.AwayGoals = v
		}
		out = append(out, ScheduleRow{Game: g, Clock: clock})
	}
	return out, nil
}

func renameRow(r scraper.Row, mapping map[string]string) map[string]string {
	out := make(map[string]string, len(r))
	for header, cell := range r {
		key, ok := mapping[header]
		if !ok {
			key = header
		}
		out[key] = provider.CollapseSpaces(cell.Text)
	}
	return out
}

func hasColumns(t *scraper.Table, names ...string) bool {
	have := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		have[h] = true
	}
	for _, n := range names {
		if !have[n] {
			return false
		}
	}
	return true
}

func cleanRink(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "San Jose ", ""))
}

func cleanLevel(s string) string {
	return strings.ReplaceAll(s, "Adult Division", "Div")
}

// CalendarURL is the team's iCal feed on the site.
func CalendarURL(siteBaseURL string, seasonID, teamID int) string {
	host := siteBaseURL
	if u, err := url.Parse(siteBaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("webcal://%s/%s?team=%d&tlev=0&tseq=0&season=%d&format=iCal", host, PageTeamCalendar, teamID, seasonID)
}
