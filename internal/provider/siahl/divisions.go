package siahl

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/scraper"
)

// standingsColumn describes how a standings column lands in team stats.
type standingsColumn struct {
	Key     string
	Numeric bool
}

// StandingsColumns is the standings rename map. Columns not listed keep
// their header as the key and their text as the value.
var StandingsColumns = map[string]standingsColumn{
	"GP":          {Key: "gamesPlayed", Numeric: true},
	"W":           {Key: "wins", Numeric: true},
	"T":           {Key: "ties", Numeric: true},
	"L":           {Key: "losses", Numeric: true},
	"OTL":         {Key: "overtimeLosses", Numeric: true},
	"PTS":         {Key: "points", Numeric: true},
	"G":           {Key: "G", Numeric: true},
	"Streak":      {Key: "streak"},
	"Tie Breaker": {Key: "tieBreaker"},
}

const teamColumn = "Team"

// Divisions reads a season's divisions with their ranked teams.
func (c *Client) Divisions(ctx context.Context, seasonID int) ([]provider.Division, error) {
	doc, err := c.get(ctx, PageStats, url.Values{
		"league": {c.league()},
		"season": {strconv.Itoa(seasonID)},
	})
	if err != nil {
		return nil, err
	}
	divs, skipped, err := parseDivisions(doc, seasonID)
	if err != nil {
		return nil, err
	}
	for _, title := range skipped {
		c.logger.Warn("standings block without division link", "season_id", seasonID, "title", title)
	}
	return divs, nil
}

type divisionBlock struct {
	div  provider.Division
	rows []*goquery.Selection
}

// parseDivisions segments the standings table into division blocks. A block
// opens at a single-cell title row; its identity comes from a level= link in
// the title row or the row right after it. The block's standings are the
// header row and team rows that follow. Titles without a division link are
// returned as skipped.
func parseDivisions(doc *goquery.Document, seasonID int) ([]provider.Division, []string, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil, &scraper.ParseError{Page: PageStats, Element: "standings table", Reason: "not found"}
	}

	var (
		divisions []provider.Division
		skipped   []string
		current   *divisionBlock
	)
	flush := func() error {
		if current == nil || len(current.rows) < 2 {
			return nil
		}
		teams, err := parseStandings(current.rows)
		if err != nil {
			return err
		}
		current.div.Teams = teams
		divisions = append(divisions, current.div)
		return nil
	}

	var linkRow *goquery.Selection
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if linkRow != nil && row.IsSelection(linkRow) {
			// Link row belonging to the title above.
			return
		}
		if isTitleRow(row) {
			if err := flush(); err != nil {
				skipped = append(skipped, err.Error())
			}
			current = nil
			title := provider.CollapseSpaces(row.Text())
			div, fromNext, ok := divisionFromLinks(row, title, seasonID)
			if !ok {
				skipped = append(skipped, title)
				return
			}
			if fromNext && isTitleRow(row.Next()) {
				linkRow = row.Next()
			}
			current = &divisionBlock{div: div}
			return
		}
		if current == nil {
			return
		}
		if scraper.IsHeaderRow(row) {
			// A second header inside one block restarts its standings.
			current.rows = []*goquery.Selection{row}
			return
		}
		if len(current.rows) > 0 {
			current.rows = append(current.rows, row)
		}
	})
	if err := flush(); err != nil {
		skipped = append(skipped, err.Error())
	}
	return divisions, skipped, nil
}

// isTitleRow reports a row made of a single th.
func isTitleRow(row *goquery.Selection) bool {
	cells := row.ChildrenFiltered("th, td")
	return cells.Length() == 1 && cells.Is("th")
}

func divisionFromLinks(row *goquery.Selection, title string, seasonID int) (div provider.Division, fromNext, ok bool) {
	href := levelLink(row)
	if href == "" {
		href = levelLink(row.Next())
		fromNext = true
	}
	if href == "" {
		return provider.Division{}, false, false
	}
	level, err := strconv.Atoi(scraper.QueryParam(href, "level"))
	if err != nil {
		return provider.Division{}, false, false
	}
	conf, _ := strconv.Atoi(scraper.QueryParam(href, "conf"))
	season := seasonID
	if s, err := strconv.Atoi(scraper.QueryParam(href, "season")); err == nil && s > 0 {
		season = s
	}
	return provider.Division{ID: level, ConferenceID: conf, SeasonID: season, Name: title}, fromNext, true
}

func levelLink(row *goquery.Selection) string {
	var found string
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if scraper.QueryParam(href, "level") != "" {
			found = href
			return false
		}
		return true
	})
	return found
}

// parseStandings normalizes one block's standings into ranked teams.
func parseStandings(rows []*goquery.Selection) ([]provider.Team, error) {
	tbl, err := scraper.NormalizeRows(PageStats, rows)
	if err != nil {
		return nil, err
	}
	teams := make([]provider.Team, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		cell := r[teamColumn]
		id, ok := cell.IntParam("team")
		if !ok {
			continue
		}
		stats := StandingsStats(r)
		stats["place"] = provider.Ordinal(len(teams) + 1)
		teams = append(teams, provider.Team{ID: id, Name: cell.Text, Stats: stats})
	}
	return teams, nil
}

// StandingsStats converts one standings row through the rename map. The
// Team column is identity, not stats, and is left out.
func StandingsStats(r scraper.Row) map[string]interface{} {
	stats := make(map[string]interface{}, len(r))
	for header, cell := range r {
		if header == teamColumn {
			continue
		}
		col, ok := StandingsColumns[header]
		if !ok {
			stats[header] = cell.Text
			continue
		}
		if col.Numeric {
			stats[col.Key] = provider.ExtractInt(cell.Text)
		} else {
			stats[col.Key] = strings.TrimSpace(cell.Text)
		}
	}
	return stats
}
