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

// goalieColumns only appear in goalie stat tables.
var goalieColumns = []string{"GAA", "Save %", "SV%"}

const (
	colName       = "Name"
	colPlayerTeam = "Team"
)

// DivisionPlayers reads the division stats page: skater and goalie tables.
func (c *Client) DivisionPlayers(ctx context.Context, seasonID, divisionID, conferenceID int) (*provider.DivisionPlayers, error) {
	doc, err := c.get(ctx, PageLeagueStats, url.Values{
		"league": {c.league()},
		"season": {strconv.Itoa(seasonID)},
		"level":  {strconv.Itoa(divisionID)},
		"conf":   {strconv.Itoa(conferenceID)},
	})
	if err != nil {
		return nil, err
	}
	out, err := parseDivisionPlayers(doc)
	if err != nil {
		return nil, err
	}
	out.SeasonID, out.DivisionID, out.ConferenceID = seasonID, divisionID, conferenceID
	return out, nil
}

func parseDivisionPlayers(doc *goquery.Document) (*provider.DivisionPlayers, error) {
	out := &provider.DivisionPlayers{Players: []provider.Player{}, Goalies: []provider.Player{}}
	found := false
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		tbl, err := scraper.NormalizeTable(PageLeagueStats, sel)
		if err != nil || !hasColumns(tbl, colName) {
			return
		}
		found = true
		goalies := isGoalieTable(tbl)
		for _, r := range tbl.Rows {
			p, ok := statsPlayer(r, tbl.Headers)
			if !ok {
				continue
			}
			if goalies {
				out.Goalies = append(out.Goalies, p)
			} else {
				out.Players = append(out.Players, p)
			}
		}
	})
	if !found {
		return nil, &scraper.ParseError{Page: PageLeagueStats, Element: "player table", Reason: "not found"}
	}
	return out, nil
}

func isGoalieTable(tbl *scraper.Table) bool {
	for _, h := range tbl.Headers {
		for _, g := range goalieColumns {
			if strings.EqualFold(h, g) {
				return true
			}
		}
	}
	return false
}

// statsPlayer turns a stats row into a player. Identity columns become
// fields, every other column lands in Info with numbers kept numeric.
func statsPlayer(r scraper.Row, headers []string) (provider.Player, bool) {
	name := r[colName]
	if name.Text == "" {
		return provider.Player{}, false
	}
	p := provider.Player{
		Name:   name.Text,
		Number: r.Text(colNumber),
		Team:   r.Text(colPlayerTeam),
		Info:   make(map[string]interface{}, len(headers)),
	}
	if id, ok := name.IntParam("player"); ok {
		p.ID = id
	}
	for _, h := range headers {
		switch h {
		case colName, colNumber, colPlayerTeam:
			continue
		}
		p.Info[h] = statValue(r.Text(h))
	}
	return p, true
}

func statValue(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
