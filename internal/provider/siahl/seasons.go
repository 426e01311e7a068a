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

// CurrentSeasonName names the synthesized season when the selector does not
// list the live season itself.
const CurrentSeasonName = "Current"

// Seasons reads the season selector from the league stats page.
func (c *Client) Seasons(ctx context.Context) (*provider.SeasonList, error) {
	doc, err := c.get(ctx, PageStats, url.Values{"league": {c.league()}})
	if err != nil {
		return nil, err
	}
	return parseSeasons(doc)
}

// parseSeasons reads option value/name pairs. Non-positive values are the
// site's "Current" alias and are resolved, not listed. The current season is
// taken from a season= link on the page when one exists, else max(id)+1.
func parseSeasons(doc *goquery.Document) (*provider.SeasonList, error) {
	options := doc.Find("select[name=season] option")
	if options.Length() == 0 {
		return nil, &scraper.ParseError{Page: PageStats, Element: "season selector", Reason: "not found"}
	}

	list := &provider.SeasonList{}
	maxID := 0
	options.Each(func(_ int, opt *goquery.Selection) {
		v, _ := opt.Attr("value")
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || id <= 0 {
			return
		}
		name := provider.CollapseSpaces(opt.Text())
		list.Seasons = append(list.Seasons, provider.Season{ID: id, Name: name})
		if id > maxID {
			maxID = id
		}
	})
	if len(list.Seasons) == 0 {
		return nil, &scraper.ParseError{Page: PageStats, Element: "season selector", Reason: "no seasons listed"}
	}

	if id, ok := linkedSeason(doc); ok {
		list.CurrentID = id
		list.CurrentFromLink = true
	} else {
		list.CurrentID = maxID + 1
	}

	known := false
	for _, s := range list.Seasons {
		if s.ID == list.CurrentID {
			known = true
			break
		}
	}
	if !known {
		list.Seasons = append(list.Seasons, provider.Season{ID: list.CurrentID, Name: CurrentSeasonName})
	}
	return list, nil
}

// linkedSeason finds the season the page is showing from its division
// links, which always carry the real season id.
func linkedSeason(doc *goquery.Document) (int, bool) {
	id := 0
	doc.Find("a[href*='season=']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if scraper.QueryParam(href, "level") == "" {
			return true
		}
		n, err := strconv.Atoi(scraper.QueryParam(href, "season"))
		if err != nil || n <= 0 {
			return true
		}
		id = n
		return false
	})
	return id, id > 0
}
