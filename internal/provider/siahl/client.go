// Package siahl extracts seasons, standings, schedules, box scores and
// player stats from the SIAHL league site (timetoscore).
//
// Every page is fetched through a Fetcher and normalized with the scraper
// table helpers. Box scores are positional: they are read through versioned
// Layouts, each a declarative table of structural paths.
package siahl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Site pages, relative to the base URL.
const (
	PageStats        = "display-stats.php"
	PageSchedule     = "display-schedule"
	PageScoresheet   = "oss-scoresheet"
	PageLeagueStats  = "display-league-stats"
	PageTeamCalendar = "team-cal.php"
)

// anchorAttempts bounds how many scoresheets are tried for a schedule's
// year anchor before giving up.
const anchorAttempts = 3

// Fetcher retrieves a parsed page. *scraper.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) (*goquery.Document, error)
}

// Client extracts league entities.
type Client struct {
	fetch    Fetcher
	leagueID int
	loc      *time.Location
	layouts  []Layout
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLocation sets the zone that resolved schedule times are placed in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

// WithLayouts replaces the scoresheet layouts probed, in order.
func WithLayouts(layouts ...Layout) Option {
	return func(c *Client) { c.layouts = layouts }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates an extractor client for one league.
func NewClient(fetch Fetcher, leagueID int, opts ...Option) *Client {
	c := &Client{
		fetch:    fetch,
		leagueID: leagueID,
		loc:      time.UTC,
		layouts:  DefaultLayouts(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Client) league() string { return strconv.Itoa(c.leagueID) }

func (c *Client) get(ctx context.Context, page string, params url.Values) (*goquery.Document, error) {
	doc, err := c.fetch.Fetch(ctx, page, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", page, err)
	}
	return doc, nil
}
