// Package scraper holds the generic page fetcher and HTML table normalizer
// the league-site extractors are built on.
package scraper

import (
	"errors"
	"fmt"
)

// FetchError is a transport failure or a non-200 response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the page did not have the structure an extractor expects.
type ParseError struct {
	Page    string
	Element string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("parse %s: %s", e.Page, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s: %s", e.Page, e.Element, e.Reason)
}

// MissingStatsError is the ParseError raised for a game whose scoresheet
// exists but has not been filled in yet.
type MissingStatsError struct {
	GameID string
	Field  string
}

func (e *MissingStatsError) Error() string {
	return fmt.Sprintf("game %s has no stats yet: %s missing", e.GameID, e.Field)
}

func (e *MissingStatsError) Unwrap() error {
	return &ParseError{Page: "scoresheet", Element: e.Field, Reason: "not filled in"}
}

// IsMissingStats reports whether err is a MissingStatsError.
func IsMissingStats(err error) bool {
	var m *MissingStatsError
	return errors.As(err, &m)
}

// IsParse reports whether err is any ParseError, MissingStatsError included.
func IsParse(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}
