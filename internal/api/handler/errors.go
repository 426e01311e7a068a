package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rinkstats/siahl/internal/api/respond"
	"github.com/rinkstats/siahl/internal/livebarn"
	"github.com/rinkstats/siahl/internal/scraper"
	"github.com/rinkstats/siahl/internal/store"
)

// badRequest is a client input error.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func badRequestf(msg string) error { return &badRequest{msg: msg} }

// writeErr maps an error onto the JSON error envelope. Scrape and parse
// details are logged, never returned.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bad      *badRequest
		fetchErr *scraper.FetchError
	)
	switch {
	case errors.As(err, &bad):
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, bad.msg)
	case errors.Is(err, store.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "Resource not found")
	case scraper.IsMissingStats(err), errors.Is(err, livebarn.ErrNoStats):
		respond.Error(w, http.StatusNotFound, respond.CodeStatsNotAvailable, "Game stats are not available yet")
	case scraper.IsParse(err):
		h.logger.Warn("Upstream page layout not recognized", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusBadGateway, respond.CodeUpstreamLayout, "League site returned an unrecognized page")
	case errors.As(err, &fetchErr):
		h.logger.Warn("Upstream fetch failed", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusBadGateway, respond.CodeUpstreamUnavailable, "League site is unavailable")
	default:
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "Internal error")
	}
}

// parseID parses a path or query integer.
func parseID(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, badRequestf("invalid " + name + ": " + raw)
	}
	return n, nil
}

// parseIDList parses "1,2,3". Empty input yields no ids.
func parseIDList(name, raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := parseID(name, part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, n)
	}
	return ids, nil
}
