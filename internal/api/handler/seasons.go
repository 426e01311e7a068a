package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rinkstats/siahl/internal/cache"
	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/provider/siahl"
	"github.com/rinkstats/siahl/internal/store"
)

// currentSeason is the path alias for the newest stored season.
const currentSeason = "current"

// resolveSeason turns a path value into a season id and the TTL its data
// should be cached for.
func (h *Handler) resolveSeason(ctx context.Context, raw string) (int, time.Duration, error) {
	current, err := h.store.GetCurrentSeason(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, 0, err
	}
	if raw == currentSeason {
		if err != nil {
			return 0, 0, err
		}
		return current.ID, cache.TTLCurrentSeason, nil
	}
	id, perr := parseID("season id", raw)
	if perr != nil {
		return 0, 0, perr
	}
	if err != nil || id >= current.ID {
		return id, cache.TTLCurrentSeason, nil
	}
	return id, cache.TTLHistorical, nil
}

// ListSeasons returns all stored seasons, newest first.
// @Summary List seasons
// @Tags seasons
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /seasons [get]
func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.TTLCurrentSeason, func() (interface{}, error) {
		seasons, err := h.store.ListSeasons(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"seasons": seasons}, nil
	})
}

// GetCurrentSeason returns the newest stored season.
// @Summary Current season
// @Tags seasons
// @Produce json
// @Success 200 {object} provider.Season
// @Failure 404 {object} respond.ErrorResponse
// @Router /seasons/current [get]
func (h *Handler) GetCurrentSeason(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.TTLCurrentSeason, func() (interface{}, error) {
		return h.store.GetCurrentSeason(r.Context())
	})
}

// ListDivisions returns a season's divisions with their sorted teams.
// @Summary Season divisions
// @Tags seasons
// @Produce json
// @Param seasonID path string true "Season id or current"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /seasons/{seasonID}/divisions [get]
func (h *Handler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	seasonID, ttl, err := h.resolveSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.serveCached(w, r, ttl, func() (interface{}, error) {
		season, err := h.store.GetSeason(r.Context(), seasonID)
		if err != nil {
			return nil, err
		}
		divisions, err := h.store.ListDivisions(r.Context(), seasonID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"season_id":   season.ID,
			"season_name": season.Name,
			"divisions":   divisions,
		}, nil
	})
}

// ListTeams returns team stats rows for a season.
// @Summary Season team stats
// @Tags teams
// @Produce json
// @Param seasonID path string true "Season id or current"
// @Param team_ids query string false "Comma-separated team ids"
// @Param name query string false "Exact team name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /seasons/{seasonID}/teams [get]
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	seasonID, ttl, err := h.resolveSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	teamIDs, err := parseIDList("team_ids", r.URL.Query().Get("team_ids"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	filter := store.TeamFilter{SeasonID: seasonID, Name: r.URL.Query().Get("name"), TeamIDs: teamIDs}

	h.serveCached(w, r, ttl, func() (interface{}, error) {
		teams, err := h.store.ListTeams(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"season_id": seasonID, "teams": teams}, nil
	})
}

// GetTeam returns one team's season stats, schedule and calendar feed.
// @Summary Team detail
// @Tags teams
// @Produce json
// @Param seasonID path string true "Season id or current"
// @Param teamID path int true "Team id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /seasons/{seasonID}/teams/{teamID} [get]
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	seasonID, ttl, err := h.resolveSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	teamID, err := parseID("team id", chi.URLParam(r, "teamID"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	h.serveCached(w, r, ttl, func() (interface{}, error) {
		rows, err := h.store.ListTeams(r.Context(), store.TeamFilter{SeasonID: seasonID, TeamIDs: []int{teamID}})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, store.ErrNotFound
		}
		games, err := h.store.ListGames(r.Context(), store.GameFilter{SeasonID: seasonID, TeamIDs: []int{teamID}})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"team":     rows[0],
			"calendar": siahl.CalendarURL(h.cfg.SiteBaseURL, seasonID, teamID),
			"games":    withoutStats(games),
		}, nil
	})
}

// GetDivisionPlayers scrapes a division's skater and goalie stats.
// @Summary Division player stats
// @Tags players
// @Produce json
// @Param seasonID path string true "Season id or current"
// @Param divisionID path int true "Division id"
// @Param conferenceID path int false "Conference id"
// @Param reload query bool false "Bypass caches"
// @Success 200 {object} provider.DivisionPlayers
// @Failure 502 {object} respond.ErrorResponse
// @Router /seasons/{seasonID}/divisions/{divisionID}/conference/{conferenceID} [get]
func (h *Handler) GetDivisionPlayers(w http.ResponseWriter, r *http.Request) {
	if h.site == nil {
		h.writeErr(w, r, store.ErrNotFound)
		return
	}
	seasonID, ttl, err := h.resolveSeason(r.Context(), chi.URLParam(r, "seasonID"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	divisionID, err := parseID("division id", chi.URLParam(r, "divisionID"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	conferenceID := 0
	if raw := chi.URLParam(r, "conferenceID"); raw != "" {
		if conferenceID, err = parseID("conference id", raw); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}

	h.serveCached(w, r, ttl, func() (interface{}, error) {
		return h.site.DivisionPlayers(scrapeContext(r), seasonID, divisionID, conferenceID)
	})
}

func withoutStats(games []provider.Game) []provider.Game {
	out := make([]provider.Game, len(games))
	for i, g := range games {
		g.Stats = nil
		out[i] = g
	}
	return out
}
