package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rinkstats/siahl/internal/cache"
	"github.com/rinkstats/siahl/internal/provider"
	"github.com/rinkstats/siahl/internal/store"
)

// ListGames returns games for a season, or games of the given teams from
// that season on.
// @Summary List games
// @Tags games
// @Produce json
// @Param season_id query string false "Season id or current (default current)"
// @Param team_ids query string false "Comma-separated team ids"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /games [get]
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("season_id")
	if raw == "" {
		raw = currentSeason
	}
	seasonID, ttl, err := h.resolveSeason(r.Context(), raw)
	if errors.Is(err, store.ErrNotFound) {
		h.writeErr(w, r, badRequestf("no seasons stored; pass season_id"))
		return
	}
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	teamIDs, err := parseIDList("team_ids", r.URL.Query().Get("team_ids"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	filter := store.GameFilter{SeasonID: seasonID}
	if len(teamIDs) > 0 {
		filter = store.GameFilter{MinSeason: seasonID, TeamIDs: teamIDs}
	}
	h.serveCached(w, r, ttl, func() (interface{}, error) {
		games, err := h.store.ListGames(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"games": withoutStats(games)}, nil
	})
}

// GetGame returns one game with its info and stats. With reload=true a
// game without stored stats is scraped now; stored stats are never
// replaced. A game without stats is not cached, so stats written later by
// a sync show up on the next request.
// @Summary Game detail
// @Tags games
// @Produce json
// @Param gameID path string true "Game id"
// @Param reload query bool false "Scrape stats now when missing"
// @Success 200 {object} provider.Game
// @Failure 404 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /games/{gameID} [get]
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.TTLGame, func() (interface{}, error) {
		g, err := h.loadGame(r)
		if err != nil {
			return nil, err
		}
		if g.Stats == nil {
			return transient{g}, nil
		}
		return g, nil
	})
}

// GetLiveBarn returns replay links for a game's goals and penalties.
// @Summary Game video links
// @Tags games
// @Produce json
// @Param gameID path string true "Game id"
// @Success 200 {object} livebarn.Links
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/{gameID}/livebarn [get]
func (h *Handler) GetLiveBarn(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.TTLGame, func() (interface{}, error) {
		g, err := h.loadGame(r)
		if err != nil {
			return nil, err
		}
		return h.livebarn.ForGame(g)
	})
}

func (h *Handler) loadGame(r *http.Request) (provider.Game, error) {
	id := provider.StripGameID(chi.URLParam(r, "gameID"))
	if id == "" {
		return provider.Game{}, badRequestf("invalid game id")
	}
	g, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		return provider.Game{}, err
	}
	if g.Stats != nil || h.stats == nil || !isReload(r) {
		return g, nil
	}

	stats, written, err := h.stats.RefreshGameStats(scrapeContext(r), id)
	if err != nil {
		return provider.Game{}, err
	}
	h.logger.Info("Game stats scraped on request", "game_id", id, "stored", written)
	g.Stats = stats
	return g, nil
}
