package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/rinkstats/siahl/internal/api/handler"
	"github.com/rinkstats/siahl/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps handler.Deps, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	deps.Config = cfg
	h := handler.New(deps)

	// --- Routes ---
	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/seasons", func(r chi.Router) {
			r.Get("/", h.ListSeasons)
			r.Get("/current", h.GetCurrentSeason)
			r.Route("/{seasonID}", func(r chi.Router) {
				r.Get("/divisions", h.ListDivisions)
				r.Get("/divisions/{divisionID}", h.GetDivisionPlayers)
				r.Get("/divisions/{divisionID}/conference/{conferenceID}", h.GetDivisionPlayers)
				r.Get("/teams", h.ListTeams)
				r.Get("/teams/{teamID}", h.GetTeam)
			})
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Get("/{gameID}", h.GetGame)
			r.Get("/{gameID}/livebarn", h.GetLiveBarn)
		})
	})

	return r
}
