package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/handler"
	"github.com/vasapolrittideah/taskboard-api/services/api-gateway/internal/middleware"
)

// Options holds the pieces the gateway router is assembled from.
type Options struct {
	Logger      *zerolog.Logger
	Auth        middleware.AuthConfig
	CORS        middleware.CORSConfig
	Profile     *handler.ProfileHandler
	Health      *handler.HealthHandler
	AuthService http.Handler
	TaskService http.Handler
}

// NewRouter builds the gateway routes. Everything under /api passes the authentication filter.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.CORS))

	r.Get("/healthz", opts.Health.Live)
	r.Get("/readyz", opts.Health.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Auth))

		r.Handle("/auth/*", opts.AuthService)
		r.Handle("/password/*", opts.AuthService)

		r.Get("/v1/me", opts.Profile.GetProfile)
		r.Handle("/v1/*", opts.TaskService)
	})

	return r
}
