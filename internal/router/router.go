package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/koushik8686/GeoGuide-sub000/internal/api/discovery"
)

// Config contains dependencies needed for the router setup
type Config struct {
	DiscoveryHandler discovery.Handler
	// AuthenticateMiddleware rejects anonymous callers.
	AuthenticateMiddleware func(http.Handler) http.Handler
	// OptionalAuthMiddleware identifies callers that send a token.
	OptionalAuthMiddleware func(http.Handler) http.Handler
	RateLimitRequests      int
	RateLimitWindow        time.Duration
	AllowedOrigins         []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request ID, logging, recoverer) is applied in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/ready", cfg.DiscoveryHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		// Anonymous callers may search; identified ones build affinity.
		r.Group(func(r chi.Router) {
			r.Use(cfg.OptionalAuthMiddleware)
			r.Get("/places/nearby", cfg.DiscoveryHandler.NearbySearch)
			r.Post("/places/nearby", cfg.DiscoveryHandler.NearbySearchPost)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Get("/places/feed", cfg.DiscoveryHandler.Feed)
			r.Get("/affinity", cfg.DiscoveryHandler.GetAffinity)
		})
	})

	return r
}
