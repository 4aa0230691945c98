package api

import (
	"net/http"

	"github.com/RichardoC/drivewise/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter mounts the JSON API under /api and serves static UI files from everything else.
func NewRouter(h *Handler, static http.Handler, m *metrics.Collector, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Observe(logger, m))
	r.Use(Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/messages", h.GetMessages)
		r.Post("/chat", h.Chat)
		r.Get("/suggested-questions", h.GetSuggestedQuestions)
	})

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	if static != nil {
		r.Handle("/*", static)
	}
	return r
}
