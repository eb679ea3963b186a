package api

import (
	"log/slog"
	"net/http"

	"github.com/epw80/message-board/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Options carries the optional collaborators of the router
type Options struct {
	// StaticDir is served at the web root; empty disables static files.
	StaticDir string
	// Feed enables the /ws live feed when set.
	Feed Feed
	// Metrics enables request instrumentation and /metrics when set.
	Metrics *metrics.Metrics
}

// NewRouter builds the HTTP router with all board routes.
func NewRouter(b Board, logger *slog.Logger, opts Options) http.Handler {
	h := &Handler{
		board:     b,
		feed:      opts.Feed,
		logger:    logger,
		staticDir: opts.StaticDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same policy as CORS: any origin may subscribe
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(Recovery(logger))
	r.Use(CORS)

	r.Get("/health", h.Health)
	r.Post("/save", h.Save)
	r.Get("/messages", h.ListMessages)
	r.Delete("/messages/{id}", h.DeleteMessage)

	if opts.Feed != nil {
		r.Get("/ws", h.LiveFeed)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.NotFound(h.StaticOrNotFound)
	r.MethodNotAllowed(h.NotFound)

	return r
}
