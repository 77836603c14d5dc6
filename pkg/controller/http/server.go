package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/frontend"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router  chi.Router
	handler *Handler
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, dashboard interfaces.Dashboard) (*Server, error) {
	router := chi.NewRouter()
	handler := NewHandler(dashboard)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// API routes
	router.Route("/api", func(r chi.Router) {
		r.Use(NoCache)

		r.Get("/options", handler.HandleOptions)
		r.Get("/dashboard", handler.HandleDashboard)
		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", handler.HandleListComplaints)
			r.Post("/", handler.HandleSubmitComplaint)
		})
		r.Post("/assistant", handler.HandleAssistant)
		r.Post("/reload", handler.HandleReload)

		r.NotFound(handler.HandleAPINotFound)
	})

	// Frontend routes (serve embedded page)
	page, err := newPage()
	if err != nil {
		ctxlog.From(ctx).Warn("Embedded page unavailable, serving landing page", "error", err)
		router.Get("/*", handleFallbackHome)
	} else {
		router.Handle("/*", page)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:  router,
		handler: handler,
	}

	return server, nil
}

func newPage() (*PageHandler, error) {
	files, err := frontend.Pages()
	if err != nil {
		return nil, goerr.Wrap(err, "embedded page not built")
	}
	return NewPageHandler(files)
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "kujo",
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}

// handleFallbackHome handles the root path when frontend is not available
func handleFallbackHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Kujo</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #f4f6f8;
            color: #22313f;
        }
        .container {
            text-align: center;
            padding: 2rem;
        }
        code {
            background: #e3e8ee;
            padding: 0.1rem 0.3rem;
            border-radius: 3px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Kujo</h1>
        <p>Complaint dashboard. The page is not bundled in this build.</p>
        <p>The JSON API is available under <code>/api</code>, for example <a href="/api/dashboard">/api/dashboard</a>.</p>
    </div>
</body>
</html>`)); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write fallback home page", "error", err)
	}
}
