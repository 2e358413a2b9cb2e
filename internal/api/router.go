package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/popmap/popmap/internal/auth"
	"github.com/popmap/popmap/internal/database"
	"github.com/popmap/popmap/internal/metrics"
)

// Dependencies bundles everything the routes need.
type Dependencies struct {
	DB         *sql.DB
	Businesses BusinessDirectory
	Events     EventDirectory
	History    ImportHistory
	Runner     ImportRunner
	Users      UserDirectory
	AuthConfig auth.Config
	Collector  *metrics.Collector
	MediaDir   string
	Logger     *slog.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, deps Dependencies) {
	importHandler := NewImportHandler(deps.Businesses, deps.Runner, deps.History, deps.Logger)
	eventHandler := NewEventHandler(deps.Businesses, deps.Events, deps.Logger)
	authHandler := NewAuthHandler(deps.Users, deps.AuthConfig, deps.Logger)

	authMiddleware := auth.Middleware(deps.AuthConfig)

	instrument := func(path string, handler http.Handler) http.Handler {
		return deps.Collector.InstrumentHandler(path, handler)
	}

	// Authentication routes
	mux.Handle("/api/auth/login", instrument("/api/auth/login", http.HandlerFunc(authHandler.Login)))
	mux.Handle("/api/auth/validate", instrument("/api/auth/validate",
		authMiddleware(http.HandlerFunc(authHandler.Validate))))

	// Import routes (owner only)
	mux.Handle("/api/import", instrument("/api/import",
		authMiddleware(http.HandlerFunc(importHandler.TriggerImport))))
	mux.Handle("/api/import/history", instrument("/api/import/history",
		authMiddleware(http.HandlerFunc(importHandler.GetHistory))))

	// Event routes (owner only)
	mux.Handle("/api/events", instrument("/api/events",
		authMiddleware(http.HandlerFunc(eventHandler.ListEvents))))
	mux.Handle("/api/events/", instrument("/api/events/:id",
		authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/status") {
				eventHandler.UpdateEventStatus(w, r)
				return
			}
			http.NotFound(w, r)
		}))))

	// Stored event images
	if deps.MediaDir != "" {
		mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaDir))))
	}

	// Operational endpoints
	mux.Handle("/metrics", deps.Collector.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := database.HealthCheck(r.Context(), deps.DB); err != nil {
				deps.Logger.Error("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
