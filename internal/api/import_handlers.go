package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/popmap/popmap/internal/auth"
	"github.com/popmap/popmap/internal/importer"
	"github.com/popmap/popmap/internal/instagram"
	"github.com/popmap/popmap/internal/models"
)

// historyLimit caps the number of entries returned by the history endpoint.
const historyLimit = 50

// ImportHandler serves the import trigger and history endpoints.
type ImportHandler struct {
	businesses BusinessDirectory
	runner     ImportRunner
	history    ImportHistory
	logger     *slog.Logger
}

// NewImportHandler creates an ImportHandler.
func NewImportHandler(businesses BusinessDirectory, runner ImportRunner, history ImportHistory, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		businesses: businesses,
		runner:     runner,
		history:    history,
		logger:     logger,
	}
}

// TriggerImport handles POST /api/import. Upstream outages surface as a 200
// with the error field populated so clients can distinguish "the run could
// not happen right now" from request errors.
func (h *ImportHandler) TriggerImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	business := resolveBusiness(w, r, h.businesses, h.logger, userID)
	if business == nil {
		return
	}

	if !business.HasFeature(models.FeaturePremiumCustomization) {
		writeError(w, http.StatusForbidden, "Instagram import requires a premium subscription")
		return
	}

	result, err := h.runner.Run(r.Context(), *business)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, importer.ErrPremiumRequired):
		writeError(w, http.StatusForbidden, "Instagram import requires a premium subscription")
	case errors.Is(err, importer.ErrNoInstagramHandle):
		writeError(w, http.StatusBadRequest, "No Instagram handle configured for this business")
	case errors.Is(err, instagram.ErrAccountNotFound):
		writeError(w, http.StatusBadRequest, "Instagram account not found")
	case errors.Is(err, instagram.ErrRateLimited), errors.Is(err, instagram.ErrServiceUnavailable):
		writeJSON(w, http.StatusOK, result)
	default:
		h.logger.Error("import run failed", "business_id", business.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Import failed")
	}
}

// GetHistory handles GET /api/import/history.
func (h *ImportHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	business := resolveBusiness(w, r, h.businesses, h.logger, userID)
	if business == nil {
		return
	}

	entries, err := h.history.History(r.Context(), business.ID, historyLimit)
	if err != nil {
		h.logger.Error("failed to load import history", "business_id", business.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if entries == nil {
		entries = []models.ImportHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}
