package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/popmap/popmap/internal/models"
)

// BusinessDirectory resolves businesses for authenticated owners.
type BusinessDirectory interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.Business, error)
}

// EventDirectory exposes the event store operations the API needs.
type EventDirectory interface {
	ListByBusiness(ctx context.Context, businessID string, status models.EventStatus) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) (bool, error)
}

// ImportHistory lists past import ledger entries.
type ImportHistory interface {
	History(ctx context.Context, businessID string, limit int) ([]models.ImportHistoryEntry, error)
}

// ImportRunner triggers an import run for a business.
type ImportRunner interface {
	Run(ctx context.Context, business models.Business) (models.ImportResult, error)
}

// UserDirectory resolves users for login.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// resolveBusiness loads the authenticated user's business, writing the
// appropriate error response when it cannot.
func resolveBusiness(w http.ResponseWriter, r *http.Request, businesses BusinessDirectory, logger *slog.Logger, userID string) *models.Business {
	business, err := businesses.GetByOwner(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load business", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil
	}
	if business == nil {
		writeError(w, http.StatusNotFound, "No business found for this account")
		return nil
	}
	return business
}
