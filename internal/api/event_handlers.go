package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/popmap/popmap/internal/auth"
	"github.com/popmap/popmap/internal/models"
)

// EventHandler serves event listing and moderation endpoints.
type EventHandler struct {
	businesses BusinessDirectory
	events     EventDirectory
	logger     *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(businesses BusinessDirectory, events EventDirectory, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		businesses: businesses,
		events:     events,
		logger:     logger,
	}
}

// ListEvents handles GET /api/events. An optional status query parameter
// filters the list; drafts awaiting review are status=pending. active=true
// narrows the result to approved events that have not yet ended.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
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

	status := models.EventStatus(r.URL.Query().Get("status"))
	if status != "" && !models.ValidEventStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	events, err := h.events.ListByBusiness(r.Context(), business.ID, status)
	if err != nil {
		h.logger.Error("failed to list events", "business_id", business.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if r.URL.Query().Get("active") == "true" {
		now := time.Now()
		active := make([]models.Event, 0, len(events))
		for i := range events {
			if events[i].IsActive(now) {
				active = append(active, events[i])
			}
		}
		events = active
	}

	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// UpdateEventStatus handles PUT /api/events/:id/status. Owners use it to
// approve or reject imported drafts.
func (h *EventHandler) UpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/events/"), "/status")
	if eventID == "" || strings.Contains(eventID, "/") {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var payload struct {
		Status models.EventStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidEventStatus(payload.Status) {
		writeError(w, http.StatusBadRequest, "Invalid event status")
		return
	}

	business := resolveBusiness(w, r, h.businesses, h.logger, userID)
	if business == nil {
		return
	}

	event, err := h.events.GetByID(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to load event", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if event == nil || event.BusinessID != business.ID {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	updated, err := h.events.UpdateStatus(r.Context(), eventID, payload.Status)
	if err != nil {
		h.logger.Error("failed to update event status", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"id": eventID, "status": payload.Status})
}
