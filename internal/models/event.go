package models

import (
	"time"
)

// Event represents a popup event shown on the map. Events created by the
// import pipeline always start in EventStatusPending and wait for moderation.
type Event struct {
	ID          string      `json:"id"`
	BusinessID  string      `json:"business_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	StartAt     time.Time   `json:"start_at"`
	EndAt       time.Time   `json:"end_at"`
	ImageURL    string      `json:"image_url,omitempty"`
	Category    string      `json:"category,omitempty"`
	Status      EventStatus `json:"status"`
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// EventStatus represents the moderation state of an event.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusApproved  EventStatus = "approved"
	EventStatusRejected  EventStatus = "rejected"
	EventStatusCancelled EventStatus = "cancelled"
)

// ValidEventStatus reports whether s is a known moderation state.
func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected, EventStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the event is approved and not yet over.
func (e *Event) IsActive(now time.Time) bool {
	return e.Status == EventStatusApproved && !e.EndAt.Before(now)
}
