package models

import (
	"encoding/json"
	"time"
)

// ImportLogEntry records one successfully imported Instagram post. The
// (business_id, instagram_post_id) pair is unique in the database; that
// constraint is the system's only duplicate-prevention mechanism, so entries
// are written exactly once and never mutated or deleted by the pipeline.
type ImportLogEntry struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	InstagramPostID string    `json:"instagram_post_id"`
	EventID         string    `json:"event_id,omitempty"`
	Permalink       string    `json:"permalink"`
	Caption         string    `json:"caption"`
	ImportedAt      time.Time `json:"imported_at"`
}

// ImportHistoryEntry is the read model served by the import history
// endpoint. EventTitle is empty when the imported event has been deleted.
type ImportHistoryEntry struct {
	InstagramPostID string    `json:"instagram_post_id"`
	EventID         string    `json:"event_id"`
	EventTitle      string    `json:"event_title"`
	Permalink       string    `json:"permalink"`
	ImportedAt      time.Time `json:"imported_at"`
}

// ImportResult aggregates the outcome of one import run. It is returned to
// the caller and never persisted. Error is null in the JSON form when the run
// completed, and carries the terminal failure reason otherwise.
type ImportResult struct {
	Imported         int      `json:"imported"`
	SkippedDuplicate int      `json:"skipped_duplicate"`
	SkippedNotEvent  int      `json:"skipped_not_event"`
	SkippedError     int      `json:"skipped_error"`
	DraftIDs         []string `json:"draft_ids"`
	Error            string   `json:"-"`
}

// MarshalJSON serializes Error as an explicit null when the run succeeded.
func (r ImportResult) MarshalJSON() ([]byte, error) {
	type alias ImportResult

	var errField *string
	if r.Error != "" {
		errField = &r.Error
	}

	draftIDs := r.DraftIDs
	if draftIDs == nil {
		draftIDs = []string{}
	}

	out := struct {
		alias
		DraftIDs []string `json:"draft_ids"`
		Error    *string  `json:"error"`
	}{alias: alias(r), DraftIDs: draftIDs, Error: errField}

	return json.Marshal(out)
}

// Failed reports whether the run terminated before processing any posts.
func (r *ImportResult) Failed() bool {
	return r.Error != ""
}
