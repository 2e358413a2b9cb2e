package instagram

import (
	"context"
	"errors"
	"time"
)

// SourcePost is a normalized Instagram post flowing through the import
// pipeline. Posts are produced fresh per fetch and never persisted directly.
type SourcePost struct {
	ExternalID string    `json:"external_id"`
	Caption    string    `json:"caption"`
	ImageURL   string    `json:"image_url,omitempty"`
	PostedAt   time.Time `json:"posted_at"`
	Permalink  string    `json:"permalink"`
	Username   string    `json:"username"`
}

// Sentinel errors distinguishing upstream failure modes. Callers branch with
// errors.Is; the orchestrator treats all three as terminal for the run.
var (
	// ErrRateLimited indicates upstream throttling. Runs are not retried
	// inline; the caller re-triggers later.
	ErrRateLimited = errors.New("instagram: rate limited")

	// ErrAccountNotFound indicates the configured handle does not exist.
	ErrAccountNotFound = errors.New("instagram: account not found")

	// ErrServiceUnavailable covers network failures, timeouts, unexpected
	// status codes, malformed payloads and missing credentials.
	ErrServiceUnavailable = errors.New("instagram: service unavailable")
)

// Client abstracts the upstream Instagram data source. The production
// implementation talks to a third-party scraping API; the interface is shaped
// so an official Graph API implementation can be swapped in without touching
// the orchestrator or extractor.
type Client interface {
	// FetchPostsByHashtag returns at most limit posts from the account whose
	// caption contains #hashtag (case-insensitive), most recent first as
	// provided by the upstream source.
	FetchPostsByHashtag(ctx context.Context, handle, hashtag string, limit int) ([]SourcePost, error)

	// HealthCheck reports whether the upstream API is reachable.
	HealthCheck(ctx context.Context) bool
}
