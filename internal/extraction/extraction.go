package extraction

import (
	"context"
	"time"
)

// Extraction is the tagged result of classifying one caption. Details is nil
// when the caption is not an event announcement; every optional field lives
// behind that nil check so callers cannot read event fields without first
// establishing that an event was found.
type Extraction struct {
	Confidence float64
	Details    *EventDetails
}

// IsEvent reports whether the caption was classified as an event announcement.
func (e Extraction) IsEvent() bool {
	return e.Details != nil
}

// NotEvent builds the rejected variant. Parse failures and transport errors
// use NotEvent(0) so ambiguous input is never imported.
func NotEvent(confidence float64) Extraction {
	return Extraction{Confidence: confidence}
}

// EventDetails carries the structured fields extracted from an event
// announcement. Date and time fields are nil when the model omitted them or
// produced something unparseable; the draft factory applies fallbacks.
type EventDetails struct {
	Title             string
	Description       string
	StartDate         *time.Time
	StartTime         *ClockTime
	EndDate           *time.Time
	EndTime           *ClockTime
	Location          string
	SuggestedCategory string
}

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// TenantContext is the business context embedded in the extraction prompt.
type TenantContext struct {
	Name            string
	DefaultCategory string
}

// Extractor classifies captions as event announcements. Implementations never
// return an error: any failure degrades to NotEvent so one bad post cannot
// abort a batch.
type Extractor interface {
	Extract(ctx context.Context, caption string, tenant TenantContext) Extraction

	// ConfidenceThreshold is the minimum confidence at which an extraction
	// qualifies for import. The threshold is compared inclusively.
	ConfidenceThreshold() float64
}
