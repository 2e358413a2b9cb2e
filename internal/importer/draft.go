package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/popmap/popmap/internal/extraction"
	"github.com/popmap/popmap/internal/geocoding"
	"github.com/popmap/popmap/internal/instagram"
	"github.com/popmap/popmap/internal/media"
	"github.com/popmap/popmap/internal/models"
)

const (
	// locationTBD is the address placeholder when neither the extractor nor
	// the business's venues provide one.
	locationTBD = "Location TBD"

	// defaultEventDuration is applied when the extractor yields no end time.
	defaultEventDuration = 2 * time.Hour

	// maxDescriptionRunes caps descriptions derived from raw captions.
	maxDescriptionRunes = 500

	imageFetchTimeout = 30 * time.Second
	maxImageBytes     = 10 << 20
)

// DraftFactory builds pending draft events from Instagram posts and their
// extraction results. Every gap in the extraction is filled deterministically
// so that a draft is always produced for an accepted post.
type DraftFactory struct {
	geocoder    geocoding.Geocoder
	sink        media.Sink
	imageClient *http.Client
	logger      *slog.Logger

	// now and location are injection points for tests.
	now      func() time.Time
	location *time.Location
}

// NewDraftFactory creates a factory using the local timezone for date
// defaults.
func NewDraftFactory(geocoder geocoding.Geocoder, sink media.Sink, logger *slog.Logger) *DraftFactory {
	return &DraftFactory{
		geocoder:    geocoder,
		sink:        sink,
		imageClient: &http.Client{Timeout: imageFetchTimeout},
		logger:      logger,
		now:         time.Now,
		location:    time.Local,
	}
}

// Build assembles a draft event. venue may be nil when the business has no
// venues. Geocoding and image download are best effort; their failures leave
// zero coordinates and an empty image URL.
func (f *DraftFactory) Build(ctx context.Context, eventID string, post instagram.SourcePost, details *extraction.EventDetails, business models.Business, venue *models.Venue) models.Event {
	now := f.now().In(f.location)

	startAt := f.resolveStart(details, now)
	endAt := f.resolveEnd(details, startAt)

	address := resolveAddress(details, venue)

	var lat, lon float64
	if address != locationTBD {
		if gLat, gLon, ok := f.geocoder.Geocode(ctx, address); ok {
			lat, lon = gLat, gLon
		}
	}

	title := details.Title
	if title == "" {
		title = fmt.Sprintf("Event by %s", business.Name)
	}

	description := details.Description
	if description == "" {
		description = truncateRunes(post.Caption, maxDescriptionRunes)
	}

	category := details.SuggestedCategory
	if category == "" {
		category = business.DefaultCategory
	}

	imageURL := f.attachImage(ctx, post)

	created := f.now().UTC()
	return models.Event{
		ID:          eventID,
		BusinessID:  business.ID,
		Title:       title,
		Description: description,
		Address:     address,
		Latitude:    lat,
		Longitude:   lon,
		StartAt:     startAt,
		EndAt:       endAt,
		ImageURL:    imageURL,
		Category:    category,
		Status:      models.EventStatusPending,
		CreatedBy:   business.OwnerID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// resolveStart combines the extracted date and time, defaulting to today at
// noon for whichever component is missing.
func (f *DraftFactory) resolveStart(details *extraction.EventDetails, now time.Time) time.Time {
	year, month, day := now.Date()
	if details.StartDate != nil {
		year, month, day = details.StartDate.Date()
	}

	hour, minute := 12, 0
	if details.StartTime != nil {
		hour, minute = details.StartTime.Hour, details.StartTime.Minute
	}

	return time.Date(year, month, day, hour, minute, 0, 0, f.location)
}

// resolveEnd combines the extracted end date and time, defaulting the date to
// the start date and the time to two hours after the start. An end that does
// not land after the start falls back to start plus the default duration.
func (f *DraftFactory) resolveEnd(details *extraction.EventDetails, startAt time.Time) time.Time {
	if details.EndDate == nil && details.EndTime == nil {
		return startAt.Add(defaultEventDuration)
	}

	year, month, day := startAt.Date()
	if details.EndDate != nil {
		year, month, day = details.EndDate.Date()
	}

	var endAt time.Time
	if details.EndTime != nil {
		endAt = time.Date(year, month, day, details.EndTime.Hour, details.EndTime.Minute, 0, 0, f.location)
	} else {
		base := time.Date(year, month, day, startAt.Hour(), startAt.Minute(), 0, 0, f.location)
		endAt = base.Add(defaultEventDuration)
	}

	if !endAt.After(startAt) {
		return startAt.Add(defaultEventDuration)
	}
	return endAt
}

func resolveAddress(details *extraction.EventDetails, venue *models.Venue) string {
	if details.Location != "" {
		return details.Location
	}
	if venue != nil && venue.Address != "" {
		return venue.Address
	}
	return locationTBD
}

// attachImage downloads the post image and stores it in the media sink.
// Any failure is logged and swallowed; the draft simply has no image.
func (f *DraftFactory) attachImage(ctx context.Context, post instagram.SourcePost) string {
	if post.ImageURL == "" || f.sink == nil {
		return ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, post.ImageURL, nil)
	if err != nil {
		f.logger.Warn("skipping post image, bad url", "post_id", post.ExternalID, "error", err)
		return ""
	}

	resp, err := f.imageClient.Do(req)
	if err != nil {
		f.logger.Warn("skipping post image, download failed", "post_id", post.ExternalID, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("skipping post image, unexpected status", "post_id", post.ExternalID, "status", resp.StatusCode)
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		f.logger.Warn("skipping post image, read failed", "post_id", post.ExternalID, "error", err)
		return ""
	}

	url, err := f.sink.Store(ctx, data, fmt.Sprintf("instagram_%s.jpg", post.ExternalID))
	if err != nil {
		f.logger.Warn("skipping post image, store failed", "post_id", post.ExternalID, "error", err)
		return ""
	}

	return url
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
