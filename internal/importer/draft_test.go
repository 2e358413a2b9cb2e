package importer

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/popmap/popmap/internal/extraction"
	"github.com/popmap/popmap/internal/geocoding"
	"github.com/popmap/popmap/internal/instagram"
	"github.com/popmap/popmap/internal/models"
)

type fakeGeocoder struct {
	lat, lon float64
	hit      bool
	lastAddr string
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool) {
	g.lastAddr = address
	return g.lat, g.lon, g.hit
}

func newTestFactory(geocoder geocoding.Geocoder) *DraftFactory {
	f := NewDraftFactory(geocoder, nil, slog.Default())
	f.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	f.location = time.UTC
	return f
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestBuild_AllDefaults(t *testing.T) {
	factory := newTestFactory(geocoding.Noop{})

	business := models.Business{ID: "biz-1", Name: "Blue Door Cafe", OwnerID: "user-1"}
	post := instagram.SourcePost{ExternalID: "p1", Caption: "something vague #popmap"}

	event := factory.Build(context.Background(), "evt-1", post, &extraction.EventDetails{}, business, nil)

	wantStart := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if !event.StartAt.Equal(wantStart) {
		t.Errorf("expected start today at noon, got %v", event.StartAt)
	}
	if !event.EndAt.Equal(wantStart.Add(2 * time.Hour)) {
		t.Errorf("expected end two hours after start, got %v", event.EndAt)
	}
	if event.Address != "Location TBD" {
		t.Errorf("expected Location TBD, got %q", event.Address)
	}
	if event.Latitude != 0 || event.Longitude != 0 {
		t.Errorf("expected zero coordinates, got %v, %v", event.Latitude, event.Longitude)
	}
	if event.Title != "Event by Blue Door Cafe" {
		t.Errorf("unexpected title: %q", event.Title)
	}
	if event.Description != post.Caption {
		t.Errorf("expected caption as description, got %q", event.Description)
	}
	if event.Status != models.EventStatusPending {
		t.Errorf("expected pending status, got %q", event.Status)
	}
	if event.CreatedBy != "user-1" {
		t.Errorf("expected owner as creator, got %q", event.CreatedBy)
	}
}

func TestBuild_ExtractedFieldsWin(t *testing.T) {
	geocoder := &fakeGeocoder{lat: 45.5, lon: -122.6, hit: true}
	factory := newTestFactory(geocoder)

	details := &extraction.EventDetails{
		Title:             "Spring Tasting",
		Description:       "Five course tasting menu.",
		StartDate:         datePtr(2026, 4, 2),
		StartTime:         &extraction.ClockTime{Hour: 18, Minute: 30},
		EndTime:           &extraction.ClockTime{Hour: 21, Minute: 0},
		Location:          "88 Pine St, Portland OR",
		SuggestedCategory: "food",
	}

	business := models.Business{ID: "biz-1", Name: "Blue Door Cafe", DefaultCategory: "dining"}
	event := factory.Build(context.Background(), "evt-1", instagram.SourcePost{Caption: "x"}, details, business, nil)

	wantStart := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)
	if !event.StartAt.Equal(wantStart) {
		t.Errorf("unexpected start: %v", event.StartAt)
	}
	wantEnd := time.Date(2026, 4, 2, 21, 0, 0, 0, time.UTC)
	if !event.EndAt.Equal(wantEnd) {
		t.Errorf("unexpected end: %v", event.EndAt)
	}
	if event.Title != "Spring Tasting" {
		t.Errorf("unexpected title: %q", event.Title)
	}
	if event.Description != "Five course tasting menu." {
		t.Errorf("unexpected description: %q", event.Description)
	}
	if event.Category != "food" {
		t.Errorf("unexpected category: %q", event.Category)
	}
	if event.Address != "88 Pine St, Portland OR" {
		t.Errorf("unexpected address: %q", event.Address)
	}
	if event.Latitude != 45.5 || event.Longitude != -122.6 {
		t.Errorf("expected geocoded coordinates, got %v, %v", event.Latitude, event.Longitude)
	}
	if geocoder.lastAddr != "88 Pine St, Portland OR" {
		t.Errorf("geocoder called with %q", geocoder.lastAddr)
	}
}

func TestBuild_VenueAddressFallback(t *testing.T) {
	factory := newTestFactory(geocoding.Noop{})

	venue := &models.Venue{ID: "v1", BusinessID: "biz-1", Name: "Main Room", Address: "12 Oak Ave"}
	event := factory.Build(context.Background(), "evt-1", instagram.SourcePost{}, &extraction.EventDetails{}, models.Business{ID: "biz-1", Name: "B"}, venue)

	if event.Address != "12 Oak Ave" {
		t.Errorf("expected venue address, got %q", event.Address)
	}
}

func TestBuild_DescriptionTruncated(t *testing.T) {
	factory := newTestFactory(geocoding.Noop{})

	caption := strings.Repeat("é", 600)
	event := factory.Build(context.Background(), "evt-1", instagram.SourcePost{Caption: caption}, &extraction.EventDetails{}, models.Business{Name: "B"}, nil)

	if got := len([]rune(event.Description)); got != 500 {
		t.Errorf("expected 500 runes, got %d", got)
	}
}

func TestBuild_EndBeforeStartFallsBack(t *testing.T) {
	factory := newTestFactory(geocoding.Noop{})

	details := &extraction.EventDetails{
		StartTime: &extraction.ClockTime{Hour: 20, Minute: 0},
		EndTime:   &extraction.ClockTime{Hour: 18, Minute: 0},
	}
	event := factory.Build(context.Background(), "evt-1", instagram.SourcePost{}, details, models.Business{Name: "B"}, nil)

	if !event.EndAt.Equal(event.StartAt.Add(2 * time.Hour)) {
		t.Errorf("expected default duration fallback, got start %v end %v", event.StartAt, event.EndAt)
	}
}

func TestBuild_GeocoderSkippedForTBD(t *testing.T) {
	geocoder := &fakeGeocoder{hit: true, lat: 1, lon: 1}
	factory := newTestFactory(geocoder)

	event := factory.Build(context.Background(), "evt-1", instagram.SourcePost{}, &extraction.EventDetails{}, models.Business{Name: "B"}, nil)

	if geocoder.lastAddr != "" {
		t.Errorf("geocoder should not be called for placeholder address, got %q", geocoder.lastAddr)
	}
	if event.Latitude != 0 || event.Longitude != 0 {
		t.Error("expected zero coordinates for placeholder address")
	}
}
