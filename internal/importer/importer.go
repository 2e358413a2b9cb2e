package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/popmap/popmap/internal/database"
	"github.com/popmap/popmap/internal/extraction"
	"github.com/popmap/popmap/internal/instagram"
	"github.com/popmap/popmap/internal/metrics"
	"github.com/popmap/popmap/internal/models"
)

// ErrNoInstagramHandle is returned when a business has no Instagram handle
// configured.
var ErrNoInstagramHandle = errors.New("business has no instagram handle")

// ErrPremiumRequired is returned when a business lacks the subscription
// feature that covers Instagram import.
var ErrPremiumRequired = errors.New("business does not have a premium subscription")

// Ledger records imported posts. Record must be atomic: when two runs race on
// the same post, exactly one Record succeeds and the rest return
// database.ErrDuplicateImport.
type Ledger interface {
	AlreadyImported(ctx context.Context, businessID string, postIDs []string) (map[string]bool, error)
	Record(ctx context.Context, entry models.ImportLogEntry) error
}

// EventStore persists draft events.
type EventStore interface {
	Create(ctx context.Context, event models.Event) error
}

// VenueSource provides the venue used as the address fallback.
type VenueSource interface {
	LatestVenue(ctx context.Context, businessID string) (*models.Venue, error)
}

// Importer orchestrates one import run: fetch recent posts, classify each
// caption, and create draft events for accepted posts. Failures on a single
// post never abort the run; only the fetch itself is terminal.
type Importer struct {
	source    instagram.Client
	extractor extraction.Extractor
	factory   *DraftFactory
	ledger    Ledger
	events    EventStore
	venues    VenueSource
	collector *metrics.Collector
	logger    *slog.Logger

	hashtag    string
	fetchLimit int
}

// New creates an Importer.
func New(
	source instagram.Client,
	extractor extraction.Extractor,
	factory *DraftFactory,
	ledger Ledger,
	events EventStore,
	venues VenueSource,
	collector *metrics.Collector,
	logger *slog.Logger,
	hashtag string,
	fetchLimit int,
) *Importer {
	return &Importer{
		source:     source,
		extractor:  extractor,
		factory:    factory,
		ledger:     ledger,
		events:     events,
		venues:     venues,
		collector:  collector,
		logger:     logger,
		hashtag:    hashtag,
		fetchLimit: fetchLimit,
	}
}

// Run imports tagged posts for one business. The returned error is the
// run-level terminal failure, if any; per-post failures are absorbed into the
// result counters.
func (i *Importer) Run(ctx context.Context, business models.Business) (models.ImportResult, error) {
	start := time.Now()
	var result models.ImportResult

	// Entitlement and handle are verified here, not just at the trigger
	// surfaces, so every caller gets the same gate.
	if !business.HasFeature(models.FeaturePremiumCustomization) {
		return i.fail(result, start, ErrPremiumRequired)
	}
	if business.InstagramHandle == "" {
		return i.fail(result, start, ErrNoInstagramHandle)
	}

	logger := i.logger.With("business_id", business.ID, "handle", business.InstagramHandle)
	logger.Info("starting instagram import", "hashtag", i.hashtag)

	posts, err := i.source.FetchPostsByHashtag(ctx, business.InstagramHandle, i.hashtag, i.fetchLimit)
	if err != nil {
		logger.Error("failed to fetch posts", "error", err)
		return i.fail(result, start, err)
	}

	postIDs := make([]string, len(posts))
	for idx, post := range posts {
		postIDs[idx] = post.ExternalID
	}

	imported, err := i.ledger.AlreadyImported(ctx, business.ID, postIDs)
	if err != nil {
		logger.Error("failed to check import ledger", "error", err)
		return i.fail(result, start, err)
	}

	venue, err := i.venues.LatestVenue(ctx, business.ID)
	if err != nil {
		logger.Warn("failed to load venue, address fallback unavailable", "error", err)
		venue = nil
	}

	tenant := extraction.TenantContext{
		Name:            business.Name,
		DefaultCategory: business.DefaultCategory,
	}

	for _, post := range posts {
		if imported[post.ExternalID] {
			result.SkippedDuplicate++
			i.collector.CountPost(metrics.DispositionSkippedDuplicate)
			continue
		}

		i.processPost(ctx, logger, post, tenant, business, venue, &result)
	}

	logger.Info("instagram import completed",
		"imported", result.Imported,
		"skipped_duplicate", result.SkippedDuplicate,
		"skipped_not_event", result.SkippedNotEvent,
		"skipped_error", result.SkippedError,
	)
	i.collector.ObserveImportRun(metrics.OutcomeCompleted, time.Since(start))

	return result, nil
}

// processPost handles a single post. Ledger recording precedes event
// creation: the unique constraint on the ledger is the claim that settles
// races between concurrent runs, so a post never yields more than one draft.
func (i *Importer) processPost(
	ctx context.Context,
	logger *slog.Logger,
	post instagram.SourcePost,
	tenant extraction.TenantContext,
	business models.Business,
	venue *models.Venue,
	result *models.ImportResult,
) {
	ext := i.extractor.Extract(ctx, post.Caption, tenant)
	i.collector.ObserveConfidence(ext.Confidence)

	if !ext.IsEvent() || ext.Confidence < i.extractor.ConfidenceThreshold() {
		logger.Debug("post rejected by extractor", "post_id", post.ExternalID, "confidence", ext.Confidence)
		result.SkippedNotEvent++
		i.collector.CountPost(metrics.DispositionSkippedNotEvent)
		return
	}

	eventID := uuid.New().String()
	entry := models.ImportLogEntry{
		ID:              uuid.New().String(),
		BusinessID:      business.ID,
		InstagramPostID: post.ExternalID,
		EventID:         eventID,
		Permalink:       post.Permalink,
		Caption:         post.Caption,
		ImportedAt:      time.Now().UTC(),
	}

	if err := i.ledger.Record(ctx, entry); err != nil {
		if errors.Is(err, database.ErrDuplicateImport) {
			result.SkippedDuplicate++
			i.collector.CountPost(metrics.DispositionSkippedDuplicate)
			return
		}
		logger.Error("failed to record import", "post_id", post.ExternalID, "error", err)
		result.SkippedError++
		i.collector.CountPost(metrics.DispositionSkippedError)
		return
	}

	draft := i.factory.Build(ctx, eventID, post, ext.Details, business, venue)
	if err := i.events.Create(ctx, draft); err != nil {
		logger.Error("failed to create draft event", "post_id", post.ExternalID, "error", err)
		result.SkippedError++
		i.collector.CountPost(metrics.DispositionSkippedError)
		return
	}

	logger.Info("draft event created", "post_id", post.ExternalID, "event_id", eventID, "confidence", ext.Confidence)
	result.Imported++
	result.DraftIDs = append(result.DraftIDs, eventID)
	i.collector.CountPost(metrics.DispositionImported)
}

func (i *Importer) fail(result models.ImportResult, start time.Time, err error) (models.ImportResult, error) {
	result.Error = err.Error()
	i.collector.ObserveImportRun(metrics.OutcomeFailed, time.Since(start))
	return result, err
}
