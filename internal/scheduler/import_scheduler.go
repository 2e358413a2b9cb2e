package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/popmap/popmap/internal/models"
)

// BusinessLister yields the businesses eligible for automatic import.
type BusinessLister interface {
	ListImportable(ctx context.Context) ([]models.Business, error)
}

// ImportRunner runs one import for a business.
type ImportRunner interface {
	Run(ctx context.Context, business models.Business) (models.ImportResult, error)
}

// ImportScheduler periodically sweeps all eligible businesses and runs the
// import pipeline for each. A failure for one business never stops the sweep.
type ImportScheduler struct {
	businesses BusinessLister
	runner     ImportRunner
	logger     *slog.Logger
	stopChan   chan struct{}
	interval   time.Duration
}

// NewImportScheduler creates a new import scheduler
func NewImportScheduler(businesses BusinessLister, runner ImportRunner, interval time.Duration, logger *slog.Logger) *ImportScheduler {
	return &ImportScheduler{
		businesses: businesses,
		runner:     runner,
		logger:     logger,
		stopChan:   make(chan struct{}),
		interval:   interval,
	}
}

// Start begins the scheduler loop
func (s *ImportScheduler) Start(ctx context.Context) {
	s.logger.Info("starting import scheduler", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("import scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("import scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler
func (s *ImportScheduler) Stop() {
	close(s.stopChan)
}

// sweep runs the import pipeline for every eligible business.
func (s *ImportScheduler) sweep(ctx context.Context) {
	businesses, err := s.businesses.ListImportable(ctx)
	if err != nil {
		s.logger.Error("failed to list importable businesses", "error", err)
		return
	}

	if len(businesses) == 0 {
		s.logger.Debug("no businesses eligible for automatic import")
		return
	}

	s.logger.Info("starting scheduled import sweep", "businesses", len(businesses))

	for _, business := range businesses {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		default:
		}

		result, err := s.runner.Run(ctx, business)
		if err != nil {
			s.logger.Error("scheduled import failed",
				"business_id", business.ID,
				"handle", business.InstagramHandle,
				"error", err,
			)
			continue
		}

		s.logger.Info("scheduled import completed",
			"business_id", business.ID,
			"imported", result.Imported,
			"skipped_duplicate", result.SkippedDuplicate,
		)
	}
}
