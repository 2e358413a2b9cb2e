package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/popmap/popmap/internal/models"
)

type fakeLister struct {
	businesses []models.Business
	err        error
}

func (f fakeLister) ListImportable(ctx context.Context) ([]models.Business, error) {
	return f.businesses, f.err
}

type recordingRunner struct {
	mu     sync.Mutex
	ran    []string
	errFor map[string]error
}

func (r *recordingRunner) Run(ctx context.Context, business models.Business) (models.ImportResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, business.ID)
	if err := r.errFor[business.ID]; err != nil {
		return models.ImportResult{Error: err.Error()}, err
	}
	return models.ImportResult{Imported: 1}, nil
}

func (r *recordingRunner) runs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ran...)
}

func TestSweep_RunsAllBusinesses(t *testing.T) {
	lister := fakeLister{businesses: []models.Business{
		{ID: "biz-1", InstagramHandle: "a"},
		{ID: "biz-2", InstagramHandle: "b"},
	}}
	runner := &recordingRunner{}

	s := NewImportScheduler(lister, runner, time.Hour, slog.Default())
	s.sweep(context.Background())

	if got := runner.runs(); len(got) != 2 {
		t.Errorf("expected 2 runs, got %v", got)
	}
}

func TestSweep_FailureDoesNotStopSweep(t *testing.T) {
	lister := fakeLister{businesses: []models.Business{
		{ID: "biz-1", InstagramHandle: "a"},
		{ID: "biz-2", InstagramHandle: "b"},
		{ID: "biz-3", InstagramHandle: "c"},
	}}
	runner := &recordingRunner{errFor: map[string]error{
		"biz-2": fmt.Errorf("upstream down"),
	}}

	s := NewImportScheduler(lister, runner, time.Hour, slog.Default())
	s.sweep(context.Background())

	if got := runner.runs(); len(got) != 3 {
		t.Errorf("expected all 3 businesses attempted, got %v", got)
	}
}

func TestStartAndStop(t *testing.T) {
	runner := &recordingRunner{}
	s := NewImportScheduler(fakeLister{}, runner, 50*time.Millisecond, slog.Default())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
