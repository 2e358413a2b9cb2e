package extraction

import (
	"context"
)

// MockExtractor returns pre-configured extractions keyed by caption, falling
// back to a default. It implements Extractor for orchestrator tests and for
// running the pipeline without model credentials.
type MockExtractor struct {
	ByCaption map[string]Extraction
	Default   Extraction
	Threshold float64
}

// NewMockExtractor creates a mock with the default confidence threshold that
// rejects every caption unless configured otherwise.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		ByCaption: make(map[string]Extraction),
		Default:   NotEvent(0),
		Threshold: DefaultConfidenceThreshold,
	}
}

// Extract returns the canned extraction for the caption.
func (m *MockExtractor) Extract(ctx context.Context, caption string, tenant TenantContext) Extraction {
	if e, ok := m.ByCaption[caption]; ok {
		return e
	}
	return m.Default
}

// ConfidenceThreshold returns the configured threshold.
func (m *MockExtractor) ConfidenceThreshold() float64 {
	return m.Threshold
}
