package instagram

import (
	"context"
	"strings"
)

// MockClient provides a canned-post implementation of Client for tests and
// for running the server without scraper credentials.
type MockClient struct {
	Posts []SourcePost
	Err   error
}

// NewMockClient creates a mock client serving the given posts.
func NewMockClient(posts []SourcePost) *MockClient {
	return &MockClient{Posts: posts}
}

// FetchPostsByHashtag filters the canned posts the same way the production
// client does: case-insensitive #hashtag substring match, upstream order,
// at most limit results.
func (m *MockClient) FetchPostsByHashtag(ctx context.Context, handle, hashtag string, limit int) ([]SourcePost, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	needle := "#" + strings.ToLower(hashtag)
	matched := make([]SourcePost, 0, limit)
	for _, p := range m.Posts {
		if !strings.Contains(strings.ToLower(p.Caption), needle) {
			continue
		}
		matched = append(matched, p)
		if len(matched) >= limit {
			break
		}
	}

	return matched, nil
}

// HealthCheck always succeeds unless the mock is configured to fail.
func (m *MockClient) HealthCheck(ctx context.Context) bool {
	return m.Err == nil
}
