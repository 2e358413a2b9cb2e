package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sink stores an uploaded blob and returns its public URL. The import
// pipeline uses it for post images; failures there are logged and swallowed,
// so implementations should return errors rather than panic.
type Sink interface {
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// DiskSink writes blobs under a local directory served as static files.
type DiskSink struct {
	dir     string
	baseURL string
}

// NewDiskSink creates a sink rooted at dir, serving files under baseURL.
func NewDiskSink(dir, baseURL string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &DiskSink{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Store writes the blob with a collision-free name derived from
// suggestedName and returns its URL.
func (s *DiskSink) Store(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	name := fmt.Sprintf("%s-%s", uuid.New().String(), sanitizeName(suggestedName))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, name), nil
}

// sanitizeName strips path separators and anything else unsafe in a filename.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "blob"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
