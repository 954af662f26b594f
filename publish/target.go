package publish

import (
	"context"
	"io"
	"strings"
)

// Target is a remote photo destination. Store uploads one object and
// returns the public URL it is reachable at.
type Target interface {
	// Name returns the name of this target
	Name() string
	// Store uploads the object under the given key with the given
	// content type and returns its public URL
	Store(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error)
	// Close releases any held connections
	Close() error
}

// KeySlug converts a category display name to its object-key form,
// e.g. "Robotic Arms" -> "robotic-arms"
func KeySlug(categoryName string) string {
	return strings.ReplaceAll(strings.ToLower(categoryName), " ", "-")
}
