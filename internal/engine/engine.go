package engine

import (
	"context"

	"github.com/law-makers/papers/pkg/models"
)

// ContentSource is a strategy for retrieving a page's content
type ContentSource interface {
	// Fetch retrieves the content at url. A non-nil error means no response
	// was obtained at all; HTTP-level failures are reported in the result.
	Fetch(ctx context.Context, url string) (*models.FetchResult, error)

	// Name returns the name of the source implementation
	Name() string
}
