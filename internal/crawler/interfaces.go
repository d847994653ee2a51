package crawler

import (
	"context"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// ContentNotAvailable is the text substituted when a page cannot be scraped.
const ContentNotAvailable = "Content not available."

// ContentExtractor downloads an article page and pulls out its readable text and top image.
// Implementations never fail: a page that cannot be scraped yields ContentNotAvailable.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) domain.Content
}
