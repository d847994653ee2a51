package providers

import (
	"context"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

// Fetcher runs a search against one kind of news provider.
// Concrete implementations live in provider-specific files (e.g., newsapi.go).
type Fetcher interface {
	Type() string
	Search(ctx context.Context, cfg Provider, query string) ([]domain.Article, error)
}

// FetcherRegistry resolves the fetcher implementation for a given provider config.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within providers.
type HTTPClient = httpclient.Client
