package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

const defaultSearchTimeout = 15 * time.Second

// fetcherRegistry resolves a provider to its fetcher by type. Keys are lower-cased.
type fetcherRegistry struct {
	byType map[string]Fetcher
}

// NewFetcherRegistry builds a registry keyed by each fetcher's own type.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{byType: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		if f == nil {
			continue
		}
		if key := normalizeKey(f.Type()); key != "" {
			reg.byType[key] = f
		}
	}
	return reg
}

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// FetcherFor picks the fetcher registered for the provider's type.
func (r *fetcherRegistry) FetcherFor(cfg Provider) (Fetcher, error) {
	if f, ok := r.byType[normalizeKey(cfg.Type)]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for provider %q (type %q)", cfg.ID, cfg.Type)
}

func defaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(defaultSearchTimeout) }

// DefaultFetcherRegistry knows the NewsAPI and Google News RSS searchers.
func DefaultFetcherRegistry(client HTTPClient) FetcherRegistry {
	if client == nil {
		client = defaultHTTPClient()
	}
	return NewFetcherRegistry(
		NewNewsAPIFetcher(client),
		NewGoogleNewsFetcher(client),
	)
}
