package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

func TestNewProviderAppliesDefaults(t *testing.T) {
	p, err := New(Provider{Type: " NewsAPI ", SourceURL: " https://newsapi.example/v2/everything "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Type != TypeNewsAPI || p.ID != TypeNewsAPI || p.Name != TypeNewsAPI {
		t.Fatalf("unexpected identity fields %+v", p)
	}
	if p.Limit != defaultLimit || p.Language != "en" {
		t.Fatalf("unexpected defaults limit=%d language=%q", p.Limit, p.Language)
	}
	if p.SourceURL != "https://newsapi.example/v2/everything" {
		t.Fatalf("source_url not trimmed: %q", p.SourceURL)
	}
	if !p.RequiresAPIKey() {
		t.Fatalf("newsapi provider should require a key")
	}
}

func TestNewProviderRejectsMissingSource(t *testing.T) {
	if _, err := New(Provider{Type: TypeNewsAPI}); err == nil {
		t.Fatalf("expected error for missing source_url")
	}
	if _, err := New(Provider{SourceURL: "https://x"}); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

type namedFetcher struct{ typ string }

func (n namedFetcher) Type() string { return n.typ }
func (n namedFetcher) Search(context.Context, Provider, string) ([]domain.Article, error) {
	return nil, nil
}

func TestFetcherRegistryResolvesByType(t *testing.T) {
	newsapi := namedFetcher{typ: TypeNewsAPI}
	reg := NewFetcherRegistry(newsapi, nil)

	f, err := reg.FetcherFor(Provider{ID: "primary", Type: " NEWSAPI "})
	if err != nil || f != Fetcher(newsapi) {
		t.Fatalf("expected newsapi fetcher, got %v err=%v", f, err)
	}
	if _, err := reg.FetcherFor(Provider{ID: "x", Type: "unknown"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDefaultFetcherRegistryKnowsBuiltins(t *testing.T) {
	reg := DefaultFetcherRegistry(&fakeHTTPClient{})
	for _, typ := range []string{TypeNewsAPI, TypeGoogleNewsRSS} {
		f, err := reg.FetcherFor(Provider{ID: typ, Type: typ})
		if err != nil {
			t.Fatalf("FetcherFor(%s): %v", typ, err)
		}
		if f.Type() != typ {
			t.Fatalf("expected %s fetcher, got %s", typ, f.Type())
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := error(&APIError{StatusCode: 401, Code: "apiKeyInvalid", Message: "Your API key is invalid."})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Your API key is invalid." {
		t.Fatalf("errors.As failed for %v", err)
	}
	if got := (&APIError{StatusCode: 500}).Error(); got != "provider error (status 500): Unknown error" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestProviderSettingsAndHeaders(t *testing.T) {
	p := Provider{Config: map[string]any{
		ConfigUserAgentKey:      " digest-bot/1.0 ",
		ConfigAcceptLanguageKey: "",
		ConfigCountryKey:        42,
	}}

	if got := p.Setting(ConfigCountryKey, "US"); got != "US" {
		t.Fatalf("non-string setting should fall back, got %q", got)
	}
	headers := p.RequestHeaders()
	if len(headers) != 1 || headers["User-Agent"] != "digest-bot/1.0" {
		t.Fatalf("unexpected headers %v", headers)
	}
	if got := (Provider{}).Setting(configAcceptKey, "x"); got != "x" {
		t.Fatalf("nil config should fall back, got %q", got)
	}
}
