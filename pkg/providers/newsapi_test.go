package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

// fakeResponse lets us stub the httpclient.Client interface.
type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }

// fakeHTTPClient returns one canned response and records requested URLs.
type fakeHTTPClient struct {
	resp  fakeResponse
	err   error
	calls []string
}

func (f *fakeHTTPClient) Get(_ context.Context, u string, _ map[string]string) (httpclient.Response, error) {
	f.calls = append(f.calls, u)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeHTTPClient) PostJSON(context.Context, string, map[string]string, any) (httpclient.Response, error) {
	return nil, errors.New("not supported")
}

func newsAPIProvider(t *testing.T, limit int) Provider {
	t.Helper()
	p, err := New(Provider{
		Type:      TypeNewsAPI,
		SourceURL: "https://newsapi.example/v2/everything",
		APIKey:    "secret",
		Limit:     limit,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func newsAPIBody(n int) []byte {
	var items []string
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{
			"source": {"id": null, "name": "Source %d"},
			"title": "Title %d",
			"url": "https://example.com/%d",
			"urlToImage": "https://example.com/%d.jpg",
			"publishedAt": "2024-01-0%dT00:00:00Z"
		}`, i, i, i, i, i%9+1))
	}
	return []byte(fmt.Sprintf(`{"status":"ok","totalResults":%d,"articles":[%s]}`, n, strings.Join(items, ",")))
}

func TestNewsAPISearchCapsResults(t *testing.T) {
	for _, limit := range []int{6, 10} {
		client := &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: newsAPIBody(15)}}
		f := NewNewsAPIFetcher(client)

		articles, err := f.Search(context.Background(), newsAPIProvider(t, limit), "climate")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(articles) != limit {
			t.Fatalf("expected %d articles, got %d", limit, len(articles))
		}
		first := articles[0]
		if first.Title != "Title 0" || first.SourceName != "Source 0" || first.ImageURL != "https://example.com/0.jpg" {
			t.Fatalf("unexpected article %+v", first)
		}
		if first.ID != HashURL("https://example.com/0") {
			t.Fatalf("unexpected id %q", first.ID)
		}
	}
}

func TestNewsAPISearchBuildsQuery(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: newsAPIBody(1)}}
	f := NewNewsAPIFetcher(client)

	if _, err := f.Search(context.Background(), newsAPIProvider(t, 6), "space x"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(client.calls))
	}
	u, err := url.Parse(client.calls[0])
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("q") != "space x" || q.Get("language") != "en" || q.Get("apiKey") != "secret" || q.Get("pageSize") != "6" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestNewsAPISearchMissingKey(t *testing.T) {
	client := &fakeHTTPClient{}
	p := newsAPIProvider(t, 6)
	p.APIKey = ""

	_, err := NewNewsAPIFetcher(client).Search(context.Background(), p, "x")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("no request expected without a key")
	}
}

func TestNewsAPISearchStatusError(t *testing.T) {
	body := []byte(`{"status":"error","code":"rateLimited","message":"You have made too many requests."}`)
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: body}}

	_, err := NewNewsAPIFetcher(client).Search(context.Background(), newsAPIProvider(t, 6), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "You have made too many requests." || apiErr.Code != "rateLimited" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestNewsAPISearchNon2xx(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: 502, body: []byte("bad gateway")}}

	_, err := NewNewsAPIFetcher(client).Search(context.Background(), newsAPIProvider(t, 6), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 502 || apiErr.Message != "bad gateway" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestNewsAPISearchTransportError(t *testing.T) {
	client := &fakeHTTPClient{err: errors.New("dial tcp: timeout")}

	_, err := NewNewsAPIFetcher(client).Search(context.Background(), newsAPIProvider(t, 6), "x")
	if err == nil || !strings.Contains(err.Error(), "dial tcp") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport errors must not look like api errors")
	}
}

func TestNewsAPISearchEmpty(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: []byte(`{"status":"ok","totalResults":0,"articles":[]}`)}}

	articles, err := NewNewsAPIFetcher(client).Search(context.Background(), newsAPIProvider(t, 6), "x")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(articles))
	}
}
