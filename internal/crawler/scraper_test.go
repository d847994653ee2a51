package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response or error.
type stubHTTPClient struct {
	resp  httpclient.Response
	err   error
	calls int
}

func (s *stubHTTPClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubHTTPClient) PostJSON(context.Context, string, map[string]string, any) (httpclient.Response, error) {
	return nil, errors.New("not supported")
}

const articlePage = `
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="OG Title">
    <meta property="og:image" content="/img/og.png">
  </head>
  <body>
    <nav>Home | World | Sport</nav>
    <article>
      <h1>Rivers rise across the north</h1>
      <p>Heavy rain over the weekend pushed several rivers above the danger mark, officials said on Monday, as rescue teams moved thousands of residents to higher ground.</p>
      <p>The weather office has forecast more rain for the coming days and asked fishermen not to venture out, while schools in the worst affected districts will stay closed until Thursday.</p>
      <p>Engineers are monitoring the embankments around the clock and additional pumps have been deployed in low lying neighbourhoods where water entered homes overnight.</p>
    </article>
  </body>
</html>`

func TestScraperExtractsTextAndImage(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(articlePage), statusCode: 200}}
	scraper := NewScraper(client, nil, Options{})

	content := scraper.Extract(context.Background(), "https://example.com/news/rivers")
	if content.Text == ContentNotAvailable {
		t.Fatalf("expected extracted text")
	}
	if !strings.Contains(content.Text, "rescue teams moved thousands of residents") {
		t.Fatalf("missing paragraph text in %q", content.Text)
	}
	if strings.Contains(content.Text, "\n") || strings.Contains(content.Text, "  ") {
		t.Fatalf("expected collapsed whitespace, got %q", content.Text)
	}
	if content.ImageURL != "https://example.com/img/og.png" {
		t.Fatalf("unexpected image %q", content.ImageURL)
	}
}

func TestScraperTruncatesText(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(articlePage), statusCode: 200}}
	scraper := NewScraper(client, nil, Options{MaxChars: 40})

	content := scraper.Extract(context.Background(), "https://example.com/news/rivers")
	if n := len([]rune(content.Text)); n == 0 || n > 40 {
		t.Fatalf("expected 1..40 runes, got %d", n)
	}
}

func TestScraperReturnsSentinelOnFailures(t *testing.T) {
	cases := map[string]*stubHTTPClient{
		"status":    {resp: stubHTTPResponse{body: []byte("missing"), statusCode: 404}},
		"transport": {err: errors.New("connection reset")},
		"empty":     {resp: stubHTTPResponse{body: []byte("<html><body></body></html>"), statusCode: 200}},
	}
	for name, client := range cases {
		t.Run(name, func(t *testing.T) {
			content := NewScraper(client, nil, Options{}).Extract(context.Background(), "https://example.com/a")
			if content.Text != ContentNotAvailable || content.ImageURL != "" {
				t.Fatalf("expected sentinel content, got %+v", content)
			}
		})
	}
}

func TestScraperRejectsNonHTTPURL(t *testing.T) {
	client := &stubHTTPClient{}
	content := NewScraper(client, nil, Options{}).Extract(context.Background(), "ftp://example.com/file")
	if content.Text != ContentNotAvailable {
		t.Fatalf("expected sentinel, got %q", content.Text)
	}
	if client.calls != 0 {
		t.Fatalf("expected no http calls, got %d", client.calls)
	}
}

func TestParseMetaPrefersOGTags(t *testing.T) {
	meta, err := parseMeta([]byte(articlePage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "OG Title" || meta.ImageURL != "/img/og.png" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/img.png", "https://example.com/articles/1")
	if got != "https://example.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}

	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo world", 5); got != "héllo" {
		t.Fatalf("Truncate got %q", got)
	}
	if got := Truncate("short", 0); got != "short" {
		t.Fatalf("zero limit should disable truncation, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}

func TestScraperDefaultClientRejectsOversizedPage(t *testing.T) {
	padding := strings.Repeat("<p>filler</p>", MaxPageBytes/len("<p>filler</p>")+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Replace(articlePage, "</article>", padding+"</article>", 1)))
	}))
	defer srv.Close()

	content := NewScraper(nil, nil, Options{}).Extract(context.Background(), srv.URL+"/news/rivers")
	if content.Text != ContentNotAvailable || content.ImageURL != "" {
		t.Fatalf("expected sentinel for oversized page, got %+v", content)
	}
}
