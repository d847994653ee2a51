package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

// MaxPageBytes is the largest article page the scraper's own client will download.
const MaxPageBytes = 1 << 20

var (
	errEmptyContent = errors.New("no readable content")
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Options tunes a Scraper.
type Options struct {
	// Timeout bounds a single page download. Zero leaves it to the HTTP client.
	Timeout time.Duration
	// MaxChars truncates extracted text. Zero disables truncation.
	MaxChars int
	// Headers are sent with every page request.
	Headers map[string]string
}

// Scraper fetches article pages and extracts readable text and the lead image.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
	opts   Options
}

// NewScraper constructs a scraper with the provided HTTP client.
// A nil client gets a resty client capped at MaxPageBytes.
func NewScraper(client httpclient.Client, log logger.Logger, opts Options) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second).SetResponseBodyLimit(MaxPageBytes)
	}
	return &Scraper{client: client, log: logger.Ensure(log), opts: opts}
}

// Extract downloads the page and returns its content, or ContentNotAvailable on any failure.
func (s *Scraper) Extract(ctx context.Context, pageURL string) domain.Content {
	content, err := s.fetchAndParse(ctx, pageURL)
	if err != nil {
		s.log.WarnObj("article content scrape failed", "scrape_error", map[string]any{
			"url":   pageURL,
			"error": err.Error(),
		})
		return domain.Content{Text: ContentNotAvailable}
	}
	return content
}

func (s *Scraper) fetchAndParse(ctx context.Context, pageURL string) (domain.Content, error) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return domain.Content{}, fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.Content{}, fmt.Errorf("unsupported url %q", pageURL)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	resp, err := s.client.Get(ctx, parsed.String(), s.opts.Headers)
	if err != nil {
		return domain.Content{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return domain.Content{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return domain.Content{}, fmt.Errorf("extract article: %w", err)
	}

	text := sanitize(article.TextContent)
	if text == "" {
		return domain.Content{}, errEmptyContent
	}

	image := strings.TrimSpace(article.Image)
	if image == "" {
		if meta, err := parseMeta(body); err == nil {
			image = meta.ImageURL
		}
	}

	return domain.Content{
		Text:     Truncate(text, s.opts.MaxChars),
		ImageURL: resolveURL(image, parsed.String()),
	}, nil
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	pm := pageMeta{}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.ImageURL = firstNonEmpty(
		extract(`meta[property="og:image"]`),
		extract(`meta[name="twitter:image"]`),
	)

	return pm, nil
}

type pageMeta struct {
	Title    string
	ImageURL string
}

// resolveURL makes ref absolute against base. Empty refs stay empty.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

func sanitize(s string) string {
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Truncate cuts s to at most max runes. max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
