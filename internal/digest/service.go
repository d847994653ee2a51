// Package digest turns a search query into a rendered page of article summaries.
package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/crawler"
	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/internal/storage"
	"github.com/samvad-hq/samvad-news-digest/internal/summarizer"
	"github.com/samvad-hq/samvad-news-digest/pkg/providers"
	"github.com/samvad-hq/samvad-news-digest/pkg/publishers"
)

// Record defaults and user facing notices.
const (
	DefaultTitle       = "No Title"
	DefaultSource      = "Unknown"
	DefaultPublished   = "Unknown"
	DefaultPlaceholder = "https://via.placeholder.com/150"

	defaultPublishTimeout = 10 * time.Second

	msgMissingKey   = "News API key is missing."
	msgNoArticles   = "No articles found for this query."
	unknownAPIError = "Unknown error"
)

// EventPublisher delivers summary events downstream. *publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Options carries the optional collaborators of a Service.
type Options struct {
	DefaultQuery string
	Placeholder  string
	ScrapeDelay  time.Duration
	Publisher    EventPublisher
	Store        storage.Store
	// PublishTimeout bounds one background publish run. Defaults to 10s.
	PublishTimeout time.Duration
}

// Service runs search, scrape and summarize sequentially for one request.
type Service struct {
	provider   providers.Provider
	fetcher    providers.Fetcher
	extractor  crawler.ContentExtractor
	summarizer summarizer.Summarizer
	opts       Options
	log        logger.Logger

	publishing sync.WaitGroup
}

type publishItem struct {
	article domain.Article
	record  domain.Summary
}

// NewService wires the pipeline for a single provider.
func NewService(
	provider providers.Provider,
	fetcher providers.Fetcher,
	extractor crawler.ContentExtractor,
	sum summarizer.Summarizer,
	opts Options,
	log logger.Logger,
) *Service {
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	return &Service{
		provider:   provider,
		fetcher:    fetcher,
		extractor:  extractor,
		summarizer: sum,
		opts:       opts,
		log:        logger.Ensure(log),
	}
}

// Build searches for query (or the default topic when empty) and returns the page to render.
// Failures become flashes; Build itself never fails. A cancelled context returns what was
// built so far.
func (s *Service) Build(ctx context.Context, query string) domain.Page {
	page := domain.Page{Query: query}

	effective := strings.TrimSpace(query)
	if effective == "" {
		effective = s.opts.DefaultQuery
	}

	articles, err := s.fetcher.Search(ctx, s.provider, effective)
	if err != nil {
		category, msg := flashForSearchError(err)
		page.AddFlash(category, msg)
		s.log.WarnObj("article search failed", "search_error", map[string]any{
			"provider_id": s.provider.ID,
			"query":       effective,
			"error":       err.Error(),
		})
		return page
	}
	if len(articles) == 0 {
		page.AddFlash(domain.FlashWarning, msgNoArticles)
		return page
	}

	page.Articles = make([]domain.Summary, 0, len(articles))
	var pending []publishItem
	defer func() { s.publishAsync(ctx, effective, pending) }()

	for i, article := range articles {
		if ctx.Err() != nil {
			s.log.WarnObj("digest build interrupted", "digest_state", map[string]any{
				"query":     effective,
				"completed": len(page.Articles),
				"total":     len(articles),
			})
			return page
		}
		if i > 0 && s.opts.ScrapeDelay > 0 {
			if !sleepCtx(ctx, s.opts.ScrapeDelay) {
				return page
			}
		}

		record := s.buildRecord(ctx, article)
		page.Articles = append(page.Articles, record)
		pending = append(pending, publishItem{article: article, record: record})
	}

	s.log.InfoObj("digest built", "digest_result", map[string]any{
		"provider_id": s.provider.ID,
		"query":       effective,
		"articles":    len(page.Articles),
		"summarizer":  s.summarizer.Name(),
	})
	return page
}

func (s *Service) buildRecord(ctx context.Context, a domain.Article) domain.Summary {
	content := s.extractor.Extract(ctx, a.URL)
	return domain.Summary{
		Title:     orDefault(a.Title, DefaultTitle),
		Image:     firstNonEmpty(content.ImageURL, a.ImageURL, s.opts.Placeholder),
		Link:      a.URL,
		Summary:   s.summarizer.Summarize(ctx, content.Text),
		Source:    orDefault(a.SourceName, DefaultSource),
		Published: orDefault(a.PublishedAt, DefaultPublished),
	}
}

// publishAsync hands the built records to the publisher off the request path.
// The run outlives the request but not PublishTimeout.
func (s *Service) publishAsync(ctx context.Context, query string, items []publishItem) {
	if s.opts.Publisher == nil || len(items) == 0 {
		return
	}
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PublishTimeout)
		defer cancel()
		for _, it := range items {
			if pctx.Err() != nil {
				s.log.WarnObj("summary publish timed out", "publish_error", map[string]any{"query": query})
				return
			}
			s.publish(pctx, query, it.article, it.record)
		}
	}()
}

// Wait blocks until background publishing started by Build has finished.
func (s *Service) Wait() {
	s.publishing.Wait()
}

// publish emits the record once per retention window. Errors are logged only.
func (s *Service) publish(ctx context.Context, query string, a domain.Article, record domain.Summary) {
	if record.Link == "" {
		return
	}
	key := a.ID
	if key == "" {
		key = providers.HashURL(record.Link)
	}

	if s.opts.Store != nil {
		seen, err := s.opts.Store.Published(key)
		if err != nil {
			s.log.WarnObj("publish dedupe lookup failed", "storage_error", map[string]any{"key": key, "error": err.Error()})
		} else if seen {
			s.log.DebugObj("summary already published", "publish_skip", map[string]any{"key": key})
			return
		}
	}

	evt := publishers.NewSummaryEvent(query, key, record)
	evt.Description = strings.TrimSpace(a.Description)
	delivered, err := s.opts.Publisher.Publish(ctx, evt)
	if err != nil {
		s.log.ErrorObj("summary publish failed", "publish_error", map[string]any{
			"key":       key,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
	if delivered == 0 || s.opts.Store == nil {
		return
	}
	if err := s.opts.Store.MarkPublished(key); err != nil {
		s.log.WarnObj("publish dedupe mark failed", "storage_error", map[string]any{"key": key, "error": err.Error()})
	}
}

func flashForSearchError(err error) (category, msg string) {
	var apiErr *providers.APIError
	switch {
	case errors.Is(err, providers.ErrMissingAPIKey):
		return domain.FlashDanger, msgMissingKey
	case errors.As(err, &apiErr):
		return domain.FlashDanger, "API error: " + orDefault(apiErr.Message, unknownAPIError)
	default:
		return domain.FlashDanger, fmt.Sprintf("Error fetching articles: %v", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
