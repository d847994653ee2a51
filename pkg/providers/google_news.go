package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// googleNewsFetcher implements Fetcher for the Google News RSS search feed.
type googleNewsFetcher struct {
	client HTTPClient
}

// NewGoogleNewsFetcher builds a fetcher for Google News RSS search.
func NewGoogleNewsFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &googleNewsFetcher{client: client}
}

func (f *googleNewsFetcher) Type() string {
	return TypeGoogleNewsRSS
}

func (f *googleNewsFetcher) Search(ctx context.Context, cfg Provider, query string) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, TypeGoogleNewsRSS) {
		return nil, fmt.Errorf("google news fetcher received incompatible provider type %q", cfg.Type)
	}

	endpoint, err := googleNewsURL(cfg, query)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, endpoint, cfg.RequestHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", cfg.ID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: responseSnippet(resp.Body())}
	}

	feed, err := gofeed.NewParser().ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", cfg.ID, err)
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		title, source := splitTitleSource(item.Title)
		if source == "" {
			source = hostOf(link)
		}

		art := domain.Article{
			ID:          HashURL(link),
			Title:       title,
			URL:         link,
			Description: strings.TrimSpace(item.Description),
			SourceName:  source,
			PublishedAt: strings.TrimSpace(item.Published),
		}
		if item.Image != nil {
			art.ImageURL = strings.TrimSpace(item.Image.URL)
		}
		articles = append(articles, art)
	}

	return capArticles(articles, cfg.Limit), nil
}

func googleNewsURL(cfg Provider, query string) (string, error) {
	u, err := url.Parse(cfg.SourceURL)
	if err != nil {
		return "", fmt.Errorf("parse %s source_url: %w", cfg.ID, err)
	}

	country := strings.ToUpper(cfg.Setting(ConfigCountryKey, "US"))
	params := u.Query()
	params.Set("q", query)
	params.Set("hl", cfg.Language+"-"+country)
	params.Set("gl", country)
	params.Set("ceid", country+":"+cfg.Language)
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// splitTitleSource separates Google News "Headline - Publisher" titles.
func splitTitleSource(raw string) (title, source string) {
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, " - ")
	if idx <= 0 {
		return raw, ""
	}
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+3:])
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
