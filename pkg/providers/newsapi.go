package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// newsAPIFetcher implements Fetcher for the NewsAPI /v2/everything endpoint.
type newsAPIFetcher struct {
	client HTTPClient
}

// NewNewsAPIFetcher builds a fetcher for NewsAPI-compatible search endpoints.
func NewNewsAPIFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &newsAPIFetcher{client: client}
}

func (f *newsAPIFetcher) Type() string {
	return TypeNewsAPI
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

func (f *newsAPIFetcher) Search(ctx context.Context, cfg Provider, query string) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, TypeNewsAPI) {
		return nil, fmt.Errorf("newsapi fetcher received incompatible provider type %q", cfg.Type)
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint, err := newsAPIURL(cfg, query)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, endpoint, cfg.RequestHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch %s articles: %w", cfg.ID, err)
	}

	body := resp.Body()
	var payload newsAPIResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Code: payload.Code, Message: payload.Message}
		if decodeErr != nil {
			apiErr.Message = responseSnippet(body)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode %s response: %w", cfg.ID, decodeErr)
	}
	if payload.Status != "ok" {
		return nil, &APIError{StatusCode: resp.StatusCode(), Code: payload.Code, Message: payload.Message}
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, domain.Article{
			ID:          HashURL(a.URL),
			Title:       strings.TrimSpace(a.Title),
			URL:         strings.TrimSpace(a.URL),
			Description: strings.TrimSpace(a.Description),
			ImageURL:    strings.TrimSpace(a.URLToImage),
			SourceName:  strings.TrimSpace(a.Source.Name),
			PublishedAt: strings.TrimSpace(a.PublishedAt),
		})
	}
	return capArticles(articles, cfg.Limit), nil
}

func newsAPIURL(cfg Provider, query string) (string, error) {
	u, err := url.Parse(cfg.SourceURL)
	if err != nil {
		return "", fmt.Errorf("parse %s source_url: %w", cfg.ID, err)
	}

	params := u.Query()
	params.Set("q", query)
	params.Set("language", cfg.Language)
	params.Set("pageSize", strconv.Itoa(cfg.Limit))
	params.Set("apiKey", cfg.APIKey)
	u.RawQuery = params.Encode()

	return u.String(), nil
}
