package providers

import (
	"errors"
	"fmt"
	"strings"
)

// Package providers contains the news search backends and their config helpers.

const (
	TypeNewsAPI       = "newsapi"
	TypeGoogleNewsRSS = "google_news_rss"

	defaultLimit    = 6
	defaultLanguage = "en"
)

// Provider describes the search backend the digest queries.
type Provider struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Type      string         `json:"type" yaml:"type"`
	SourceURL string         `json:"source_url" yaml:"source_url"`
	APIKey    string         `json:"-" yaml:"-"`
	Language  string         `json:"language" yaml:"language"`
	Limit     int            `json:"limit" yaml:"limit"`
	Config    map[string]any `json:"config" yaml:"config"`
}

// New sanitizes and validates a provider definition.
func New(p Provider) (Provider, error) {
	p = sanitizeProvider(p)
	if err := validateProvider(p); err != nil {
		return Provider{}, err
	}
	return p, nil
}

// RequiresAPIKey reports whether the provider type authenticates with a key.
func (p Provider) RequiresAPIKey() bool {
	return p.Type == TypeNewsAPI
}

func sanitizeProvider(p Provider) Provider {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.SourceURL = strings.TrimSpace(p.SourceURL)
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.Language = strings.TrimSpace(p.Language)

	if p.ID == "" {
		p.ID = p.Type
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Language == "" {
		p.Language = defaultLanguage
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}

	return p
}

func validateProvider(p Provider) error {
	if p.Type == "" {
		return errors.New("type is required")
	}
	if p.SourceURL == "" {
		return fmt.Errorf("source_url is required for provider %q", p.ID)
	}
	return nil
}

// Keys read from Provider.Config. "accept" may also be set to override the Accept header.
const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigCountryKey        = "country"

	configAcceptKey = "accept"
)

// Setting returns the trimmed string stored under key, or fallback when it is absent, blank or not a string.
func (p Provider) Setting(key, fallback string) string {
	if v, ok := p.Config[key].(string); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

// RequestHeaders maps the header settings onto HTTP header names.
func (p Provider) RequestHeaders() map[string]string {
	headers := make(map[string]string, 3)
	for key, name := range map[string]string{
		ConfigUserAgentKey:      "User-Agent",
		configAcceptKey:         "Accept",
		ConfigAcceptLanguageKey: "Accept-Language",
	} {
		if v := p.Setting(key, ""); v != "" {
			headers[name] = v
		}
	}
	return headers
}
