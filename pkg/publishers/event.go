package publishers

import (
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// EventTypeArticleSummarized tags events emitted after an article summary is rendered.
const EventTypeArticleSummarized = "article.summarized"

// Event is the payload published downstream.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Query       string         `json:"query"`
	LinkHash    string         `json:"link_hash"`
	Summary     domain.Summary `json:"summary"`
	Description string         `json:"description,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// NewSummaryEvent wraps a rendered summary for the given search query.
func NewSummaryEvent(query, linkHash string, summary domain.Summary) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        EventTypeArticleSummarized,
		Query:       query,
		LinkHash:    linkHash,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}
}

// attributes are mirrored into broker message attributes for filtering.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"event_type": e.Type}
	if e.Query != "" {
		attrs["query"] = e.Query
	}
	if e.Summary.Source != "" {
		attrs["source"] = e.Summary.Source
	}
	return attrs
}
