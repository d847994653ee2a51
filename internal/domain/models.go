package domain

// Domain contains core models shared by the digest pipeline.

// Article is a single search hit reported by a news provider.
type Article struct {
	ID          string
	Title       string
	URL         string
	Description string
	ImageURL    string
	SourceName  string
	PublishedAt string
}

// Content is the scraped body of an article page.
type Content struct {
	Text     string
	ImageURL string
}

// Summary is the per-article view model rendered as a card.
type Summary struct {
	Title     string `json:"title"`
	Image     string `json:"image"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Published string `json:"published"`
}

// Flash categories understood by the template.
const (
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a user-visible notice attached to the rendered page.
type Flash struct {
	Category string
	Message  string
}

// Page is everything the index template needs for a single response.
type Page struct {
	Query    string
	Articles []Summary
	Flashes  []Flash
}

// AddFlash appends a notice to the page.
func (p *Page) AddFlash(category, msg string) {
	p.Flashes = append(p.Flashes, Flash{Category: category, Message: msg})
}
