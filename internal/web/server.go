// Package web serves the single search page.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

const (
	indexTemplate    = "index.html"
	searchField      = "search"
	tokenField       = "form_token"
	msgExpiredSearch = "Your search form had expired, results were refreshed for your search."
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageBuilder produces the page for a query. An empty query means the default topic.
type PageBuilder interface {
	Build(ctx context.Context, query string) domain.Page
}

// Server renders search results over HTTP.
type Server struct {
	engine  *gin.Engine
	builder PageBuilder
	tokens  *FormTokens
	log     logger.Logger
}

type indexView struct {
	Query     string
	Articles  []domain.Summary
	Flashes   []domain.Flash
	FormToken string
}

// NewServer builds the gin engine with recovery and request logging.
func NewServer(builder PageBuilder, tokens *FormTokens, log logger.Logger) *Server {
	s := &Server{
		engine:  gin.New(),
		builder: builder,
		tokens:  tokens,
		log:     logger.Ensure(log),
	}

	tmpl := template.Must(template.New(indexTemplate).ParseFS(templatesFS, "templates/"+indexTemplate))
	s.engine.SetHTMLTemplate(tmpl)
	s.engine.Use(gin.Recovery(), requestLogger(s.log))

	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/", s.handleSearch)
	return s
}

// Handler exposes the engine for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, s.builder.Build(c.Request.Context(), ""))
}

// handleSearch always searches for the submitted value. A stale form token
// only adds an informational notice; posts without a token get none.
func (s *Server) handleSearch(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.PostForm(searchField)))
	page := s.builder.Build(c.Request.Context(), query)

	if raw := c.PostForm(tokenField); raw != "" {
		if err := s.tokens.Verify(raw); err != nil {
			s.log.InfoObj("stale search form token", "form_token_error", map[string]any{
				"client_ip": c.ClientIP(),
				"error":     err.Error(),
			})
			page.Flashes = append([]domain.Flash{{Category: domain.FlashInfo, Message: msgExpiredSearch}}, page.Flashes...)
		}
	}
	s.render(c, page)
}

func (s *Server) render(c *gin.Context, page domain.Page) {
	token, err := s.tokens.Issue()
	if err != nil {
		s.log.ErrorObj("issue form token failed", "form_token_error", err.Error())
	}
	c.HTML(http.StatusOK, indexTemplate, indexView{
		Query:     page.Query,
		Articles:  page.Articles,
		Flashes:   page.Flashes,
		FormToken: token,
	})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.InfoObj("http request", "http_request", map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
	}
}
