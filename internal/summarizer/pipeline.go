package summarizer

import (
	"context"

	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

const snippetChars = 300

// PipelineOptions configures Pipeline.
type PipelineOptions struct {
	MinWords   int
	MaxLength  int
	MinLength  int
	InputWords int
}

// Pipeline runs the model with fixed output bounds and skips texts that are too short.
type Pipeline struct {
	gen  Generator
	opts PipelineOptions
	log  logger.Logger
}

func NewPipeline(gen Generator, opts PipelineOptions, log logger.Logger) *Pipeline {
	return &Pipeline{gen: gen, opts: opts, log: logger.Ensure(log)}
}

// Name implements Summarizer.
func (p *Pipeline) Name() string { return BackendPipeline }

// Summarize returns NotEnoughContent for short texts and a raw snippet when the model fails.
func (p *Pipeline) Summarize(ctx context.Context, text string) string {
	if WordCount(text) < p.opts.MinWords {
		return NotEnoughContent
	}
	out, err := p.gen.Generate(ctx, TruncateWords(text, p.opts.InputWords), p.opts.MaxLength, p.opts.MinLength)
	if err != nil {
		p.log.WarnObj("summarization failed", "summarize_error", map[string]any{
			"backend": BackendPipeline,
			"error":   err.Error(),
		})
		return snippet(text, snippetChars)
	}
	return out
}

func snippet(text string, n int) string {
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
