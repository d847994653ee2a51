package summarizer

import (
	"context"

	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

// Abstractive summarizes with a local model, sizing the output from the article length.
type Abstractive struct {
	gen        Generator
	inputWords int
	log        logger.Logger
}

// NewAbstractive wraps gen. inputWords bounds the text handed to the model.
func NewAbstractive(gen Generator, inputWords int, log logger.Logger) *Abstractive {
	return &Abstractive{gen: gen, inputWords: inputWords, log: logger.Ensure(log)}
}

// Name implements Summarizer.
func (a *Abstractive) Name() string { return BackendAbstractive }

// Summarize returns the model summary or SummaryUnavailable.
func (a *Abstractive) Summarize(ctx context.Context, text string) string {
	maxLen, minLen := TargetLength(text)
	out, err := a.gen.Generate(ctx, TruncateWords(text, a.inputWords), maxLen, minLen)
	if err != nil {
		a.log.WarnObj("summarization failed", "summarize_error", map[string]any{
			"backend": BackendAbstractive,
			"error":   err.Error(),
		})
		return SummaryUnavailable
	}
	return out
}
