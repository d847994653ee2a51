package summarizer

import (
	"context"

	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

// Hosted summarizes through a remote inference API and embeds failures in the output.
type Hosted struct {
	gen        Generator
	inputWords int
	log        logger.Logger
}

func NewHosted(gen Generator, inputWords int, log logger.Logger) *Hosted {
	return &Hosted{gen: gen, inputWords: inputWords, log: logger.Ensure(log)}
}

// Name implements Summarizer.
func (h *Hosted) Name() string { return BackendHosted }

// Summarize returns the remote summary or "Error generating summary: <err>".
func (h *Hosted) Summarize(ctx context.Context, text string) string {
	maxLen, minLen := TargetLength(text)
	out, err := h.gen.Generate(ctx, TruncateWords(text, h.inputWords), maxLen, minLen)
	if err != nil {
		h.log.WarnObj("summarization failed", "summarize_error", map[string]any{
			"backend": BackendHosted,
			"error":   err.Error(),
		})
		return hostedErrorPrefix + err.Error()
	}
	return out
}
