package summarizer

import (
	"context"
	"fmt"

	"github.com/samvad-hq/samvad-news-digest/internal/config"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

// Backend names accepted by the summarizer config key.
const (
	BackendAbstractive = "abstractive"
	BackendExtractive  = "extractive"
	BackendHosted      = "hosted"
	BackendPipeline    = "pipeline"
)

// Fallback texts returned instead of an error.
const (
	SummaryUnavailable = "Summary unavailable."
	NotEnoughContent   = "Not enough content to summarize."
	hostedErrorPrefix  = "Error generating summary: "
)

// Summarizer condenses article text. It never fails; problems surface as fallback text.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string) string
}

// New builds the backend selected by cfg.Summarizer.
func New(cfg *config.Config, client httpclient.Client, log logger.Logger) (Summarizer, error) {
	log = logger.Ensure(log)
	switch cfg.Summarizer {
	case BackendAbstractive:
		return NewAbstractive(localGenerator(cfg), cfg.SummaryInputWords, log), nil
	case BackendExtractive:
		return NewExtractive(cfg.ExtractiveSentences, cfg.SummaryInputWords), nil
	case BackendHosted:
		if client == nil {
			client = httpclient.NewRestyClient(cfg.HTTPTimeout)
		}
		gen := NewInferenceClient(client, cfg.HFAPIURL, cfg.HFModel, cfg.HFAPIToken)
		return NewHosted(gen, cfg.SummaryInputWords, log), nil
	case BackendPipeline:
		return NewPipeline(localGenerator(cfg), PipelineOptions{
			MinWords:   cfg.PipelineMinWords,
			MaxLength:  cfg.PipelineMaxLength,
			MinLength:  cfg.PipelineMinLength,
			InputWords: cfg.SummaryInputWords,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown summarizer %q", cfg.Summarizer)
	}
}

func localGenerator(cfg *config.Config) *ChatGenerator {
	hc := httpclient.NewRestyHTTPClient(cfg.HTTPTimeout).GetClient()
	return NewChatGenerator(cfg.LocalModelURL, cfg.LocalModelAPIKey, cfg.LocalModelName, hc)
}
