package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

// ErrMissingToken is returned by InferenceClient when no API token is configured.
var ErrMissingToken = errors.New("inference api token is missing")

var errEmptyCompletion = errors.New("model returned no summary")

// Generator produces an abstractive summary bounded by maxLen and minLen.
type Generator interface {
	Generate(ctx context.Context, text string, maxLen, minLen int) (string, error)
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatGenerator talks to an OpenAI compatible model server.
type ChatGenerator struct {
	cl    chatClient
	model string
}

// NewChatGenerator makes a generator for the server at baseURL.
func NewChatGenerator(baseURL, apiKey, model string, hc openai.HTTPDoer) *ChatGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &ChatGenerator{cl: openai.NewClientWithConfig(cfg), model: model}
}

// Generate asks the model for a deterministic summary of text.
func (g *ChatGenerator) Generate(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	resp, err := g.cl.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0,
		MaxTokens:   maxLen,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(maxLen, minLen)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errEmptyCompletion
	}
	return out, nil
}

func systemPrompt(maxLen, minLen int) string {
	return fmt.Sprintf("Summarize the news article supplied by the user in plain prose "+
		"between %d and %d tokens long. Reply with the summary only.", minLen, maxLen)
}

// InferenceClient calls a hosted summarization model over HTTP.
type InferenceClient struct {
	client  httpclient.Client
	baseURL string
	model   string
	token   string
}

// NewInferenceClient builds a client for {baseURL}/{model}.
func NewInferenceClient(client httpclient.Client, baseURL, model, token string) *InferenceClient {
	return &InferenceClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.Trim(model, "/"),
		token:   strings.TrimSpace(token),
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type inferenceResult struct {
	SummaryText string `json:"summary_text"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// Generate posts text to the hosted model and returns its summary_text.
func (c *InferenceClient) Generate(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	if c.token == "" {
		return "", ErrMissingToken
	}
	body := inferenceRequest{
		Inputs:     text,
		Parameters: inferenceParameters{MaxLength: maxLen, MinLength: minLen},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.token}

	resp, err := c.client.PostJSON(ctx, c.baseURL+"/"+c.model, headers, body)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}

	raw := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return "", fmt.Errorf("inference status %d: %s", code, inferenceErrorMessage(raw))
	}

	var results []inferenceResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", fmt.Errorf("inference response: %s", inferenceErrorMessage(raw))
	}
	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", errEmptyCompletion
	}
	return strings.TrimSpace(results[0].SummaryText), nil
}

func inferenceErrorMessage(raw []byte) string {
	var e inferenceError
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != "" {
		return e.Error
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "empty response"
	}
	return s
}
