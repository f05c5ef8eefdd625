package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/your-org/sitegen/pkg/adapters"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Client implements adapters.Provider for OpenAI-compatible chat completion
// APIs (OpenAI itself, xAI Grok).
type Client struct {
	apiKey     string
	endpoint   string
	vision     bool
	httpClient *http.Client
}

func NewClient(apiKey string, httpClient *http.Client, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{apiKey: apiKey, httpClient: httpClient, endpoint: strings.TrimRight(endpoint, "/")}
}

// WithVision marks the target model as accepting image parts. Without it
// attachments are dropped and only the text prompt is sent.
func (c *Client) WithVision(enabled bool) *Client {
	c.vision = enabled
	return c
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Generate(ctx context.Context, req adapters.GenerateRequest) (adapters.GenerateResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return adapters.GenerateResponse{}, adapters.ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return adapters.GenerateResponse{}, adapters.ErrEmptyPrompt
	}
	if req.Model == "" {
		req.Model = "gpt-4o"
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 4000
	}

	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, nil)
	if err != nil {
		return adapters.GenerateResponse{}, fmt.Errorf("build request: %w", err)
	}
	hReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	var content any = req.Prompt
	if req.Image != nil && c.vision {
		content = []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]any{"url": req.Image.DataURI()}},
		}
	}

	payload := map[string]any{
		"model":       req.Model,
		"messages":    []map[string]any{{"role": "user", "content": content}},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}
	body, err := adapters.DoJSON(ctx, c.httpClient, hReq, payload)
	if err != nil {
		return adapters.GenerateResponse{}, err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return adapters.GenerateResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return adapters.GenerateResponse{}, fmt.Errorf("parse response: %w", adapters.ErrEmptyResponse)
	}

	return adapters.GenerateResponse{
		Text:         parsed.Choices[0].Message.Content,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		Raw:          body,
	}, nil
}
