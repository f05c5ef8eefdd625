package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/your-org/sitegen/pkg/adapters"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client implements adapters.Provider for Gemini generateContent API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient takes the full generateContent URL. When endpoint is empty the
// URL is derived from the request model.
func NewClient(apiKey string, httpClient *http.Client, endpoint string) *Client {
	return &Client{apiKey: apiKey, httpClient: httpClient, endpoint: strings.TrimRight(endpoint, "/")}
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, req adapters.GenerateRequest) (adapters.GenerateResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return adapters.GenerateResponse{}, adapters.ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return adapters.GenerateResponse{}, adapters.ErrEmptyPrompt
	}
	if req.Model == "" {
		req.Model = "gemini-2.0-flash"
	}

	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(req.Model), nil)
	if err != nil {
		return adapters.GenerateResponse{}, fmt.Errorf("build request: %w", err)
	}

	parts := []map[string]any{{"text": req.Prompt}}
	if req.Image != nil {
		parts = append(parts, map[string]any{
			"inline_data": map[string]any{
				"mime_type": req.Image.MediaType(),
				"data":      req.Image.Data,
			},
		})
	}
	payload := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	}
	if req.MaxTokens > 0 {
		payload["generationConfig"] = map[string]any{
			"temperature":     req.Temperature,
			"maxOutputTokens": req.MaxTokens,
		}
	}
	body, err := adapters.DoJSON(ctx, c.httpClient, hReq, payload)
	if err != nil {
		return adapters.GenerateResponse{}, err
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return adapters.GenerateResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return adapters.GenerateResponse{}, fmt.Errorf("parse response: %w", adapters.ErrEmptyResponse)
	}

	return adapters.GenerateResponse{
		Text:         parsed.Candidates[0].Content.Parts[0].Text,
		InputTokens:  parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
		Raw:          body,
	}, nil
}

func (c *Client) url(model string) string {
	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent", defaultBaseURL, url.PathEscape(model))
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(c.apiKey)
}
