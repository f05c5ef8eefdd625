package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/your-org/sitegen/internal/audit"
	"github.com/your-org/sitegen/internal/diagnostics"
	"github.com/your-org/sitegen/internal/extract"
	"github.com/your-org/sitegen/internal/prompt"
	"github.com/your-org/sitegen/internal/router"
	"github.com/your-org/sitegen/internal/version"
	"github.com/your-org/sitegen/pkg/adapters"
	"go.uber.org/zap"
)

const (
	healthMessage         = "Local Service Business IDE is running with AI support!"
	defaultUpdateMessage  = "Website updated successfully!"
	errorHandlerProvider  = "Error Handler"
	endpointGenerate      = "/api/generate-website"
	endpointChat          = "/api/chat"
	emptyGenerationError  = "Failed to generate website content"
	emptyChatResponseText = "Failed to generate response"
)

var generateTroubleshooting = []string{
	"Check if your API keys are properly configured in the .env file",
	"Verify your API provider quotas and billing status",
	"Try a different AI provider from the dropdown",
	"Check your internet connection",
}

type imagePayload struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (p *imagePayload) toAdapter() *adapters.Image {
	if p == nil || strings.TrimSpace(p.Data) == "" {
		return nil
	}
	return &adapters.Image{MIMEType: p.MIMEType, Data: p.Data}
}

type generateRequest struct {
	BusinessData  json.RawMessage `json:"businessData"`
	SelectedAgent string          `json:"selectedAgent"`
	Image         *imagePayload   `json:"image,omitempty"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	HTML        string `json:"html"`
	Agent       string `json:"agent"`
	Provider    string `json:"provider"`
	RawResponse bool   `json:"rawResponse,omitempty"`
}

type generateError struct {
	Success         bool            `json:"success"`
	Error           string          `json:"error"`
	Troubleshooting []string        `json:"troubleshooting"`
	BusinessData    json.RawMessage `json:"businessData"`
}

type chatRequest struct {
	Prompt       string          `json:"prompt"`
	BusinessData json.RawMessage `json:"businessData"`
	CurrentHTML  string          `json:"currentHtml"`
	AIAgent      string          `json:"aiAgent"`
	Image        *imagePayload   `json:"image,omitempty"`
}

type chatUpdate struct {
	Success         bool   `json:"success"`
	HTML            string `json:"html"`
	Message         string `json:"message"`
	Agent           string `json:"agent"`
	Provider        string `json:"provider"`
	IsWebsiteUpdate bool   `json:"isWebsiteUpdate"`
}

type chatReply struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Agent    string `json:"agent"`
	Provider string `json:"provider"`
	IsError  bool   `json:"isError,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": healthMessage,
		"version": version.Version,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	data, err := parseBusinessData(req.BusinessData)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, errBusinessDataRequired) {
			msg = "Business data is required"
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}
	agent := req.SelectedAgent
	if agent == "" {
		agent = defaultAgent
	}

	resp, elapsed, err := s.call(r.Context(), endpointGenerate, agent, prompt.Website(data, s.branding), req.Image.toAdapter())
	if err != nil {
		s.record(r.Context(), endpointGenerate, agent, "", elapsed, err)
		writeJSON(w, http.StatusInternalServerError, generateError{
			Error:           "AI Provider Error: " + err.Error(),
			Troubleshooting: generateTroubleshooting,
			BusinessData:    req.BusinessData,
		})
		return
	}
	if resp.Content == "" {
		s.record(r.Context(), endpointGenerate, agent, "", elapsed, nil)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: emptyGenerationError})
		return
	}

	parsed := extract.Parse(resp.Content)
	s.metrics.ObserveExtraction(string(parsed.Strategy))
	s.record(r.Context(), endpointGenerate, agent, parsed.Strategy, elapsed, nil)
	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		HTML:        parsed.HTML,
		Agent:       agent,
		Provider:    resp.Provider,
		RawResponse: parsed.RawFallback,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Prompt is required"})
		return
	}
	agent := req.AIAgent
	if agent == "" {
		agent = defaultAgent
	}

	p := prompt.Edit(optionalBusinessData(req.BusinessData), req.CurrentHTML, req.Prompt, s.branding)
	resp, elapsed, err := s.call(r.Context(), endpointChat, agent, p, req.Image.toAdapter())
	if err != nil {
		s.record(r.Context(), endpointChat, agent, "", elapsed, err)
		writeJSON(w, http.StatusOK, chatReply{
			Success:  true,
			Response: chatTroubleshooting(err),
			Agent:    agent,
			Provider: errorHandlerProvider,
			IsError:  true,
		})
		return
	}
	if resp.Content == "" {
		s.record(r.Context(), endpointChat, agent, "", elapsed, nil)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: emptyChatResponseText})
		return
	}

	parsed := extract.Parse(resp.Content)
	s.metrics.ObserveExtraction(string(parsed.Strategy))
	s.record(r.Context(), endpointChat, agent, parsed.Strategy, elapsed, nil)
	if parsed.RawFallback {
		writeJSON(w, http.StatusOK, chatReply{
			Success:  true,
			Response: resp.Content,
			Agent:    agent,
			Provider: resp.Provider,
		})
		return
	}

	message := parsed.Explanation
	if message == "" {
		message = defaultUpdateMessage
	}
	writeJSON(w, http.StatusOK, chatUpdate{
		Success:         true,
		HTML:            parsed.HTML,
		Message:         message,
		Agent:           agent,
		Provider:        resp.Provider,
		IsWebsiteUpdate: true,
	})
}

func (s *Server) handleTestAI(w http.ResponseWriter, r *http.Request) {
	rep := diagnostics.Run(r.Context(), s.caller, s.registry, s.now)
	failed := 0
	for _, res := range rep.Results {
		if res.Status == diagnostics.StatusError {
			failed++
		}
	}
	s.logger.Info("connection test finished",
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("providers", len(rep.Results)),
		zap.Int("failed", failed),
	)
	writeJSON(w, http.StatusOK, rep)
}

// call routes one prompt and logs a failure.
func (s *Server) call(ctx context.Context, endpoint, agent, p string, image *adapters.Image) (router.Response, time.Duration, error) {
	start := time.Now()
	resp, err := s.caller.CallProvider(ctx, agent, p, image)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("provider error",
			zap.String("request_id", RequestID(ctx)),
			zap.String("endpoint", endpoint),
			zap.String("agent", agent),
			zap.Error(err),
		)
	}
	return resp, elapsed, err
}

func (s *Server) record(ctx context.Context, endpoint, agent string, strategy extract.Strategy, elapsed time.Duration, err error) {
	status := "success"
	switch {
	case errors.Is(err, router.ErrProviderTimeout):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	ev := audit.Event{
		RequestID: RequestID(ctx),
		Endpoint:  endpoint,
		Provider:  agent,
		Status:    status,
		Strategy:  string(strategy),
	}
	if aErr := s.audit.Record(ev, elapsed, err); aErr != nil {
		s.logger.Error("audit write failed", zap.Error(aErr))
	}
}

func chatTroubleshooting(err error) string {
	return fmt.Sprintf(`**AI Provider Issue**: %s

**Troubleshooting Steps:**
• Check if API keys are configured in the .env file
• Verify API provider quotas and billing status
• Try switching to a different AI provider
• Check network connectivity

**Available Actions:**
• Switch to another AI agent using the dropdown below
• Try your request again after checking the above
• Contact support if the issue persists

The business information you entered is saved, so you can retry without re-entering it.`, err.Error())
}
