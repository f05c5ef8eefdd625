package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/sitegen/internal/audit"
	"github.com/your-org/sitegen/internal/config"
	"github.com/your-org/sitegen/internal/metrics"
	"github.com/your-org/sitegen/internal/provider"
	"github.com/your-org/sitegen/internal/router"
	"github.com/your-org/sitegen/pkg/adapters"
	"go.uber.org/zap/zaptest"
)

type call struct {
	key    string
	prompt string
	image  *adapters.Image
}

type fakeCaller struct {
	mu    sync.Mutex
	calls []call
	resp  router.Response
	err   error
}

func (f *fakeCaller) CallProvider(_ context.Context, key string, p string, image *adapters.Image) (router.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{key: key, prompt: p, image: image})
	return f.resp, f.err
}

func newTestServer(t *testing.T, caller *fakeCaller, opts Options) *httptest.Server {
	t.Helper()
	reg, err := provider.NewRegistry(provider.Defaults())
	require.NoError(t, err)
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	srv := httptest.NewServer(NewServer(caller, reg, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

var business = map[string]any{
	"businessName": "Ace Plumbing",
	"services":     "Leak repair",
	"serviceArea":  "Austin",
	"phone":        "555-0100",
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeCaller{}, Options{})

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "OK", out["status"])
	assert.Equal(t, healthMessage, out["message"])
	assert.NotEmpty(t, resp.Header.Get(headerRequestID))
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(t, &fakeCaller{}, Options{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set(headerRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(headerRequestID))
}

func TestGenerateWebsiteExtractsHTML(t *testing.T) {
	caller := &fakeCaller{resp: router.Response{
		Content:  "Sure!\n```html\n<!DOCTYPE html><html><body>Ace</body></html>\n```",
		Provider: "Grok-3 Latest",
	}}
	rec := metrics.NewInMemoryRecorder()
	srv := newTestServer(t, caller, Options{Metrics: rec})

	resp, out := postJSON(t, srv.URL+"/api/generate-website", map[string]any{"businessData": business})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "<!DOCTYPE html><html><body>Ace</body></html>", out["html"])
	assert.Equal(t, "grok", out["agent"])
	assert.Equal(t, "Grok-3 Latest", out["provider"])
	_, raw := out["rawResponse"]
	assert.False(t, raw)

	require.Len(t, caller.calls, 1)
	assert.Equal(t, "grok", caller.calls[0].key)
	assert.Contains(t, caller.calls[0].prompt, "Business Name: Ace Plumbing")
	assert.Nil(t, caller.calls[0].image)
	assert.Equal(t, map[string]int{"fenced": 1}, rec.Extractions())
}

func TestGenerateWebsiteRawFallback(t *testing.T) {
	caller := &fakeCaller{resp: router.Response{Content: "I cannot build that.", Provider: "Claude 3.5 Haiku"}}
	srv := newTestServer(t, caller, Options{})

	_, out := postJSON(t, srv.URL+"/api/generate-website", map[string]any{
		"businessData":  business,
		"selectedAgent": "claude",
		"image":         map[string]any{"mimeType": "image/png", "data": "AAAA"},
	})
	assert.Equal(t, "I cannot build that.", out["html"])
	assert.Equal(t, true, out["rawResponse"])
	assert.Equal(t, "claude", out["agent"])
	require.Len(t, caller.calls, 1)
	require.NotNil(t, caller.calls[0].image)
	assert.Equal(t, "image/png", caller.calls[0].image.MIMEType)
}

func TestGenerateWebsiteValidation(t *testing.T) {
	caller := &fakeCaller{}
	srv := newTestServer(t, caller, Options{})

	resp, out := postJSON(t, srv.URL+"/api/generate-website", map[string]any{"selectedAgent": "grok"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Business data is required", out["error"])

	resp, out = postJSON(t, srv.URL+"/api/generate-website", map[string]any{
		"businessData": map[string]any{"businessName": "", "phone": 5550100},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "business data validation failed")

	resp, out = postJSON(t, srv.URL+"/api/generate-website", map[string]any{
		"businessData": map[string]any{"services": "Leak repair"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "businessName")
	assert.Empty(t, caller.calls)
}

func TestGenerateWebsiteProviderError(t *testing.T) {
	caller := &fakeCaller{err: &router.MissingCredentialError{Provider: "Grok-3 Latest", EnvVar: "GROK_API_KEY"}}
	dir := t.TempDir()
	auditPath := filepath.Join(dir, "audit.jsonl")
	srv := newTestServer(t, caller, Options{Audit: audit.NewLogger(auditPath)})

	resp, out := postJSON(t, srv.URL+"/api/generate-website", map[string]any{"businessData": business})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "AI Provider Error: No API key found for Grok-3 Latest. Please add GROK_API_KEY to your .env file.", out["error"])
	assert.Len(t, out["troubleshooting"], 4)
	assert.Equal(t, "Ace Plumbing", out["businessData"].(map[string]any)["businessName"])

	raw, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"endpoint":"/api/generate-website"`)
	assert.Contains(t, string(raw), `"status":"error"`)
}

func TestChatWebsiteUpdate(t *testing.T) {
	caller := &fakeCaller{resp: router.Response{
		Content:  "EXPLANATION:\nMade the header blue.\n\nHTML_START:\n<!DOCTYPE html><html>blue</html>\nHTML_END:",
		Provider: "Claude 3.5 Haiku",
	}}
	srv := newTestServer(t, caller, Options{})

	_, out := postJSON(t, srv.URL+"/api/chat", map[string]any{
		"prompt":       "make the header blue",
		"businessData": business,
		"currentHtml":  "<html>old</html>",
		"aiAgent":      "claude",
	})
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["isWebsiteUpdate"])
	assert.Equal(t, "<!DOCTYPE html><html>blue</html>", out["html"])
	assert.Equal(t, "Made the header blue.", out["message"])
	assert.Equal(t, "claude", out["agent"])
	assert.Contains(t, caller.calls[0].prompt, "Current website HTML:\n<html>old</html>")
}

func TestChatDefaultMessageAndPlainReply(t *testing.T) {
	caller := &fakeCaller{resp: router.Response{Content: "<html>x</html>", Provider: "Grok-3 Latest"}}
	srv := newTestServer(t, caller, Options{})

	_, out := postJSON(t, srv.URL+"/api/chat", map[string]any{"prompt": "tweak"})
	assert.Equal(t, defaultUpdateMessage, out["message"])
	assert.Equal(t, "grok", out["agent"])

	caller.resp = router.Response{Content: "Blue would suit a plumber.", Provider: "Grok-3 Latest"}
	_, out = postJSON(t, srv.URL+"/api/chat", map[string]any{"prompt": "what color?"})
	assert.Equal(t, "Blue would suit a plumber.", out["response"])
	_, update := out["isWebsiteUpdate"]
	assert.False(t, update)
}

func TestChatProviderErrorRendersTroubleshooting(t *testing.T) {
	caller := &fakeCaller{err: &router.ProviderError{Provider: "GPT-4o 2024-08-06", StatusCode: 429, Message: "quota exceeded"}}
	srv := newTestServer(t, caller, Options{})

	resp, out := postJSON(t, srv.URL+"/api/chat", map[string]any{"prompt": "hi", "aiAgent": "gpt-4"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["isError"])
	assert.Equal(t, errorHandlerProvider, out["provider"])
	assert.True(t, strings.HasPrefix(out["response"].(string), "**AI Provider Issue**: GPT-4o 2024-08-06 API Error: 429 - quota exceeded"))
}

func TestChatRequiresPrompt(t *testing.T) {
	srv := newTestServer(t, &fakeCaller{}, Options{})
	resp, _ := postJSON(t, srv.URL+"/api/chat", map[string]any{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTestAI(t *testing.T) {
	caller := &fakeCaller{err: &router.ProviderError{Provider: "x", StatusCode: 404, Message: "Not Found"}}
	srv := newTestServer(t, caller, Options{})

	resp, err := http.Get(srv.URL + "/api/test-ai")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Results         map[string]map[string]string `json:"results"`
		Environment     map[string]string            `json:"environment"`
		Timestamp       string                       `json:"timestamp"`
		Recommendations []string                     `json:"recommendations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Results, 4)
	assert.Equal(t, "error", out.Results["gemini"]["status"])
	assert.Equal(t, "Missing", out.Environment["GEMINI_API_KEY"])
	assert.Equal(t, "Add GROK_API_KEY to your .env file", out.Recommendations[0])
	_, err = time.Parse(time.RFC3339Nano, out.Timestamp)
	assert.NoError(t, err)
	assert.Len(t, caller.calls, 4)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeCaller{}, Options{})
	resp, err := http.Get(srv.URL + "/api/generate-website")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>ide</html>"), 0o600))
	srv := newTestServer(t, &fakeCaller{}, Options{StaticDir: dir})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Equal(t, "<html>ide</html>", buf.String())
}

func TestBuildRuntimeWithoutCredentials(t *testing.T) {
	cfg, err := config.FromEnv(func(string) string { return "" })
	require.NoError(t, err)

	rt, err := BuildRuntime(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = rt.Close(context.Background()) }()

	assert.Empty(t, rt.Registry.Available())
	_, err = rt.Router.CallProvider(context.Background(), "grok", "hi", nil)
	assert.ErrorIs(t, err, router.ErrMissingCredential)
}

func TestStaticDirKeepsAPIMethodRouting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>ide</html>"), 0o600))
	srv := newTestServer(t, &fakeCaller{}, Options{StaticDir: dir})

	for _, path := range []string{"/api/chat", "/api/generate-website"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}

	resp, err := http.Post(srv.URL+"/api/health", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/index.html", "text/html", strings.NewReader(""))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
