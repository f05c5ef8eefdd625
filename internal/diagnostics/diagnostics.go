// Package diagnostics probes every configured provider with a fixed prompt
// and turns the failures into setup recommendations.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/sitegen/internal/prompt"
	"github.com/your-org/sitegen/internal/provider"
	"github.com/your-org/sitegen/internal/router"
	"github.com/your-org/sitegen/pkg/adapters"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	Present = "Present"
	Missing = "Missing"

	previewLen = 100
)

// AllWorking is the single recommendation returned when no probe failed.
const AllWorking = "All API providers are working correctly!"

// Caller is the subset of the router used by Run.
type Caller interface {
	CallProvider(ctx context.Context, key string, prompt string, image *adapters.Image) (router.Response, error)
}

// Result is the outcome of probing one provider.
type Result struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	APIKey   string `json:"apiKey"`
	Endpoint string `json:"endpoint"`
	Duration string `json:"duration"`

	err error
}

// Report aggregates a full probe run.
type Report struct {
	Results         map[string]Result `json:"results"`
	Environment     map[string]string `json:"environment"`
	Timestamp       string            `json:"timestamp"`
	Recommendations []string          `json:"recommendations"`

	order []string
}

// Keys returns probed provider keys in registry order.
func (r Report) Keys() []string { return append([]string(nil), r.order...) }

// Run probes providers sequentially in registry order.
func Run(ctx context.Context, caller Caller, registry *provider.Registry, now func() time.Time) Report {
	if now == nil {
		now = time.Now
	}
	configs := registry.All()
	rep := Report{
		Results:     make(map[string]Result, len(configs)),
		Environment: make(map[string]string, len(configs)),
		order:       make([]string, 0, len(configs)),
	}

	for _, pc := range configs {
		res := Result{
			APIKey:   presence(pc.HasCredential()),
			Endpoint: pc.Endpoint,
		}
		if pc.CredentialEnv != "" {
			rep.Environment[pc.CredentialEnv] = res.APIKey
		}

		start := time.Now()
		resp, err := caller.CallProvider(ctx, pc.Key, prompt.ConnectionTest, nil)
		res.Duration = time.Since(start).Round(time.Millisecond).String()
		if err != nil {
			res.Status = StatusError
			res.Error = err.Error()
			res.err = err
		} else {
			res.Status = StatusSuccess
			res.Provider = resp.Provider
			res.Response = preview(resp.Content)
		}
		rep.Results[pc.Key] = res
		rep.order = append(rep.order, pc.Key)
	}

	rep.Timestamp = now().UTC().Format(time.RFC3339Nano)
	rep.Recommendations = Recommend(rep, registry)
	return rep
}

// Recommend maps each failed probe onto one setup hint.
func Recommend(rep Report, registry *provider.Registry) []string {
	var out []string
	for _, key := range rep.order {
		res := rep.Results[key]
		if res.Status != StatusError {
			continue
		}
		pc, _ := registry.Get(key)
		out = append(out, recommendation(key, pc, res))
	}
	if len(out) == 0 {
		out = append(out, AllWorking)
	}
	return out
}

func recommendation(key string, pc provider.Config, res Result) string {
	if res.APIKey == Missing || errors.Is(res.err, router.ErrMissingCredential) {
		env := pc.CredentialEnv
		if env == "" {
			env = strings.ToUpper(key) + "_API_KEY"
		}
		return fmt.Sprintf("Add %s to your .env file", env)
	}

	var pe *router.ProviderError
	status := 0
	if errors.As(res.err, &pe) {
		status = pe.StatusCode
	}
	msg := strings.ToLower(res.Error)
	switch {
	case status == 404 || (status == 0 && strings.Contains(msg, "404")):
		return fmt.Sprintf("Check %s endpoint URL - may need updating", key)
	case status == 401 || status == 403 || (status == 0 && (strings.Contains(msg, "401") || strings.Contains(msg, "403"))):
		return fmt.Sprintf("Verify %s API key is valid and has proper permissions", key)
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return fmt.Sprintf("%s API quota exceeded - check billing or wait for reset", key)
	default:
		return fmt.Sprintf("%s connection issue - check network and endpoint", key)
	}
}

func presence(ok bool) string {
	if ok {
		return Present
	}
	return Missing
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
