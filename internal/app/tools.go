package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/your-org/sitegen/internal/config"
	"github.com/your-org/sitegen/internal/diagnostics"
	"github.com/your-org/sitegen/internal/extract"
	"github.com/your-org/sitegen/internal/metrics"
	"go.uber.org/zap"
)

// ProbeProviders runs the connection test against every provider and prints
// a summary. It fails when any provider failed.
func ProbeProviders(ctx context.Context, cfg config.Config, logger *zap.Logger, out io.Writer) error {
	mem := metrics.NewInMemoryRecorder()
	rt, err := BuildRuntime(ctx, cfg, logger, mem)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	rep := diagnostics.Run(ctx, rt.Router, rt.Registry, nil)

	failed := 0
	for _, key := range rep.Keys() {
		res := rep.Results[key]
		if res.Status == diagnostics.StatusError {
			failed++
			_, _ = fmt.Fprintf(out, "✗ %-8s key=%s error=%s\n", key, res.APIKey, res.Error)
			continue
		}
		_, _ = fmt.Fprintf(out, "✓ %-8s %s (%s) %q\n", key, res.Provider, res.Duration, res.Response)
	}
	for _, s := range mem.Snapshot() {
		_, _ = fmt.Fprintf(out, "metrics provider=%s calls=%d ok=%d errors=%d timeouts=%d avg=%s\n",
			s.Provider, s.Calls, s.Success, s.Errors, s.Timeouts, s.Average())
	}
	_, _ = fmt.Fprintln(out, "recommendations:")
	for _, r := range rep.Recommendations {
		_, _ = fmt.Fprintf(out, "- %s\n", r)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d provider(s) failed", failed, len(rep.Results))
	}
	return nil
}

// ExtractFile runs the extractor over a saved model reply and prints the
// result as JSON.
func ExtractFile(path string, out io.Writer) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	res := extract.Parse(string(b))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Strategy    extract.Strategy `json:"strategy"`
		RawFallback bool             `json:"rawFallback"`
		Explanation string           `json:"explanation,omitempty"`
		HTML        string           `json:"html"`
	}{res.Strategy, res.RawFallback, res.Explanation, res.HTML})
}
