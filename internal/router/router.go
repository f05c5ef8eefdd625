// Package router dispatches prompts to the configured LLM providers.
package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/your-org/sitegen/internal/metrics"
	"github.com/your-org/sitegen/internal/provider"
	"github.com/your-org/sitegen/pkg/adapters"
	"github.com/your-org/sitegen/pkg/adapters/anthropic"
	"github.com/your-org/sitegen/pkg/adapters/gemini"
	"github.com/your-org/sitegen/pkg/adapters/openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultTimeout     = 120 * time.Second
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.7
)

// Config holds per-call limits shared by every provider.
type Config struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	return c
}

// Response is the normalized reply of a successful call.
type Response struct {
	Content string
	// Provider is the display name of the provider that answered.
	Provider string
}

// Router maps provider keys to adapters. It holds no mutable per-call state
// and is safe for concurrent use.
type Router struct {
	registry *provider.Registry
	clients  map[string]adapters.Provider
	cfg      Config

	logger  *zap.Logger
	metrics metrics.Recorder
	tracer  oteltrace.Tracer
}

// New builds one adapter per credentialed provider.
func New(registry *provider.Registry, cfg Config) (*Router, error) {
	if registry == nil {
		return nil, errors.New("router: registry is nil")
	}
	cfg = cfg.withDefaults()

	r := &Router{
		registry: registry,
		clients:  make(map[string]adapters.Provider),
		cfg:      cfg,
		logger:   zap.NewNop(),
		metrics:  metrics.NoopRecorder{},
		tracer:   otel.Tracer("sitegen/router"),
	}
	for _, pc := range registry.All() {
		if !pc.HasCredential() {
			continue
		}
		client, err := newAdapter(pc, cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		r.clients[pc.Key] = client
	}
	return r, nil
}

func newAdapter(pc provider.Config, httpClient *http.Client) (adapters.Provider, error) {
	switch pc.Family {
	case provider.FamilyOpenAI:
		return openai.NewClient(pc.Credential, httpClient, pc.Endpoint).WithVision(pc.Vision), nil
	case provider.FamilyAnthropic:
		return anthropic.NewClient(pc.Credential, httpClient, pc.Endpoint), nil
	case provider.FamilyGemini:
		return gemini.NewClient(pc.Credential, httpClient, pc.Endpoint), nil
	default:
		return nil, fmt.Errorf("provider %q: %w", pc.Key, provider.ErrUnknownFamily)
	}
}

func (r *Router) SetLogger(l *zap.Logger) {
	if l != nil {
		r.logger = l
	}
}

func (r *Router) SetMetricsRecorder(m metrics.Recorder) {
	if m != nil {
		r.metrics = m
	}
}

func (r *Router) SetTracer(t oteltrace.Tracer) {
	if t != nil {
		r.tracer = t
	}
}

func (r *Router) Registry() *provider.Registry { return r.registry }

// CallProvider sends prompt (and optionally image) to the provider
// registered under key. There are no retries.
func (r *Router) CallProvider(ctx context.Context, key string, prompt string, image *adapters.Image) (Response, error) {
	pc, ok := r.registry.Get(key)
	if !ok {
		return Response{}, &UnknownProviderError{Key: key, Available: r.registry.Keys()}
	}
	client, ok := r.clients[key]
	if !ok || !pc.HasCredential() {
		r.logger.Warn("provider credential missing",
			zap.String("provider", key),
			zap.String("env", pc.CredentialEnv),
		)
		return Response{}, &MissingCredentialError{Provider: pc.DisplayName, EnvVar: pc.CredentialEnv}
	}
	if image != nil && !pc.Vision {
		r.logger.Debug("dropping image for non-vision provider", zap.String("provider", key))
		image = nil
	}

	ctx, span := r.tracer.Start(ctx, "provider.call",
		oteltrace.WithAttributes(
			attribute.String("provider.key", key),
			attribute.String("provider.family", string(pc.Family)),
			attribute.String("provider.model", pc.Model),
			attribute.Bool("request.image", image != nil),
		),
	)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := client.Generate(callCtx, adapters.GenerateRequest{
		Model:       pc.Model,
		Prompt:      prompt,
		Image:       image,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		perr := toProviderError(callCtx, pc, err, r.cfg.Timeout)
		status := metrics.StatusError
		if perr.Timeout {
			status = metrics.StatusTimeout
		}
		r.metrics.ObserveCall(key, status, elapsed)
		span.RecordError(perr)
		span.SetStatus(codes.Error, status)
		if perr.StatusCode > 0 {
			span.SetAttributes(attribute.Int("http.status_code", perr.StatusCode))
		}
		r.logger.Warn("provider call failed",
			zap.String("provider", key),
			zap.String("status", status),
			zap.Int("http_status", perr.StatusCode),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return Response{}, perr
	}

	r.metrics.ObserveCall(key, metrics.StatusSuccess, elapsed)
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(
		attribute.Int("response.chars", len(out.Text)),
		attribute.Int("usage.input_tokens", out.InputTokens),
		attribute.Int("usage.output_tokens", out.OutputTokens),
	)
	r.logger.Info("provider call succeeded",
		zap.String("provider", key),
		zap.Duration("duration", elapsed),
		zap.Int("chars", len(out.Text)),
	)
	return Response{Content: out.Text, Provider: pc.DisplayName}, nil
}

func toProviderError(callCtx context.Context, pc provider.Config, err error, timeout time.Duration) *ProviderError {
	perr := &ProviderError{Provider: pc.DisplayName, Err: err}

	var se *adapters.StatusError
	if errors.As(err, &se) {
		perr.StatusCode = se.StatusCode
		perr.Message = se.Message
		if perr.Message == "" {
			perr.Message = se.Status
		}
		if perr.Message == "" {
			perr.Message = strings.TrimSpace(string(se.Body))
		}
		return perr
	}

	if isTimeout(err) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		perr.Timeout = true
		perr.Message = fmt.Sprintf("request timed out after %s", timeout)
		return perr
	}
	perr.Message = err.Error()
	return perr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
