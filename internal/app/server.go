// Package app hosts the HTTP surface of the site generator.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/sitegen/internal/audit"
	"github.com/your-org/sitegen/internal/diagnostics"
	"github.com/your-org/sitegen/internal/metrics"
	"github.com/your-org/sitegen/internal/prompt"
	"github.com/your-org/sitegen/internal/provider"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 10 << 20
	defaultAgent    = "grok"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned by the request-id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger    *zap.Logger
	Metrics   metrics.Recorder
	Audit     *audit.Logger
	Branding  prompt.Branding
	StaticDir string
}

// Server serves the generation, chat and diagnostics endpoints.
type Server struct {
	caller   diagnostics.Caller
	registry *provider.Registry
	logger   *zap.Logger
	metrics  metrics.Recorder
	audit    *audit.Logger
	branding prompt.Branding
	static   string
	now      func() time.Time
}

func NewServer(caller diagnostics.Caller, registry *provider.Registry, opts Options) *Server {
	s := &Server{
		caller:   caller,
		registry: registry,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		audit:    opts.Audit,
		branding: opts.Branding,
		static:   opts.StaticDir,
		now:      time.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.NoopRecorder{}
	}
	return s
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/health", s.handleHealth)
	api.HandleFunc("POST /api/generate-website", s.handleGenerate)
	api.HandleFunc("POST /api/chat", s.handleChat)
	api.HandleFunc("GET /api/test-ai", s.handleTestAI)

	// The API lives on its own mux so a static catch-all never shadows its
	// 405 responses.
	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	if s.static != "" {
		mux.Handle("/", readOnly(http.FileServer(http.Dir(s.static))))
	}
	return s.withRequestID(s.withAccessLog(withCORS(mux)))
}

func readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("http request",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerRequestID)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Expose-Headers", headerRequestID)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("request body exceeds %d bytes", tooBig.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// StartServer serves h on addr until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func StartServer(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration) error {
	if addr == "" {
		addr = ":5000"
	}
	s := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	return s.ListenAndServe()
}
