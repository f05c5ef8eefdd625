package metrics

import (
	"sort"
	"sync"
	"time"
)

// CallStats aggregates observations for one provider.
type CallStats struct {
	Provider string
	Calls    int
	Success  int
	Errors   int
	Timeouts int
	Total    time.Duration
}

// Average returns the mean call latency.
func (s CallStats) Average() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// InMemoryRecorder keeps counters in process. The CLI uses it to summarize
// a probe run.
type InMemoryRecorder struct {
	mu          sync.Mutex
	calls       map[string]*CallStats
	extractions map[string]int
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{
		calls:       make(map[string]*CallStats),
		extractions: make(map[string]int),
	}
}

func (r *InMemoryRecorder) ObserveCall(provider string, status string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.calls[provider]
	if !ok {
		s = &CallStats{Provider: provider}
		r.calls[provider] = s
	}
	s.Calls++
	s.Total += duration
	switch status {
	case StatusSuccess:
		s.Success++
	case StatusTimeout:
		s.Timeouts++
	default:
		s.Errors++
	}
}

func (r *InMemoryRecorder) ObserveExtraction(strategy string) {
	r.mu.Lock()
	r.extractions[strategy]++
	r.mu.Unlock()
}

// Snapshot returns per-provider stats sorted by provider name.
func (r *InMemoryRecorder) Snapshot() []CallStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]CallStats, 0, len(r.calls))
	for _, s := range r.calls {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// Extractions returns a copy of the strategy counters.
func (r *InMemoryRecorder) Extractions() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int, len(r.extractions))
	for k, v := range r.extractions {
		out[k] = v
	}
	return out
}
