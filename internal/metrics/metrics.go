// Package metrics defines the instrumentation hooks used by the router and
// the HTTP layer.
package metrics

import "time"

// Call status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// Recorder receives provider call and extraction observations.
type Recorder interface {
	ObserveCall(provider string, status string, duration time.Duration)
	ObserveExtraction(strategy string)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCall(string, string, time.Duration) {}
func (NoopRecorder) ObserveExtraction(string)                  {}
