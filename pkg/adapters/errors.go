package adapters

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrEmptyResponse = errors.New("provider returned no content")
)

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	// Message is the upstream error.message when the body carries one.
	Message string
	Body    []byte
}

func (e *StatusError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Status
	}
	if detail == "" {
		detail = string(e.Body)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, detail)
}
