package router

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrMissingCredential = errors.New("missing provider credential")
	ErrProviderFailure   = errors.New("provider call failed")
	ErrProviderTimeout   = errors.New("provider call timed out")
)

// UnknownProviderError is returned when a key is not in the registry.
type UnknownProviderError struct {
	Key       string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("Unknown provider: %s. Available providers: %s", e.Key, strings.Join(e.Available, ", "))
}

func (e *UnknownProviderError) Is(target error) bool { return target == ErrUnknownProvider }

// MissingCredentialError is returned before any network call when the
// provider has no credential configured.
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("No API key found for %s. Please add %s to your .env file.", e.Provider, e.EnvVar)
}

func (e *MissingCredentialError) Is(target error) bool { return target == ErrMissingCredential }

// ProviderError wraps a failed upstream call. StatusCode is zero for
// transport failures and timeouts.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Timeout    bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API Error: %d - %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s Connection Error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProviderFailure:
		return true
	case ErrProviderTimeout:
		return e.Timeout
	default:
		return false
	}
}
