// Package provider holds the immutable registry of LLM providers the
// service can route to.
package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKey      = errors.New("provider key is empty")
	ErrDuplicateKey  = errors.New("provider key already registered")
	ErrUnknownFamily = errors.New("unknown provider family")
	ErrNoProviders   = errors.New("no providers configured")
)

// Family selects the wire format used to talk to a provider.
type Family string

const (
	FamilyOpenAI    Family = "openai"
	FamilyAnthropic Family = "anthropic"
	FamilyGemini    Family = "gemini"
)

// ParseFamily normalizes a family name from configuration.
func ParseFamily(raw string) (Family, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch Family(s) {
	case FamilyOpenAI, FamilyAnthropic, FamilyGemini:
		return Family(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFamily, raw)
	}
}

// Config describes one provider. Values are copied into the registry and
// never mutated afterwards.
type Config struct {
	Key         string
	DisplayName string
	Endpoint    string
	Model       string
	Family      Family
	// CredentialEnv names the environment variable the credential is read from.
	CredentialEnv string
	Credential    string
	// Vision reports whether the model accepts image attachments.
	Vision bool
}

// HasCredential reports whether a non-blank credential is configured.
func (c Config) HasCredential() bool {
	return strings.TrimSpace(c.Credential) != ""
}

// Defaults returns the built-in provider set, without credentials.
func Defaults() []Config {
	return []Config{
		{
			Key:           "grok",
			DisplayName:   "Grok-3 Latest",
			Endpoint:      "https://api.x.ai/v1/chat/completions",
			Model:         "grok-3",
			Family:        FamilyOpenAI,
			CredentialEnv: "GROK_API_KEY",
			Vision:        true,
		},
		{
			Key:           "claude",
			DisplayName:   "Claude 3.5 Haiku",
			Endpoint:      "https://api.anthropic.com/v1/messages",
			Model:         "claude-3-5-haiku-20241022",
			Family:        FamilyAnthropic,
			CredentialEnv: "CLAUDE_API_KEY",
			Vision:        true,
		},
		{
			Key:           "gpt-4",
			DisplayName:   "GPT-4o 2024-08-06",
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o",
			Family:        FamilyOpenAI,
			CredentialEnv: "OPENAI_API_KEY",
			Vision:        true,
		},
		{
			Key:           "gemini",
			DisplayName:   "Gemini 2.0 Flash",
			Endpoint:      "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
			Model:         "gemini-2.0-flash",
			Family:        FamilyGemini,
			CredentialEnv: "GEMINI_API_KEY",
			Vision:        true,
		},
	}
}

// WithCredentials fills each config's Credential from lookup(CredentialEnv).
func WithCredentials(configs []Config, lookup func(string) string) []Config {
	out := make([]Config, len(configs))
	for i, c := range configs {
		if c.CredentialEnv != "" && lookup != nil {
			c.Credential = strings.TrimSpace(lookup(c.CredentialEnv))
		}
		out[i] = c
	}
	return out
}

// Registry is a read-only, ordered set of provider configs. It is safe for
// concurrent use because nothing mutates it after NewRegistry returns.
type Registry struct {
	order   []string
	configs map[string]Config
}

func NewRegistry(configs []Config) (*Registry, error) {
	if len(configs) == 0 {
		return nil, ErrNoProviders
	}
	r := &Registry{
		order:   make([]string, 0, len(configs)),
		configs: make(map[string]Config, len(configs)),
	}
	for _, c := range configs {
		if c.Key == "" {
			return nil, ErrEmptyKey
		}
		if _, err := ParseFamily(string(c.Family)); err != nil {
			return nil, fmt.Errorf("provider %q: %w", c.Key, err)
		}
		if _, exists := r.configs[c.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, c.Key)
		}
		if c.DisplayName == "" {
			c.DisplayName = c.Key
		}
		r.configs[c.Key] = c
		r.order = append(r.order, c.Key)
	}
	return r, nil
}

func (r *Registry) Get(key string) (Config, bool) {
	c, ok := r.configs[key]
	return c, ok
}

// Keys returns provider keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// All returns every config in registration order.
func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.configs[k])
	}
	return out
}

// Available returns the display names of providers that have a credential.
func (r *Registry) Available() []string {
	out := make([]string, 0, len(r.order))
	for _, c := range r.All() {
		if c.HasCredential() {
			out = append(out, c.DisplayName)
		}
	}
	return out
}
