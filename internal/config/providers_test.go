package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/sitegen/internal/provider"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadProviderFileAndMerge(t *testing.T) {
	path := writeFile(t, `
providers:
  - key: grok
    model: grok-3-mini
    vision: false
  - key: local
    display_name: Local Llama
    family: openai
    endpoint: http://localhost:11434/v1/chat/completions
    model: llama3
    credential_env: LOCAL_API_KEY
`)
	f, err := LoadProviderFile(path)
	require.NoError(t, err)

	merged, err := MergeProviders(provider.Defaults(), f)
	require.NoError(t, err)
	require.Len(t, merged, 5)

	assert.Equal(t, "grok", merged[0].Key)
	assert.Equal(t, "grok-3-mini", merged[0].Model)
	assert.False(t, merged[0].Vision)
	assert.Equal(t, "https://api.x.ai/v1/chat/completions", merged[0].Endpoint)

	local := merged[4]
	assert.Equal(t, "local", local.Key)
	assert.Equal(t, "Local Llama", local.DisplayName)
	assert.Equal(t, provider.FamilyOpenAI, local.Family)
	assert.False(t, local.Vision)

	// base slice is untouched
	assert.Equal(t, "grok-3", provider.Defaults()[0].Model)
}

func TestFromEnvWithProvidersFile(t *testing.T) {
	path := writeFile(t, `
providers:
  - key: claude
    display_name: Claude Custom
`)
	cfg, err := FromEnv(envMap(map[string]string{
		"PROVIDERS_FILE": path,
		"CLAUDE_API_KEY": "k",
	}))
	require.NoError(t, err)
	reg, err := provider.NewRegistry(cfg.Providers)
	require.NoError(t, err)
	assert.Equal(t, []string{"Claude Custom"}, reg.Available())
}

func TestValidateProviderFile(t *testing.T) {
	tests := []struct {
		name string
		file ProviderFile
	}{
		{name: "empty", file: ProviderFile{}},
		{name: "blank key", file: ProviderFile{Providers: []ProviderEntry{{Model: "x"}}}},
		{name: "duplicate", file: ProviderFile{Providers: []ProviderEntry{{Key: "a"}, {Key: "a"}}}},
		{name: "bad family", file: ProviderFile{Providers: []ProviderEntry{{Key: "a", Family: "cohere"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateProviderFile(tt.file))
		})
	}
}

func TestMergeRejectsIncompleteNewProvider(t *testing.T) {
	_, err := MergeProviders(provider.Defaults(), ProviderFile{Providers: []ProviderEntry{{Key: "new", Family: "openai"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"new"`)
}

func TestLoadProviderFileErrors(t *testing.T) {
	_, err := LoadProviderFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadProviderFile(writeFile(t, "providers: [\n"))
	assert.Error(t, err)
}
