package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/your-org/sitegen/internal/provider"
	"gopkg.in/yaml.v3"
)

var ErrProvidersFileEmpty = errors.New("providers file: providers list is empty")

// ProviderFile is the optional YAML document that overrides or extends the
// built-in provider set.
type ProviderFile struct {
	Providers []ProviderEntry `yaml:"providers"`
}

// ProviderEntry declares one provider. For a built-in key only the fields
// that are set replace the defaults.
type ProviderEntry struct {
	Key           string `yaml:"key"`
	DisplayName   string `yaml:"display_name"`
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	Family        string `yaml:"family"`
	CredentialEnv string `yaml:"credential_env"`
	Vision        *bool  `yaml:"vision,omitempty"`
}

// LoadProviderFile parses and validates a YAML providers file.
func LoadProviderFile(path string) (ProviderFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ProviderFile{}, fmt.Errorf("providers file: read %q: %w", path, err)
	}

	var f ProviderFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return ProviderFile{}, fmt.Errorf("providers file: unmarshal %q: %w", path, err)
	}
	if err := ValidateProviderFile(f); err != nil {
		return ProviderFile{}, err
	}
	return f, nil
}

// ValidateProviderFile enforces structural correctness before merging.
func ValidateProviderFile(f ProviderFile) error {
	if len(f.Providers) == 0 {
		return ErrProvidersFileEmpty
	}
	seen := make(map[string]struct{}, len(f.Providers))
	for _, p := range f.Providers {
		if p.Key == "" {
			return errors.New("providers file: provider key is empty")
		}
		if _, exists := seen[p.Key]; exists {
			return fmt.Errorf("providers file: duplicate provider key %q", p.Key)
		}
		seen[p.Key] = struct{}{}
		if p.Family != "" {
			if _, err := provider.ParseFamily(p.Family); err != nil {
				return fmt.Errorf("providers file: provider %q: %w", p.Key, err)
			}
		}
	}
	return nil
}

// MergeProviders applies file entries on top of base. Unknown keys are
// appended and must name a family, an endpoint and a credential variable.
func MergeProviders(base []provider.Config, f ProviderFile) ([]provider.Config, error) {
	out := append([]provider.Config(nil), base...)
	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.Key] = i
	}

	for _, e := range f.Providers {
		i, exists := index[e.Key]
		if !exists {
			if e.Family == "" || e.Endpoint == "" || e.CredentialEnv == "" {
				return nil, fmt.Errorf("providers file: new provider %q needs family, endpoint and credential_env", e.Key)
			}
			out = append(out, provider.Config{Key: e.Key})
			i = len(out) - 1
			index[e.Key] = i
		}

		c := out[i]
		if e.DisplayName != "" {
			c.DisplayName = e.DisplayName
		}
		if e.Endpoint != "" {
			c.Endpoint = e.Endpoint
		}
		if e.Model != "" {
			c.Model = e.Model
		}
		if e.CredentialEnv != "" {
			c.CredentialEnv = e.CredentialEnv
		}
		if e.Family != "" {
			fam, err := provider.ParseFamily(e.Family)
			if err != nil {
				return nil, fmt.Errorf("providers file: provider %q: %w", e.Key, err)
			}
			c.Family = fam
		}
		if e.Vision != nil {
			c.Vision = *e.Vision
		}
		out[i] = c
	}
	return out, nil
}
