package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/your-org/sitegen/internal/provider"
)

// Config is the process-wide runtime configuration. It is built once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Addr            string
	ProviderTimeout time.Duration
	LogLevel        string
	LogFormat       string
	StaticDir       string
	ProvidersFile   string
	AuditLogPath    string
	MetricsEnabled  bool
	MetricsAddr     string
	TraceEnabled    bool
	TraceEndpoint   string
	Providers       []provider.Config
}

// LoadDotEnv reads .env (or the given files) into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads .env then builds the config from the environment.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// FromEnv loads runtime config from getenv with safe defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:            ":5000",
		ProviderTimeout: 120 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
		MetricsAddr:     ":2112",
	}

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Addr = ":" + v
		}
	}
	if v := strings.TrimSpace(getenv("PROVIDER_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ProviderTimeout = d
		}
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	cfg.StaticDir = strings.TrimSpace(getenv("STATIC_DIR"))
	cfg.ProvidersFile = strings.TrimSpace(getenv("PROVIDERS_FILE"))
	cfg.AuditLogPath = strings.TrimSpace(getenv("AUDIT_LOG_PATH"))
	cfg.MetricsEnabled = envBool(getenv, "METRICS_ENABLED")
	cfg.TraceEnabled = envBool(getenv, "TRACE_ENABLED")
	cfg.TraceEndpoint = strings.TrimSpace(getenv("TRACE_ENDPOINT"))

	providers := provider.Defaults()
	if cfg.ProvidersFile != "" {
		file, err := LoadProviderFile(cfg.ProvidersFile)
		if err != nil {
			return Config{}, err
		}
		providers, err = MergeProviders(providers, file)
		if err != nil {
			return Config{}, err
		}
	}
	cfg.Providers = provider.WithCredentials(providers, getenv)
	return cfg, nil
}

func envBool(getenv func(string) string, key string) bool {
	v := strings.ToLower(strings.TrimSpace(getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
