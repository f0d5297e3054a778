// Package config resolves probe configuration from flags, environment
// variables, an optional YAML file, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bignellrp/portainer-api-action/internal/proberr"
)

// Environment variable names read by FromEnv.
const (
	EnvURL         = "PORTAINER_URL"
	EnvStackName   = "STACK_NAME"
	EnvEndpointID  = "ENDPOINT_ID"
	EnvStackFile   = "STACK_FILE"
	EnvStackID     = "STACK_ID"
	EnvAPIKey      = "PORTAINER_API_KEY"
	EnvAPIKeyRef   = "PORTAINER_API_KEY_REF"
	EnvProbeCreate = "PROBE_CREATE"
	EnvProbeUpdate = "PROBE_UPDATE"
)

// Defaults.
const (
	DefaultEndpointID      = 2
	DefaultStackFile       = "docker-compose.yml"
	DefaultTimeout         = 15 * time.Second
	DefaultRateLimit       = 4.0 // probes per second
	DefaultResolverCommand = "op read"
)

// Config holds all probe configuration. It is resolved once at startup and
// passed to components; nothing reads the environment after that.
type Config struct {
	// Normalized base URL of the Portainer server (no /api suffix).
	BaseURL string `json:"url" yaml:"url"`

	// Name of the stack to look for in /api/stacks.
	StackName string `json:"stack_name" yaml:"stack_name"`

	// Portainer endpoint (environment) id stack operations target.
	EndpointID int `json:"endpoint_id" yaml:"endpoint_id"`

	// Compose file referenced by the emitted example commands.
	StackFile string `json:"stack_file" yaml:"stack_file"`

	// Existing stack id, required only for update/delete probing.
	StackID string `json:"stack_id" yaml:"stack_id"`

	// API key. Never logged, never written to any output.
	APIKey string `json:"-" yaml:"-"`

	// Secret reference resolved via ResolverCommand when APIKey is empty.
	APIKeyRef string `json:"api_key_ref" yaml:"api_key_ref"`

	// External secret resolution command, e.g. "op read".
	ResolverCommand string `json:"resolver_command" yaml:"resolver_command"`

	// Per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Probes per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Skip TLS certificate verification.
	SkipTLSVerify bool `json:"skip_tls_verify" yaml:"skip_tls_verify"`

	// Opt-in active probe flows.
	ProbeCreate bool `json:"probe_create" yaml:"probe_create"`
	ProbeUpdate bool `json:"probe_update" yaml:"probe_update"`

	// Logging.
	Verbose  bool `json:"verbose" yaml:"verbose"`
	Debug    bool `json:"debug" yaml:"debug"`
	JSONLogs bool `json:"json_logs" yaml:"json_logs"`
}

// Default returns a configuration with built-in defaults applied.
func Default() *Config {
	return &Config{
		EndpointID:      DefaultEndpointID,
		StackFile:       DefaultStackFile,
		ResolverCommand: DefaultResolverCommand,
		Timeout:         DefaultTimeout,
		RateLimit:       DefaultRateLimit,
	}
}

// FromEnv returns a configuration built from defaults overlaid with
// environment variables. No validation happens here; call Validate once
// flag overrides have been applied.
func FromEnv() *Config {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvStackName); v != "" {
		c.StackName = v
	}
	if v := os.Getenv(EnvEndpointID); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.EndpointID = id
		}
	}
	if v := os.Getenv(EnvStackFile); v != "" {
		c.StackFile = v
	}
	if v := os.Getenv(EnvStackID); v != "" {
		c.StackID = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvAPIKeyRef); v != "" {
		c.APIKeyRef = v
	}
	if truthy(os.Getenv(EnvProbeCreate)) {
		c.ProbeCreate = true
	}
	if truthy(os.Getenv(EnvProbeUpdate)) {
		c.ProbeUpdate = true
	}
}

// LoadFile reads a YAML configuration file and overlays it onto defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks mandatory fields and normalizes the base URL. It must be
// called before any request is issued.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return proberr.NewConfigError("config", "server URL is required (set "+EnvURL+" or --url)")
	}
	if c.StackName == "" {
		return proberr.NewConfigError("config", "stack name is required (set "+EnvStackName+" or --stack)")
	}

	c.BaseURL = NormalizeBaseURL(c.BaseURL)

	if c.EndpointID <= 0 {
		c.EndpointID = DefaultEndpointID
	}
	if c.StackFile == "" {
		c.StackFile = DefaultStackFile
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.ResolverCommand == "" {
		c.ResolverCommand = DefaultResolverCommand
	}

	return nil
}

// API returns the normalized base URL with /api and the given route appended.
// The route must start with a slash.
func (c *Config) API(route string) string {
	return c.BaseURL + "/api" + route
}

// truthy interprets boolean-like environment values.
func truthy(v string) bool {
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on":
		return true
	default:
		return false
	}
}
