package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bignellrp/portainer-api-action/internal/proberr"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvURL, EnvStackName, EnvEndpointID, EnvStackFile, EnvStackID,
		EnvAPIKey, EnvAPIKeyRef, EnvProbeCreate, EnvProbeUpdate,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "https://portainer.example.com/api/")
	t.Setenv(EnvStackName, "app")
	t.Setenv(EnvEndpointID, "5")
	t.Setenv(EnvStackID, "12")
	t.Setenv(EnvProbeCreate, "true")

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.BaseURL != "https://portainer.example.com" {
		t.Errorf("BaseURL = %q, want normalized base", cfg.BaseURL)
	}
	if cfg.StackName != "app" {
		t.Errorf("StackName = %q", cfg.StackName)
	}
	if cfg.EndpointID != 5 {
		t.Errorf("EndpointID = %d, want 5", cfg.EndpointID)
	}
	if cfg.StackID != "12" {
		t.Errorf("StackID = %q, want 12", cfg.StackID)
	}
	if !cfg.ProbeCreate {
		t.Error("ProbeCreate = false, want true")
	}
	if cfg.ProbeUpdate {
		t.Error("ProbeUpdate = true, want false")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "https://portainer.example.com")
	t.Setenv(EnvStackName, "app")

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.EndpointID != DefaultEndpointID {
		t.Errorf("EndpointID = %d, want default %d", cfg.EndpointID, DefaultEndpointID)
	}
	if cfg.StackFile != DefaultStackFile {
		t.Errorf("StackFile = %q, want default %q", cfg.StackFile, DefaultStackFile)
	}
	if cfg.StackID != "" {
		t.Errorf("StackID = %q, want empty", cfg.StackID)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "missing URL",
			cfg:  &Config{StackName: "app"},
		},
		{
			name: "missing stack name",
			cfg:  &Config{BaseURL: "https://portainer.example.com"},
		},
		{
			name: "missing both",
			cfg:  &Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want configuration error")
			}

			var probeErr *proberr.ProbeError
			if !errors.As(err, &probeErr) || probeErr.Type != proberr.Config {
				t.Errorf("Validate() error type = %v, want Config", err)
			}
			if proberr.ExitCode(err) != 2 {
				t.Errorf("ExitCode = %d, want 2", proberr.ExitCode(err))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.yaml")
	content := `
url: https://portainer.example.com/api
stack_name: app
endpoint_id: 3
stack_file: compose/app.yml
rate_limit: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.BaseURL != "https://portainer.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.EndpointID != 3 {
		t.Errorf("EndpointID = %d, want 3", cfg.EndpointID)
	}
	if cfg.StackFile != "compose/app.yml" {
		t.Errorf("StackFile = %q", cfg.StackFile)
	}
	if cfg.RateLimit != 2 {
		t.Errorf("RateLimit = %v, want 2", cfg.RateLimit)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile() = nil error for missing file")
	}
}

func TestAPI(t *testing.T) {
	cfg := &Config{BaseURL: "https://host:9443/portainer"}
	got := cfg.API("/stacks")
	want := "https://host:9443/portainer/api/stacks"
	if got != want {
		t.Errorf("API(/stacks) = %q, want %q", got, want)
	}
}
