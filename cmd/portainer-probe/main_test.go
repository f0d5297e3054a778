package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bignellrp/portainer-api-action/internal/config"
	"github.com/bignellrp/portainer-api-action/internal/proberr"
)

// The active probe commands refuse to run without the explicit opt-in,
// and the refusal must happen before the secret resolver command is
// executed. The resolver here is a command that leaves a marker file;
// the marker must never appear.
func TestActiveProbeCommandsGateBeforeCredentialResolution(t *testing.T) {
	t.Setenv(config.EnvURL, "http://portainer.local:9000")
	t.Setenv(config.EnvStackName, "app")
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvAPIKeyRef, "op://vault/item/credential")
	t.Setenv(config.EnvProbeCreate, "")
	t.Setenv(config.EnvProbeUpdate, "")
	t.Setenv(config.EnvStackID, "")

	marker := filepath.Join(t.TempDir(), "resolver-ran")

	prevEnable, prevResolver := enableProbe, resolver
	enableProbe = false
	resolver = "touch " + marker
	t.Cleanup(func() {
		enableProbe, resolver = prevEnable, prevResolver
	})

	tests := []struct {
		name string
		run  func(*cobra.Command, []string) error
		env  string
	}{
		{"create", runProbeCreate, config.EnvProbeCreate},
		{"update", runProbeUpdate, config.EnvProbeUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().String("resolver", "", "")
			if err := cmd.Flags().Set("resolver", resolver); err != nil {
				t.Fatal(err)
			}

			err := tt.run(cmd, nil)
			if err == nil {
				t.Fatal("expected an opt-in error, got nil")
			}
			if got := proberr.GetErrorType(err); got != proberr.Config {
				t.Errorf("error type = %v, want %v (%v)", got, proberr.Config, err)
			}
			if proberr.ExitCode(err) != 2 {
				t.Errorf("ExitCode = %d, want 2", proberr.ExitCode(err))
			}
			if !strings.Contains(err.Error(), tt.env) {
				t.Errorf("error %q should name %s", err, tt.env)
			}
			if _, statErr := os.Stat(marker); !os.IsNotExist(statErr) {
				t.Errorf("secret resolver executed before the opt-in check (marker %s exists)", marker)
			}
		})
	}
}
