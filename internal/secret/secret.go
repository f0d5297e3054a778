// Package secret resolves the Portainer API credential, either directly
// from configuration or by invoking an external secret-resolution command
// (an "op read"-style vault CLI) with a reference string.
//
// The resolved credential is held in memory only. It is never logged and
// never appears in error messages; errors name the reference, not the value.
package secret

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/bignellrp/portainer-api-action/internal/proberr"
)

// DefaultTimeout bounds a single resolver invocation.
const DefaultTimeout = 30 * time.Second

// Resolver obtains the API credential.
type Resolver struct {
	// Command is the resolution command with leading arguments,
	// e.g. "op read". The reference is appended as the final argument.
	Command string

	// Timeout for the external command. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Resolve returns the credential. A directly supplied key wins; otherwise
// the reference is resolved via the external command. Missing both is a
// configuration error, a missing resolver binary a dependency error.
func (r *Resolver) Resolve(ctx context.Context, apiKey, ref string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if ref == "" {
		return "", proberr.NewConfigError("secret",
			"no credential available: set PORTAINER_API_KEY or PORTAINER_API_KEY_REF")
	}

	parts := strings.Fields(r.Command)
	if len(parts) == 0 {
		return "", proberr.NewConfigError("secret", "secret resolver command is empty")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(parts[1:], ref)
	cmd := exec.CommandContext(ctx, parts[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", proberr.NewDependencyError("secret",
				"secret resolver command not found: "+parts[0], err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", proberr.NewConfigError("secret",
			"failed to resolve secret reference "+ref+": "+msg)
	}

	credential := strings.TrimSpace(stdout.String())
	if credential == "" {
		return "", proberr.NewConfigError("secret",
			"secret resolver returned empty output for reference "+ref)
	}

	return credential, nil
}
