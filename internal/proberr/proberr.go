// Package proberr provides error types and handling for the probe tool.
package proberr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Config represents missing or invalid required configuration.
	Config
	// Dependency represents a missing external tool.
	Dependency
	// Transport represents network-related failures (DNS, connection).
	Transport
	// Timeout represents request timeouts.
	Timeout
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Config:
		return "config"
	case Dependency:
		return "dependency"
	case Transport:
		return "transport"
	case Timeout:
		return "timeout"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsFatal returns whether errors of this type abort the run.
// Transport anomalies during a probe are observations, not failures.
func (t ErrorType) IsFatal() bool {
	return t == Config || t == Dependency
}

// ProbeError represents a categorized error.
type ProbeError struct {
	Type      ErrorType
	URL       string
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	switch {
	case e.Cause != nil && e.URL != "":
		return fmt.Sprintf("%s error during %s on %s: %s (caused by: %v)",
			e.Type.String(), e.Operation, e.URL, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s error during %s: %s (caused by: %v)",
			e.Type.String(), e.Operation, e.Message, e.Cause)
	case e.URL != "":
		return fmt.Sprintf("%s error during %s on %s: %s",
			e.Type.String(), e.Operation, e.URL, e.Message)
	default:
		return fmt.Sprintf("%s error during %s: %s",
			e.Type.String(), e.Operation, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *ProbeError) Is(target error) bool {
	t, ok := target.(*ProbeError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewConfigError creates a configuration error.
func NewConfigError(operation, message string) *ProbeError {
	return &ProbeError{Type: Config, Operation: operation, Message: message}
}

// NewDependencyError creates a missing-dependency error.
func NewDependencyError(operation, message string, cause error) *ProbeError {
	return &ProbeError{Type: Dependency, Operation: operation, Message: message, Cause: cause}
}

// NewTransportError creates a transport error.
func NewTransportError(url, operation string, cause error) *ProbeError {
	return &ProbeError{Type: Transport, URL: url, Operation: operation, Message: "network failure", Cause: cause}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(url, operation string, cause error) *ProbeError {
	return &ProbeError{Type: Timeout, URL: url, Operation: operation, Message: "request timed out", Cause: cause}
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, operation string) *ProbeError {
	return &ProbeError{Type: Cancelled, URL: url, Operation: operation, Message: "operation cancelled"}
}

// Categorize determines the error type from a generic error.
func Categorize(err error, url string) *ProbeError {
	if err == nil {
		return nil
	}

	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr
	}

	if errors.Is(err, context.Canceled) {
		return NewCancelledError(url, "request")
	}

	if isTimeout(err) {
		return NewTimeoutError(url, "request", err)
	}

	if isNetworkError(err) {
		return NewTransportError(url, "request", err)
	}

	return &ProbeError{Type: Unknown, URL: url, Operation: "request", Message: err.Error(), Cause: err}
}

// isTimeout checks if an error is a timeout.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isNetworkError checks if an error is network-related.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp")
}

// IsFatal checks whether an error should abort the whole run.
func IsFatal(err error) bool {
	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr.Type.IsFatal()
	}
	return false
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr.Type
	}
	return Unknown
}

// ExitCode maps an error to the process exit status. Unmet preconditions
// (missing config, missing tools) exit 2; everything else is reported in
// output and exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if IsFatal(err) {
		return 2
	}
	return 0
}
