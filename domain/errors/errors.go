// Package errors provides the typed errors raised while fetching manifests and specs.
// All error types support unwrapping via errors.As() and errors.Is().
//
// Validation problems are not errors in this sense: they are returned as
// []entities.ValidationError so that callers can report every problem at once.
package errors

import (
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/plugincheck/plugincheck/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by errors that can describe themselves as an ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// HTTPError represents a failed HTTP exchange: either a transport failure (Err set,
// StatusCode zero) or a response outside the 2xx range.
type HTTPError struct {
	Err        error
	Method     string
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Err != nil:
		return fmt.Sprintf("http %s %s failed with status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("http %s %s failed with status %d", e.Method, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("http %s %s failed: %v", e.Method, e.URL, e.Err)
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) Timeout() bool {
	if t, ok := e.Err.(interface{ Timeout() bool }); ok {
		return t.Timeout()
	}
	return false
}

// ToErrorDetail implements DetailedError.
func (e *HTTPError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "network", Code: fmt.Sprintf("http_%d", e.StatusCode)}
	if e.Timeout() {
		detail.Type = "timeout"
		detail.IsTimeout = true
	}
	return detail
}

// TimeoutError represents a timeout during an operation.
type TimeoutError struct {
	Operation string
	Target    string
	Duration  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s timeout after %v (target: %s)", e.Operation, e.Duration, e.Target)
	}
	return fmt.Sprintf("%s timeout after %v", e.Operation, e.Duration)
}

func (e *TimeoutError) Timeout() bool {
	return true
}

// ToErrorDetail implements DetailedError.
func (e *TimeoutError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "timeout", Code: e.Operation, IsTimeout: true}
}

// RetryError is the terminal failure of a retry loop. Err is the failure of the
// last attempt.
type RetryError struct {
	Err      error
	Attempts int
}

func (e *RetryError) Error() string {
	if e.Attempts == 1 {
		return fmt.Sprintf("giving up after 1 attempt: %v", e.Err)
	}
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *RetryError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "network", Code: "retry_exhausted", Attempts: e.Attempts}
	if e.Err != nil {
		inner := ToErrorDetail(e.Err)
		detail.Wrapped = inner
		detail.IsTimeout = inner.IsTimeout
	}
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// ManifestError represents a manifest that could not be read or decoded.
type ManifestError struct {
	Err    error
	Source string
}

func (e *ManifestError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid plugin manifest from %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("invalid plugin manifest: %v", e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ManifestError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "manifest", Code: "decode"}
}

// SchemaError represents a schema generation or compilation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}
