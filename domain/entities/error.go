package entities

import "fmt"

// ErrorDetail is the structured, serializable form of any error raised while
// loading manifests or fetching specs. `plugincheck list --json` prints it.
// Error types: "network", "timeout", "config", "manifest", "validation", "internal".
type ErrorDetail struct {
	// Wrapped holds the cause, if it could be converted too.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	Message string `json:"message"`
	Type    string `json:"type"`

	// Code is a machine-readable error code such as "http_404".
	Code string `json:"code,omitempty"`

	// Attempts is set when the error is the terminal failure of a retry loop.
	Attempts int `json:"attempts,omitempty"`

	IsTimeout bool `json:"is_timeout,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}

// WithCode sets the code and returns the receiver.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}
