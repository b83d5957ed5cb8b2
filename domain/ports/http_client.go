package ports

import (
	"context"
)

// HTTPClient defines the interface for HTTP operations.
// Infrastructure adapters implement this to provide HTTP functionality.
type HTTPClient interface {
	// Do executes an HTTP request and returns the response.
	// A response with a non-2xx status is not an error at this level.
	Do(ctx context.Context, req HTTPRequest) (*HTTPResponse, error)

	// Get performs an HTTP GET request.
	Get(ctx context.Context, url string) (*HTTPResponse, error)
}

// HTTPRequest represents an HTTP request.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Timeout int // milliseconds
}

// HTTPResponse represents an HTTP response.
type HTTPResponse struct {
	Headers       map[string][]string
	Body          []byte
	Proto         string // e.g. "HTTP/1.1"
	StatusCode    int
	BodyTruncated bool
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *HTTPResponse) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
