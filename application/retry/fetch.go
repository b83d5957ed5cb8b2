package retry

import (
	"context"
	"net/http"

	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// Get fetches url with client, treating any non-2xx status as a failure, and
// retries per Do. RetryableHTTP is the default predicate; opts may override it.
func Get(ctx context.Context, client ports.HTTPClient, url string, maxAttempts int, opts ...Option) (*ports.HTTPResponse, error) {
	op := func(ctx context.Context) (*ports.HTTPResponse, error) {
		resp, err := client.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, &domainerrors.HTTPError{Method: http.MethodGet, URL: url, StatusCode: resp.StatusCode}
		}
		return resp, nil
	}
	return Do(ctx, op, maxAttempts, append([]Option{WithRetryIf(RetryableHTTP)}, opts...)...)
}
