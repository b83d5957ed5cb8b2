package retry_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugincheck/plugincheck/application/retry"
	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// scriptedClient replays responses in order; the last one repeats.
type scriptedClient struct {
	responses []scripted
	calls     int
}

type scripted struct {
	status int
	body   string
	err    error
}

func (c *scriptedClient) Do(ctx context.Context, req ports.HTTPRequest) (*ports.HTTPResponse, error) {
	i := c.calls
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.calls++
	r := c.responses[i]
	if r.err != nil {
		return nil, r.err
	}
	return &ports.HTTPResponse{StatusCode: r.status, Body: []byte(r.body)}, nil
}

func (c *scriptedClient) Get(ctx context.Context, url string) (*ports.HTTPResponse, error) {
	return c.Do(ctx, ports.HTTPRequest{Method: http.MethodGet, URL: url})
}

func TestGet_RetriesServerErrors(t *testing.T) {
	client := &scriptedClient{responses: []scripted{
		{status: 502},
		{err: errors.New("connection reset by peer")},
		{status: 200, body: "ok"},
	}}

	resp, err := retry.Get(context.Background(), client, "https://example.com/x", 3, retry.WithBackOff(noWait))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, 3, client.calls)
}

func TestGet_GivesUp(t *testing.T) {
	client := &scriptedClient{responses: []scripted{{status: 500}}}

	_, err := retry.Get(context.Background(), client, "https://example.com/x", 3, retry.WithBackOff(noWait))
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)

	var httpErr *domainerrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 500, httpErr.StatusCode)
	assert.Equal(t, "https://example.com/x", httpErr.URL)
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	client := &scriptedClient{responses: []scripted{{status: 404}}}

	_, err := retry.Get(context.Background(), client, "https://example.com/x", 3, retry.WithBackOff(noWait))
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestGet_PredicateOverride(t *testing.T) {
	client := &scriptedClient{responses: []scripted{{status: 404}}}

	_, err := retry.Get(context.Background(), client, "https://example.com/x", 3,
		retry.WithBackOff(noWait), retry.WithRetryIf(func(error) bool { return true }))
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)
}
