// Package httpclient implements ports.HTTPClient over net/http.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// Option is a functional option for configuring the client.
type Option func(*config)

type config struct {
	timeout         time.Duration
	maxRedirects    int
	maxBodySize     int64
	followRedirects bool
	ssrfProtection  bool
	allowPrivate    bool
	filterOpts      []FilterOption
	userAgent       string
}

func defaultConfig() config {
	return config{
		timeout:         30 * time.Second,
		maxRedirects:    10,
		followRedirects: true,
		maxBodySize:     10 * 1024 * 1024, // 10MB
		userAgent:       "plugincheck",
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRedirects sets the maximum number of redirects to follow.
func WithMaxRedirects(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithFollowRedirects controls whether to follow redirects.
func WithFollowRedirects(follow bool) Option {
	return func(c *config) {
		c.followRedirects = follow
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *config) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithSSRFProtection resolves each host once, rejects internal addresses and
// dials the resolved IP, so a DNS answer cannot change between check and connect.
// Private and loopback addresses are allowed when allowPrivate is true; filters
// add allowlist/blocklist rules on top.
func WithSSRFProtection(allowPrivate bool, filters ...FilterOption) Option {
	return func(c *config) {
		c.ssrfProtection = true
		c.allowPrivate = allowPrivate
		c.filterOpts = append(c.filterOpts, filters...)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client implements ports.HTTPClient.
type Client struct {
	cfg    config
	client *http.Client
}

// New creates a Client.
func New(opts ...Option) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{cfg: cfg, client: newHTTPClient(cfg)}
}

var _ ports.HTTPClient = (*Client)(nil)

// Get performs an HTTP GET request.
func (c *Client) Get(ctx context.Context, url string) (*ports.HTTPResponse, error) {
	return c.Do(ctx, ports.HTTPRequest{Method: http.MethodGet, URL: url})
}

// Do executes the request. Only transport failures are errors; the caller
// decides what to make of the status code.
func (c *Client) Do(ctx context.Context, req ports.HTTPRequest) (*ports.HTTPResponse, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if req.URL == "" {
		return nil, &domainerrors.HTTPError{Method: method, Err: errors.New("URL is required")}
	}

	timeout := c.cfg.timeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &domainerrors.HTTPError{Method: method, URL: req.URL, Err: err}
	}
	httpReq.Header.Set("User-Agent", c.cfg.userAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(ctx, err, method, req.URL, time.Since(start))
	}
	defer func() { _ = resp.Body.Close() }()

	return c.readResponse(resp, method, req.URL)
}

func (c *Client) readResponse(resp *http.Response, method, url string) (*ports.HTTPResponse, error) {
	limit := c.cfg.maxBodySize
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &domainerrors.HTTPError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	truncated := false
	if int64(len(data)) > limit {
		data = data[:limit]
		truncated = true
	}

	return &ports.HTTPResponse{
		Headers:       resp.Header,
		Body:          data,
		Proto:         resp.Proto,
		StatusCode:    resp.StatusCode,
		BodyTruncated: truncated,
	}, nil
}

func newHTTPClient(cfg config) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if cfg.ssrfProtection {
		transport.Proxy = nil
		dialer := &net.Dialer{Timeout: 10 * time.Second}
		var filterOpts []FilterOption
		if cfg.allowPrivate {
			filterOpts = append(filterOpts, WithBlockPrivate(false), WithBlockLocalhost(false))
		}
		filterOpts = append(filterOpts, cfg.filterOpts...)
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			result := ValidateAddress(ctx, host, filterOpts...)
			if !result.Allowed {
				return nil, fmt.Errorf("SSRF protection: %s", result.Reason)
			}
			// TLS still verifies against the original hostname; only the dial target changes.
			return dialer.DialContext(ctx, network, net.JoinHostPort(result.ResolvedIP, port))
		}
	}

	client := &http.Client{Transport: transport}

	switch {
	case !cfg.followRedirects:
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case cfg.maxRedirects > 0:
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.maxRedirects)
			}
			return nil
		}
	}

	return client
}

func classifyError(ctx context.Context, err error, method, url string, elapsed time.Duration) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domainerrors.HTTPError{
			Method: method,
			URL:    url,
			Err:    &domainerrors.TimeoutError{Operation: "http_request", Target: url, Duration: elapsed.Round(time.Millisecond)},
		}
	}
	return &domainerrors.HTTPError{Method: method, URL: url, Err: err}
}
