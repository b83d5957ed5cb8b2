// Package manifest loads and stores plugin manifests.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plugincheck/plugincheck/application/retry"
	"github.com/plugincheck/plugincheck/domain/entities"
	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// WellKnownPath is where a domain serves its plugin manifest.
const WellKnownPath = "/.well-known/ai-plugin.json"

// ErrManifestTooLarge is returned when the response body was cut off at the
// client's size limit.
var ErrManifestTooLarge = errors.New("manifest exceeds the maximum body size")

// Loader fetches manifests over HTTP and reads/writes them on disk.
type Loader struct {
	client      ports.HTTPClient
	parser      ports.ManifestParser
	logger      ports.Logger
	maxAttempts int
	retryOpts   []retry.Option
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger.
func WithLogger(l ports.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithMaxAttempts sets the fetch attempt budget.
func WithMaxAttempts(n int) LoaderOption {
	return func(ld *Loader) {
		ld.maxAttempts = n
	}
}

// WithRetryOptions passes options through to the retry loop.
func WithRetryOptions(opts ...retry.Option) LoaderOption {
	return func(ld *Loader) {
		ld.retryOpts = append(ld.retryOpts, opts...)
	}
}

// NewLoader creates a Loader.
func NewLoader(client ports.HTTPClient, parser ports.ManifestParser, opts ...LoaderOption) *Loader {
	ld := &Loader{
		client:      client,
		parser:      parser,
		logger:      ports.NopLogger{},
		maxAttempts: retry.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// ManifestURL returns the well-known manifest location for domain.
func ManifestURL(domain string) string {
	return strings.TrimRight(domain, "/") + WellKnownPath
}

// Load fetches the manifest served by domain. Requests carry no credentials.
// Transport failures come back as *errors.RetryError, undecodable bodies as
// *errors.ManifestError.
func (ld *Loader) Load(ctx context.Context, domain string) (*entities.PluginManifest, error) {
	data, err := ld.Fetch(ctx, domain)
	if err != nil {
		return nil, err
	}

	return ld.Decode(data, ManifestURL(domain))
}

// Decode parses raw manifest bytes; source names where they came from.
func (ld *Loader) Decode(data []byte, source string) (*entities.PluginManifest, error) {
	m, err := ld.parser.Parse(data)
	if err != nil {
		return nil, &domainerrors.ManifestError{Source: source, Err: err}
	}
	ld.logger.Debug("loaded plugin manifest", "source", source, "api_url", m.API.URL)
	return m, nil
}

// Fetch returns the raw manifest bytes served by domain, retrying transient failures.
func (ld *Loader) Fetch(ctx context.Context, domain string) ([]byte, error) {
	url := ManifestURL(domain)

	opts := make([]retry.Option, 0, len(ld.retryOpts)+1)
	opts = append(opts, retry.WithNotify(func(err error, attempt int, wait time.Duration) {
		ld.logger.Debug("retrying manifest fetch", "url", url, "attempt", attempt, "wait", wait, "error", err)
	}))
	opts = append(opts, ld.retryOpts...)

	resp, err := retry.Get(ctx, ld.client, url, ld.maxAttempts, opts...)
	if err != nil {
		return nil, fmt.Errorf("fetching plugin manifest: %w", err)
	}
	if resp.BodyTruncated {
		return nil, &domainerrors.ManifestError{Source: url, Err: ErrManifestTooLarge}
	}
	return resp.Body, nil
}

// LoadFile reads a manifest from disk and also returns the raw bytes.
func (ld *Loader) LoadFile(path string) (*entities.PluginManifest, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &domainerrors.ManifestError{Source: path, Err: err}
	}
	m, err := ld.Decode(data, path)
	return m, data, err
}

// Update writes m to path, creating parent directories. Files ending in .yaml
// or .yml are written as YAML, everything else as indented JSON.
func (ld *Loader) Update(m *entities.PluginManifest, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(m)
	default:
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return &domainerrors.ManifestError{Source: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	ld.logger.Info("manifest updated", "path", path)
	return nil
}
