// Package openapi implements ports.SpecParser on top of kin-openapi.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/plugincheck/plugincheck/application/retry"
	"github.com/plugincheck/plugincheck/domain/entities"
	"github.com/plugincheck/plugincheck/domain/ports"
	"github.com/plugincheck/plugincheck/infrastructure/httpclient"
	"github.com/plugincheck/plugincheck/internal/yamlutil"
)

// Option configures a Parser.
type Option func(*Parser)

// WithHTTPClient sets the client used for http(s) spec URLs.
func WithHTTPClient(c ports.HTTPClient) Option {
	return func(p *Parser) {
		if c != nil {
			p.client = c
		}
	}
}

// WithMaxAttempts sets the fetch attempt budget.
func WithMaxAttempts(n int) Option {
	return func(p *Parser) {
		p.maxAttempts = n
	}
}

// WithRetryOptions passes options through to the retry loop.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(p *Parser) {
		p.retryOpts = append(p.retryOpts, opts...)
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l ports.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// Parser validates and lists one OpenAPI (3.x or Swagger 2.0) document.
// The document is fetched on first use and kept for the parser's lifetime.
type Parser struct {
	specURL     string
	client      ports.HTTPClient
	maxAttempts int
	retryOpts   []retry.Option
	logger      ports.Logger

	mu     sync.Mutex
	loaded bool
	doc    *openapi3.T
	errs   []entities.ValidationError
}

// New creates a Parser for specURL, which may be an http(s) URL, a file:// URL
// or a local path.
func New(specURL string, opts ...Option) *Parser {
	p := &Parser{
		specURL:     specURL,
		maxAttempts: retry.DefaultMaxAttempts,
		logger:      ports.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = httpclient.New()
	}
	return p
}

// Factory returns a ports.SpecParserFactory producing Parsers with opts.
func Factory(opts ...Option) ports.SpecParserFactory {
	return func(specURL string) ports.SpecParser {
		return New(specURL, opts...)
	}
}

var _ ports.SpecParser = (*Parser)(nil)

// Validate implements ports.SpecParser.
func (p *Parser) Validate(ctx context.Context) entities.SpecValidationResult {
	doc, errs := p.load(ctx)
	if len(errs) > 0 {
		return entities.NewSpecValidationResult(errs, nil)
	}

	errs = append(errs, checkServers(doc)...)

	ops := supportedOperations(doc)
	if len(ops) == 0 {
		errs = append(errs, entities.ValidationError{
			Kind:    entities.ErrorKindNoSupportedAPI,
			Message: "no supported API found: only GET and POST operations without authentication are supported",
		})
	}

	var warnings []entities.ValidationError
	for _, op := range ops {
		if op.OperationID == "" {
			warnings = append(warnings, entities.ValidationError{
				Kind:    entities.ErrorKindOperationIDMissing,
				Message: fmt.Sprintf("operationId is missing for %s", op),
				Path:    op.String(),
			})
		}
	}

	return entities.NewSpecValidationResult(errs, warnings)
}

// List implements ports.SpecParser.
func (p *Parser) List(ctx context.Context) ([]string, error) {
	doc, errs := p.load(ctx)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	ops := supportedOperations(doc)
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.String())
	}
	return out, nil
}

func (p *Parser) load(ctx context.Context) (*openapi3.T, []entities.ValidationError) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		p.doc, p.errs = p.loadDocument(ctx)
		p.loaded = true
	}
	return p.doc, p.errs
}

func (p *Parser) loadDocument(ctx context.Context) (*openapi3.T, []entities.ValidationError) {
	data, err := p.read(ctx)
	if err != nil {
		return nil, []entities.ValidationError{specNotValid(err)}
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, []entities.ValidationError{specNotValid(fmt.Errorf("decoding spec: %w", err))}
	}
	tree = yamlutil.Normalize(tree)

	if refs := remoteRefs(tree); len(refs) > 0 {
		return nil, refs
	}

	doc, err := loadModel(ctx, data, tree)
	if err != nil {
		return nil, []entities.ValidationError{specNotValid(err)}
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, []entities.ValidationError{specNotValid(err)}
	}

	return doc, nil
}

func (p *Parser) read(ctx context.Context) ([]byte, error) {
	if p.specURL == "" {
		return nil, errors.New("spec URL is empty")
	}

	u, err := url.Parse(p.specURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		opts := make([]retry.Option, 0, len(p.retryOpts)+1)
		opts = append(opts, retry.WithNotify(func(err error, attempt int, wait time.Duration) {
			p.logger.Debug("retrying spec fetch", "url", p.specURL, "attempt", attempt, "wait", wait, "error", err)
		}))
		opts = append(opts, p.retryOpts...)
		resp, err := retry.Get(ctx, p.client, p.specURL, p.maxAttempts, opts...)
		if err != nil {
			return nil, err
		}
		if resp.BodyTruncated {
			return nil, fmt.Errorf("spec at %s exceeds the maximum body size", p.specURL)
		}
		return resp.Body, nil
	}

	path := p.specURL
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	return os.ReadFile(path)
}

func loadModel(ctx context.Context, data []byte, tree any) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	root, _ := tree.(map[string]any)
	if _, isSwagger := root["swagger"]; !isSwagger {
		return loader.LoadFromData(data)
	}

	// Swagger 2.0: convert to OpenAPI 3 and reload so references are resolved.
	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding swagger document: %w", err)
	}
	var doc2 openapi2.T
	if err := json.Unmarshal(raw, &doc2); err != nil {
		return nil, fmt.Errorf("decoding swagger document: %w", err)
	}
	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("converting swagger document: %w", err)
	}
	converted, err := json.Marshal(doc3)
	if err != nil {
		return nil, fmt.Errorf("encoding converted document: %w", err)
	}
	return loader.LoadFromData(converted)
}

func specNotValid(err error) entities.ValidationError {
	return entities.ValidationError{Kind: entities.ErrorKindSpecNotValid, Message: err.Error()}
}

// escapePointer escapes one JSON pointer token.
func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
