// Package operations lists the callable operations of a plugin's API spec.
package operations

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/plugincheck/plugincheck/domain/entities"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// Lister resolves a spec URL, validates the spec and enumerates its operations.
// It holds no per-call state and is safe for concurrent use.
type Lister struct {
	factory   ports.SpecParserFactory
	validator ports.ManifestValidator
	logger    ports.Logger
}

// NewLister creates a Lister. A nil logger discards warnings.
func NewLister(factory ports.SpecParserFactory, validator ports.ManifestValidator, logger ports.Logger) *Lister {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Lister{factory: factory, validator: validator, logger: logger}
}

// ListOperations lists the operations of the spec referenced by manifest, or of
// specURL when manifest is nil. A manifest that fails validation short-circuits
// before any spec is fetched.
func (l *Lister) ListOperations(ctx context.Context, manifest *entities.PluginManifest, specURL string, shouldWarn bool) entities.OperationsResult {
	if manifest != nil {
		if errs := l.validator.Validate(manifest); len(errs) > 0 {
			return entities.OperationsFailed(errs...)
		}
		specURL = manifest.API.URL
	}

	specURL = strings.TrimSpace(specURL)
	if specURL == "" {
		return entities.OperationsFailed(entities.ValidationError{
			Kind:    entities.ErrorKindSpecURLMissing,
			Message: "Missing spec url",
		})
	}

	parser := l.factory(specURL)
	res := parser.Validate(ctx)
	switch res.Status {
	case entities.ValidationStatusError:
		return entities.OperationsFailed(res.Errors...)
	case entities.ValidationStatusWarning:
		if shouldWarn {
			for _, w := range res.Warnings {
				l.logger.Warning(w.Message)
			}
		}
	}

	ops, err := parser.List(ctx)
	if err != nil {
		return entities.OperationsFailed(entities.ValidationError{
			Kind:    entities.ErrorKindSpecNotValid,
			Message: err.Error(),
		})
	}
	return entities.OperationsOK(ops)
}

// ListRequest is one input to ListAll. Manifest wins over SpecURL when set.
type ListRequest struct {
	Manifest   *entities.PluginManifest
	SpecURL    string
	ShouldWarn bool
}

// ListAll runs independent listings with at most limit in flight and returns
// the results in request order. limit <= 0 means unbounded.
func (l *Lister) ListAll(ctx context.Context, reqs []ListRequest, limit int) []entities.OperationsResult {
	results := make([]entities.OperationsResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = l.ListOperations(gctx, req.Manifest, req.SpecURL, req.ShouldWarn)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
