package ports

import (
	"context"

	"github.com/plugincheck/plugincheck/domain/entities"
)

// SpecParser validates an API description and enumerates its operations.
// A parser is bound to one spec URL for its whole life.
type SpecParser interface {
	// Validate checks the spec. Fetch and parse failures are reported as
	// validation errors, not as a Go error.
	Validate(ctx context.Context) entities.SpecValidationResult

	// List returns the supported operation identifiers, e.g. "GET /pets".
	List(ctx context.Context) ([]string, error)
}

// SpecParserFactory constructs a SpecParser for a spec URL.
type SpecParserFactory func(specURL string) SpecParser
