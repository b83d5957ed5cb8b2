// Package validation checks plugin manifests.
package validation

import (
	"strings"

	"github.com/plugincheck/plugincheck/domain/entities"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// ManifestValidator enforces the preconditions a manifest must meet before its
// API spec is worth fetching.
type ManifestValidator struct{}

// NewManifestValidator creates a new validator.
func NewManifestValidator() ports.ManifestValidator {
	return ManifestValidator{}
}

// Validate implements ports.ManifestValidator.
func (ManifestValidator) Validate(manifest *entities.PluginManifest) []entities.ValidationError {
	return ValidateManifest(manifest)
}

// ValidateManifest runs every check and returns all errors, in check order.
// It returns nil when the manifest is acceptable.
func ValidateManifest(manifest *entities.PluginManifest) []entities.ValidationError {
	var errs []entities.ValidationError
	if manifest == nil {
		manifest = &entities.PluginManifest{}
	}

	if strings.TrimSpace(manifest.API.URL) == "" {
		errs = append(errs, entities.ValidationError{
			Kind:    entities.ErrorKindAPIURLMissing,
			Message: "Missing url in manifest",
			Path:    "api.url",
		})
	}

	if !manifest.Auth.Type.Is(entities.AuthTypeNone) {
		errs = append(errs, entities.ValidationError{
			Kind:    entities.ErrorKindAuthNotSupported,
			Message: "Auth type not supported",
			Path:    "auth.type",
		})
	}

	return errs
}
