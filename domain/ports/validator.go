package ports

import "github.com/plugincheck/plugincheck/domain/entities"

// ManifestValidator checks a decoded manifest and returns every problem found.
type ManifestValidator interface {
	Validate(manifest *entities.PluginManifest) []entities.ValidationError
}
