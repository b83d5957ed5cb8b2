package ports

import "github.com/plugincheck/plugincheck/domain/entities"

// ManifestParser decodes raw manifest bytes into a PluginManifest.
type ManifestParser interface {
	Parse(data []byte) (*entities.PluginManifest, error)
}
