// Package parser decodes plugin manifests.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"

	"github.com/plugincheck/plugincheck/domain/entities"
	"github.com/plugincheck/plugincheck/domain/ports"
)

// ErrEmptyManifest is returned for empty or whitespace-only input.
var ErrEmptyManifest = errors.New("manifest is empty")

// ManifestParser implements ports.ManifestParser for JSON and YAML documents.
// The format is chosen by the first non-space byte: '{' means JSON.
type ManifestParser struct{}

// NewManifestParser creates a new ManifestParser.
func NewManifestParser() ports.ManifestParser {
	return &ManifestParser{}
}

// Parse unmarshals manifest bytes into a PluginManifest.
func (p *ManifestParser) Parse(data []byte) (*entities.PluginManifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyManifest
	}

	var manifest entities.PluginManifest
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &manifest); err != nil {
			return nil, err
		}
		return &manifest, nil
	}

	if err := yaml.Unmarshal(trimmed, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
