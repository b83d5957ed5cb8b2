// Package schema provides JSON schema generation for the manifest types.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/plugincheck/plugincheck/domain/entities"
	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
)

// ManifestSchemaID is the resource URL the manifest schema is registered under.
const ManifestSchemaID = "https://plugincheck.dev/schemas/ai-plugin.json"

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go value's type
// using invopop/jsonschema. Fields without omitempty are required and unknown
// properties are rejected.
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

var (
	manifestSchemaOnce sync.Once
	manifestSchema     []byte
	manifestSchemaErr  error
)

// ManifestSchema returns the schema of entities.PluginManifest. It is generated once.
func ManifestSchema() ([]byte, error) {
	manifestSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{ExpandedStruct: true}
		s := reflector.Reflect(&entities.PluginManifest{})
		s.ID = jsonschema.ID(ManifestSchemaID)
		s.Title = "AI plugin manifest"

		manifestSchema, manifestSchemaErr = json.MarshalIndent(s, "", "  ")
		if manifestSchemaErr != nil {
			manifestSchemaErr = &domainerrors.SchemaError{Type: "PluginManifest", Err: manifestSchemaErr}
		}
	})
	return manifestSchema, manifestSchemaErr
}
