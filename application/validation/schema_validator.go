package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/plugincheck/plugincheck/application/schema"
	"github.com/plugincheck/plugincheck/domain/entities"
	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
	"github.com/plugincheck/plugincheck/internal/yamlutil"
)

// SchemaValidator checks raw manifest documents against the generated manifest schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the manifest schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	raw, err := schema.ManifestSchema()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schema.ManifestSchemaID, bytes.NewReader(raw)); err != nil {
		return nil, &domainerrors.SchemaError{Type: "PluginManifest", Err: err}
	}
	sch, err := compiler.Compile(schema.ManifestSchemaID)
	if err != nil {
		return nil, &domainerrors.SchemaError{Type: "PluginManifest", Err: err}
	}
	return &SchemaValidator{schema: sch}, nil
}

// Validate returns one SchemaViolation per failing leaf of the schema, sorted by
// location. Undecodable input is a single SchemaViolation at the document root.
func (v *SchemaValidator) Validate(data []byte) []entities.ValidationError {
	doc, err := decodeDocument(data)
	if err != nil {
		return []entities.ValidationError{{
			Kind:    entities.ErrorKindSchemaViolation,
			Message: fmt.Sprintf("manifest is not valid JSON or YAML: %v", err),
		}}
	}

	err = v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []entities.ValidationError{{Kind: entities.ErrorKindSchemaViolation, Message: err.Error()}}
	}

	var errs []entities.ValidationError
	collectLeaves(ve, &errs)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
	return errs
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]entities.ValidationError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, entities.ValidationError{
			Kind:    entities.ErrorKindSchemaViolation,
			Message: ve.Message,
			Path:    pointerToPath(ve.InstanceLocation),
		})
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

// pointerToPath turns "/auth/type" into "auth.type".
func pointerToPath(ptr string) string {
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}

// decodeDocument yields a value shaped like encoding/json output, which is what
// the schema library expects. YAML input is normalized through a JSON round-trip.
func decodeDocument(data []byte) (interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var doc interface{}
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	var y interface{}
	if err := yaml.Unmarshal(trimmed, &y); err != nil {
		return nil, err
	}
	j, err := json.Marshal(yamlutil.Normalize(y))
	if err != nil {
		return nil, err
	}
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(j))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
