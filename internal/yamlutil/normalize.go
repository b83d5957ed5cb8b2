// Package yamlutil reshapes generic YAML values so they can be JSON-encoded.
package yamlutil

import "fmt"

// Normalize rewrites maps with non-string keys (e.g. response codes or
// booleans) into map[string]any, recursively. Maps and slices are modified in place.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = Normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = Normalize(val)
		}
		return t
	default:
		return v
	}
}
