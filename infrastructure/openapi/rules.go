package openapi

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/plugincheck/plugincheck/domain/entities"
)

// supportedMethods are the HTTP methods an operation may use to be listed.
var supportedMethods = []string{http.MethodGet, http.MethodPost}

type operation struct {
	entities.Operation
	servers openapi3.Servers
}

// supportedOperations returns the operations that can be called without
// credentials, sorted by path then method.
func supportedOperations(doc *openapi3.T) []operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	var ops []operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, method := range supportedMethods {
			op := item.GetOperation(method)
			if op == nil || !isSupported(doc, item, op, method) {
				continue
			}
			ops = append(ops, operation{
				Operation: entities.Operation{Method: method, Path: path, OperationID: op.OperationID},
				servers:   effectiveServers(doc, item, op),
			})
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

func isSupported(doc *openapi3.T, item *openapi3.PathItem, op *openapi3.Operation, method string) bool {
	if requiresAuth(doc, op) {
		return false
	}

	params := append(openapi3.Parameters{}, item.Parameters...)
	params = append(params, op.Parameters...)
	for _, ref := range params {
		if ref == nil || ref.Value == nil || !ref.Value.Required {
			continue
		}
		if ref.Value.In != openapi3.ParameterInPath && ref.Value.In != openapi3.ParameterInQuery {
			return false
		}
	}

	if method == http.MethodPost && op.RequestBody != nil && op.RequestBody.Value != nil {
		if !acceptsJSON(op.RequestBody.Value.Content) {
			return false
		}
	}
	return true
}

// requiresAuth applies the operation's security requirements, falling back to
// the document's. An empty requirement object makes authentication optional.
func requiresAuth(doc *openapi3.T, op *openapi3.Operation) bool {
	reqs := doc.Security
	if op.Security != nil {
		reqs = *op.Security
	}
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if len(r) == 0 {
			return false
		}
	}
	return true
}

func acceptsJSON(content openapi3.Content) bool {
	for mime := range content {
		if strings.HasPrefix(strings.ToLower(mime), "application/json") {
			return true
		}
	}
	return false
}

// effectiveServers resolves server overrides: operation, then path item, then document.
func effectiveServers(doc *openapi3.T, item *openapi3.PathItem, op *openapi3.Operation) openapi3.Servers {
	if op.Servers != nil && len(*op.Servers) > 0 {
		return *op.Servers
	}
	if len(item.Servers) > 0 {
		return item.Servers
	}
	return doc.Servers
}

// checkServers requires exactly one absolute server URL across the document and
// all supported operations.
func checkServers(doc *openapi3.T) []entities.ValidationError {
	seen := map[string]bool{}
	var urls []string
	add := func(servers openapi3.Servers) {
		for _, s := range servers {
			if s == nil {
				continue
			}
			u := expandServerURL(s)
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}

	add(doc.Servers)
	for _, op := range supportedOperations(doc) {
		add(op.servers)
	}

	switch {
	case len(urls) == 0:
		return []entities.ValidationError{{
			Kind:    entities.ErrorKindNoServerInformation,
			Message: "no server information found in the spec",
			Path:    "servers",
		}}
	case len(urls) > 1:
		return []entities.ValidationError{{
			Kind:    entities.ErrorKindMultipleServerInformation,
			Message: fmt.Sprintf("multiple server URLs found: %s", strings.Join(urls, ", ")),
			Path:    "servers",
		}}
	}

	if !isAbsoluteURL(urls[0]) {
		return []entities.ValidationError{{
			Kind:    entities.ErrorKindRelativeServerURLNotSupported,
			Message: fmt.Sprintf("server URL %q is relative; an absolute URL is required", urls[0]),
			Path:    "servers",
		}}
	}
	return nil
}

// expandServerURL substitutes server variables with their defaults.
func expandServerURL(s *openapi3.Server) string {
	u := s.URL
	for name, v := range s.Variables {
		if v != nil {
			u = strings.ReplaceAll(u, "{"+name+"}", v.Default)
		}
	}
	return u
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}

// remoteRefs reports every $ref that leaves the document, in document order of
// sorted keys so the output is stable.
func remoteRefs(tree any) []entities.ValidationError {
	var errs []entities.ValidationError
	var walk func(v any, ptr string)
	walk = func(v any, ptr string) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if k == "$ref" {
					if ref, ok := t[k].(string); ok && !strings.HasPrefix(ref, "#") {
						errs = append(errs, entities.ValidationError{
							Kind:    entities.ErrorKindRemoteRefNotSupported,
							Message: fmt.Sprintf("remote reference %q is not supported", ref),
							Path:    ptr + "/$ref",
						})
					}
					continue
				}
				walk(t[k], ptr+"/"+escapePointer(k))
			}
		case []any:
			for i, val := range t {
				walk(val, fmt.Sprintf("%s/%d", ptr, i))
			}
		}
	}
	walk(tree, "")
	return errs
}
