package entities

import "strings"

// Operation is a single callable endpoint of an API spec.
type Operation struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	OperationID string `json:"operation_id,omitempty"`
}

// String renders the operation identifier, e.g. "GET /pets".
func (o Operation) String() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// OperationsResult is the outcome of listing the operations of a spec.
// Exactly one of Operations and Errors is meaningful: when Errors is non-empty
// the listing failed and Operations is nil.
type OperationsResult struct {
	Operations []string          `json:"operations,omitempty"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// OperationsOK wraps a successful listing.
func OperationsOK(ops []string) OperationsResult {
	if ops == nil {
		ops = []string{}
	}
	return OperationsResult{Operations: ops}
}

// OperationsFailed wraps a failed listing.
func OperationsFailed(errs ...ValidationError) OperationsResult {
	return OperationsResult{Errors: errs}
}

// OK reports whether the listing succeeded.
func (r OperationsResult) OK() bool {
	return len(r.Errors) == 0
}
