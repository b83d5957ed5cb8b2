package entities

import "fmt"

// ErrorKind classifies a ValidationError.
type ErrorKind string

const (
	// ErrorKindAPIURLMissing means the manifest has no api.url.
	ErrorKindAPIURLMissing ErrorKind = "ApiUrlMissing"
	// ErrorKindAuthNotSupported means the manifest declares an auth type other than none.
	ErrorKindAuthNotSupported ErrorKind = "AuthNotSupported"
	// ErrorKindSpecURLMissing means neither a manifest nor a spec URL was given.
	ErrorKindSpecURLMissing ErrorKind = "SpecUrlMissing"
	// ErrorKindSchemaViolation means the raw manifest does not match the manifest schema.
	ErrorKindSchemaViolation ErrorKind = "SchemaViolation"

	// Kinds reported by spec parsers.
	ErrorKindSpecNotValid                  ErrorKind = "SpecNotValid"
	ErrorKindRemoteRefNotSupported         ErrorKind = "RemoteRefNotSupported"
	ErrorKindNoServerInformation           ErrorKind = "NoServerInformation"
	ErrorKindMultipleServerInformation     ErrorKind = "MultipleServerInformation"
	ErrorKindRelativeServerURLNotSupported ErrorKind = "RelativeServerUrlNotSupported"
	ErrorKindNoSupportedAPI                ErrorKind = "NoSupportedApi"
	ErrorKindOperationIDMissing            ErrorKind = "OperationIdMissing"
)

// ValidationError represents one problem found in a manifest or API spec.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ValidationStatus is the overall verdict of a spec validation.
type ValidationStatus string

const (
	ValidationStatusValid   ValidationStatus = "valid"
	ValidationStatusWarning ValidationStatus = "warning"
	ValidationStatusError   ValidationStatus = "error"
)

// SpecValidationResult is what a spec parser reports for one document.
type SpecValidationResult struct {
	Status   ValidationStatus  `json:"status"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

// NewSpecValidationResult derives the status from the collected errors and warnings.
func NewSpecValidationResult(errs, warnings []ValidationError) SpecValidationResult {
	status := ValidationStatusValid
	switch {
	case len(errs) > 0:
		status = ValidationStatusError
	case len(warnings) > 0:
		status = ValidationStatusWarning
	}
	return SpecValidationResult{Status: status, Errors: errs, Warnings: warnings}
}
