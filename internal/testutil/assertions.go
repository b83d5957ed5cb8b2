// Package testutil provides shared fakes and assertions for plugincheck tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugincheck/plugincheck/domain/entities"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// Kinds extracts the error kinds in order.
func Kinds(errs []entities.ValidationError) []entities.ErrorKind {
	kinds := make([]entities.ErrorKind, 0, len(errs))
	for _, e := range errs {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// AssertKinds asserts that errs carry exactly the expected kinds, in order.
func AssertKinds(t *testing.T, errs []entities.ValidationError, expected ...entities.ErrorKind) {
	t.Helper()
	if expected == nil {
		expected = []entities.ErrorKind{}
	}
	assert.Equal(t, expected, Kinds(errs))
}
