package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugincheck/plugincheck/application/retry"
	"github.com/plugincheck/plugincheck/domain/entities"
	"github.com/plugincheck/plugincheck/infrastructure/openapi"
)

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func kinds(errs []entities.ValidationError) []entities.ErrorKind {
	out := make([]entities.ErrorKind, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}

func TestParser_Petstore(t *testing.T) {
	ctx := context.Background()
	p := openapi.New(fixture("petstore.yaml"))

	res := p.Validate(ctx)
	assert.Equal(t, entities.ValidationStatusWarning, res.Status)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, entities.ErrorKindOperationIDMissing, res.Warnings[0].Kind)
	assert.Equal(t, "GET /search", res.Warnings[0].Path)

	ops, err := p.List(ctx)
	require.NoError(t, err)
	want := []string{"GET /pets", "POST /pets", "GET /pets/{petId}", "GET /search"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_Swagger2(t *testing.T) {
	ctx := context.Background()
	p := openapi.New("file://" + mustAbs(t, fixture("swagger.json")))

	res := p.Validate(ctx)
	assert.Equal(t, entities.ValidationStatusValid, res.Status, "errors: %v", res.Errors)

	ops, err := p.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /todos"}, ops)
}

func TestParser_ServerVariablesExpanded(t *testing.T) {
	res := openapi.New(fixture("server_variables.yaml")).Validate(context.Background())
	assert.Equal(t, entities.ValidationStatusValid, res.Status, "errors: %v", res.Errors)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		file string
		want []entities.ErrorKind
	}{
		{"remote_ref.yaml", []entities.ErrorKind{entities.ErrorKindRemoteRefNotSupported}},
		{"no_servers.yaml", []entities.ErrorKind{entities.ErrorKindNoServerInformation}},
		{"multiple_servers.yaml", []entities.ErrorKind{entities.ErrorKindMultipleServerInformation}},
		{"relative_server.yaml", []entities.ErrorKind{entities.ErrorKindRelativeServerURLNotSupported}},
		{"auth_only.yaml", []entities.ErrorKind{entities.ErrorKindNoSupportedAPI}},
		{"broken.yaml", []entities.ErrorKind{entities.ErrorKindSpecNotValid}},
		{"invalid_model.yaml", []entities.ErrorKind{entities.ErrorKindSpecNotValid}},
		{"does_not_exist.yaml", []entities.ErrorKind{entities.ErrorKindSpecNotValid}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			res := openapi.New(fixture(tt.file)).Validate(context.Background())
			assert.Equal(t, entities.ValidationStatusError, res.Status)
			assert.Equal(t, tt.want, kinds(res.Errors))
			for _, e := range res.Errors {
				assert.NotEmpty(t, e.Message)
			}
		})
	}
}

func TestParser_RemoteRefPath(t *testing.T) {
	res := openapi.New(fixture("remote_ref.yaml")).Validate(context.Background())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/paths/~1items/get/responses/200/content/application~1json/schema/$ref", res.Errors[0].Path)
}

func TestParser_ListFailsOnInvalidSpec(t *testing.T) {
	_, err := openapi.New(fixture("broken.yaml")).List(context.Background())
	require.Error(t, err)
}

func TestParser_FetchesOverHTTPWithRetry(t *testing.T) {
	body, err := os.ReadFile(fixture("petstore.yaml"))
	require.NoError(t, err)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	p := openapi.New(srv.URL+"/openapi.yaml",
		openapi.WithRetryOptions(retry.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })))

	res := p.Validate(context.Background())
	assert.Equal(t, entities.ValidationStatusWarning, res.Status)

	ops, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ops, 4)

	// The document is fetched once per parser.
	assert.Equal(t, int32(2), hits.Load())
}

func TestParser_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	res := openapi.New(srv.URL + "/missing.yaml").Validate(context.Background())
	assert.Equal(t, entities.ValidationStatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, entities.ErrorKindSpecNotValid, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "404")
}

func TestFactory(t *testing.T) {
	factory := openapi.Factory()
	p := factory(fixture("petstore.yaml"))
	ops, err := p.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, ops)
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
