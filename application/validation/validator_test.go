package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugincheck/plugincheck/application/validation"
	"github.com/plugincheck/plugincheck/domain/entities"
)

func manifest(url string, auth entities.AuthType) *entities.PluginManifest {
	return &entities.PluginManifest{
		API:  entities.ManifestAPI{Type: "openapi", URL: url},
		Auth: entities.ManifestAuth{Type: auth},
	}
}

func kinds(errs []entities.ValidationError) []entities.ErrorKind {
	out := make([]entities.ErrorKind, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}

func TestValidateManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest *entities.PluginManifest
		want     []entities.ErrorKind
	}{
		{
			name:     "valid",
			manifest: manifest("https://x", entities.AuthTypeNone),
			want:     []entities.ErrorKind{},
		},
		{
			name:     "auth none is case insensitive",
			manifest: manifest("https://x", "None"),
			want:     []entities.ErrorKind{},
		},
		{
			name:     "missing url",
			manifest: manifest("", entities.AuthTypeNone),
			want:     []entities.ErrorKind{entities.ErrorKindAPIURLMissing},
		},
		{
			name:     "blank url",
			manifest: manifest("   ", entities.AuthTypeNone),
			want:     []entities.ErrorKind{entities.ErrorKindAPIURLMissing},
		},
		{
			name:     "oauth",
			manifest: manifest("https://x", "OAuth"),
			want:     []entities.ErrorKind{entities.ErrorKindAuthNotSupported},
		},
		{
			name:     "service http",
			manifest: manifest("https://x", entities.AuthTypeServiceHTTP),
			want:     []entities.ErrorKind{entities.ErrorKindAuthNotSupported},
		},
		{
			name:     "empty auth type",
			manifest: manifest("https://x", ""),
			want:     []entities.ErrorKind{entities.ErrorKindAuthNotSupported},
		},
		{
			name:     "both problems reported together",
			manifest: manifest("", entities.AuthTypeUserHTTP),
			want:     []entities.ErrorKind{entities.ErrorKindAPIURLMissing, entities.ErrorKindAuthNotSupported},
		},
		{
			name:     "nil manifest",
			manifest: nil,
			want:     []entities.ErrorKind{entities.ErrorKindAPIURLMissing, entities.ErrorKindAuthNotSupported},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validation.ValidateManifest(tt.manifest)
			assert.Equal(t, tt.want, kinds(errs))
		})
	}
}

func TestValidateManifest_Messages(t *testing.T) {
	errs := validation.ValidateManifest(manifest("", "OAuth"))
	require.Len(t, errs, 2)

	assert.Equal(t, entities.ValidationError{
		Kind:    entities.ErrorKindAPIURLMissing,
		Message: "Missing url in manifest",
		Path:    "api.url",
	}, errs[0])
	assert.Equal(t, entities.ValidationError{
		Kind:    entities.ErrorKindAuthNotSupported,
		Message: "Auth type not supported",
		Path:    "auth.type",
	}, errs[1])
}

func TestManifestValidator_ImplementsPort(t *testing.T) {
	v := validation.NewManifestValidator()
	assert.Empty(t, v.Validate(manifest("https://x", entities.AuthTypeNone)))
	assert.Len(t, v.Validate(manifest("", entities.AuthTypeNone)), 1)
}
