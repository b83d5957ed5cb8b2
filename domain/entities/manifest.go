package entities

import "strings"

// AuthType identifies the authentication scheme a plugin manifest declares.
type AuthType string

const (
	// AuthTypeNone means the API is callable without credentials.
	AuthTypeNone AuthType = "none"

	// AuthTypeUserHTTP means each user supplies a token.
	AuthTypeUserHTTP AuthType = "user_http"

	// AuthTypeServiceHTTP means a single service-level token is used.
	AuthTypeServiceHTTP AuthType = "service_http"

	// AuthTypeOAuth means an OAuth flow is required.
	AuthTypeOAuth AuthType = "oauth"
)

// Is reports whether t names the same scheme as other, ignoring case.
func (t AuthType) Is(other AuthType) bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), string(other))
}

// PluginManifest is the document served at /.well-known/ai-plugin.json.
type PluginManifest struct {
	SchemaVersion       string       `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	NameForHuman        string       `json:"name_for_human,omitempty" yaml:"name_for_human,omitempty"`
	NameForModel        string       `json:"name_for_model,omitempty" yaml:"name_for_model,omitempty"`
	DescriptionForHuman string       `json:"description_for_human,omitempty" yaml:"description_for_human,omitempty"`
	DescriptionForModel string       `json:"description_for_model,omitempty" yaml:"description_for_model,omitempty"`
	Auth                ManifestAuth `json:"auth" yaml:"auth"`
	API                 ManifestAPI  `json:"api" yaml:"api"`
	LogoURL             string       `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
	ContactEmail        string       `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	LegalInfoURL        string       `json:"legal_info_url,omitempty" yaml:"legal_info_url,omitempty"`
}

// ManifestAuth describes how the API authenticates callers.
type ManifestAuth struct {
	Type AuthType `json:"type" yaml:"type" jsonschema:"enum=none,enum=None,enum=user_http,enum=service_http,enum=oauth"`

	// AuthorizationType is only meaningful for the http auth kinds (e.g. "bearer").
	AuthorizationType string `json:"authorization_type,omitempty" yaml:"authorization_type,omitempty"`
}

// ManifestAPI points at the API description.
type ManifestAPI struct {
	Type                string `json:"type,omitempty" yaml:"type,omitempty"`
	URL                 string `json:"url" yaml:"url"`
	IsUserAuthenticated bool   `json:"is_user_authenticated,omitempty" yaml:"is_user_authenticated,omitempty"`
}
