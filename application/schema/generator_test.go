package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type ServerConfig struct {
		Host string `json:"host"`
		Port int    `json:"port,omitempty"`
	}

	type Config struct {
		Server  ServerConfig `json:"server"`
		Timeout int          `json:"timeout"`
	}

	schema, err := GenerateSchema(Config{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(schema, &decoded))

	props, ok := decoded["properties"].(map[string]interface{})
	require.True(t, ok, "expanded struct should have top-level properties")
	assert.Contains(t, props, "server")
	assert.Contains(t, props, "timeout")
	assert.ElementsMatch(t, []interface{}{"server", "timeout"}, decoded["required"])
}

func TestManifestSchema(t *testing.T) {
	raw, err := ManifestSchema()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, ManifestSchemaID, decoded["$id"])
	assert.Equal(t, false, decoded["additionalProperties"])
	assert.ElementsMatch(t, []interface{}{"auth", "api"}, decoded["required"])

	props := decoded["properties"].(map[string]interface{})
	for _, field := range []string{"schema_version", "name_for_human", "auth", "api", "logo_url"} {
		assert.Contains(t, props, field)
	}

	again, err := ManifestSchema()
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}
