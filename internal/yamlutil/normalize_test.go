package yamlutil_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/plugincheck/plugincheck/internal/yamlutil"
)

func TestNormalize(t *testing.T) {
	var v any
	require.NoError(t, yaml.Unmarshal([]byte(`
responses:
  200:
    description: ok
list:
  - true: yes
`), &v))

	_, err := json.Marshal(v)
	require.Error(t, err, "yaml.v3 keeps non-string keys")

	data, err := json.Marshal(yamlutil.Normalize(v))
	require.NoError(t, err)
	assert.JSONEq(t, `{"responses":{"200":{"description":"ok"}},"list":[{"true":"yes"}]}`, string(data))
}

func TestNormalize_Scalars(t *testing.T) {
	assert.Equal(t, 3, yamlutil.Normalize(3))
	assert.Nil(t, yamlutil.Normalize(nil))
}
