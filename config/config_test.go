package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
http:
  port: 9000
  timeout: 5s
model:
  type: decision_tree
  path: models/tree.json
  watch: true
validation:
  strict: false
report:
  language: en
`

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, 9000, c.Http.Port)
	assert.Equal(t, 5*time.Second, c.Http.Timeout)
	assert.Equal(t, "decision_tree", c.Model.Type)
	assert.Equal(t, "models/tree.json", c.Model.Path)
	assert.True(t, c.Model.Watch)
	assert.False(t, c.Validation.Strict)
	assert.Equal(t, "en", c.Report.Language)

	// untouched sections keep their defaults
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 1024, c.Cache.Size)
	assert.True(t, c.Database.Enabled)
	require.NoError(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	c, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(path, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [port"), 0o600))

	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	v := viper.New()
	v.Set("http.port", 7070)
	v.Set("model.path", "/srv/model.json")
	v.Set("validation.strict", false)

	c := Default()
	ApplyOverrides(c, v)
	assert.Equal(t, 7070, c.Http.Port)
	assert.Equal(t, "/srv/model.json", c.Model.Path)
	assert.False(t, c.Validation.Strict)
	assert.Equal(t, "adaboost", c.Model.Type)

	ApplyOverrides(c, nil)
	assert.Equal(t, 7070, c.Http.Port)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Http.Port = 0
	c.Model.Path = ""
	c.Log.Format = "xml"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.port")
	assert.Contains(t, err.Error(), "model.path")
	assert.Contains(t, err.Error(), "log.format")
}
