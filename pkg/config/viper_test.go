package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	v, err := Load(t.TempDir(), "does-not-exist")
	require.NoError(t, err)

	SetDefaults(v, map[string]interface{}{"server.port": 8095})
	require.NoError(t, BindEnvs(v, map[string]string{"server.port": "OPENJOB_TEST_PORT"}))

	assert.Equal(t, 8095, v.GetInt("server.port"))

	t.Setenv("OPENJOB_TEST_PORT", "9001")
	assert.Equal(t, 9001, v.GetInt("server.port"))
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	content := []byte("elasticsearch:\n  index_alias: jobs-test\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	v, err := Load(dir, "config")
	require.NoError(t, err)
	assert.Equal(t, "jobs-test", v.GetString("elasticsearch.index_alias"))
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("a: [unclosed"), 0o600))

	_, err := Load(dir, "config")
	assert.Error(t, err)
}
