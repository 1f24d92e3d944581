package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectedEnvironment_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv(stateDirEnv, dir)

	name, err := GetSelectedEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "", name, "missing file means nothing selected")

	require.NoError(t, SetSelectedEnvironment("staging"))

	name, err = GetSelectedEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "staging", name)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.json"), path)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(stateDirEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("nope"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse user config file")
}

func TestSave_PrivateFileNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(stateDirEnv, dir)

	require.NoError(t, SetSelectedEnvironment("local"))

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(filepath.Join(dir, "config.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}
