package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsDefault(t *testing.T) {
	t.Setenv("STORECHAT_HOME", "")
	os.Unsetenv("STORECHAT_HOME")

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Contains(t, p.Base, ".storechat")
	assert.Equal(t, filepath.Join(p.Base, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(p.Base, "data", "storechat.db"), p.Database)
}

func TestResolvePathsHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORECHAT_HOME", dir)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, dir, p.Base)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORECHAT_HOME", filepath.Join(dir, "nested"))

	p, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, p.EnsureDirs())

	for _, d := range []string{p.Base, p.Data, p.Logs} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestParseConfigPath(t *testing.T) {
	parts, err := ParseConfigPath("api.baseUrl")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "baseUrl"}, parts)

	_, err = ParseConfigPath("")
	assert.Error(t, err)

	_, err = ParseConfigPath("api..baseUrl")
	assert.Error(t, err)

	_, err = ParseConfigPath("__proto__.x")
	assert.Error(t, err)
}

func TestGetSetUnsetValueAtPath(t *testing.T) {
	root := map[string]any{}

	SetValueAtPath(root, []string{"a", "b", "c"}, 42)
	val, ok := GetValueAtPath(root, []string{"a", "b", "c"})
	require.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = GetValueAtPath(root, []string{"a", "missing"})
	assert.False(t, ok)

	assert.True(t, UnsetValueAtPath(root, []string{"a", "b", "c"}))
	assert.False(t, UnsetValueAtPath(root, []string{"a", "b", "c"}))
}
