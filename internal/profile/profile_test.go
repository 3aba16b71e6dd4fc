package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem in memory.
type MockFileSystem struct {
	Files map[string][]byte
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{Files: map[string][]byte{}}
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.Files[path] = data
	return nil
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error { return nil }

func TestLoad_MissingFile_CreatesAndPersistsDefault(t *testing.T) {
	fs := NewMockFileSystem()
	store := NewStoreWithFS("/cfg", fs)

	p, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "User", p.Name)
	assert.True(t, p.Security.AllowShellCommands)
	assert.Contains(t, p.Security.CommandBlacklist, "rm")

	// The default was written to disk.
	_, exists := fs.Files[filepath.Join("/cfg", ProfileFile)]
	assert.True(t, exists)
}

func TestLoad_CorruptFile_IsAnError(t *testing.T) {
	fs := NewMockFileSystem()
	fs.Files[filepath.Join("/cfg", ProfileFile)] = []byte("{not json")
	store := NewStoreWithFS("/cfg", fs)

	_, err := store.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	fs := NewMockFileSystem()
	store := NewStoreWithFS("/cfg", fs)

	p := DefaultProfile()
	p.Name = "Ada"
	p.Security.AllowShellCommands = false
	require.NoError(t, store.Save(p))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ada", loaded.Name)
	assert.False(t, loaded.Security.AllowShellCommands)
}

func TestPolicy_ReturnsSecuritySection(t *testing.T) {
	store := NewStoreWithFS("/cfg", NewMockFileSystem())

	policy, err := store.Policy()

	require.NoError(t, err)
	assert.True(t, policy.AllowToolUsage)
	assert.Contains(t, policy.FileAccessBlacklist, "/etc/shadow")
}

func TestGet_DottedKey(t *testing.T) {
	store := NewStoreWithFS("/cfg", NewMockFileSystem())

	value, found, err := store.Get("preferences.default_tool")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "shell", value)
}

func TestGet_MissingKey(t *testing.T) {
	store := NewStoreWithFS("/cfg", NewMockFileSystem())

	_, found, err := store.Get("preferences.no_such_key")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestSet_UpdatesAndPersists(t *testing.T) {
	fs := NewMockFileSystem()
	store := NewStoreWithFS("/cfg", fs)

	require.NoError(t, store.Set("preferences.editor", "vim"))

	value, found, err := store.Get("preferences.editor")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "vim", value)
}

func TestSet_CreatesIntermediateObjects(t *testing.T) {
	store := NewStoreWithFS("/cfg", NewMockFileSystem())

	require.NoError(t, store.Set("preferences.ui.theme", "dark"))

	value, found, err := store.Get("preferences.ui.theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", value)
}

func TestSet_InvalidShape_IsRejected(t *testing.T) {
	store := NewStoreWithFS("/cfg", NewMockFileSystem())

	// "policies" must be a list of rules; a scalar cannot take its place.
	err := store.Set("policies", "not-a-list")

	require.Error(t, err)
}
