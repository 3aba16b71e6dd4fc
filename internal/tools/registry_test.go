package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

func nopHandler(context.Context, map[string]any) map[string]any {
	return map[string]any{"success": true}
}

func TestNewRegistry_RejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(Entry{Name: "", Handler: nopHandler})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestNewRegistry_RejectsNilHandler(t *testing.T) {
	_, err := NewRegistry(Entry{Name: "broken"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewRegistry_RejectsDuplicateName(t *testing.T) {
	_, err := NewRegistry(
		Entry{Name: "twice", Handler: nopHandler},
		Entry{Name: "twice", Handler: nopHandler},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestInvoke_UnknownTool(t *testing.T) {
	r, err := NewRegistry(Entry{Name: "known", Handler: nopHandler})
	require.NoError(t, err)

	_, err = r.Invoke(context.Background(), "unknown", nil)

	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestInvoke_NilArgsBecomeEmptyMap(t *testing.T) {
	var got map[string]any
	r, err := NewRegistry(Entry{Name: "echo_args", Handler: func(_ context.Context, args map[string]any) map[string]any {
		got = args
		return map[string]any{"success": true}
	}})
	require.NoError(t, err)

	_, err = r.Invoke(context.Background(), "echo_args", nil)

	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestScope_KnownAndUnknown(t *testing.T) {
	r, err := NewRegistry(Entry{
		Name:    "read_file",
		Scope:   models.ScopeFilesystemRead,
		PathArg: "file_path",
		Handler: nopHandler,
	})
	require.NoError(t, err)

	scope, pathArg, ok := r.Scope("read_file")
	assert.True(t, ok)
	assert.Equal(t, models.ScopeFilesystemRead, scope)
	assert.Equal(t, "file_path", pathArg)

	_, _, ok = r.Scope("missing")
	assert.False(t, ok)
}

func TestNames_AreSorted(t *testing.T) {
	r, err := NewRegistry(
		Entry{Name: "zebra", Handler: nopHandler},
		Entry{Name: "apple", Handler: nopHandler},
		Entry{Name: "mango", Handler: nopHandler},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "mango", "zebra"}, r.Names())
}

func TestDecodeArgs_WeakTyping(t *testing.T) {
	var req struct {
		Timeout int    `mapstructure:"timeout_seconds"`
		Path    string `mapstructure:"path"`
	}

	// JSON numbers arrive as float64 and sometimes as strings.
	err := decodeArgs(map[string]any{"timeout_seconds": "30", "path": "/tmp"}, &req)

	require.NoError(t, err)
	assert.Equal(t, 30, req.Timeout)
	assert.Equal(t, "/tmp", req.Path)
}

func TestNewDefaultRegistry_RegistersFullToolSet(t *testing.T) {
	r, err := NewDefaultRegistry(Deps{})
	require.NoError(t, err)

	names := r.Names()
	for _, name := range []string{
		"read_file", "write_file", "list_directory", "monitor_file", "git_status",
		"get_cpu_info", "get_memory_info", "get_disk_usage", "list_processes",
		"read_windows_event_log",
		"install_package", "uninstall_package", "list_packages",
		"web_search", "web_scrape", "manage_profile", "check_policies",
	} {
		assert.Contains(t, names, name)
	}

	// Filesystem tools must declare which argument the vetting engine checks.
	scope, pathArg, ok := r.Scope("write_file")
	require.True(t, ok)
	assert.Equal(t, models.ScopeFilesystemWrite, scope)
	assert.Equal(t, "file_path", pathArg)
}
