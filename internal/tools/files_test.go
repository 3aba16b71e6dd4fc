package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile_HappyPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	result := readFile(context.Background(), map[string]any{"file_path": path})

	assert.Equal(t, true, result["success"])
	assert.Equal(t, "hello", result["content"])
}

func TestReadFile_NotFound(t *testing.T) {
	result := readFile(context.Background(), map[string]any{
		"file_path": filepath.Join(t.TempDir(), "missing.txt"),
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "file not found")
}

func TestReadFile_MissingArgument(t *testing.T) {
	result := readFile(context.Background(), map[string]any{})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "file_path is required")
}

func TestWriteFile_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "out.txt")

	result := writeFile(context.Background(), map[string]any{
		"file_path": path,
		"content":   "written",
	})

	require.Equal(t, true, result["success"])
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "written", string(data))
}

func TestListDirectory_SeparatesFilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	result := listDirectory(context.Background(), map[string]any{"path": dir})

	require.Equal(t, true, result["success"])
	files := result["files"].([]map[string]any)
	dirs := result["directories"].([]map[string]any)
	require.Len(t, files, 1)
	require.Len(t, dirs, 1)
	assert.Equal(t, "a.txt", files[0]["name"])
	assert.Equal(t, "sub", dirs[0]["name"])
}

func TestListDirectory_NotFound(t *testing.T) {
	result := listDirectory(context.Background(), map[string]any{
		"path": filepath.Join(t.TempDir(), "nope"),
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "directory not found")
}

func TestMonitorFile_FindsAppendedKeyword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("old line with ERROR\n"), 0o644))

	go func() {
		time.Sleep(200 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.WriteString("fresh line with ERROR in it\n")
	}()

	result := monitorFile(context.Background(), map[string]any{
		"file_path":       path,
		"keyword":         "ERROR",
		"timeout_seconds": 10,
	})

	require.Equal(t, true, result["success"])
	// Pre-existing content is ignored; only the appended line matches.
	assert.Equal(t, true, result["found"])
	assert.Equal(t, "fresh line with ERROR in it", result["line"])
}

func TestMonitorFile_TimesOutWithoutKeyword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	result := monitorFile(context.Background(), map[string]any{
		"file_path":       path,
		"keyword":         "NEVER",
		"timeout_seconds": 1,
	})

	// A timeout is a successful observation, not a tool failure.
	require.Equal(t, true, result["success"])
	assert.Equal(t, false, result["found"])
}

func TestMonitorFile_MissingFile(t *testing.T) {
	result := monitorFile(context.Background(), map[string]any{
		"file_path": filepath.Join(t.TempDir(), "absent.log"),
		"keyword":   "x",
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "file not found")
}
