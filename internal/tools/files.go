package tools

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type readFileRequest struct {
	FilePath string `mapstructure:"file_path"`
}

func readFile(_ context.Context, args map[string]any) map[string]any {
	var req readFileRequest
	if err := decodeArgs(args, &req); err != nil {
		return fail("invalid arguments: %v", err)
	}
	if req.FilePath == "" {
		return fail("file_path is required")
	}

	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("file not found: %s", req.FilePath)
		}
		return fail("read %s: %v", req.FilePath, err)
	}
	return ok(map[string]any{"content": string(content)})
}

type writeFileRequest struct {
	FilePath string `mapstructure:"file_path"`
	Content  string `mapstructure:"content"`
}

func writeFile(_ context.Context, args map[string]any) map[string]any {
	var req writeFileRequest
	if err := decodeArgs(args, &req); err != nil {
		return fail("invalid arguments: %v", err)
	}
	if req.FilePath == "" {
		return fail("file_path is required")
	}

	if dir := filepath.Dir(req.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail("create directory %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(req.FilePath, []byte(req.Content), 0o644); err != nil {
		return fail("write %s: %v", req.FilePath, err)
	}
	return ok(map[string]any{"message": "successfully wrote to " + req.FilePath})
}

type listDirectoryRequest struct {
	Path string `mapstructure:"path"`
}

func listDirectory(_ context.Context, args map[string]any) map[string]any {
	var req listDirectoryRequest
	if err := decodeArgs(args, &req); err != nil {
		return fail("invalid arguments: %v", err)
	}
	if req.Path == "" {
		req.Path = "."
	}

	entries, err := os.ReadDir(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("directory not found: %s", req.Path)
		}
		return fail("list %s: %v", req.Path, err)
	}

	abs, err := filepath.Abs(req.Path)
	if err != nil {
		abs = req.Path
	}

	files := make([]map[string]any, 0)
	dirs := make([]map[string]any, 0)
	for _, entry := range entries {
		entryPath := filepath.Join(req.Path, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, map[string]any{
				"name": entry.Name(),
				"path": entryPath,
			})
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // skip entries that vanish or deny access
		}
		files = append(files, map[string]any{
			"name":        entry.Name(),
			"path":        entryPath,
			"size_bytes":  info.Size(),
			"modified_at": info.ModTime().Unix(),
		})
	}

	return ok(map[string]any{
		"path":        abs,
		"directories": dirs,
		"files":       files,
	})
}

type monitorFileRequest struct {
	FilePath       string `mapstructure:"file_path"`
	Keyword        string `mapstructure:"keyword"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// monitorFilePollInterval is how often new content is checked for.
const monitorFilePollInterval = time.Second

// monitorFile watches a file for a keyword in newly appended lines until the
// keyword appears or the timeout elapses. It is a blocking poll loop; the
// timeout is the only cancellation, apart from the caller's context.
func monitorFile(ctx context.Context, args map[string]any) map[string]any {
	var req monitorFileRequest
	if err := decodeArgs(args, &req); err != nil {
		return fail("invalid arguments: %v", err)
	}
	if req.FilePath == "" || req.Keyword == "" {
		return fail("file_path and keyword are required")
	}
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = 60
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("file not found: %s", req.FilePath)
		}
		return fail("open %s: %v", req.FilePath, err)
	}
	defer f.Close()

	// Only lines appended after the call starts are considered.
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fail("seek %s: %v", req.FilePath, err)
	}

	deadline := time.Now().Add(time.Duration(req.TimeoutSeconds) * time.Second)
	reader := bufio.NewReader(f)
	var pending string // start of a line not yet terminated by \n

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return fail("monitoring cancelled: %v", ctx.Err())
		}

		chunk, err := reader.ReadString('\n')
		line := pending + chunk
		if err != nil {
			// At EOF: hold the partial line and wait for new content.
			pending = line
			time.Sleep(monitorFilePollInterval)
			continue
		}
		pending = ""
		if strings.Contains(line, req.Keyword) {
			return ok(map[string]any{
				"found":   true,
				"line":    strings.TrimRight(line, "\n"),
				"message": "keyword '" + req.Keyword + "' found",
			})
		}
	}

	return ok(map[string]any{
		"found":   false,
		"message": "timeout reached, keyword '" + req.Keyword + "' not found in " + req.FilePath,
	})
}
