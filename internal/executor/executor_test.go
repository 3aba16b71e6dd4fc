package executor

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on POSIX shell utilities")
	}
}

func TestExecuteAll_RunsCommandsInOrder(t *testing.T) {
	skipOnWindows(t)
	e := New(Options{}, nil)

	results := e.ExecuteAll(context.Background(), []string{"echo one", "echo two"})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Equal(t, "one", strings.TrimSpace(results[0].Stdout))
	assert.Equal(t, "two", strings.TrimSpace(results[1].Stdout))
}

func TestExecuteAll_StopsAfterFirstFailure(t *testing.T) {
	skipOnWindows(t)
	e := New(Options{}, nil)

	results := e.ExecuteAll(context.Background(), []string{"true", "false", "echo never"})

	// The third command is never attempted.
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
}

func TestExecuteAll_EmptyList(t *testing.T) {
	e := New(Options{}, nil)

	results := e.ExecuteAll(context.Background(), nil)

	assert.Empty(t, results)
}

func TestExecuteOne_UnparseableCommandLine(t *testing.T) {
	e := New(Options{}, nil)

	results := e.ExecuteAll(context.Background(), []string{`echo "unterminated`})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Stderr)
}

func TestExecuteOne_MissingExecutable_CarriesOSErrorText(t *testing.T) {
	e := New(Options{}, nil)

	results := e.ExecuteAll(context.Background(), []string{"definitely-not-a-real-binary-xyz"})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Stderr, "definitely-not-a-real-binary-xyz")
}

func TestExecuteOne_CapturesStderr(t *testing.T) {
	skipOnWindows(t)
	e := New(Options{}, nil)

	results := e.ExecuteAll(context.Background(), []string{"sh -c 'echo oops >&2; exit 3'"})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "oops", strings.TrimSpace(results[0].Stderr))
}

func TestExecuteOne_TruncatesOversizedOutput(t *testing.T) {
	skipOnWindows(t)
	e := New(Options{MaxOutputSize: 64}, nil)

	results := e.ExecuteAll(context.Background(), []string{"sh -c 'yes x | head -n 1000'"})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Contains(t, results[0].Stdout, "... [output truncated]")
	assert.LessOrEqual(t, len(results[0].Stdout), 64+len("\n... [output truncated]"))
}

func TestExecuteOne_TimeoutKillsCommand(t *testing.T) {
	skipOnWindows(t)
	e := New(Options{CommandTimeout: 100 * time.Millisecond}, nil)

	start := time.Now()
	results := e.ExecuteAll(context.Background(), []string{"sleep 5"})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_PreTokenizedCommand(t *testing.T) {
	skipOnWindows(t)
	e := New(Options{}, nil)

	res := e.Run(context.Background(), []string{"echo", "hello world"})

	assert.True(t, res.Success)
	assert.Equal(t, "hello world", strings.TrimSpace(res.Stdout))
}

func TestRun_EmptyArgv(t *testing.T) {
	e := New(Options{}, nil)

	res := e.Run(context.Background(), nil)

	assert.False(t, res.Success)
	assert.Equal(t, "empty command", res.Stderr)
}
