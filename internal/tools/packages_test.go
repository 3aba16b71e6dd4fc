package tools

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// fakeRunner implements argvRunner, recording the argv it was given.
type fakeRunner struct {
	result models.ExecutionResult
	argv   []string
	calls  int
}

func (f *fakeRunner) Run(_ context.Context, argv []string) models.ExecutionResult {
	f.calls++
	f.argv = argv
	return f.result
}

func TestInstallPackage_RequiresName(t *testing.T) {
	runner := &fakeRunner{}
	handler := installPackage(runner)

	result := handler(context.Background(), map[string]any{})

	assert.Equal(t, false, result["success"])
	assert.Equal(t, 0, runner.calls)
}

func TestInstallPackage_InvokesPlatformPackageManager(t *testing.T) {
	runner := &fakeRunner{result: models.ExecutionResult{Success: true, Stdout: "installed"}}
	handler := installPackage(runner)

	result := handler(context.Background(), map[string]any{"name": "htop"})

	require.Equal(t, true, result["success"])
	assert.Equal(t, "installed", result["stdout"])
	require.Equal(t, 1, runner.calls)
	assert.Contains(t, runner.argv, "htop")
}

func TestUninstallPackage_FailedCommandIsToolFailure(t *testing.T) {
	runner := &fakeRunner{result: models.ExecutionResult{Success: false, Stderr: "not installed"}}
	handler := uninstallPackage(runner)

	result := handler(context.Background(), map[string]any{"name": "ghost"})

	assert.Equal(t, false, result["success"])
	assert.Equal(t, "not installed", result["stderr"])
}

func TestListPackages_NoQuery(t *testing.T) {
	runner := &fakeRunner{result: models.ExecutionResult{Success: true, Stdout: "pkg-a\npkg-b"}}
	handler := listPackages(runner)

	result := handler(context.Background(), map[string]any{})

	require.Equal(t, true, result["success"])
	assert.Equal(t, "pkg-a\npkg-b", result["stdout"])
	require.Equal(t, 1, runner.calls)
}

func TestPackageManagerArgv_PerPlatform(t *testing.T) {
	argv, err := packageManagerArgv("install", "htop")
	require.NoError(t, err)

	switch runtime.GOOS {
	case "linux":
		assert.Equal(t, []string{"sudo", "apt-get", "install", "-y", "htop"}, argv)
	case "darwin":
		assert.Equal(t, []string{"brew", "install", "htop"}, argv)
	case "windows":
		assert.Equal(t, []string{"choco", "install", "htop", "-y"}, argv)
	}
}

func TestPackageManagerArgv_UninstallMapsToRemoveOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-specific mapping")
	}
	argv, err := packageManagerArgv("uninstall", "htop")
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo", "apt-get", "remove", "-y", "htop"}, argv)
}
