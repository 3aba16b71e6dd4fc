package tools

import (
	"context"
	"fmt"
	"runtime"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// argvRunner is the executor seam used by package-management tools.
type argvRunner interface {
	Run(ctx context.Context, argv []string) models.ExecutionResult
}

type packageRequest struct {
	Name  string `mapstructure:"name"`
	Query string `mapstructure:"query"`
}

func installPackage(runner argvRunner) Handler {
	return func(ctx context.Context, args map[string]any) map[string]any {
		var req packageRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}
		if req.Name == "" {
			return fail("name is required")
		}

		argv, err := packageManagerArgv("install", req.Name)
		if err != nil {
			return fail("%v", err)
		}
		return runToResult(runner.Run(ctx, argv))
	}
}

func uninstallPackage(runner argvRunner) Handler {
	return func(ctx context.Context, args map[string]any) map[string]any {
		var req packageRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}
		if req.Name == "" {
			return fail("name is required")
		}

		argv, err := packageManagerArgv("uninstall", req.Name)
		if err != nil {
			return fail("%v", err)
		}
		return runToResult(runner.Run(ctx, argv))
	}
}

func listPackages(runner argvRunner) Handler {
	return func(ctx context.Context, args map[string]any) map[string]any {
		var req packageRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}

		var argv []string
		switch runtime.GOOS {
		case "windows":
			argv = []string{"choco", "list"}
			if req.Query != "" {
				argv = append(argv, "--include", req.Query)
			}
		case "linux":
			if req.Query != "" {
				argv = []string{"sh", "-c", "apt list --installed 2>/dev/null | grep " + req.Query}
			} else {
				argv = []string{"apt", "list", "--installed"}
			}
		case "darwin":
			if req.Query != "" {
				argv = []string{"sh", "-c", "brew list | grep " + req.Query}
			} else {
				argv = []string{"brew", "list"}
			}
		default:
			return fail("unsupported operating system: %s", runtime.GOOS)
		}
		return runToResult(runner.Run(ctx, argv))
	}
}

// packageManagerArgv picks the platform package manager invocation.
func packageManagerArgv(op, name string) ([]string, error) {
	switch runtime.GOOS {
	case "windows":
		return []string{"choco", op, name, "-y"}, nil
	case "linux":
		aptOp := "install"
		if op == "uninstall" {
			aptOp = "remove"
		}
		return []string{"sudo", "apt-get", aptOp, "-y", name}, nil
	case "darwin":
		return []string{"brew", op, name}, nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// runToResult folds an ExecutionResult into the tool result convention.
func runToResult(res models.ExecutionResult) map[string]any {
	fields := map[string]any{
		"stdout": res.Stdout,
		"stderr": res.Stderr,
	}
	if !res.Success {
		fields["success"] = false
		fields["error"] = "command failed"
		return fields
	}
	return ok(fields)
}
