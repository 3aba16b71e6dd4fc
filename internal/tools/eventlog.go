package tools

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

type eventLogRequest struct {
	LogName    string `mapstructure:"log_name"`
	EventCount int    `mapstructure:"event_count"`
	EventType  string `mapstructure:"event_type"`
}

// eventLogLevels maps the event type names exposed to the model onto
// wevtutil's numeric levels.
var eventLogLevels = map[string]int{
	"Critical":    1,
	"Error":       2,
	"Warning":     3,
	"Information": 4,
}

// readWindowsEventLog reads recent events from a Windows Event Log through
// wevtutil. On any other platform the tool reports an explicit failure
// instead of being dropped from the registry.
func readWindowsEventLog(runner argvRunner) Handler {
	return func(ctx context.Context, args map[string]any) map[string]any {
		var req eventLogRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}
		if req.LogName == "" {
			return fail("log_name is required")
		}
		if req.EventCount <= 0 {
			req.EventCount = 10
		}
		if req.EventType == "" {
			req.EventType = "Error"
		}
		if _, known := eventLogLevels[req.EventType]; !known {
			return fail("invalid event_type %q, must be one of 'Critical', 'Error', 'Warning', 'Information'", req.EventType)
		}

		if runtime.GOOS != "windows" {
			return fail("this tool is only available on Windows")
		}
		return queryEventLog(ctx, runner, req)
	}
}

// queryEventLog runs the wevtutil query and folds its output into the tool
// result convention.
func queryEventLog(ctx context.Context, runner argvRunner, req eventLogRequest) map[string]any {
	res := runner.Run(ctx, eventLogArgv(req))
	if !res.Success {
		if strings.Contains(res.Stderr, "Access is denied") {
			return fail("access denied to '%s' log, elevated privileges may be required", req.LogName)
		}
		return fail("read event log '%s': %s", req.LogName, strings.TrimSpace(res.Stderr))
	}
	return ok(map[string]any{
		"log_name": req.LogName,
		"events":   res.Stdout,
	})
}

// eventLogArgv builds the wevtutil invocation: newest events first, rendered
// as text, filtered to the requested level.
func eventLogArgv(req eventLogRequest) []string {
	query := fmt.Sprintf("*[System[(Level=%d)]]", eventLogLevels[req.EventType])
	return []string{
		"wevtutil", "qe", req.LogName,
		"/q:" + query,
		fmt.Sprintf("/c:%d", req.EventCount),
		"/rd:true",
		"/f:text",
	}
}
