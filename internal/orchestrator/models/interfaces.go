package models

import (
	"context"
)

// PolicyService decides whether an action is allowed before it touches the
// machine. Implementations must be pure: no filesystem or process access
// beyond path-string normalization.
type PolicyService interface {
	// Vet checks a proposed action against the loaded policy.
	// It returns whether the action may proceed and a human-readable reason.
	Vet(action Action) (allowed bool, reason string)
}

// CommandRunner executes an ordered list of shell command lines, stopping at
// the first failure. The returned slice has one result per command attempted.
type CommandRunner interface {
	ExecuteAll(ctx context.Context, commands []string) []ExecutionResult
}

// ScopeLookup resolves a tool name to its declared security scope and the
// name of the argument carrying a filesystem path ("" if none). ok is false
// for unknown tools.
type ScopeLookup func(name string) (scope SecurityScope, pathArg string, ok bool)
