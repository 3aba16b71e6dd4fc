// Package ui handles the interactive console: prompting the user, echoing
// proposals and results, and rendering markdown reports.
package ui

import (
	"context"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// Decision is the user's verdict on a proposed action.
type Decision int

const (
	// Approve executes the proposed action as-is.
	Approve Decision = iota
	// Skip records the proposal in the transcript without executing it.
	Skip
	// Cancel ends the current step (and, at the session level, the session).
	Cancel
	// Override discards the proposal; the accompanying text steers the next
	// generation.
	Override
)

// UserInterface is the orchestrator's view of the console.
type UserInterface interface {
	// ReadInstruction blocks for the user's next instruction.
	ReadInstruction(ctx context.Context) (string, error)

	// ShowProposal displays a proposed action and its explanation.
	ShowProposal(action models.Action, explanation string)

	// Confirm asks the user to approve, skip, cancel, or override the
	// displayed proposal. The string is the override text when the decision
	// is Override.
	Confirm(ctx context.Context) (Decision, string, error)

	// ShowShellResults displays per-command shell results.
	ShowShellResults(commands []string, results []models.ExecutionResult)

	// ShowToolResult displays a tool invocation result.
	ShowToolResult(tool string, result models.ExecutionResult)

	// ShowMarkdown renders a markdown document to the terminal.
	ShowMarkdown(doc string)

	// Status and Error print progress and failure lines.
	Status(format string, a ...any)
	Error(format string, a ...any)
}
