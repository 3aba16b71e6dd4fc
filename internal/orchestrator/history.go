package orchestrator

import (
	"fmt"
	"strings"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// maxRenderedOutput caps how much of a result's output is carried into the
// transcript handed back to the generation service.
const maxRenderedOutput = 500

// History is the append-only log of one session. It is owned exclusively by
// the orchestrator for the session's lifetime; entries are never mutated or
// removed, and append order is the sole temporal record.
type History struct {
	entries []models.HistoryEntry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{entries: make([]models.HistoryEntry, 0)}
}

// Append records an entry.
func (h *History) Append(e models.HistoryEntry) {
	h.entries = append(h.entries, e)
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the log.
func (h *History) Entries() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Render produces the textual transcript passed to the generation service as
// conversation context. Rendering is pure and total: it reads only supplied
// values, never fails, and never omits an entry.
func (h *History) Render() string {
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(renderEntry(e))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderEntry(e models.HistoryEntry) string {
	if e.Tag == models.TagUserInstruction {
		return "User: " + e.Explanation
	}

	var summary string
	switch {
	case e.Tag == models.TagShell:
		summary = fmt.Sprintf("Ran command: `%s`", strings.Join(e.Action.Commands, " && "))
	case strings.HasPrefix(e.Tag, "tool:"):
		summary = fmt.Sprintf("Used tool `%s` (%s)", e.Action.Tool, e.Action.Describe())
	case e.Tag == models.TagNone:
		summary = "Took no action"
	case e.Tag == models.TagSkip:
		summary = "Skipped action (user request)"
	case e.Tag == models.TagDeniedShell || strings.HasPrefix(e.Tag, "denied_tool:"):
		summary = fmt.Sprintf("Proposed action denied by policy: %s", e.Action.Describe())
	default:
		summary = e.Tag
	}

	outcome := "Failure"
	if e.Result.Success {
		outcome = "Success"
	}

	return fmt.Sprintf("Agent: %s -> %s. Output: %s", summary, outcome, renderOutput(e.Result))
}

// renderOutput truncates long output and renders empty output as an explicit
// marker rather than skipping it.
func renderOutput(r models.ExecutionResult) string {
	out := r.Output()
	if out == "" {
		return "No output"
	}
	runes := []rune(out)
	if len(runes) > maxRenderedOutput {
		return string(runes[:maxRenderedOutput]) + "... [truncated]"
	}
	return out
}
