package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ActionType discriminates the Action union.
type ActionType string

const (
	// ActionShell executes one or more shell command lines in order.
	ActionShell ActionType = "shell"
	// ActionTool invokes a single named tool from the registry.
	ActionTool ActionType = "tool"
	// ActionNone is the explanation-only sentinel: no side effect.
	ActionNone ActionType = "none"
)

// Action is the unit of work the orchestrator may execute in one step.
// Exactly one variant is populated, selected by Type.
type Action struct {
	Type ActionType

	// For Type = ActionShell
	Commands []string

	// For Type = ActionTool
	Tool string
	Args map[string]any
}

// Describe renders the action as a short single-line summary, used in
// correction prompts and history rendering.
func (a Action) Describe() string {
	switch a.Type {
	case ActionShell:
		return strings.Join(a.Commands, " && ")
	case ActionTool:
		return fmt.Sprintf("%s(%s)", a.Tool, renderArgs(a.Args))
	default:
		return "no action"
	}
}

// renderArgs formats tool arguments with sorted keys so the output is
// deterministic across renders of the same action.
func renderArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, ", ")
}

// Proposal is the structured output of one generation call: an action plus
// the model's explanation. A malformed generation response never becomes a
// Proposal; it surfaces as a provider error instead.
type Proposal struct {
	Action      Action
	Explanation string
}

// ExecutionResult is the immutable outcome of one executed action.
// Shell commands populate Stdout/Stderr; tool calls populate Data,
// which always carries a boolean "success" key.
type ExecutionResult struct {
	Success bool
	Stdout  string
	Stderr  string
	Data    map[string]any
}

// Output returns a single printable string for the result. Tool data is
// rendered as JSON (encoding/json sorts map keys, keeping it deterministic).
// An empty result renders as "".
func (r ExecutionResult) Output() string {
	if r.Data != nil {
		b, err := json.Marshal(r.Data)
		if err != nil {
			return fmt.Sprintf("%v", r.Data)
		}
		return string(b)
	}
	if r.Stdout == "" && r.Stderr == "" {
		return ""
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return fmt.Sprintf("STDOUT: %s\nSTDERR: %s", r.Stdout, r.Stderr)
}

// History entry tags. Tool entries use ToolTag/DeniedToolTag.
const (
	TagUserInstruction = "user_instruction"
	TagShell           = "shell"
	TagNone            = "none"
	TagSkip            = "skip"
	TagDeniedShell     = "denied_shell"
)

// ToolTag returns the history tag for a tool action, e.g. "tool:list_files".
func ToolTag(name string) string {
	return "tool:" + name
}

// DeniedToolTag returns the history tag for a policy-denied tool action.
func DeniedToolTag(name string) string {
	return "denied_tool:" + name
}

// HistoryEntry records one event in a session. Entries are appended, never
// mutated; append order is the sole temporal record. For user instruction
// entries the instruction text is carried in Explanation.
type HistoryEntry struct {
	Step        string // opaque step label (uuid)
	Tag         string
	Action      Action
	Explanation string
	Result      ExecutionResult
}

// Policy holds the security rules loaded from the user's profile. It is
// treated as immutable for the duration of a vetting decision.
type Policy struct {
	CommandBlacklist    []string `json:"command_blacklist"`
	FileAccessBlacklist []string `json:"file_access_blacklist"`
	AllowShellCommands  bool     `json:"allow_shell_commands"`
	AllowToolUsage      bool     `json:"allow_tool_usage"`
}

// SecurityScope declares what a registry tool touches. It only selects which
// blacklist applies during vetting; it is not a capability token.
type SecurityScope string

const (
	ScopeFilesystemRead  SecurityScope = "filesystem_read"
	ScopeFilesystemWrite SecurityScope = "filesystem_write"
	ScopeSystemRead      SecurityScope = "system_read"
	ScopeSystemWrite     SecurityScope = "system_write"
	ScopeNetworkRead     SecurityScope = "network_read"
)

// TouchesFilesystem reports whether the scope subjects a tool's path argument
// to the file access blacklist.
func (s SecurityScope) TouchesFilesystem() bool {
	return s == ScopeFilesystemRead || s == ScopeFilesystemWrite
}
