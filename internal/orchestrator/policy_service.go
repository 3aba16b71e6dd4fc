package orchestrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// policyService implements models.PolicyService.
//
// The policy is a blocklist, not an allowlist: anything not explicitly
// denied is allowed. Vetting is a pure function of (policy, action).
type policyService struct {
	policy models.Policy
	scopes models.ScopeLookup
}

// NewPolicyService creates a PolicyService from an in-memory policy value and
// a scope lookup (normally the tool registry's Scope method). The policy is
// copied; later mutation of the caller's value does not affect decisions.
func NewPolicyService(policy models.Policy, scopes models.ScopeLookup) models.PolicyService {
	return &policyService{policy: policy, scopes: scopes}
}

func (p *policyService) Vet(action models.Action) (bool, string) {
	switch action.Type {
	case models.ActionShell:
		return p.vetShell(action.Commands)
	case models.ActionTool:
		return p.vetTool(action.Tool, action.Args)
	default:
		// NoAction has no side effect and is always allowed.
		return true, "action is allowed"
	}
}

func (p *policyService) vetShell(commands []string) (bool, string) {
	if !p.policy.AllowShellCommands {
		return false, "shell command execution is disabled by the security policy"
	}

	// All-or-nothing: one blacklisted program denies the entire action.
	for _, line := range commands {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		program := fields[0]
		for _, blocked := range p.policy.CommandBlacklist {
			if strings.EqualFold(program, blocked) {
				return false, fmt.Sprintf("command '%s' is blacklisted by the security policy", program)
			}
		}
	}

	return true, "action is allowed"
}

func (p *policyService) vetTool(name string, args map[string]any) (bool, string) {
	if !p.policy.AllowToolUsage {
		return false, "tool usage is disabled by the security policy"
	}

	scope, pathArg, ok := p.scopes(name)
	if !ok || !scope.TouchesFilesystem() || pathArg == "" {
		// Unknown tools fail later at dispatch; non-filesystem tools have no
		// path to check against the blacklist.
		return true, "action is allowed"
	}

	raw, _ := args[pathArg].(string)
	if raw == "" {
		// No extractable path: unresolvable against the blacklist, allowed.
		return true, "action is allowed"
	}

	path, err := filepath.Abs(raw)
	if err != nil {
		return true, "action is allowed"
	}

	for _, blocked := range p.policy.FileAccessBlacklist {
		prefix, err := filepath.Abs(blocked)
		if err != nil {
			continue
		}
		if pathHasPrefix(path, prefix) {
			return false, fmt.Sprintf("access to '%s' is restricted by the security policy", raw)
		}
	}

	return true, "action is allowed"
}

// pathHasPrefix reports whether path equals prefix or lies beneath it.
// Matching stops at path-separator boundaries, so "/etc" blocks "/etc/shadow"
// but not "/etcbackup/file".
func pathHasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}
