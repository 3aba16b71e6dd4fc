package tools

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/owl-cli/owl/internal/profile"
)

type manageProfileRequest struct {
	Action string `mapstructure:"action"`
	Key    string `mapstructure:"key"`
	Value  any    `mapstructure:"value"`
}

// manageProfile reads or updates the user's profile.json.
func manageProfile(store *profile.Store) Handler {
	return func(_ context.Context, args map[string]any) map[string]any {
		var req manageProfileRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}

		switch req.Action {
		case "read":
			p, err := store.Load()
			if err != nil {
				return fail("load profile: %v", err)
			}
			return ok(map[string]any{"profile": p})

		case "get":
			if req.Key == "" {
				return fail("a 'key' must be provided for the 'get' action")
			}
			value, found, err := store.Get(req.Key)
			if err != nil {
				return fail("get %q: %v", req.Key, err)
			}
			if !found {
				return fail("key %q not found in profile", req.Key)
			}
			return ok(map[string]any{"key": req.Key, "value": value})

		case "set":
			if req.Key == "" {
				return fail("a 'key' must be provided for the 'set' action")
			}
			if err := store.Set(req.Key, req.Value); err != nil {
				return fail("set %q: %v", req.Key, err)
			}
			return ok(map[string]any{
				"message": fmt.Sprintf("set %q to %v in profile", req.Key, req.Value),
			})

		default:
			return fail("invalid action %q, must be one of 'read', 'get', 'set'", req.Action)
		}
	}
}

// checkPolicies evaluates the enabled compliance rules from the profile
// against the live system and reports violations.
func checkPolicies(store *profile.Store) Handler {
	return func(ctx context.Context, _ map[string]any) map[string]any {
		p, err := store.Load()
		if err != nil {
			return fail("load profile: %v", err)
		}

		violations := make([]map[string]any, 0)
		for _, rule := range p.Policies {
			if !rule.Enabled {
				continue
			}
			found, err := evaluateRule(ctx, rule.Name)
			if err != nil {
				return fail("check policy %q: %v", rule.Name, err)
			}
			violations = append(violations, found...)
		}

		msg := "all checked policies are compliant"
		if len(violations) > 0 {
			msg = fmt.Sprintf("found %d policy violations", len(violations))
		}
		return ok(map[string]any{
			"violations": violations,
			"message":    msg,
		})
	}
}

func evaluateRule(ctx context.Context, name string) ([]map[string]any, error) {
	switch name {
	case "no_root_processes":
		return checkNoRootProcesses(ctx)
	default:
		// Unknown rules are reported, not failed: the profile may be newer
		// than this binary.
		return []map[string]any{{
			"policy":  name,
			"details": "unknown policy rule, cannot evaluate",
		}}, nil
	}
}

func checkNoRootProcesses(ctx context.Context) ([]map[string]any, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	violations := make([]map[string]any, 0)
	for _, p := range procs {
		username, err := p.UsernameWithContext(ctx)
		if err != nil {
			continue
		}
		if username == "root" || username == "SYSTEM" {
			name, _ := p.NameWithContext(ctx)
			violations = append(violations, map[string]any{
				"policy":  "no_root_processes",
				"details": fmt.Sprintf("found root-level process %s (pid %d, user %s)", name, p.Pid, username),
			})
		}
	}
	return violations, nil
}
