// Package tools provides the fixed registry of local operations the agent
// may invoke, each with a declared security scope.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// ErrToolNotFound reports a tool name absent from the registry. The
// orchestrator treats it as a failed execution eligible for correction.
var ErrToolNotFound = errors.New("tool not found")

// Handler executes one tool call. Implementations fold their own failures
// into the result map (success=false plus an error message) rather than
// returning Go errors; the registry reserves errors for dispatch problems.
type Handler func(ctx context.Context, args map[string]any) map[string]any

// Entry describes one registered tool.
type Entry struct {
	Name  string
	Scope models.SecurityScope
	// PathArg names the argument carrying a filesystem path, for tools whose
	// scope touches the filesystem. Empty when the tool takes no path.
	PathArg string
	Handler Handler
}

// Registry is a static mapping from tool name to handler, validated at
// construction time.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry, rejecting empty or duplicate names and nil
// handlers.
func NewRegistry(entries ...Entry) (*Registry, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.New("registry: tool with empty name")
		}
		if e.Handler == nil {
			return nil, fmt.Errorf("registry: tool %q has no handler", e.Name)
		}
		if _, dup := m[e.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate tool %q", e.Name)
		}
		m[e.Name] = e
	}
	return &Registry{entries: m}, nil
}

// Invoke dispatches a tool call by name. The returned map always contains a
// boolean "success" key. The only error is ErrToolNotFound.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return e.Handler(ctx, args), nil
}

// Scope implements models.ScopeLookup for the vetting engine.
func (r *Registry) Scope(name string) (models.SecurityScope, string, bool) {
	e, ok := r.entries[name]
	if !ok {
		return "", "", false
	}
	return e.Scope, e.PathArg, true
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeArgs decodes a raw argument map into a typed request. Weak typing
// tolerates the JSON numbers and stringly values the model produces.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

// ok and fail build the conventional result maps.
func ok(fields map[string]any) map[string]any {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["success"] = true
	return fields
}

func fail(format string, a ...any) map[string]any {
	return map[string]any{
		"success": false,
		"error":   fmt.Sprintf(format, a...),
	}
}
