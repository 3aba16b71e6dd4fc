package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/owl-cli/owl/internal/orchestrator/models"
	"github.com/owl-cli/owl/internal/provider"
)

// fenceRE extracts a JSON object from a markdown code fence, with or without
// the json language tag.
var fenceRE = regexp.MustCompile("```(?:json)?\\s*({[\\s\\S]*?})\\s*```")

// proposalWire is the JSON shape the model is prompted to produce.
type proposalWire struct {
	Commands    []string       `json:"commands"`
	Tool        string         `json:"tool"`
	ToolArgs    map[string]any `json:"tool_args"`
	Explanation string         `json:"explanation"`
	Error       string         `json:"error"`
}

// stripFences returns the JSON payload from a model response, removing a
// surrounding markdown fence when present.
func stripFences(text string) string {
	if m := fenceRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// decodeProposal parses a raw model response into a Proposal. A response that
// is not valid JSON, or that carries both a tool and commands, is a
// DecodeError preserving the raw text; it is never coerced into an action.
func decodeProposal(raw string) (*models.Proposal, error) {
	cleaned := stripFences(raw)

	var wire proposalWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, &provider.DecodeError{Raw: cleaned, Reason: "response is not valid JSON"}
	}
	if wire.Error != "" {
		return nil, &provider.DecodeError{Raw: cleaned, Reason: wire.Error}
	}
	if wire.Tool != "" && len(wire.Commands) > 0 {
		return nil, &provider.DecodeError{Raw: cleaned, Reason: "response contains both a tool and commands"}
	}

	p := &models.Proposal{Explanation: wire.Explanation}
	switch {
	case wire.Tool != "":
		p.Action = models.Action{Type: models.ActionTool, Tool: wire.Tool, Args: wire.ToolArgs}
	case len(wire.Commands) > 0:
		p.Action = models.Action{Type: models.ActionShell, Commands: wire.Commands}
	default:
		p.Action = models.Action{Type: models.ActionNone}
	}
	return p, nil
}

type reportWire struct {
	Report string `json:"report"`
	Error  string `json:"error"`
}

func decodeReport(raw string) (string, error) {
	cleaned := stripFences(raw)

	var wire reportWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return "", &provider.DecodeError{Raw: cleaned, Reason: "response is not valid JSON"}
	}
	if wire.Error != "" {
		return "", &provider.DecodeError{Raw: cleaned, Reason: wire.Error}
	}
	if wire.Report == "" {
		return "", &provider.DecodeError{Raw: cleaned, Reason: "response has no report"}
	}
	return wire.Report, nil
}
