// Package orchestrator drives the agent loop: generate a proposal, confirm it
// with the user, vet it against the security policy, execute it, and
// self-correct on failure within a bounded number of retries.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/owl-cli/owl/internal/orchestrator/models"
	"github.com/owl-cli/owl/internal/provider"
	"github.com/owl-cli/owl/internal/tools"
	"github.com/owl-cli/owl/internal/ui"
)

// DefaultMaxRetries bounds self-correction attempts per step.
const DefaultMaxRetries = 3

// AuditReportFile is where RunAudit persists the generated report.
const AuditReportFile = "security_audit_report.md"

// StepOutcome is the terminal state of one ExecuteStep call.
type StepOutcome int

const (
	// StepDone means the step reached a successful or accepted terminal state
	// (including an explicit no-action answer and a user skip).
	StepDone StepOutcome = iota
	// StepFailed means the step exhausted its retries, was denied by policy,
	// or hit an unrecoverable generation error.
	StepFailed
	// StepCancelled means the user cancelled the step at confirmation.
	StepCancelled
)

// Params configures an Orchestrator. Provider, Policy, Runner, Tools, and UI
// are required.
type Params struct {
	Provider    provider.Provider
	Policy      models.PolicyService
	Runner      models.CommandRunner
	Tools       *tools.Registry
	UI          ui.UserInterface
	Logger      *zap.Logger
	AutoApprove bool
	MaxRetries  int
}

// Orchestrator owns one session's history and executes steps against it.
type Orchestrator struct {
	provider    provider.Provider
	policy      models.PolicyService
	runner      models.CommandRunner
	tools       *tools.Registry
	ui          ui.UserInterface
	logger      *zap.Logger
	autoApprove bool
	maxRetries  int
	history     *History
}

// New creates an Orchestrator with an empty history.
func New(params Params) *Orchestrator {
	if params.MaxRetries <= 0 {
		params.MaxRetries = DefaultMaxRetries
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &Orchestrator{
		provider:    params.Provider,
		policy:      params.Policy,
		runner:      params.Runner,
		tools:       params.Tools,
		ui:          params.UI,
		logger:      params.Logger,
		autoApprove: params.AutoApprove,
		maxRetries:  params.MaxRetries,
		history:     NewHistory(),
	}
}

// History exposes the session log, for inspection after a run.
func (o *Orchestrator) History() *History {
	return o.history
}

// RunSession runs the interactive loop: read an instruction, execute it as a
// step, repeat until the user quits or input is exhausted.
func (o *Orchestrator) RunSession(ctx context.Context) error {
	o.ui.Status("Interactive session started. Type 'quit' or 'exit' to end.")

	for {
		instruction, err := o.ui.ReadInstruction(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// EOF ends the session cleanly.
			return nil
		}
		if instruction == "" {
			continue
		}
		if low := strings.ToLower(instruction); low == "quit" || low == "exit" {
			o.ui.Status("Ending session.")
			return nil
		}

		o.history.Append(models.HistoryEntry{
			Tag:         models.TagUserInstruction,
			Explanation: instruction,
		})

		if _, err := o.ExecuteStep(ctx, instruction); err != nil {
			return err
		}
	}
}

// ExecuteStep runs one instruction to a terminal outcome. A failed execution
// triggers a correction generation; after maxRetries failed corrections the
// step is abandoned. User overrides regenerate the proposal without consuming
// a retry. The returned error is reserved for context cancellation; all other
// problems resolve into an outcome.
func (o *Orchestrator) ExecuteStep(ctx context.Context, instruction string) (StepOutcome, error) {
	step := uuid.NewString()
	o.logger.Debug("executing step", zap.String("step", step), zap.String("instruction", instruction))

	retries := 0
	overrideText := ""

	o.ui.Status("Figuring out next action...")
	proposal, err := o.provider.GenerateNextAction(ctx, o.history.Render(), instruction)

	for {
		if err != nil {
			if ctx.Err() != nil {
				return StepFailed, ctx.Err()
			}
			var decodeErr *provider.DecodeError
			if errors.As(err, &decodeErr) {
				o.ui.Error("Could not understand the generated response: %s", decodeErr.Reason)
				o.ui.Status("Raw response: %s", decodeErr.Raw)
			} else {
				o.ui.Error("Error generating action: %v", err)
			}
			o.logger.Warn("generation failed", zap.String("step", step), zap.Error(err))
			return StepFailed, nil
		}

		if proposal.Action.Type == models.ActionNone {
			o.ui.ShowProposal(proposal.Action, proposal.Explanation)
			o.history.Append(models.HistoryEntry{
				Step:        step,
				Tag:         models.TagNone,
				Action:      proposal.Action,
				Explanation: proposal.Explanation,
				Result:      models.ExecutionResult{Success: true, Stdout: "No action taken."},
			})
			return StepDone, nil
		}

		o.ui.ShowProposal(proposal.Action, proposal.Explanation)

		if !o.autoApprove {
			decision, text, confirmErr := o.ui.Confirm(ctx)
			if confirmErr != nil {
				return StepCancelled, nil
			}
			switch decision {
			case ui.Cancel:
				o.ui.Status("Cancelling current action.")
				return StepCancelled, nil
			case ui.Skip:
				o.ui.Status("Skipping action.")
				o.history.Append(models.HistoryEntry{
					Step:        step,
					Tag:         models.TagSkip,
					Action:      proposal.Action,
					Explanation: "User skipped action.",
					Result:      models.ExecutionResult{Success: true, Stdout: "User skipped action."},
				})
				return StepDone, nil
			case ui.Override:
				overrideText = text
				o.ui.Status("Re-generating action with new instructions...")
				proposal, err = o.provider.GenerateNextAction(ctx, o.history.Render(), overrideText)
				continue
			}
		}

		entry, result := o.perform(ctx, step, proposal)
		o.history.Append(entry)

		if result.Success {
			return StepDone, nil
		}
		if entry.Tag == models.TagDeniedShell || strings.HasPrefix(entry.Tag, "denied_tool:") {
			// Policy denials are terminal, not correctable.
			return StepFailed, nil
		}

		if retries < o.maxRetries {
			retries++
			o.ui.Status("An action failed. Attempting self-correction (%d/%d).", retries, o.maxRetries)
			req := provider.CorrectionRequest{
				FailedAction:        proposal.Action.Describe(),
				Stdout:              result.Stdout,
				Stderr:              result.Stderr,
				OverrideInstruction: overrideText,
			}
			if result.Data != nil {
				req.Stdout = result.Output()
			}
			proposal, err = o.provider.GenerateCorrection(ctx, o.history.Render(), req)
			continue
		}

		o.ui.Error("Failed to execute step after %d retries.", o.maxRetries)
		o.logger.Warn("step abandoned", zap.String("step", step), zap.Int("retries", retries))
		return StepFailed, nil
	}
}

// perform vets and executes an approved action, returning its history entry
// and result. Failures are folded into the result; it never panics on a
// malformed action.
func (o *Orchestrator) perform(ctx context.Context, step string, proposal *models.Proposal) (models.HistoryEntry, models.ExecutionResult) {
	action := proposal.Action
	entry := models.HistoryEntry{
		Step:        step,
		Action:      action,
		Explanation: proposal.Explanation,
	}

	allowed, reason := o.policy.Vet(action)
	if !allowed {
		o.ui.Error("Action denied: %s", reason)
		o.logger.Info("action denied", zap.String("step", step), zap.String("reason", reason))
		if action.Type == models.ActionTool {
			entry.Tag = models.DeniedToolTag(action.Tool)
		} else {
			entry.Tag = models.TagDeniedShell
		}
		entry.Result = models.ExecutionResult{
			Success: false,
			Stderr:  "Action denied by security policy: " + reason,
		}
		return entry, entry.Result
	}

	switch action.Type {
	case models.ActionTool:
		entry.Tag = models.ToolTag(action.Tool)
		data, err := o.tools.Invoke(ctx, action.Tool, action.Args)
		if err != nil {
			// Unknown tool: recorded as a failed execution so correction can
			// pick a real one.
			data = map[string]any{
				"success": false,
				"error":   fmt.Sprintf("tool %q not found", action.Tool),
			}
		}
		success, _ := data["success"].(bool)
		entry.Result = models.ExecutionResult{Success: success, Data: data}
		o.ui.ShowToolResult(action.Tool, entry.Result)
		return entry, entry.Result

	case models.ActionShell:
		entry.Tag = models.TagShell
		results := o.runner.ExecuteAll(ctx, action.Commands)
		o.ui.ShowShellResults(action.Commands, results)

		allOK := true
		for _, r := range results {
			if !r.Success {
				allOK = false
			}
		}
		var agg models.ExecutionResult
		if len(results) > 0 {
			agg = results[len(results)-1]
		}
		agg.Success = allOK && len(results) > 0
		entry.Result = agg
		return entry, entry.Result

	default:
		entry.Tag = models.TagNone
		entry.Result = models.ExecutionResult{Success: true}
		return entry, entry.Result
	}
}

// RunAudit collects local policy, package, and hardware data, asks the
// generation service for a markdown report, shows it, and persists it to
// AuditReportFile.
func (o *Orchestrator) RunAudit(ctx context.Context) error {
	o.ui.Status("Starting automated security audit.")
	o.ui.Status("Gathering system information...")

	audit := map[string]any{
		"os_info": map[string]any{
			"os":   runtime.GOOS,
			"arch": runtime.GOARCH,
		},
	}
	for key, tool := range map[string]string{
		"policies":    "check_policies",
		"packages":    "list_packages",
		"cpu_info":    "get_cpu_info",
		"memory_info": "get_memory_info",
	} {
		data, err := o.tools.Invoke(ctx, tool, nil)
		if err != nil {
			return fmt.Errorf("collect %s: %w", key, err)
		}
		audit[key] = data
	}

	if runtime.GOOS == "windows" {
		data, err := o.tools.Invoke(ctx, "read_windows_event_log", map[string]any{
			"log_name":    "Security",
			"event_count": 10,
		})
		if err != nil {
			return fmt.Errorf("collect windows_security_events: %w", err)
		}
		audit["windows_security_events"] = data
	}

	auditJSON, err := json.MarshalIndent(audit, "", "  ")
	if err != nil {
		return fmt.Errorf("encode audit data: %w", err)
	}

	o.ui.Status("Generating security report...")
	report, err := o.provider.GenerateAuditReport(ctx, string(auditJSON))
	if err != nil {
		var decodeErr *provider.DecodeError
		if errors.As(err, &decodeErr) {
			o.ui.Error("Error generating report: %s", decodeErr.Reason)
			o.ui.Status("Raw response: %s", decodeErr.Raw)
			return err
		}
		return fmt.Errorf("generate audit report: %w", err)
	}

	o.ui.ShowMarkdown(report)

	if err := os.WriteFile(AuditReportFile, []byte(report), 0o644); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	o.ui.Status("Report saved to %s", AuditReportFile)
	return nil
}
