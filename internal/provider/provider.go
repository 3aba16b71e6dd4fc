// Package provider defines the interface to the text-generation service.
// The service is an opaque collaborator: it receives the rendered session
// transcript plus an instruction and returns a structured proposal.
package provider

import (
	"context"
	"fmt"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

// CorrectionRequest carries the evidence of a failed action into a
// re-generation call.
type CorrectionRequest struct {
	FailedAction        string
	Stdout              string
	Stderr              string
	OverrideInstruction string
}

// Provider is the generation client consumed by the orchestrator. The client
// is stateless from the orchestrator's point of view: the transcript carries
// all conversation context. Calls are blocking; any timeout is the
// implementation's concern.
type Provider interface {
	// GenerateNextAction asks for the single next action for an instruction.
	GenerateNextAction(ctx context.Context, transcript, instruction string) (*models.Proposal, error)

	// GenerateCorrection asks for a replacement action after a failure.
	GenerateCorrection(ctx context.Context, transcript string, req CorrectionRequest) (*models.Proposal, error)

	// GenerateAuditReport turns collected audit data (JSON) into a markdown
	// report.
	GenerateAuditReport(ctx context.Context, auditJSON string) (string, error)
}

// DecodeError reports a generation response that could not be parsed into a
// Proposal. The raw response text is preserved for display and logging; it is
// never coerced into a default action.
type DecodeError struct {
	Raw    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response: %s", e.Reason)
}
