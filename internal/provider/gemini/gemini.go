// Package gemini implements the provider interface on top of the Google
// Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/owl-cli/owl/internal/orchestrator/models"
	"github.com/owl-cli/owl/internal/provider"
)

// GeminiProvider implements provider.Provider for Google Gemini.
type GeminiProvider struct {
	client    GeminiClient
	modelName string
}

var _ provider.Provider = (*GeminiProvider)(nil)

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// GenerateNextAction asks the model for the next action in a session.
func (p *GeminiProvider) GenerateNextAction(ctx context.Context, transcript, instruction string) (*models.Proposal, error) {
	raw, err := p.send(ctx, nextActionPrompt(transcript, instruction))
	if err != nil {
		return nil, err
	}
	return decodeProposal(raw)
}

// GenerateCorrection asks the model for a replacement action after a failure.
func (p *GeminiProvider) GenerateCorrection(ctx context.Context, transcript string, req provider.CorrectionRequest) (*models.Proposal, error) {
	raw, err := p.send(ctx, correctionPrompt(transcript, req))
	if err != nil {
		return nil, err
	}
	return decodeProposal(raw)
}

// GenerateAuditReport turns collected audit data into a markdown report.
func (p *GeminiProvider) GenerateAuditReport(ctx context.Context, auditJSON string) (string, error) {
	raw, err := p.send(ctx, auditPrompt(auditJSON))
	if err != nil {
		return "", err
	}
	return decodeReport(raw)
}

func (p *GeminiProvider) send(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText(prompt)}},
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
		TopP:        genai.Ptr[float32](0.95),
		TopK:        genai.Ptr[float32](40),
	}

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

// responseText extracts the concatenated text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("response has no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("response candidate has no content")
	}

	var text string
	for _, part := range cand.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("response candidate has no text parts")
	}
	return text, nil
}
