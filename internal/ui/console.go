package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/owl-cli/owl/internal/orchestrator/models"
)

var (
	promptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	explanationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	actionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Console is a line-oriented terminal implementation of UserInterface.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	renderer *glamour.TermRenderer
}

// NewConsole creates a Console over the given reader and writer.
func NewConsole(in io.Reader, out io.Writer) *Console {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: renderer,
	}
}

// ReadInstruction prompts for and reads the next instruction line.
func (c *Console) ReadInstruction(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, promptStyle.Render("owl> ")+" ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ShowProposal prints the proposed action and the model's explanation.
func (c *Console) ShowProposal(action models.Action, explanation string) {
	if explanation != "" {
		fmt.Fprintln(c.out, explanationStyle.Render(explanation))
	}
	if action.Type != models.ActionNone {
		fmt.Fprintln(c.out, actionStyle.Render("Proposed action: "+action.Describe()))
	}
}

// Confirm reads the user's verdict on the displayed proposal. Empty input or
// "y" approves; "s" skips; "q" cancels; anything else is an override
// instruction.
func (c *Console) Confirm(ctx context.Context) (Decision, string, error) {
	if err := ctx.Err(); err != nil {
		return Cancel, "", err
	}
	fmt.Fprint(c.out, promptStyle.Render("Execute? [Y/n new instruction, s to skip, q to quit]:")+" ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return Cancel, "", err
	}

	answer := strings.TrimSpace(line)
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return Approve, "", nil
	case "s", "skip":
		return Skip, "", nil
	case "q", "quit":
		return Cancel, "", nil
	default:
		return Override, answer, nil
	}
}

// ShowShellResults prints each command with its outcome and output.
func (c *Console) ShowShellResults(commands []string, results []models.ExecutionResult) {
	for i, res := range results {
		name := ""
		if i < len(commands) {
			name = commands[i]
		}
		if res.Success {
			fmt.Fprintln(c.out, successStyle.Render(fmt.Sprintf("✓ %s", name)))
		} else {
			fmt.Fprintln(c.out, failureStyle.Render(fmt.Sprintf("✗ %s", name)))
		}
		if out := strings.TrimSpace(res.Stdout); out != "" {
			fmt.Fprintln(c.out, out)
		}
		if errOut := strings.TrimSpace(res.Stderr); errOut != "" {
			fmt.Fprintln(c.out, failureStyle.Render(errOut))
		}
	}
}

// ShowToolResult prints a tool invocation outcome with its data.
func (c *Console) ShowToolResult(tool string, result models.ExecutionResult) {
	if result.Success {
		fmt.Fprintln(c.out, successStyle.Render(fmt.Sprintf("✓ %s", tool)))
	} else {
		fmt.Fprintln(c.out, failureStyle.Render(fmt.Sprintf("✗ %s", tool)))
	}
	if out := result.Output(); out != "" {
		fmt.Fprintln(c.out, out)
	}
}

// ShowMarkdown renders a markdown document. Falls back to raw text when the
// renderer is unavailable.
func (c *Console) ShowMarkdown(doc string) {
	if c.renderer != nil {
		if rendered, err := c.renderer.Render(doc); err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
	}
	fmt.Fprintln(c.out, doc)
}

// Status prints a dim progress line.
func (c *Console) Status(format string, a ...any) {
	fmt.Fprintln(c.out, statusStyle.Render(fmt.Sprintf(format, a...)))
}

// Error prints a failure line.
func (c *Console) Error(format string, a ...any) {
	fmt.Fprintln(c.out, failureStyle.Render(fmt.Sprintf(format, a...)))
}
