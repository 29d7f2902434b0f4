// Package collab contains command-backed implementations of the
// code-generation and test-execution collaborator ports. Both shell
// out to operator-configured commands, keeping the collaborators
// themselves black boxes.
package collab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/example/mender/internal/ports/secondary"
)

// ErrNotConfigured is returned when a collaborator command is missing
// from the configuration. This is an environment-level failure, not a
// failed attempt.
var ErrNotConfigured = errors.New("collaborator command not configured")

// CommandFixGenerator runs a configured command to propose a fix.
// The command receives the current file content on stdin, the error
// text in MENDER_ERROR and the target path in MENDER_FILE, and must
// write the full candidate content to stdout.
type CommandFixGenerator struct {
	command []string
}

// NewCommandFixGenerator creates a generator for the given command line.
func NewCommandFixGenerator(command []string) *CommandFixGenerator {
	return &CommandFixGenerator{command: command}
}

// ProposeFix invokes the configured command and returns its stdout.
func (g *CommandFixGenerator) ProposeFix(ctx context.Context, errorText, currentContent, filePath string) (string, error) {
	if len(g.command) == 0 {
		return "", fmt.Errorf("%w: fix_command", ErrNotConfigured)
	}

	cmd := exec.CommandContext(ctx, g.command[0], g.command[1:]...)
	cmd.Stdin = strings.NewReader(currentContent)
	cmd.Env = append(os.Environ(),
		"MENDER_ERROR="+errorText,
		"MENDER_FILE="+filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("fix command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// CommandTestRunner runs a configured command as the validation suite.
// Exit code zero means the suite passed; a non-zero exit is a failed
// run, not an error. Other failures (command missing, context
// cancelled) propagate as errors.
type CommandTestRunner struct {
	command []string
}

// NewCommandTestRunner creates a runner for the given command line.
func NewCommandTestRunner(command []string) *CommandTestRunner {
	return &CommandTestRunner{command: command}
}

// Run executes the configured test command.
func (r *CommandTestRunner) Run(ctx context.Context) (*secondary.TestReport, error) {
	if len(r.command) == 0 {
		return nil, fmt.Errorf("%w: test_command", ErrNotConfigured)
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err == nil {
		return &secondary.TestReport{Passed: true, Report: output.String()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &secondary.TestReport{Passed: false, Report: output.String()}, nil
	}

	return nil, fmt.Errorf("test command failed to run: %w", err)
}

// Ensure the adapters implement the interfaces
var (
	_ secondary.FixGenerator = (*CommandFixGenerator)(nil)
	_ secondary.TestRunner   = (*CommandTestRunner)(nil)
)
