package collab

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCommandFixGenerator_NotConfigured(t *testing.T) {
	g := NewCommandFixGenerator(nil)

	_, err := g.ProposeFix(context.Background(), "err", "content", "main.go")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCommandFixGenerator_StdoutIsCandidate(t *testing.T) {
	g := NewCommandFixGenerator([]string{"sh", "-c", "echo fixed: $MENDER_ERROR"})

	candidate, err := g.ProposeFix(context.Background(), "AssertionError", "", "main.go")
	if err != nil {
		t.Fatalf("ProposeFix failed: %v", err)
	}
	if strings.TrimSpace(candidate) != "fixed: AssertionError" {
		t.Errorf("unexpected candidate: %q", candidate)
	}
}

func TestCommandFixGenerator_ReceivesContentOnStdin(t *testing.T) {
	g := NewCommandFixGenerator([]string{"cat"})

	candidate, err := g.ProposeFix(context.Background(), "err", "original content", "main.go")
	if err != nil {
		t.Fatalf("ProposeFix failed: %v", err)
	}
	if candidate != "original content" {
		t.Errorf("expected stdin passthrough, got %q", candidate)
	}
}

func TestCommandFixGenerator_CommandFailure(t *testing.T) {
	g := NewCommandFixGenerator([]string{"sh", "-c", "echo boom >&2; exit 1"})

	_, err := g.ProposeFix(context.Background(), "err", "", "main.go")
	if err == nil {
		t.Fatal("expected error for failing command")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestCommandTestRunner_NotConfigured(t *testing.T) {
	r := NewCommandTestRunner(nil)

	_, err := r.Run(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCommandTestRunner_Pass(t *testing.T) {
	r := NewCommandTestRunner([]string{"sh", "-c", "echo ok"})

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Passed {
		t.Error("expected passing report")
	}
	if !strings.Contains(report.Report, "ok") {
		t.Errorf("expected output captured, got %q", report.Report)
	}
}

func TestCommandTestRunner_NonZeroExitIsFailedRun(t *testing.T) {
	r := NewCommandTestRunner([]string{"sh", "-c", "echo 2 tests failed; exit 1"})

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("non-zero exit must not be an error: %v", err)
	}
	if report.Passed {
		t.Error("expected failing report")
	}
	if !strings.Contains(report.Report, "2 tests failed") {
		t.Errorf("expected output captured, got %q", report.Report)
	}
}

func TestCommandTestRunner_MissingBinary(t *testing.T) {
	r := NewCommandTestRunner([]string{"definitely-not-a-real-binary-xyz"})

	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
