package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/mender/internal/ports/primary"
)

func TestAnalysisService_RequiresInstruction(t *testing.T) {
	svc := NewAnalysisService(nil, nil, 0, nil)

	_, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{Instruction: "   "})
	if err == nil {
		t.Fatal("expected error for blank instruction")
	}
}

func TestAnalysisService_ShortContextEscalates(t *testing.T) {
	svc := NewAnalysisService(nil, nil, 0, nil)

	analysis, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		Instruction: "fix the bug",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Intent != "correction" {
		t.Errorf("expected intent correction, got %s", analysis.Intent)
	}
	if !analysis.EscalationRequired {
		t.Error("expected escalation for short context")
	}
	if analysis.EscalationReason != "insufficient_information" {
		t.Errorf("unexpected escalation reason: %s", analysis.EscalationReason)
	}
}

func TestAnalysisService_VCSContextEnrichment(t *testing.T) {
	history := strings.Repeat("abc1234 tidy the release notes\n", 5)
	vcs := &mockVersionControl{history: history, status: "M internal/app/parser.go"}
	svc := NewAnalysisService(vcs, nil, 0, nil)

	analysis, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		Instruction: "fix the bug in the parser",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// The instruction alone is under the minimum length; history from
	// version control pushes the combined context over it.
	if analysis.EscalationRequired {
		t.Errorf("expected no escalation, got reason %s", analysis.EscalationReason)
	}
	if analysis.Impact != "regressive" {
		t.Errorf("expected regressive impact, got %s", analysis.Impact)
	}
	if analysis.SelectedApproach.Name != "minimal change" {
		t.Errorf("expected minimal change selected, got %s", analysis.SelectedApproach.Name)
	}
}

func TestAnalysisService_VCSFailureDegrades(t *testing.T) {
	vcs := &mockVersionControl{historyErr: errors.New("no repo"), statusErr: errors.New("no repo")}
	svc := NewAnalysisService(vcs, nil, 0, nil)

	analysis, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		Instruction: "fix the bug",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.EscalationReason != "insufficient_information" {
		t.Errorf("expected short-context escalation, got %s", analysis.EscalationReason)
	}
}

func TestAnalysisService_ArchitecturalJudgment(t *testing.T) {
	svc := NewAnalysisService(nil, nil, 0, nil)

	analysis, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		Instruction: "refactor the storage interface",
		Context:     strings.Repeat("the storage layer has grown several responsibilities. ", 3),
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Impact != "structural" {
		t.Errorf("expected structural impact, got %s", analysis.Impact)
	}
	if !analysis.EscalationRequired {
		t.Fatal("expected escalation")
	}
	if analysis.EscalationReason != "architectural_judgment" {
		t.Errorf("unexpected escalation reason: %s", analysis.EscalationReason)
	}
}

func TestAnalysisService_IntentHintOverridesClassification(t *testing.T) {
	svc := NewAnalysisService(nil, nil, 0, nil)

	analysis, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		IntentHint:  "validation",
		Instruction: "fix the bug in the parser",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Intent != "validation" {
		t.Errorf("expected hinted intent validation, got %s", analysis.Intent)
	}
}

func TestAnalysisService_ExportsDecisionMap(t *testing.T) {
	sink := &mockDecisionSink{}
	svc := NewAnalysisService(nil, sink, 0, nil)

	analysis, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		Instruction: "fix the bug",
		EventType:   "test_failure",
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(sink.exports) != 1 {
		t.Fatalf("expected 1 export, got %d", len(sink.exports))
	}
	values := sink.exports[0]
	if values["requires_human"] != "true" {
		t.Errorf("expected requires_human=true, got %q", values["requires_human"])
	}
	if values["intent_type"] != "correction" {
		t.Errorf("expected intent_type=correction, got %q", values["intent_type"])
	}
	if values["mutation_strategy"] != analysis.SelectedApproach.Strategy {
		t.Errorf("expected strategy %q, got %q", analysis.SelectedApproach.Strategy, values["mutation_strategy"])
	}
	if !strings.HasPrefix(values["event_description"], "test_failure: ") {
		t.Errorf("expected event type prefix, got %q", values["event_description"])
	}
}

func TestAnalysisService_SinkFailureDoesNotFailAnalysis(t *testing.T) {
	sink := &mockDecisionSink{err: errors.New("sink unavailable")}
	svc := NewAnalysisService(nil, sink, 0, nil)

	_, err := svc.Analyze(context.Background(), primary.AnalyzeRequest{
		Instruction: "fix the bug",
	})
	if err != nil {
		t.Fatalf("sink failure must not fail analysis: %v", err)
	}
	if len(sink.exports) != 1 {
		t.Errorf("expected the export to be attempted, got %d", len(sink.exports))
	}
}
