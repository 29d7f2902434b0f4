package primary

import "context"

// AnalysisService defines the primary port for change-request analysis.
type AnalysisService interface {
	// Analyze classifies a change request's intent and blast radius,
	// assembles the risk analysis and candidate approaches, and
	// decides whether to escalate before any repair attempt.
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error)
}

// AnalyzeRequest carries the inputs of one analysis.
type AnalyzeRequest struct {
	IntentHint  string // optional, one of the intent values; otherwise ignored
	Instruction string
	Context     string
	EventType   string
}

// Analysis represents the analysis result at the port boundary.
type Analysis struct {
	Intent              string
	Impact              string
	Motivation          string
	ExpectedImpact      string
	Risks               []AnalysisRisk
	TechnicalHypothesis string
	Approaches          []AnalysisApproach
	SelectedApproach    AnalysisApproach
	EscalationRequired  bool
	EscalationReason    string
}

// AnalysisRisk is one identified risk.
type AnalysisRisk struct {
	Description string
	Critical    bool
}

// AnalysisApproach is one candidate strategy with its safety score.
type AnalysisApproach struct {
	Name        string
	Strategy    string
	SafetyScore int
}
