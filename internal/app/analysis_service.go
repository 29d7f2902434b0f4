package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/mender/internal/core/intent"
	"github.com/example/mender/internal/ports/primary"
	"github.com/example/mender/internal/ports/secondary"
)

// AnalysisServiceImpl implements the AnalysisService interface. The
// classification rules live in the intent core package; this service
// supplies the I/O around them: context enrichment from version
// control and best-effort export of the decision map.
type AnalysisServiceImpl struct {
	vcs              secondary.VersionControl // optional
	sink             secondary.DecisionSink   // optional
	minContextLength int
	logger           *zap.Logger
}

// NewAnalysisService creates a new AnalysisService. vcs and sink may
// be nil; analysis then runs on the request text alone and skips the
// export.
func NewAnalysisService(vcs secondary.VersionControl, sink secondary.DecisionSink, minContextLength int, logger *zap.Logger) *AnalysisServiceImpl {
	if minContextLength <= 0 {
		minContextLength = intent.DefaultMinContextLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisServiceImpl{
		vcs:              vcs,
		sink:             sink,
		minContextLength: minContextLength,
		logger:           logger,
	}
}

// Analyze classifies the request and decides on escalation before any
// repair attempt. The result is exported to the decision sink
// best-effort: a sink failure is logged, never returned.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, req primary.AnalyzeRequest) (*primary.Analysis, error) {
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, fmt.Errorf("instruction is required")
	}

	in, ok := intent.ParseIntent(req.IntentHint)
	if !ok {
		in = intent.ClassifyIntent(req.Instruction)
	}

	combined := s.collectContext(ctx, req)

	impact := intent.ClassifyImpact(in, combined)
	risks := intent.BuildRisks(impact, combined)
	approaches := intent.ProposeApproaches(in)
	selected := intent.SelectApproach(approaches)
	escalate, reason := intent.DecideEscalation(impact, risks, combined, s.minContextLength)

	analysis := &primary.Analysis{
		Intent:              string(in),
		Impact:              string(impact),
		Motivation:          intent.Motivation(in),
		ExpectedImpact:      intent.ExpectedImpact(impact),
		Risks:               risksToPrimary(risks),
		TechnicalHypothesis: intent.Hypothesis(in),
		Approaches:          approachesToPrimary(approaches),
		SelectedApproach:    approachToPrimary(selected),
		EscalationRequired:  escalate,
		EscalationReason:    string(reason),
	}

	s.export(ctx, req, analysis)

	return analysis, nil
}

// collectContext concatenates the instruction, the supplied context,
// and whatever the version-control collaborator can contribute. VCS
// failures degrade to less context, never to an analysis error.
func (s *AnalysisServiceImpl) collectContext(ctx context.Context, req primary.AnalyzeRequest) string {
	parts := []string{req.Instruction}
	if req.Context != "" {
		parts = append(parts, req.Context)
	}

	if s.vcs != nil {
		history, err := s.vcs.RecentHistory(ctx)
		if err != nil {
			s.logger.Debug("recent history unavailable", zap.Error(err))
		} else if history != "" {
			parts = append(parts, history)
		}

		status, err := s.vcs.WorkingTreeStatus(ctx)
		if err != nil {
			s.logger.Debug("working tree status unavailable", zap.Error(err))
		} else if status != "" {
			parts = append(parts, status)
		}
	}

	return strings.Join(parts, "\n")
}

// export publishes the flat decision map. Best-effort: failures are
// logged and swallowed so an unavailable sink cannot fail analysis.
func (s *AnalysisServiceImpl) export(ctx context.Context, req primary.AnalyzeRequest, analysis *primary.Analysis) {
	if s.sink == nil {
		return
	}

	values := map[string]string{
		"requires_human":    fmt.Sprintf("%t", analysis.EscalationRequired),
		"intent_type":       analysis.Intent,
		"impact_type":       analysis.Impact,
		"mutation_strategy": analysis.SelectedApproach.Strategy,
		"escalation_reason": analysis.EscalationReason,
		"event_description": describeEvent(req.EventType, req.Instruction),
	}

	if err := s.sink.Export(ctx, values); err != nil {
		s.logger.Warn("decision export failed", zap.Error(err))
	}
}

func describeEvent(eventType, instruction string) string {
	const maxLen = 120
	if len(instruction) > maxLen {
		instruction = instruction[:maxLen]
	}
	if eventType == "" {
		return instruction
	}
	return fmt.Sprintf("%s: %s", eventType, instruction)
}

func risksToPrimary(risks []intent.Risk) []primary.AnalysisRisk {
	out := make([]primary.AnalysisRisk, len(risks))
	for i, r := range risks {
		out[i] = primary.AnalysisRisk{Description: r.Description, Critical: r.Critical}
	}
	return out
}

func approachToPrimary(a intent.Approach) primary.AnalysisApproach {
	return primary.AnalysisApproach{Name: a.Name, Strategy: a.Strategy, SafetyScore: a.SafetyScore}
}

func approachesToPrimary(approaches []intent.Approach) []primary.AnalysisApproach {
	out := make([]primary.AnalysisApproach, len(approaches))
	for i, a := range approaches {
		out[i] = approachToPrimary(a)
	}
	return out
}

// Ensure AnalysisServiceImpl implements the interface
var _ primary.AnalysisService = (*AnalysisServiceImpl)(nil)
