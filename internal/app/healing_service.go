package app

import (
	"context"
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/mender/internal/core/repair"
	"github.com/example/mender/internal/ports/primary"
	"github.com/example/mender/internal/ports/secondary"
)

// HealingServiceImpl implements the HealingService interface: the
// end-to-end control loop composing the classifier, the ephemeral
// state machine, the collaborators, and the durable audit ledger.
//
// The loop is sequential within one mission and the state machine is
// owned exclusively by one Heal call. The audit ledger is the only
// shared state; its retry accounting is derived from history, so a
// mission escalated in an earlier process stays escalated here.
type HealingServiceImpl struct {
	audit   primary.AuditService
	fixer   secondary.FixGenerator
	tests   secondary.TestRunner
	sink    secondary.DecisionSink // optional
	limit   int
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealingService creates a new HealingService with injected
// collaborators. limit bounds attempts within this run; timeout wraps
// every collaborator call.
func NewHealingService(audit primary.AuditService, fixer secondary.FixGenerator, tests secondary.TestRunner, sink secondary.DecisionSink, limit int, timeout time.Duration, logger *zap.Logger) *HealingServiceImpl {
	if limit <= 0 {
		limit = repair.DefaultAttemptLimit
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealingServiceImpl{
		audit:   audit,
		fixer:   fixer,
		tests:   tests,
		sink:    sink,
		limit:   limit,
		timeout: timeout,
		logger:  logger,
	}
}

// Heal runs the control loop for one incident. Failures inside a
// single attempt (invalid generated code, failing tests, collaborator
// timeout) become failed attempts and feed the retry policy; they
// never abort the loop. Only environment-level failures (unreachable
// ledger, missing mission id) return an error.
func (s *HealingServiceImpl) Heal(ctx context.Context, req primary.HealRequest) (*primary.HealResult, error) {
	if req.MissionID == "" {
		return nil, fmt.Errorf("mission id is required")
	}
	if req.Evidence == "" {
		return nil, fmt.Errorf("evidence is required")
	}

	sessionID := uuid.New().String()
	machine := repair.NewMachine(s.limit)

	state := machine.Identify(req.Evidence)
	s.logger.Info("incident identified",
		zap.String("mission_id", req.MissionID),
		zap.String("session_id", sessionID),
		zap.String("state", string(state)),
		zap.String("matched_pattern", machine.LastErrorType()),
	)

	// Infrastructure and unidentified evidence never enter the loop:
	// record one failed attempt with the reason and escalate.
	if state == repair.StateNeedsHuman {
		_, err := s.audit.Record(ctx, primary.RecordAttemptRequest{
			MissionID:        req.MissionID,
			SessionID:        sessionID,
			Visibility:       secondary.VisibilityUser,
			Problem:          req.Evidence,
			Success:          false,
			ErrorMessage:     machine.FinalMessage(),
			ForceEscalation:  true,
			EscalationReason: string(machine.Reason()),
		})
		if err != nil {
			return nil, err
		}
		return s.finish(ctx, req, sessionID, machine)
	}

	for machine.CanAttempt() {
		escalated, err := s.audit.RequiresHuman(ctx, req.MissionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check escalation state: %w", err)
		}
		if escalated {
			s.logger.Info("mission already escalated, stopping",
				zap.String("mission_id", req.MissionID))
			break
		}

		outcome := s.attemptFix(ctx, req)
		if _, err := machine.RecordAttempt(outcome.success); err != nil {
			return nil, err
		}

		if _, err := s.audit.Record(ctx, primary.RecordAttemptRequest{
			MissionID:    req.MissionID,
			SessionID:    sessionID,
			Visibility:   secondary.VisibilityInternal,
			Problem:      req.Evidence,
			Reasoning:    outcome.reasoning,
			Solution:     outcome.solution,
			Success:      outcome.success,
			ErrorMessage: outcome.errorMessage,
			ContextBlob:  outcome.contextBlob(req),
		}); err != nil {
			return nil, err
		}

		s.logger.Info("attempt finished",
			zap.String("mission_id", req.MissionID),
			zap.Int("attempt", machine.Counter()),
			zap.Bool("success", outcome.success),
		)
	}

	return s.finish(ctx, req, sessionID, machine)
}

// attemptOutcome captures one loop iteration for audit recording.
type attemptOutcome struct {
	success      bool
	reasoning    string
	solution     string
	errorMessage string
}

func (o attemptOutcome) contextBlob(req primary.HealRequest) string {
	blob, err := json.Marshal(map[string]string{"file": req.FilePath})
	if err != nil || req.FilePath == "" {
		return ""
	}
	return string(blob)
}

// attemptFix runs one propose-validate-apply-test cycle. Every
// collaborator call is wrapped in the configured timeout; a timeout
// surfaces as a failed attempt like any other collaborator error.
func (s *HealingServiceImpl) attemptFix(ctx context.Context, req primary.HealRequest) attemptOutcome {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var current string
	if req.FilePath != "" {
		data, err := os.ReadFile(req.FilePath)
		if err == nil {
			current = string(data)
		}
	}

	candidate, err := s.fixer.ProposeFix(cctx, req.Evidence, current, req.FilePath)
	if err != nil {
		return attemptOutcome{errorMessage: fmt.Sprintf("fix generation failed: %v", err)}
	}

	if err := validateCandidate(req.FilePath, candidate); err != nil {
		// Invalid output is never applied.
		return attemptOutcome{errorMessage: fmt.Sprintf("candidate rejected: %v", err)}
	}

	if req.FilePath != "" {
		if err := os.WriteFile(req.FilePath, []byte(candidate), 0644); err != nil {
			return attemptOutcome{errorMessage: fmt.Sprintf("failed to apply candidate: %v", err)}
		}
	}

	report, err := s.tests.Run(cctx)
	if err != nil {
		s.restore(req.FilePath, current)
		return attemptOutcome{errorMessage: fmt.Sprintf("test run failed: %v", err)}
	}

	if !report.Passed {
		// Each attempt starts from the same baseline content.
		s.restore(req.FilePath, current)
		return attemptOutcome{
			reasoning:    "candidate applied but validation suite failed",
			errorMessage: truncate(report.Report, 2000),
		}
	}

	return attemptOutcome{
		success:   true,
		reasoning: "candidate applied and validation suite passed",
		solution:  fmt.Sprintf("replaced content of %s", req.FilePath),
	}
}

func (s *HealingServiceImpl) restore(path, content string) {
	if path == "" {
		return
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		s.logger.Warn("failed to restore original content",
			zap.String("file", path), zap.Error(err))
	}
}

// finish builds the result, and when the outcome requires a human it
// emits the consolidated log and the decision map to the sinks.
func (s *HealingServiceImpl) finish(ctx context.Context, req primary.HealRequest, sessionID string, machine *repair.Machine) (*primary.HealResult, error) {
	escalated, err := s.audit.RequiresHuman(ctx, req.MissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check escalation state: %w", err)
	}

	result := &primary.HealResult{
		SessionID:     sessionID,
		State:         string(machine.State()),
		Attempts:      machine.Counter(),
		Limit:         machine.Limit(),
		FailureReason: string(machine.Reason()),
		Escalated:     machine.ShouldNotifyHuman() || escalated,
		FinalMessage:  machine.FinalMessage(),
	}

	if result.Escalated {
		log, err := s.audit.ConsolidatedLog(ctx, req.MissionID)
		if err != nil {
			return nil, err
		}
		result.ConsolidatedLog = log

		if s.sink != nil {
			values := map[string]string{
				"requires_human":    "true",
				"escalation_reason": s.escalationReason(ctx, req.MissionID, machine),
				"event_description": fmt.Sprintf("healing %s: %s", req.MissionID, result.FinalMessage),
			}
			if err := s.sink.Export(ctx, values); err != nil {
				s.logger.Warn("decision export failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

func (s *HealingServiceImpl) escalationReason(ctx context.Context, missionID string, machine *repair.Machine) string {
	if reason := machine.Reason(); reason != "" {
		return string(reason)
	}
	attempts, err := s.audit.AttemptsForMission(ctx, missionID, 0)
	if err == nil && len(attempts) > 0 {
		if last := attempts[len(attempts)-1]; last.EscalationReason != "" {
			return last.EscalationReason
		}
	}
	return "max_retries_exceeded"
}

// validateCandidate checks a proposed candidate for syntactic
// well-formedness before it may be applied. Go sources must parse,
// JSON must be valid; everything else only needs to be non-empty
// valid UTF-8.
func validateCandidate(path, content string) error {
	if content == "" {
		return fmt.Errorf("empty candidate")
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("candidate is not valid UTF-8")
	}

	switch filepath.Ext(path) {
	case ".go":
		fset := token.NewFileSet()
		if _, err := parser.ParseFile(fset, filepath.Base(path), content, 0); err != nil {
			return fmt.Errorf("candidate does not parse: %w", err)
		}
	case ".json":
		if !json.Valid([]byte(content)) {
			return fmt.Errorf("candidate is not valid JSON")
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Ensure HealingServiceImpl implements the interface
var _ primary.HealingService = (*HealingServiceImpl)(nil)
