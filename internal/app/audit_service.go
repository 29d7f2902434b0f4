// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/mender/internal/ports/primary"
	"github.com/example/mender/internal/ports/secondary"
)

// AuditServiceImpl implements the AuditService interface on top of the
// attempt repository. Retry accounting lives in the repository so that
// escalation state survives process restarts.
type AuditServiceImpl struct {
	attemptRepo secondary.AttemptRepository
	logger      *zap.Logger
}

// NewAuditService creates a new AuditService with injected dependencies.
func NewAuditService(attemptRepo secondary.AttemptRepository, logger *zap.Logger) *AuditServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditServiceImpl{attemptRepo: attemptRepo, logger: logger}
}

// Record persists one attempt. A missing session ID gets a fresh UUID
// so every stored attempt can be grouped by control-loop run.
func (s *AuditServiceImpl) Record(ctx context.Context, req primary.RecordAttemptRequest) (*primary.Attempt, error) {
	if req.MissionID == "" {
		return nil, fmt.Errorf("mission id is required")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	record, err := s.attemptRepo.Create(ctx, &secondary.AttemptRecord{
		MissionID:        req.MissionID,
		SessionID:        sessionID,
		Visibility:       req.Visibility,
		Reasoning:        req.Reasoning,
		Problem:          req.Problem,
		Solution:         req.Solution,
		Success:          req.Success,
		ErrorMessage:     req.ErrorMessage,
		ContextBlob:      req.ContextBlob,
		RequiresHuman:    req.ForceEscalation,
		EscalationReason: req.EscalationReason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	s.logger.Info("attempt recorded",
		zap.String("mission_id", record.MissionID),
		zap.String("session_id", record.SessionID),
		zap.Bool("success", record.Success),
		zap.Int("retry_count", record.RetryCount),
		zap.Bool("requires_human", record.RequiresHuman),
	)

	return recordToAttempt(record), nil
}

// AttemptsForMission lists attempts ascending by creation time.
func (s *AuditServiceImpl) AttemptsForMission(ctx context.Context, missionID string, limit int) ([]*primary.Attempt, error) {
	records, err := s.attemptRepo.ListByMission(ctx, missionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return recordsToAttempts(records), nil
}

// AttemptsForSession lists attempts ascending by creation time.
func (s *AuditServiceImpl) AttemptsForSession(ctx context.Context, sessionID string, limit int) ([]*primary.Attempt, error) {
	records, err := s.attemptRepo.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return recordsToAttempts(records), nil
}

// RequiresHuman reports whether the mission is permanently escalated.
func (s *AuditServiceImpl) RequiresHuman(ctx context.Context, missionID string) (bool, error) {
	return s.attemptRepo.RequiresHuman(ctx, missionID)
}

// ConsolidatedLog renders every attempt of a mission in creation
// order, one "Attempt k" section per record, with an escalation block
// appended when the last attempt escalated.
func (s *AuditServiceImpl) ConsolidatedLog(ctx context.Context, missionID string) (string, error) {
	records, err := s.attemptRepo.ListByMission(ctx, missionID, 0)
	if err != nil {
		return "", fmt.Errorf("failed to list attempts: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mission %s — %d attempt(s)\n", missionID, len(records))

	for i, record := range records {
		fmt.Fprintf(&b, "\nAttempt %d (%s)\n", i+1, record.CreatedAt)
		writeField(&b, "Problem", record.Problem)
		writeField(&b, "Reasoning", record.Reasoning)
		writeField(&b, "Solution", record.Solution)
		if record.Success {
			fmt.Fprintf(&b, "  Outcome: success\n")
		} else {
			fmt.Fprintf(&b, "  Outcome: failed (retry %d)\n", record.RetryCount)
		}
		writeField(&b, "Error", record.ErrorMessage)
		writeField(&b, "Context", record.ContextBlob)
	}

	if len(records) > 0 {
		last := records[len(records)-1]
		if last.RequiresHuman {
			fmt.Fprintf(&b, "\n=== ESCALATION REQUIRED ===\n")
			fmt.Fprintf(&b, "Reason: %s\n", last.EscalationReason)
		}
	}

	return b.String(), nil
}

// PendingEscalations lists escalated attempts across all missions,
// most recent first.
func (s *AuditServiceImpl) PendingEscalations(ctx context.Context) ([]*primary.Attempt, error) {
	records, err := s.attemptRepo.ListEscalated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalations: %w", err)
	}
	return recordsToAttempts(records), nil
}

// NextMissionID returns the next generated mission ID.
func (s *AuditServiceImpl) NextMissionID(ctx context.Context) (string, error) {
	return s.attemptRepo.NextMissionID(ctx)
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s: %s\n", name, value)
}

func recordToAttempt(r *secondary.AttemptRecord) *primary.Attempt {
	return &primary.Attempt{
		ID:               r.ID,
		MissionID:        r.MissionID,
		SessionID:        r.SessionID,
		Visibility:       r.Visibility,
		Reasoning:        r.Reasoning,
		Problem:          r.Problem,
		Solution:         r.Solution,
		Success:          r.Success,
		ErrorMessage:     r.ErrorMessage,
		RetryCount:       r.RetryCount,
		ContextBlob:      r.ContextBlob,
		RequiresHuman:    r.RequiresHuman,
		EscalationReason: r.EscalationReason,
		CreatedAt:        r.CreatedAt,
	}
}

func recordsToAttempts(records []*secondary.AttemptRecord) []*primary.Attempt {
	attempts := make([]*primary.Attempt, len(records))
	for i, r := range records {
		attempts[i] = recordToAttempt(r)
	}
	return attempts
}

// Ensure AuditServiceImpl implements the interface
var _ primary.AuditService = (*AuditServiceImpl)(nil)
