// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mender/internal/ports/secondary"
)

// DefaultMaxRetries is the cross-run failure bound per mission before
// permanent escalation.
const DefaultMaxRetries = 3

// AttemptRepository implements secondary.AttemptRepository with SQLite.
type AttemptRepository struct {
	db         *sql.DB
	maxRetries int
}

// NewAttemptRepository creates a new SQLite attempt repository.
// A non-positive maxRetries falls back to DefaultMaxRetries.
func NewAttemptRepository(db *sql.DB, maxRetries int) *AttemptRepository {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &AttemptRepository{db: db, maxRetries: maxRetries}
}

// Create persists a new attempt. retry_count is derived as the count
// of prior failed attempts for the mission, and requires_human is set
// when a failed record's derived count reaches the retry bound. The
// count-then-insert sequence runs inside one transaction so two
// concurrent writers cannot both observe the same pre-insert count,
// which preserves the monotonic retry_count invariant.
func (r *AttemptRepository) Create(ctx context.Context, attempt *secondary.AttemptRecord) (*secondary.AttemptRecord, error) {
	visibility := attempt.Visibility
	if visibility == "" {
		visibility = secondary.VisibilityInternal
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var retryCount int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attempts WHERE mission_id = ? AND success = 0",
		attempt.MissionID,
	).Scan(&retryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed attempts: %w", err)
	}

	requiresHuman := attempt.RequiresHuman
	escalationReason := attempt.EscalationReason
	if !attempt.Success && retryCount >= r.maxRetries {
		requiresHuman = true
		if escalationReason == "" {
			escalationReason = fmt.Sprintf("auto-correction failed %d times", retryCount+1)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (mission_id, session_id, visibility, reasoning, problem, solution, success, error_message, retry_count, context_blob, requires_human, escalation_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.MissionID,
		attempt.SessionID,
		visibility,
		attempt.Reasoning,
		attempt.Problem,
		attempt.Solution,
		attempt.Success,
		attempt.ErrorMessage,
		retryCount,
		attempt.ContextBlob,
		requiresHuman,
		nullable(escalationReason),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attempt: %w", err)
	}

	return r.getByID(ctx, id)
}

// ListByMission retrieves attempts for a mission ascending by creation time.
func (r *AttemptRepository) ListByMission(ctx context.Context, missionID string, limit int) ([]*secondary.AttemptRecord, error) {
	query := selectColumns + " WHERE mission_id = ? ORDER BY created_at ASC, id ASC"
	args := []any{missionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

// ListBySession retrieves attempts for a session ascending by creation time.
func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*secondary.AttemptRecord, error) {
	query := selectColumns + " WHERE session_id = ? ORDER BY created_at ASC, id ASC"
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

// CountFailed returns the number of failed attempts for a mission.
func (r *AttemptRepository) CountFailed(ctx context.Context, missionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attempts WHERE mission_id = ? AND success = 0",
		missionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed attempts: %w", err)
	}
	return count, nil
}

// RequiresHuman reports whether any attempt of the mission escalated.
// Escalation is permanent: later successful attempts do not retract it.
func (r *AttemptRepository) RequiresHuman(ctx context.Context, missionID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attempts WHERE mission_id = ? AND requires_human = 1",
		missionID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check escalation: %w", err)
	}
	return count > 0, nil
}

// ListEscalated retrieves all escalated attempts, most recent first.
func (r *AttemptRepository) ListEscalated(ctx context.Context) ([]*secondary.AttemptRecord, error) {
	return r.list(ctx, selectColumns+" WHERE requires_human = 1 ORDER BY created_at DESC, id DESC")
}

// NextMissionID returns the next available generated mission ID.
func (r *AttemptRepository) NextMissionID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(mission_id, 9) AS INTEGER)), 0) FROM attempts WHERE mission_id LIKE 'MISSION-%'",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next mission ID: %w", err)
	}

	return fmt.Sprintf("MISSION-%03d", maxID+1), nil
}

const selectColumns = `SELECT id, mission_id, session_id, visibility, reasoning, problem, solution, success, error_message, retry_count, context_blob, requires_human, escalation_reason, created_at FROM attempts`

func (r *AttemptRepository) getByID(ctx context.Context, id int64) (*secondary.AttemptRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	record, err := scanAttempt(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attempt %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return record, nil
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...any) ([]*secondary.AttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*secondary.AttemptRecord
	for rows.Next() {
		record, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, record)
	}
	return attempts, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*secondary.AttemptRecord, error) {
	var (
		reasoning        sql.NullString
		problem          sql.NullString
		solution         sql.NullString
		errorMessage     sql.NullString
		contextBlob      sql.NullString
		escalationReason sql.NullString
		createdAt        time.Time
	)

	record := &secondary.AttemptRecord{}
	err := s.Scan(
		&record.ID,
		&record.MissionID,
		&record.SessionID,
		&record.Visibility,
		&reasoning,
		&problem,
		&solution,
		&record.Success,
		&errorMessage,
		&record.RetryCount,
		&contextBlob,
		&record.RequiresHuman,
		&escalationReason,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.Reasoning = reasoning.String
	record.Problem = problem.String
	record.Solution = solution.String
	record.ErrorMessage = errorMessage.String
	record.ContextBlob = contextBlob.String
	record.EscalationReason = escalationReason.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure AttemptRepository implements the interface
var _ secondary.AttemptRepository = (*AttemptRepository)(nil)
