// Package primary defines the primary ports (driving adapters) for the application.
package primary

import "context"

// AuditService defines the primary port for the durable audit ledger.
type AuditService interface {
	// Record persists one attempt. RetryCount and RequiresHuman are
	// derived from history at write time.
	Record(ctx context.Context, req RecordAttemptRequest) (*Attempt, error)

	// AttemptsForMission lists attempts ascending by creation time.
	// limit <= 0 means no limit.
	AttemptsForMission(ctx context.Context, missionID string, limit int) ([]*Attempt, error)

	// AttemptsForSession lists attempts ascending by creation time.
	AttemptsForSession(ctx context.Context, sessionID string, limit int) ([]*Attempt, error)

	// RequiresHuman reports whether the mission is permanently escalated.
	RequiresHuman(ctx context.Context, missionID string) (bool, error)

	// ConsolidatedLog renders every attempt of a mission in order,
	// appending an escalation block when the last attempt escalated.
	ConsolidatedLog(ctx context.Context, missionID string) (string, error)

	// PendingEscalations lists all escalated attempts across missions,
	// most recent first.
	PendingEscalations(ctx context.Context) ([]*Attempt, error)

	// NextMissionID returns a fresh generated mission ID for callers
	// that do not bring their own.
	NextMissionID(ctx context.Context) (string, error)
}

// Attempt represents an audit entry at the port boundary.
type Attempt struct {
	ID               int64
	MissionID        string
	SessionID        string
	Visibility       string
	Reasoning        string
	Problem          string
	Solution         string
	Success          bool
	ErrorMessage     string
	RetryCount       int
	ContextBlob      string
	RequiresHuman    bool
	EscalationReason string
	CreatedAt        string
}

// RecordAttemptRequest carries the caller-supplied fields of a new
// attempt. SessionID may be empty; the service assigns one.
type RecordAttemptRequest struct {
	MissionID        string
	SessionID        string
	Visibility       string // defaults to 'internal'
	Reasoning        string
	Problem          string
	Solution         string
	Success          bool
	ErrorMessage     string
	ContextBlob      string
	ForceEscalation  bool   // mark requires_human regardless of retry count
	EscalationReason string // used when ForceEscalation or the retry bound trips
}
