// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// Visibility values for attempt records.
const (
	VisibilityUser     = "user"
	VisibilityInternal = "internal"
)

// AttemptRepository defines the secondary port for the durable audit
// ledger. Records are append-only; nothing mutates an attempt after
// creation.
type AttemptRepository interface {
	// Create persists a new attempt. The repository derives
	// RetryCount (count of prior failed attempts for the mission)
	// and RequiresHuman at write time, atomically with the insert,
	// and returns the stored record.
	Create(ctx context.Context, attempt *AttemptRecord) (*AttemptRecord, error)

	// ListByMission retrieves attempts for a mission, ascending by
	// creation time. limit <= 0 means no limit.
	ListByMission(ctx context.Context, missionID string, limit int) ([]*AttemptRecord, error)

	// ListBySession retrieves attempts for a session, ascending by
	// creation time. limit <= 0 means no limit.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*AttemptRecord, error)

	// CountFailed returns the number of failed attempts for a mission.
	CountFailed(ctx context.Context, missionID string) (int, error)

	// RequiresHuman reports whether any attempt of the mission is
	// marked as requiring a human. Once true, permanently true.
	RequiresHuman(ctx context.Context, missionID string) (bool, error)

	// ListEscalated retrieves all attempts requiring a human across
	// all missions, most recent first.
	ListEscalated(ctx context.Context) ([]*AttemptRecord, error)

	// NextMissionID returns the next available generated mission ID
	// (MISSION-001, MISSION-002, ...). Caller-supplied mission IDs are
	// opaque and never constrained to this format.
	NextMissionID(ctx context.Context) (string, error)
}

// AttemptRecord represents an attempt as stored in persistence.
type AttemptRecord struct {
	ID               int64
	MissionID        string
	SessionID        string
	Visibility       string // 'user' or 'internal'
	Reasoning        string
	Problem          string
	Solution         string
	Success          bool
	ErrorMessage     string
	RetryCount       int    // derived at write time, never incremented in place
	ContextBlob      string // opaque structured data, stored as JSON text
	RequiresHuman    bool
	EscalationReason string
	CreatedAt        string
}
