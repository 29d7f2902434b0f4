package primary

import "context"

// HealingService defines the primary port for the end-to-end repair
// loop: classify, attempt bounded repairs through collaborators,
// record every outcome, escalate when unsafe or exhausted.
type HealingService interface {
	Heal(ctx context.Context, req HealRequest) (*HealResult, error)
}

// HealRequest describes one incident to repair.
type HealRequest struct {
	MissionID string
	Evidence  string // raw error text or failing test report
	FilePath  string // optional file the fix applies to
}

// HealResult reports the terminal outcome of one healing run.
type HealResult struct {
	SessionID       string
	State           string // terminal repair state
	Attempts        int
	Limit           int
	FailureReason   string // set when no repair was attempted
	Escalated       bool
	FinalMessage    string
	ConsolidatedLog string // set when escalated
}
