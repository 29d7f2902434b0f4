// Package repair contains the ephemeral per-incident state machine
// that bounds repair attempts within a single control-loop run. This
// is part of the Functional Core - no I/O, only pure functions.
//
// The machine's counter answers "how many times have we retried in
// this run". The durable ledger answers "how many times has this
// mission ever failed". The two are deliberately separate.
package repair

import (
	"errors"
	"fmt"

	"github.com/example/mender/internal/core/classify"
)

// State is the machine's position in the repair lifecycle.
type State string

const (
	// StateChangeRequested is the initial state; repair may be attempted.
	StateChangeRequested State = "change_requested"
	// StateNeedsHuman is terminal; no repair is ever attempted.
	StateNeedsHuman State = "needs_human"
	// StateSuccess is terminal; a repair attempt passed validation.
	StateSuccess State = "success"
	// StateFailedLimit is terminal; the attempt bound was exhausted.
	StateFailedLimit State = "failed_limit"
)

// FailureReason explains why identification refused to attempt repair.
type FailureReason string

const (
	FailureInfrastructure FailureReason = "infrastructure_failure"
	FailureUnidentified   FailureReason = "unidentified_error"
)

// DefaultAttemptLimit bounds attempts within one run.
const DefaultAttemptLimit = 3

// ErrTerminalState is returned when RecordAttempt is called after the
// machine reached a terminal state. CanAttempt guards the loop, so
// hitting this is a programmer error.
var ErrTerminalState = errors.New("repair state machine is terminal")

// Machine bounds repair attempts for one incident. Owned by exactly
// one loop; not safe for concurrent mutation.
type Machine struct {
	state         State
	counter       int
	limit         int
	lastErrorType string
	failureReason FailureReason
}

// NewMachine creates a machine with the given attempt limit. A
// non-positive limit falls back to DefaultAttemptLimit.
func NewMachine(limit int) *Machine {
	if limit <= 0 {
		limit = DefaultAttemptLimit
	}
	return &Machine{state: StateChangeRequested, limit: limit}
}

// Identify classifies the evidence and positions the machine.
// Auto-fixable evidence stays in change_requested; infrastructure and
// unidentified evidence go straight to needs_human.
func (m *Machine) Identify(evidence string) State {
	result := classify.Classify(evidence)
	m.lastErrorType = result.MatchedPattern

	switch result.Category {
	case classify.CategoryAutoFixable:
		m.state = StateChangeRequested
	case classify.CategoryInfrastructure:
		m.state = StateNeedsHuman
		m.failureReason = FailureInfrastructure
	default:
		m.state = StateNeedsHuman
		m.failureReason = FailureUnidentified
	}
	return m.state
}

// CanAttempt reports whether another repair attempt is allowed.
func (m *Machine) CanAttempt() bool {
	return m.state == StateChangeRequested && m.counter < m.limit
}

// RecordAttempt folds one attempt outcome into the machine. The
// counter increments unconditionally; success is terminal, and an
// exhausted limit is terminal.
func (m *Machine) RecordAttempt(success bool) (State, error) {
	if m.state != StateChangeRequested {
		return m.state, ErrTerminalState
	}

	m.counter++
	if success {
		m.state = StateSuccess
	} else if m.counter >= m.limit {
		m.state = StateFailedLimit
	}
	return m.state, nil
}

// ShouldNotifyHuman reports whether the outcome requires escalation.
func (m *Machine) ShouldNotifyHuman() bool {
	return m.state == StateNeedsHuman || m.state == StateFailedLimit
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Counter returns the number of attempts recorded so far.
func (m *Machine) Counter() int { return m.counter }

// Limit returns the attempt bound.
func (m *Machine) Limit() int { return m.limit }

// LastErrorType returns the pattern matched during identification.
func (m *Machine) LastErrorType() string { return m.lastErrorType }

// Reason returns the failure reason, empty unless identification
// refused repair.
func (m *Machine) Reason() FailureReason { return m.failureReason }

// FinalMessage renders a human-readable summary of the outcome.
func (m *Machine) FinalMessage() string {
	switch m.state {
	case StateSuccess:
		return fmt.Sprintf("repair succeeded after %d attempt(s)", m.counter)
	case StateFailedLimit:
		return fmt.Sprintf("repair failed: attempt limit reached (%d/%d)", m.counter, m.limit)
	case StateNeedsHuman:
		return fmt.Sprintf("repair not attempted: %s", m.failureReason)
	default:
		return fmt.Sprintf("repair in progress (%d/%d attempts)", m.counter, m.limit)
	}
}
