package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachine_Defaults(t *testing.T) {
	m := NewMachine(0)
	assert.Equal(t, StateChangeRequested, m.State())
	assert.Equal(t, DefaultAttemptLimit, m.Limit())
	assert.Equal(t, 0, m.Counter())
}

func TestIdentify_AutoFixable(t *testing.T) {
	m := NewMachine(3)
	state := m.Identify("AssertionError: assert 7 == 8")

	assert.Equal(t, StateChangeRequested, state)
	assert.Equal(t, "AssertionError", m.LastErrorType())
	assert.Empty(t, m.Reason())
	assert.True(t, m.CanAttempt())
}

func TestIdentify_Infrastructure(t *testing.T) {
	m := NewMachine(3)
	state := m.Identify("TimeoutError: Connection timed out after 30 seconds")

	assert.Equal(t, StateNeedsHuman, state)
	assert.Equal(t, FailureInfrastructure, m.Reason())
	assert.False(t, m.CanAttempt())
	assert.True(t, m.ShouldNotifyHuman())
}

func TestIdentify_Unidentified(t *testing.T) {
	m := NewMachine(3)
	state := m.Identify("everything is on fire in an unfamiliar way")

	assert.Equal(t, StateNeedsHuman, state)
	assert.Equal(t, FailureUnidentified, m.Reason())
	assert.False(t, m.CanAttempt())
}

func TestRecordAttempt_ExhaustsLimit(t *testing.T) {
	m := NewMachine(3)
	m.Identify("AssertionError: assert 7 == 8")

	state, err := m.RecordAttempt(false)
	require.NoError(t, err)
	assert.Equal(t, StateChangeRequested, state)
	assert.True(t, m.CanAttempt())

	state, err = m.RecordAttempt(false)
	require.NoError(t, err)
	assert.Equal(t, StateChangeRequested, state)
	assert.True(t, m.CanAttempt())

	state, err = m.RecordAttempt(false)
	require.NoError(t, err)
	assert.Equal(t, StateFailedLimit, state)
	assert.Equal(t, 3, m.Counter())
	assert.False(t, m.CanAttempt())
	assert.True(t, m.ShouldNotifyHuman())

	// A fourth call is a programmer error; CanAttempt guards the loop.
	_, err = m.RecordAttempt(false)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.Equal(t, 3, m.Counter())
}

func TestRecordAttempt_SuccessOnFinalTry(t *testing.T) {
	m := NewMachine(3)
	m.Identify("TypeError: cannot add int and str")

	_, err := m.RecordAttempt(false)
	require.NoError(t, err)
	_, err = m.RecordAttempt(false)
	require.NoError(t, err)

	state, err := m.RecordAttempt(true)
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, state)
	assert.Equal(t, 3, m.Counter())
	assert.False(t, m.CanAttempt())
	assert.False(t, m.ShouldNotifyHuman())
}

func TestRecordAttempt_AfterSuccessIsTerminal(t *testing.T) {
	m := NewMachine(3)
	m.Identify("NameError: name 'x' is not defined")

	_, err := m.RecordAttempt(true)
	require.NoError(t, err)

	_, err = m.RecordAttempt(false)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.Equal(t, StateSuccess, m.State())
}

func TestRecordAttempt_NeedsHumanIsTerminal(t *testing.T) {
	m := NewMachine(3)
	m.Identify("Connection refused by database")

	_, err := m.RecordAttempt(false)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.Equal(t, 0, m.Counter())
}

func TestFinalMessage(t *testing.T) {
	m := NewMachine(3)
	m.Identify("AssertionError: boom")
	m.RecordAttempt(true)
	assert.Contains(t, m.FinalMessage(), "succeeded after 1 attempt")

	m = NewMachine(2)
	m.Identify("SyntaxError: invalid syntax")
	m.RecordAttempt(false)
	m.RecordAttempt(false)
	assert.Contains(t, m.FinalMessage(), "attempt limit reached (2/2)")

	m = NewMachine(3)
	m.Identify("HTTP 503 from build farm")
	assert.Contains(t, m.FinalMessage(), "infrastructure_failure")
}
