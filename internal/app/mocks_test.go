package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/mender/internal/ports/secondary"
)

// mockAttemptRepo is an in-memory AttemptRepository with the same
// derivation rules as the sqlite adapter: retry_count counts prior
// failures per mission, requires_human trips at the retry bound.
type mockAttemptRepo struct {
	maxRetries int
	records    []*secondary.AttemptRecord
	createErr  error
}

func newMockAttemptRepo() *mockAttemptRepo {
	return &mockAttemptRepo{maxRetries: 3}
}

func (m *mockAttemptRepo) Create(ctx context.Context, attempt *secondary.AttemptRecord) (*secondary.AttemptRecord, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	retryCount := 0
	for _, r := range m.records {
		if r.MissionID == attempt.MissionID && !r.Success {
			retryCount++
		}
	}

	stored := *attempt
	stored.ID = int64(len(m.records) + 1)
	stored.RetryCount = retryCount
	if stored.Visibility == "" {
		stored.Visibility = secondary.VisibilityInternal
	}
	if !stored.Success && retryCount >= m.maxRetries {
		stored.RequiresHuman = true
		if stored.EscalationReason == "" {
			stored.EscalationReason = fmt.Sprintf("auto-correction failed %d times", retryCount+1)
		}
	}
	stored.CreatedAt = fmt.Sprintf("2026-01-01T00:00:%02dZ", len(m.records))

	m.records = append(m.records, &stored)
	return &stored, nil
}

func (m *mockAttemptRepo) ListByMission(ctx context.Context, missionID string, limit int) ([]*secondary.AttemptRecord, error) {
	var out []*secondary.AttemptRecord
	for _, r := range m.records {
		if r.MissionID == missionID {
			out = append(out, r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockAttemptRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*secondary.AttemptRecord, error) {
	var out []*secondary.AttemptRecord
	for _, r := range m.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockAttemptRepo) CountFailed(ctx context.Context, missionID string) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.MissionID == missionID && !r.Success {
			count++
		}
	}
	return count, nil
}

func (m *mockAttemptRepo) RequiresHuman(ctx context.Context, missionID string) (bool, error) {
	for _, r := range m.records {
		if r.MissionID == missionID && r.RequiresHuman {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttemptRepo) ListEscalated(ctx context.Context) ([]*secondary.AttemptRecord, error) {
	var out []*secondary.AttemptRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].RequiresHuman {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *mockAttemptRepo) NextMissionID(ctx context.Context) (string, error) {
	seen := map[string]bool{}
	max := 0
	for _, r := range m.records {
		if !seen[r.MissionID] && strings.HasPrefix(r.MissionID, "MISSION-") {
			seen[r.MissionID] = true
			if n, err := strconv.Atoi(r.MissionID[len("MISSION-"):]); err == nil && n > max {
				max = n
			}
		}
	}
	return fmt.Sprintf("MISSION-%03d", max+1), nil
}

var _ secondary.AttemptRepository = (*mockAttemptRepo)(nil)

type mockFixGenerator struct {
	candidate string
	err       error
	calls     int
}

func (m *mockFixGenerator) ProposeFix(ctx context.Context, errorText, currentContent, filePath string) (string, error) {
	m.calls++
	return m.candidate, m.err
}

type mockTestRunner struct {
	passed bool
	report string
	err    error
	calls  int
}

func (m *mockTestRunner) Run(ctx context.Context) (*secondary.TestReport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &secondary.TestReport{Passed: m.passed, Report: m.report}, nil
}

type mockDecisionSink struct {
	exports []map[string]string
	err     error
}

func (m *mockDecisionSink) Export(ctx context.Context, values map[string]string) error {
	m.exports = append(m.exports, values)
	return m.err
}

type mockVersionControl struct {
	history    string
	status     string
	historyErr error
	statusErr  error
}

func (m *mockVersionControl) RecentHistory(ctx context.Context) (string, error) {
	return m.history, m.historyErr
}

func (m *mockVersionControl) WorkingTreeStatus(ctx context.Context) (string, error) {
	return m.status, m.statusErr
}
