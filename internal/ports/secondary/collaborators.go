package secondary

import "context"

// FixGenerator defines the secondary port for the code-generation
// collaborator. Implementations are black boxes; the application
// validates candidate content before accepting it.
type FixGenerator interface {
	// ProposeFix returns candidate content for the file, given the
	// observed error and the current content.
	ProposeFix(ctx context.Context, errorText, currentContent, filePath string) (string, error)
}

// TestRunner defines the secondary port for the test-execution
// collaborator.
type TestRunner interface {
	// Run executes the validation suite and reports pass/fail.
	Run(ctx context.Context) (*TestReport, error)
}

// TestReport is the result of one test-execution collaborator run.
type TestReport struct {
	Passed bool
	Report string
}

// VersionControl defines the secondary port for the version-control
// collaborator. It only enriches analysis context; repair never
// mutates repository state through it.
type VersionControl interface {
	// RecentHistory returns a short textual summary of recent commits.
	RecentHistory(ctx context.Context) (string, error)

	// WorkingTreeStatus returns the current working tree status.
	WorkingTreeStatus(ctx context.Context) (string, error)
}

// DecisionSink defines the secondary port for exporting the flat
// decision map to external consumers (CI, orchestration). Exports are
// best-effort: callers log failures and continue.
type DecisionSink interface {
	Export(ctx context.Context, values map[string]string) error
}
