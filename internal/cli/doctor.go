package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/mender/internal/config"
	"github.com/example/mender/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the mender environment",
		Long: `Environment health check for mender.

Validates:
- Database reachability (~/.mender/mender.db)
- Project config (.mender/config.json)
- Fix and test commands resolvable on PATH
- Git repository detection
- Decision sink writability

Examples:
  mender doctor           # Run full health check
  mender doctor --quiet   # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{}
			hasErrors := false

			results = append(results, checkDatabase())
			results = append(results, checkConfig())
			results = append(results, checkCommands())
			results = append(results, checkRepository())
			results = append(results, checkDecisionSink())

			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found. Run 'mender init' and review .mender/config.json.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkDatabase validates the attempt ledger is reachable
func checkDatabase() CheckResult {
	dbPath, err := db.GetDBPath()
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: "  Cannot resolve database path"}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Database",
			Status:  "⚠",
			Details: fmt.Sprintf("  %s not found\n  Run: mender init", dbPath),
		}
	}

	if _, err := db.GetDB(); err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: "  Cannot open database: " + err.Error(),
		}
	}

	return CheckResult{Name: "Database", Status: "✓"}
}

// checkConfig validates the project config file
func checkConfig() CheckResult {
	cwd, err := os.Getwd()
	if err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  Cannot get working directory"}
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: "  .mender/config.json not found, defaults apply\n  Run: mender init",
		}
	}

	if cfg.MaxRetries <= 0 || cfg.AttemptLimit <= 0 {
		return CheckResult{
			Name:    "Config",
			Status:  "✗",
			Details: "  max_retries and attempt_limit must be positive",
		}
	}

	return CheckResult{Name: "Config", Status: "✓"}
}

// checkCommands validates fix and test commands are resolvable
func checkCommands() CheckResult {
	cwd, _ := os.Getwd()
	cfg := config.LoadOrDefault(cwd)

	missing := []string{}
	if len(cfg.FixCommand) == 0 {
		missing = append(missing, "fix_command not set")
	} else if _, err := exec.LookPath(cfg.FixCommand[0]); err != nil {
		missing = append(missing, fmt.Sprintf("fix_command: %q not in PATH", cfg.FixCommand[0]))
	}
	if len(cfg.TestCommand) == 0 {
		missing = append(missing, "test_command not set")
	} else if _, err := exec.LookPath(cfg.TestCommand[0]); err != nil {
		missing = append(missing, fmt.Sprintf("test_command: %q not in PATH", cfg.TestCommand[0]))
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:    "Commands",
			Status:  "⚠",
			Details: "  " + strings.Join(missing, "\n  ") + "\n  Healing degrades to escalation without them",
		}
	}

	return CheckResult{Name: "Commands", Status: "✓"}
}

// checkRepository detects a git repository for context enrichment
func checkRepository() CheckResult {
	cwd, _ := os.Getwd()
	cfg := config.LoadOrDefault(cwd)

	repoPath := cfg.RepoPath
	if repoPath == "" {
		repoPath = cwd
	}

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Repository",
			Status:  "⚠",
			Details: fmt.Sprintf("  No git repository at %s\n  Analysis runs without history context", repoPath),
		}
	}

	return CheckResult{Name: "Repository", Status: "✓"}
}

// checkDecisionSink validates the decision file's directory is writable
func checkDecisionSink() CheckResult {
	cwd, _ := os.Getwd()
	cfg := config.LoadOrDefault(cwd)

	sinkPath := cfg.DecisionPath
	if sinkPath == "" {
		sinkPath = filepath.Join(cwd, ".mender", "decision.json")
	}

	dir := filepath.Dir(sinkPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{
			Name:    "Decision Sink",
			Status:  "✗",
			Details: "  Cannot create " + dir + ": " + err.Error(),
		}
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return CheckResult{
			Name:    "Decision Sink",
			Status:  "✗",
			Details: "  " + dir + " is not writable: " + err.Error(),
		}
	}
	os.Remove(probe)

	return CheckResult{Name: "Decision Sink", Status: "✓"}
}
