package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/mender/internal/ports/primary"
	"github.com/example/mender/internal/wire"
)

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the attempt ledger",
		Long:  `List recorded attempts and render consolidated logs from the durable audit ledger.`,
	}
	cmd.AddCommand(auditListCmd())
	cmd.AddCommand(auditShowCmd())
	cmd.AddCommand(auditLogCmd())
	return cmd
}

func auditListCmd() *cobra.Command {
	var (
		missionID string
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attempts for a mission or session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			if missionID == "" && sessionID == "" {
				return fmt.Errorf("either --mission or --session is required")
			}

			var (
				attempts []*primary.Attempt
				err      error
			)
			if missionID != "" {
				attempts, err = wire.AuditService().AttemptsForMission(ctx, missionID, limit)
			} else {
				attempts, err = wire.AuditService().AttemptsForSession(ctx, sessionID, limit)
			}
			if err != nil {
				return fmt.Errorf("failed to list attempts: %w", err)
			}

			if len(attempts) == 0 {
				fmt.Println("No attempts recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMISSION\tRETRY\tOUTCOME\tPROBLEM\tCREATED")
			for _, a := range attempts {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
					a.ID, a.MissionID, a.RetryCount, attemptOutcomeLabel(a), clip(a.Problem, 48), a.CreatedAt)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&missionID, "mission", "m", "", "Mission ID")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of attempts to show")

	return cmd
}

func auditShowCmd() *cobra.Command {
	var (
		missionID string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show full attempt details for a mission or session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			if missionID == "" && sessionID == "" {
				return fmt.Errorf("either --mission or --session is required")
			}

			var (
				attempts []*primary.Attempt
				err      error
			)
			if missionID != "" {
				attempts, err = wire.AuditService().AttemptsForMission(ctx, missionID, 0)
			} else {
				attempts, err = wire.AuditService().AttemptsForSession(ctx, sessionID, 0)
			}
			if err != nil {
				return fmt.Errorf("failed to load attempts: %w", err)
			}

			if len(attempts) == 0 {
				fmt.Println("No attempts recorded.")
				return nil
			}

			for i, a := range attempts {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("Attempt #%d (%s)\n", a.ID, a.CreatedAt)
				fmt.Printf("  Mission: %s\n", a.MissionID)
				fmt.Printf("  Session: %s\n", a.SessionID)
				fmt.Printf("  Visibility: %s\n", a.Visibility)
				fmt.Printf("  Outcome: %s (retry %d)\n", attemptOutcomeLabel(a), a.RetryCount)
				printDetail("Problem", a.Problem)
				printDetail("Reasoning", a.Reasoning)
				printDetail("Solution", a.Solution)
				printDetail("Error", a.ErrorMessage)
				printDetail("Context", a.ContextBlob)
				if a.RequiresHuman {
					printDetail("Escalation reason", a.EscalationReason)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&missionID, "mission", "m", "", "Mission ID")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID")

	return cmd
}

func printDetail(name, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %s: %s\n", name, value)
}

func auditLogCmd() *cobra.Command {
	var missionID string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Render the consolidated log for a mission",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			log, err := wire.AuditService().ConsolidatedLog(ctx, missionID)
			if err != nil {
				return fmt.Errorf("failed to render log: %w", err)
			}

			fmt.Println(log)
			return nil
		},
	}

	cmd.Flags().StringVarP(&missionID, "mission", "m", "", "Mission ID (required)")
	cmd.MarkFlagRequired("mission")

	return cmd
}

func attemptOutcomeLabel(a *primary.Attempt) string {
	switch {
	case a.RequiresHuman:
		return color.RedString("escalated")
	case a.Success:
		return color.GreenString("success")
	default:
		return color.YellowString("failed")
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
