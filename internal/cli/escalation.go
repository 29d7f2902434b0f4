package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/mender/internal/wire"
)

// EscalationCmd returns the escalation command
func EscalationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalation",
		Short: "Inspect pending escalations",
	}
	cmd.AddCommand(escalationListCmd())
	return cmd
}

func escalationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List attempts waiting for a human",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			attempts, err := wire.AuditService().PendingEscalations(ctx)
			if err != nil {
				return fmt.Errorf("failed to list escalations: %w", err)
			}

			if len(attempts) == 0 {
				fmt.Println("No pending escalations.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MISSION\tRETRY\tREASON\tPROBLEM\tCREATED")
			for _, a := range attempts {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					a.MissionID, a.RetryCount, a.EscalationReason, clip(a.Problem, 48), a.CreatedAt)
			}
			return w.Flush()
		},
	}
}
