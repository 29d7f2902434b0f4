package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/mender/internal/ports/primary"
	"github.com/example/mender/internal/wire"
)

// HealCmd returns the heal command
func HealCmd() *cobra.Command {
	var (
		missionID string
		evidence  string
		filePath  string
	)

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Run the self-healing loop for an incident",
		Long: `Classify the evidence, then attempt a bounded number of repairs via
the configured fix and test commands, recording every attempt in the
audit ledger. Escalates to a human when repair is unsafe, ambiguous,
or exhausted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			if missionID == "" {
				generated, err := wire.AuditService().NextMissionID(ctx)
				if err != nil {
					return fmt.Errorf("failed to generate mission id: %w", err)
				}
				missionID = generated
			}

			result, err := wire.HealingService().Heal(ctx, primary.HealRequest{
				MissionID: missionID,
				Evidence:  evidence,
				FilePath:  filePath,
			})
			if err != nil {
				return fmt.Errorf("healing failed: %w", err)
			}

			fmt.Printf("Mission: %s\n", missionID)
			fmt.Printf("Session: %s\n", result.SessionID)
			fmt.Printf("State: %s\n", colorState(result.State))
			fmt.Printf("Attempts: %d/%d\n", result.Attempts, result.Limit)
			if result.FailureReason != "" {
				fmt.Printf("Failure reason: %s\n", result.FailureReason)
			}
			fmt.Println(result.FinalMessage)

			if result.Escalated {
				fmt.Println()
				fmt.Println(color.RedString("Human intervention required."))
				fmt.Println()
				fmt.Println(result.ConsolidatedLog)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&missionID, "mission", "m", "", "Mission ID the incident belongs to (generated when omitted)")
	cmd.Flags().StringVarP(&evidence, "evidence", "e", "", "Raw failure evidence (required)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "File the candidate fix applies to")
	cmd.MarkFlagRequired("evidence")

	return cmd
}

func colorState(state string) string {
	switch state {
	case "success":
		return color.GreenString(state)
	case "change_requested":
		return state
	default:
		return color.RedString(state)
	}
}
