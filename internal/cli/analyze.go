package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/mender/internal/ports/primary"
	"github.com/example/mender/internal/wire"
)

// AnalyzeCmd returns the analyze command
func AnalyzeCmd() *cobra.Command {
	var (
		instruction string
		contextText string
		eventType   string
		intentHint  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a change request",
		Long: `Classify a change request's intent and blast radius, list its risks
and candidate approaches, and decide whether it must escalate to a
human before any repair attempt. The decision map is exported to the
configured decision sink.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			analysis, err := wire.AnalysisService().Analyze(ctx, primary.AnalyzeRequest{
				IntentHint:  intentHint,
				Instruction: instruction,
				Context:     contextText,
				EventType:   eventType,
			})
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			fmt.Printf("Intent: %s\n", analysis.Intent)
			fmt.Printf("Impact: %s\n", analysis.Impact)
			fmt.Printf("Motivation: %s\n", analysis.Motivation)
			fmt.Printf("Expected impact: %s\n", analysis.ExpectedImpact)
			fmt.Printf("Hypothesis: %s\n", analysis.TechnicalHypothesis)

			if len(analysis.Risks) > 0 {
				fmt.Println("Risks:")
				for _, risk := range analysis.Risks {
					if risk.Critical {
						fmt.Printf("  - %s %s\n", color.RedString("[CRITICAL]"), risk.Description)
					} else {
						fmt.Printf("  - %s\n", risk.Description)
					}
				}
			}

			fmt.Println("Approaches:")
			for _, approach := range analysis.Approaches {
				marker := " "
				if approach.Name == analysis.SelectedApproach.Name {
					marker = "*"
				}
				fmt.Printf("  %s %s (safety %d): %s\n", marker, approach.Name, approach.SafetyScore, approach.Strategy)
			}

			if analysis.EscalationRequired {
				fmt.Printf("Escalation: %s (%s)\n", color.RedString("required"), analysis.EscalationReason)
			} else {
				fmt.Printf("Escalation: %s\n", color.GreenString("not required"))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&instruction, "instruction", "i", "", "Change request description (required)")
	cmd.Flags().StringVarP(&contextText, "context", "c", "", "Additional free-text context")
	cmd.Flags().StringVarP(&eventType, "event", "e", "", "Event type tag")
	cmd.Flags().StringVar(&intentHint, "hint", "", "Intent hint (correction, creation, modification, optimization, validation, operational)")
	cmd.MarkFlagRequired("instruction")

	return cmd
}
