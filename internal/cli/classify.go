package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/mender/internal/core/classify"
)

// ClassifyCmd returns the classify command
func ClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [evidence]",
		Short: "Classify failure evidence",
		Long: `Classify raw failure evidence into auto-fixable, infrastructure, or
unidentified. Auto-fixable patterns are checked before infrastructure
patterns; the first match wins.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			evidence := strings.Join(args, " ")
			result := classify.Classify(evidence)

			fmt.Printf("Category: %s\n", colorCategory(result.Category))
			if result.MatchedPattern != "" {
				fmt.Printf("Matched pattern: %s\n", result.MatchedPattern)
			}
			return nil
		},
	}
}

func colorCategory(category classify.Category) string {
	switch category {
	case classify.CategoryAutoFixable:
		return color.GreenString(string(category))
	case classify.CategoryInfrastructure:
		return color.YellowString(string(category))
	default:
		return color.RedString(string(category))
	}
}
