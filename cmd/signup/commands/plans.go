package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/tui"
)

// Plans returns the command that lists the subscription plans.
func Plans() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List the subscription plans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := catalog.Default()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cat.ListPlans())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.PlanTable(cat))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
