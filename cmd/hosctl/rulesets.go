package main

import (
	"encoding/json"
	"fmt"
	"hos-compliance-service/internal/domain"

	"github.com/spf13/cobra"
)

var ruleSetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List the published rule tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := domain.RuleSets()
		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(all)
		}
		for _, r := range all {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s (driving %gh, window %gh, reset %gh, cycle %gh/%dd, break %gm after %gh)\n",
				r.Version, r.Name, r.MaxDrivingHours, r.MaxDutyWindowHours, r.MinOffDutyHours,
				r.MaxCycleHours, r.CycleDays, r.BreakMinimumMinutes, r.BreakRequiredAfterDrivingHours)
		}
		return nil
	},
}
