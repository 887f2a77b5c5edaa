package main

import (
	"encoding/json"
	"fmt"
	"hos-compliance-service/internal/api/dto"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/services"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var routePath string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Plan mandatory breaks along a route",
		Long: `Read a route ({start_time, start, legs}) and print the compliant
timeline with every inserted short break and daily reset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := selectedRuleSet()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(routePath)
			if err != nil {
				return err
			}
			var req dto.ScheduleRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parse %s: %w", routePath, err)
			}

			s, err := services.ScheduleBreaks(dto.ToRouteLegs(req.Legs), req.HOSState(rules, time.Now()))
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dto.FromSchedule(s))
			}
			printSchedule(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringVar(&routePath, "route", "", "route JSON file")
	_ = cmd.MarkFlagRequired("route")

	return cmd
}

func printSchedule(w io.Writer, s *domain.Schedule) {
	fmt.Fprintf(w, "%s  (%s)  %.1f mi, %.2fh driving, %.2fh stops, %.2fh rest\n",
		s.Status, s.RuleSetVersion, s.TotalMiles, s.TotalDrivingHours, s.TotalOnDutyHours, s.TotalRestHours)

	bi := 0
	for i, seg := range s.Segments {
		fmt.Fprintf(w, "  %s  %-7s leg %d  %.2fh\n", seg.StartsAt.Format(time.RFC3339), seg.Kind, seg.LegIndex+1, seg.Hours)
		for bi < len(s.Breaks) && s.Breaks[bi].AfterSegment <= i {
			b := s.Breaks[bi]
			fmt.Fprintf(w, "  %s  %-7s %.2fh  %s\n", b.StartsAt.Format(time.RFC3339), b.Type, b.DurationHours, b.Reason)
			bi++
		}
	}
	for ; bi < len(s.Breaks); bi++ {
		b := s.Breaks[bi]
		fmt.Fprintf(w, "  %s  %-7s %.2fh  %s\n", b.StartsAt.Format(time.RFC3339), b.Type, b.DurationHours, b.Reason)
	}

	if s.Infeasibility != nil {
		fmt.Fprintf(w, "  stops at leg %d (%.0f%%): %s\n", s.Infeasibility.LegIndex+1, s.Infeasibility.LegFraction*100, s.Infeasibility.Reason)
		return
	}
	fmt.Fprintf(w, "  arrives %s\n", s.CompletesAt.Format(time.RFC3339))
}
