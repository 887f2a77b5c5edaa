package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hos-compliance-service/internal/adapters/repositories"
	"hos-compliance-service/internal/api/dto"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/services"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		logPath string
		asOf    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a duty log for violations",
		Long: `Evaluate one or more drivers' duty logs (the seed file format: an object
or array of {driver_id, intervals}) and report totals, violations, and
remaining hours as of an instant (default: now).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := selectedRuleSet()
			if err != nil {
				return err
			}

			at := time.Now()
			if asOf != "" {
				at, err = time.Parse(time.RFC3339, asOf)
				if err != nil {
					return fmt.Errorf("--as-of must be RFC 3339: %w", err)
				}
			}

			seeds, err := readDriverLogs(logPath)
			if err != nil {
				return err
			}

			reports := make([]services.ComplianceReport, 0, len(seeds))
			for _, seed := range seeds {
				evs, err := seed.Events()
				if err != nil {
					return fmt.Errorf("driver %q: %w", seed.DriverID, err)
				}
				l, err := domain.Replay(seed.DriverID, evs)
				if err != nil {
					return err
				}
				report, err := services.EvaluateCompliance(l.Snapshot(), at, rules)
				if err != nil {
					return fmt.Errorf("driver %q: %w", seed.DriverID, err)
				}
				reports = append(reports, report)
			}

			if jsonOutput {
				out := make([]dto.ComplianceResponse, 0, len(reports))
				for _, r := range reports {
					out = append(out, dto.FromCompliance(r))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, r := range reports {
				printReport(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "duty log JSON file")
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluation instant, RFC 3339")
	_ = cmd.MarkFlagRequired("log")

	return cmd
}

func readDriverLogs(path string) ([]repositories.DriverSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var one repositories.DriverSeed
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return []repositories.DriverSeed{one}, nil
	}

	var many []repositories.DriverSeed
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return many, nil
}

func printReport(w io.Writer, r services.ComplianceReport) {
	t := r.Totals
	status := "COMPLIANT"
	if !r.Compliant {
		status = "NOT COMPLIANT"
	}

	fmt.Fprintf(w, "driver %s  %s  (%s, as of %s)\n", r.DriverID, status, r.RuleSet.Version, t.AsOf.Format(time.RFC3339))
	fmt.Fprintf(w, "  driving %.2fh  on duty %.2fh  cycle %.2fh  since break %.2fh\n",
		t.DrivingHours, t.OnDutyHours, t.CycleHoursUsed, t.HoursSinceBreak)
	fmt.Fprintf(w, "  remaining: driving %.2fh  window %.2fh  cycle %.2fh  until break %.2fh\n",
		r.Remaining.DrivingHours, r.Remaining.DutyWindowHours, r.Remaining.CycleHours, r.Remaining.UntilBreakHours)
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  [%s] %s: %s\n", v.Severity, v.Rule, v.Message)
	}
	for _, v := range r.Warnings {
		fmt.Fprintf(w, "  [%s] %s: %s\n", v.Severity, v.Rule, v.Message)
	}
}
