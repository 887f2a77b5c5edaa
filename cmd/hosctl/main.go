package main

import (
	"fmt"
	"hos-compliance-service/internal/domain"
	"os"

	"github.com/spf13/cobra"
)

var (
	ruleSetVersion string
	jsonOutput     bool

	rootCmd = &cobra.Command{
		Use:   "hosctl",
		Short: "Offline Hours-of-Service checks and break scheduling",
		Long: `hosctl evaluates duty-status logs and plans rest breaks from JSON files,
using the same engine as the HTTP service.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&ruleSetVersion, "ruleset", domain.DefaultRuleSet.Version, "rule set version")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(ruleSetsCmd)
}

func selectedRuleSet() (domain.RuleSet, error) {
	return domain.LookupRuleSet(ruleSetVersion)
}
