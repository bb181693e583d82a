package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/series"
)

var seriesCmd = &cobra.Command{
	Use:   "series [value]",
	Short: "Show the standard E-series or where a value sits in them",
	Long: `Without an argument, list the members of E24, E48, E96 and E192 for one
decade. With a value, report the loosest series containing it and the
nearest member of each series.

Examples:
  rescalc series
  rescalc series 4k7
  rescalc series --json 3k32`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeries,
}

func init() {
	rootCmd.AddCommand(seriesCmd)
}

type seriesMatch struct {
	Value   float64            `json:"value"`
	Label   string             `json:"label"`
	Match   string             `json:"match,omitempty"`
	Nearest map[string]float64 `json:"nearest"`
}

func runSeries(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 0 {
		if outputJSON {
			out := make(map[string][]int)
			for _, s := range series.All() {
				out[s.Name] = s.Members()
			}
			return printJSON(w, out)
		}
		for _, s := range series.All() {
			members := s.Members()
			parts := make([]string, len(members))
			for i, m := range members {
				parts[i] = fmt.Sprint(m)
			}
			fmt.Fprintf(w, "%s (%g%%, %d values):\n  %s\n\n", s.Name, s.TolerancePercent, len(members), strings.Join(parts, " "))
		}
		return nil
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	parsed, err := e.parser.Parse(args[0])
	if err != nil {
		return err
	}

	m := seriesMatch{
		Value:   parsed.Value,
		Label:   component.FormatValue(parsed.Value),
		Nearest: make(map[string]float64),
	}
	if s, ok := series.Match(parsed.Value); ok {
		m.Match = s.Name
	}
	for _, s := range series.All() {
		m.Nearest[s.Name] = s.Nearest(parsed.Value)
	}

	if outputJSON {
		return printJSON(w, m)
	}
	match := m.Match
	if match == "" {
		match = "none"
	}
	fmt.Fprintf(w, "%s is in: %s\n", m.Label, match)
	for _, s := range series.All() {
		n := m.Nearest[s.Name]
		fmt.Fprintf(w, "  %-5s nearest %-8s (%+.2f%%)\n", s.Name, component.FormatValue(n), (n-parsed.Value)/parsed.Value*100)
	}
	return nil
}
