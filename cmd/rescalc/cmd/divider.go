package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/search"
)

var (
	dividerRatio     float64
	dividerSupply    float64
	dividerVout      float64
	dividerComposite bool
	dividerOvershoot bool
	dividerTop       int
	dividerSnap      string
	dividerFrom      string
)

var dividerCmd = &cobra.Command{
	Use:   "divider [value...]",
	Short: "Find resistor pairs for a voltage divider",
	Long: `Find top/bottom resistor pairs whose ratio bottom/(top+bottom) is closest
to the requested one. Give either --ratio or --supply with --vout.

By default the output never exceeds the requested voltage; --overshoot
allows pairs above it. --composite also tries parallel groups and two-part
series chains on each side.

Examples:
  rescalc divider --ratio 0.5 10k 10k
  rescalc divider --supply 5 --vout 3.3 1k 1k8 2k2 3k3 4k7 10k
  rescalc divider --composite --from bom.csv --supply 12 --vout 5`,
	RunE: runDivider,
}

func init() {
	rootCmd.AddCommand(dividerCmd)

	dividerCmd.Flags().Float64Var(&dividerRatio, "ratio", 0, "output/supply ratio, between 0 and 1")
	dividerCmd.Flags().Float64Var(&dividerSupply, "supply", 0, "supply voltage")
	dividerCmd.Flags().Float64Var(&dividerVout, "vout", 0, "wanted output voltage")
	dividerCmd.Flags().BoolVar(&dividerComposite, "composite", false, "use parallel groups and two-part chains")
	dividerCmd.Flags().BoolVar(&dividerOvershoot, "overshoot", false, "allow outputs above the wanted voltage")
	dividerCmd.Flags().IntVarP(&dividerTop, "top", "n", 10, "number of pairs to print")
	dividerCmd.Flags().StringVar(&dividerSnap, "snap", "", "snap values to a series")
	dividerCmd.Flags().StringVar(&dividerFrom, "from", "", "read values from an inventory file")
}

func runDivider(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	specs := valueSpecs(args)
	var warnings []string
	if dividerFrom != "" {
		res, err := importFile(e, dividerFrom)
		if err != nil {
			return err
		}
		specs = append(specs, res.Specs()...)
		warnings = append(warnings, res.Warnings...)
	}
	comps, buildWarnings := component.Build(e.parser, specs, component.Options{SnapSeries: dividerSnap})
	warnings = append(warnings, buildWarnings...)
	if component.ActiveCount(comps) == 0 {
		return search.ErrNoActiveComponents
	}

	ratio := dividerRatio
	if ratio == 0 && dividerSupply > 0 {
		ratio = dividerVout / dividerSupply
	}
	pool := search.PairPool(comps, e.limits, dividerComposite)
	pairs, err := search.FindPairs(pool, pool, search.PairOptions{
		Ratio:          ratio,
		Supply:         dividerSupply,
		AllowOvershoot: dividerOvershoot,
		MaxResults:     dividerTop,
	})
	if err != nil {
		return err
	}

	if outputJSON {
		if pairs == nil {
			pairs = []search.Pair{}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"ratio":    ratio,
			"supply":   dividerSupply,
			"pairs":    pairs,
			"warnings": warnings,
		})
	}

	printWarnings(cmd, warnings)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Ratio: %.6f  (%d blocks per side)\n\n", ratio, len(pool))
	if len(pairs) == 0 {
		fmt.Fprintln(w, "No pairs found.")
		return nil
	}
	fmt.Fprintf(w, "%-4s %-36s %10s %10s  %s\n", "#", "Top / Bottom", "Ratio", "Error", "Output")
	for i, p := range pairs {
		out := ""
		if dividerSupply > 0 {
			out = fmt.Sprintf("%.4gV (%.4g..%.4g)", p.Output, p.OutputMin, p.OutputMax)
		}
		fmt.Fprintf(w, "%-4d %-36s %10.6f %+9.3f%%  %s\n", i+1, p.Label, p.Ratio, p.ErrorPercent, out)
	}
	return nil
}
