package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/pipeline"
	"github.com/dgallion1/rescalc/internal/search"
)

var (
	searchSnap        string
	searchSort        string
	searchTop         int
	searchWorkers     int
	searchChunks      int
	searchDisable     []string
	searchFrom        string
	searchMaxParallel int
	searchMaxSeries   int
	searchMaxCombos   int
)

var searchCmd = &cobra.Command{
	Use:   "search <target> [value...]",
	Short: "Find series/parallel networks closest to a target resistance",
	Long: `Search every series/parallel network that can be built from the given
values and list the ones within 20% of the target, best first.

The search is split into chunks that run on a pool of workers.

Examples:
  rescalc search 3k3 1k 2k2 4k7
  rescalc search --snap E24 --sort components 9k5 10k 4k7 2k2
  rescalc search --from bom.csv --disable 4k7 12k
  rescalc search --max-parallel 3 --max-series 4 --chunks 8 1M 10k 22k 47k`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchSnap, "snap", "", "snap values and target to a series (E24, E48, E96, E192)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "order: error, components, value-asc, value-desc")
	searchCmd.Flags().IntVarP(&searchTop, "top", "n", 20, "number of results to print (0 for all)")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "worker goroutines (default WORKER_COUNT)")
	searchCmd.Flags().IntVar(&searchChunks, "chunks", 0, "partitions (default CHUNK_COUNT)")
	searchCmd.Flags().StringSliceVar(&searchDisable, "disable", nil, "values to exclude from the results")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "read values from an inventory file")
	searchCmd.Flags().IntVar(&searchMaxParallel, "max-parallel", 0, "max resistors per parallel group")
	searchCmd.Flags().IntVar(&searchMaxSeries, "max-series", 0, "max blocks per series chain")
	searchCmd.Flags().IntVar(&searchMaxCombos, "max-combos", 0, "max combinations kept")
}

type searchOutput struct {
	Target     float64            `json:"target"`
	Candidates []search.Candidate `json:"candidates"`
	Stats      search.Stats       `json:"stats"`
	Warnings   []string           `json:"warnings"`
	Errors     []string           `json:"errors,omitempty"`
	DurationMs int64              `json:"duration_ms"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	specs := valueSpecs(args[1:])
	var warnings []string
	if searchFrom != "" {
		res, err := importFile(e, searchFrom)
		if err != nil {
			return err
		}
		specs = append(specs, res.Specs()...)
		warnings = append(warnings, res.Warnings...)
	}
	if err := disableValues(e.parser, specs, searchDisable); err != nil {
		return err
	}

	prepared, err := search.Prepare(e.parser, search.Query{
		Values:     specs,
		Target:     args[0],
		SnapSeries: searchSnap,
		SortBy:     searchSort,
		Limits: search.Limits{
			MaxParallel:     searchMaxParallel,
			MaxSeriesBlocks: searchMaxSeries,
			MaxCombos:       searchMaxCombos,
		},
	}, e.limits)
	if err != nil {
		return err
	}
	warnings = append(warnings, prepared.Warnings...)

	workers := searchWorkers
	if workers <= 0 {
		workers = e.cfg.WorkerCount
	}
	chunks := searchChunks
	if chunks <= 0 {
		chunks = e.cfg.ChunkCount
	}
	e.log.Debug("starting search",
		"components", len(prepared.Request.Components),
		"target", prepared.Request.Target,
		"chunks", chunks,
		"workers", workers,
	)

	// Nothing is cached between invocations, so disabled values are left out
	// of the search entirely.
	req := prepared.Request.ActiveOnly()
	start := time.Now()
	outcome := pipeline.RunLocal(pipeline.NewWorker(e.log), req, chunks, workers, func(m pipeline.Message) {
		e.log.Debug("progress", "chunk_index", m.ChunkIndex, "processed", m.Processed, "total", m.Total)
	})
	if len(outcome.Parts) == 0 {
		return fmt.Errorf("search failed: %s", strings.Join(outcome.Errors, "; "))
	}
	res := search.Merge(outcome.Parts, req.Limits, prepared.Order)
	view := search.View(res, req.Components, prepared.Order)
	elapsed := time.Since(start)

	if searchTop > 0 && len(view.Candidates) > searchTop {
		view.Candidates = view.Candidates[:searchTop]
	}

	if outputJSON {
		out := searchOutput{
			Target:     prepared.Request.Target,
			Candidates: view.Candidates,
			Stats:      view.Stats,
			Warnings:   warnings,
			Errors:     outcome.Errors,
			DurationMs: elapsed.Milliseconds(),
		}
		if out.Candidates == nil {
			out.Candidates = []search.Candidate{}
		}
		if out.Warnings == nil {
			out.Warnings = []string{}
		}
		return printJSON(cmd.OutOrStdout(), out)
	}

	printWarnings(cmd, warnings)
	printWarnings(cmd, outcome.Errors)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Target: %s  (%d components, %d blocks, %d pruned)\n\n",
		component.FormatValue(prepared.Request.Target),
		len(prepared.Request.Components),
		res.Stats.BlockCount,
		res.Stats.PrunedBlocks+res.Stats.PrunedCombos,
	)
	if len(view.Candidates) == 0 {
		fmt.Fprintln(w, "No combinations found.")
		return nil
	}
	fmt.Fprintf(w, "%-4s %-40s %12s %10s %6s\n", "#", "Network", "Total", "Error", "Parts")
	for i, c := range view.Candidates {
		fmt.Fprintf(w, "%-4d %-40s %12s %+9.3f%% %6d\n",
			i+1, c.Label, component.FormatValue(c.TotalResistance), c.ErrorPercent, c.ComponentCount)
	}
	if verbose {
		fmt.Fprintf(w, "\n%d of %d combinations in band, %v\n", len(view.Candidates), res.Stats.ComboCount, elapsed.Round(time.Millisecond))
	}
	return nil
}

// disableValues marks every spec whose value equals one of disabled as
// inactive.
func disableValues(p *component.Parser, specs []component.Spec, disabled []string) error {
	if len(disabled) == 0 {
		return nil
	}
	off := make(map[float64]bool, len(disabled))
	for _, d := range disabled {
		parsed, err := p.Parse(d)
		if err != nil {
			return fmt.Errorf("--disable %q: %w", d, err)
		}
		off[parsed.Value] = true
	}

	inactive := false
	matched := 0
	for i := range specs {
		parsed, err := p.Parse(specs[i].Value)
		if err != nil {
			continue
		}
		if off[parsed.Value] {
			specs[i].Active = &inactive
			matched++
		}
	}
	if matched == 0 {
		return errors.New("--disable matched no value")
	}
	return nil
}
