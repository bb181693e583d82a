// Package search finds series/parallel resistor combinations that approach a
// target resistance, and resistor pairs that approach a divider ratio.
//
// A search runs in partitions. Every partition builds and filters the full
// block set, then enumerates only its own slice of the outer loops, so
// partitions share nothing and may run on separate goroutines. Merge combines
// their results into one ranking.
package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/network"
)

// Request is the read-only input of one search.
type Request struct {
	Components []component.Component `json:"components"`
	Target     float64               `json:"target"`
	Limits     Limits                `json:"limits"`
}

// Validate checks the request before any work starts.
func (r Request) Validate() error {
	if r.Target <= 0 || math.IsInf(r.Target, 0) || math.IsNaN(r.Target) {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, r.Target)
	}
	if component.ActiveCount(r.Components) == 0 {
		return ErrNoActiveComponents
	}
	return nil
}

// ActiveOnly returns r restricted to its active components. Callers without
// a result cache search this instead of the full pool.
func (r Request) ActiveOnly() Request {
	active := make([]component.Component, 0, len(r.Components))
	for _, c := range r.Components {
		if c.Active {
			active = append(active, c)
		}
	}
	r.Components = active
	return r
}

// Stats describes the work done by a partition or a merged search.
type Stats struct {
	BlockCount   int `json:"block_count"`
	ComboCount   int `json:"combo_count"`
	PrunedBlocks int `json:"pruned_blocks"`
	PrunedCombos int `json:"pruned_combos"`
}

// PartitionResult is what a single partition produces. Its candidate order
// is not authoritative.
type PartitionResult struct {
	Chunk      ChunkSpec   `json:"chunk"`
	Candidates []Candidate `json:"candidates"`
	Stats      Stats       `json:"stats"`
}

// Result is a merged, ranked search outcome.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	Stats      Stats       `json:"stats"`
}

// RunPartition runs one partition synchronously. The search covers every
// component in the request, active or not, but only active components drive
// overlap pruning. View applies the active flags to the merged list so that
// toggling a component rarely needs a new search. progress may be nil.
func RunPartition(req Request, chunk ChunkSpec, progress ProgressFunc) (PartitionResult, error) {
	return runPartition(req, chunk, progress, time.Now)
}

func runPartition(req Request, chunk ChunkSpec, progress ProgressFunc, now func() time.Time) (PartitionResult, error) {
	if err := req.Validate(); err != nil {
		return PartitionResult{}, err
	}
	if err := chunk.Validate(); err != nil {
		return PartitionResult{}, err
	}
	limits := req.Limits.normalized()

	set := buildBlocks(req.Components, limits)
	pruner := newOverlapPruner(set.leaves, req.Target)

	var (
		filtered     []*network.Block
		prunedBlocks int
	)
	for _, b := range set.all {
		if pruner.rejects(b) {
			prunedBlocks++
			continue
		}
		filtered = append(filtered, b)
	}
	blocks := TrimBlocks(filtered, req.Target, limits.MaxBlocks)
	lengths := seriesLengths(len(blocks), limits)

	repeatStart, repeatEnd := chunk.Range(len(set.leaves))
	genStart, genEnd := chunk.Range(len(blocks))
	total := (repeatEnd - repeatStart) + len(lengths)*(genEnd-genStart)
	th := newThrottle(progress, total, now)

	g := &generator{limits: limits, target: req.Target, pruner: pruner}
	processed := 0

	// Repeated-leaf pass.
	if limits.MaxSeriesBlocks > 1 {
		for i := repeatStart; i < repeatEnd && !g.full(); i++ {
			g.repeatLeaf(set.leaves[i])
			processed++
			th.update(processed)
		}
	} else {
		processed += repeatEnd - repeatStart
	}

	// General pass.
general:
	for _, length := range lengths {
		for i := genStart; i < genEnd; i++ {
			if g.full() {
				break general
			}
			g.seriesFrom(blocks, i, length)
			processed++
			th.update(processed)
		}
	}
	th.finish()

	return PartitionResult{
		Chunk:      chunk,
		Candidates: g.out,
		Stats: Stats{
			BlockCount:   len(set.all),
			ComboCount:   len(g.out),
			PrunedBlocks: prunedBlocks,
			PrunedCombos: g.pruned,
		},
	}, nil
}

// Merge concatenates partition results in chunk order, keeps the MaxCombos
// candidates closest to the target and sorts them by order. Equivalent trees
// built from different components are all kept: which of them survives
// depends on the active flags, so Dedupe and Band run in View.
func Merge(parts []PartitionResult, limits Limits, order SortOrder) Result {
	limits = limits.normalized()
	parts = slices.Clone(parts)
	slices.SortStableFunc(parts, func(a, b PartitionResult) int { return cmp.Compare(a.Chunk.Index, b.Chunk.Index) })

	var (
		all   []Candidate
		stats Stats
	)
	for _, p := range parts {
		all = append(all, p.Candidates...)
		stats.BlockCount = max(stats.BlockCount, p.Stats.BlockCount)
		stats.PrunedBlocks = max(stats.PrunedBlocks, p.Stats.PrunedBlocks)
		stats.PrunedCombos += p.Stats.PrunedCombos
	}
	Sort(all, SortByError)
	if len(all) > limits.MaxCombos {
		all = all[:limits.MaxCombos]
	}
	Sort(all, order)
	stats.ComboCount = len(all)
	return Result{Candidates: all, Stats: stats}
}

// Run performs a whole search on the calling goroutine and returns the
// merged, unfiltered result. Pass it through View for the ranked list.
func Run(req Request, order SortOrder, progress ProgressFunc) (Result, error) {
	part, err := RunPartition(req, Whole, progress)
	if err != nil {
		return Result{}, err
	}
	return Merge([]PartitionResult{part}, req.Limits, order), nil
}
