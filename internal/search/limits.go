package search

// Limits bounds the search. Every field is enforced during generation.
type Limits struct {
	MaxParallel       int `json:"max_parallel" hcl:"max_parallel,optional"`
	MaxSeriesBlocks   int `json:"max_series_blocks" hcl:"max_series_blocks,optional"`
	MaxBlocks         int `json:"max_blocks" hcl:"max_blocks,optional"`
	MaxCombos         int `json:"max_combos" hcl:"max_combos,optional"`
	MaxParallelCombos int `json:"max_parallel_combos" hcl:"max_parallel_combos,optional"`
}

// DefaultLimits are used for any field left at zero.
func DefaultLimits() Limits {
	return Limits{
		MaxParallel:       2,
		MaxSeriesBlocks:   3,
		MaxBlocks:         60,
		MaxCombos:         50000,
		MaxParallelCombos: 5000,
	}
}

// Merge returns l with every positive field of o applied on top.
func (l Limits) Merge(o Limits) Limits {
	if o.MaxParallel > 0 {
		l.MaxParallel = o.MaxParallel
	}
	if o.MaxSeriesBlocks > 0 {
		l.MaxSeriesBlocks = o.MaxSeriesBlocks
	}
	if o.MaxBlocks > 0 {
		l.MaxBlocks = o.MaxBlocks
	}
	if o.MaxCombos > 0 {
		l.MaxCombos = o.MaxCombos
	}
	if o.MaxParallelCombos > 0 {
		l.MaxParallelCombos = o.MaxParallelCombos
	}
	return l
}

// Clamp lowers every field of l that exceeds the matching positive field of
// ceiling. Zero fields stay zero and still mean "use the default".
func (l Limits) Clamp(ceiling Limits) Limits {
	clamp := func(v, c int) int {
		if c > 0 && v > c {
			return c
		}
		return v
	}
	l.MaxParallel = clamp(l.MaxParallel, ceiling.MaxParallel)
	l.MaxSeriesBlocks = clamp(l.MaxSeriesBlocks, ceiling.MaxSeriesBlocks)
	l.MaxBlocks = clamp(l.MaxBlocks, ceiling.MaxBlocks)
	l.MaxCombos = clamp(l.MaxCombos, ceiling.MaxCombos)
	l.MaxParallelCombos = clamp(l.MaxParallelCombos, ceiling.MaxParallelCombos)
	return l
}

// normalized fills zero or negative fields from DefaultLimits.
func (l Limits) normalized() Limits {
	return DefaultLimits().Merge(l)
}
