package search

import (
	"fmt"
	"time"
)

// ChunkSpec selects one contiguous partition of an outer enumeration.
type ChunkSpec struct {
	Index int `json:"chunk_index"`
	Count int `json:"chunk_count"`
}

// Whole is the single partition covering everything.
var Whole = ChunkSpec{Index: 0, Count: 1}

// Validate checks the chunk descriptor.
func (c ChunkSpec) Validate() error {
	if c.Count < 1 || c.Index < 0 || c.Index >= c.Count {
		return fmt.Errorf("%w: index %d of %d", ErrInvalidChunk, c.Index, c.Count)
	}
	return nil
}

// Range returns the half-open index range [start, end) this chunk owns out
// of total items. Partitions are ceil(total/Count) long; trailing partitions
// may be shorter or empty.
func (c ChunkSpec) Range(total int) (start, end int) {
	size := (total + c.Count - 1) / c.Count
	start = min(c.Index*size, total)
	end = min(start+size, total)
	return start, end
}

// ProgressFunc receives (processed, total) for one partition.
type ProgressFunc func(processed, total int)

// progressInterval is the longest gap between two progress emissions.
const progressInterval = 250 * time.Millisecond

// throttle forwards progress at most once per 1% of the workload or per
// progressInterval, plus exactly one final emission at completion.
type throttle struct {
	emit     ProgressFunc
	total    int
	step     float64
	last     int
	lastAt   time.Time
	finished bool
	now      func() time.Time
}

func newThrottle(emit ProgressFunc, total int, now func() time.Time) *throttle {
	if now == nil {
		now = time.Now
	}
	return &throttle{
		emit:   emit,
		total:  total,
		step:   float64(total) / 100,
		lastAt: now(),
		now:    now,
	}
}

func (t *throttle) update(processed int) {
	if t.emit == nil || t.finished {
		return
	}
	if processed >= t.total {
		t.finish()
		return
	}
	at := t.now()
	if float64(processed-t.last) >= t.step || at.Sub(t.lastAt) >= progressInterval {
		t.last = processed
		t.lastAt = at
		t.emit(processed, t.total)
	}
}

// finish sends the final (total, total) emission once.
func (t *throttle) finish() {
	if t.emit == nil || t.finished {
		return
	}
	t.finished = true
	t.emit(t.total, t.total)
}
