package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/rescalc/internal/search"
)

type partitionFunc func(search.Request, search.ChunkSpec, search.ProgressFunc) (search.PartitionResult, error)

// Worker runs single partitions.
type Worker struct {
	log *slog.Logger
	run partitionFunc
}

func NewWorker(log *slog.Logger) *Worker {
	return &Worker{log: log, run: search.RunPartition}
}

// Process runs one dispatched partition and reports through emit: any number
// of progress messages followed by exactly one result or error. A panic in
// the search becomes the error message for this partition only.
func (w *Worker) Process(d Dispatch, emit func(Message)) {
	log := w.log.With("job_id", d.JobID, "chunk_index", d.Chunk.Index)
	start := time.Now()

	res, err := w.safeRun(d, emit)
	if err != nil {
		log.Error("partition failed", "error", err)
		emit(Message{Kind: KindError, JobID: d.JobID, ChunkIndex: d.Chunk.Index, Message: err.Error()})
		return
	}

	log.Debug("partition complete",
		"candidates", len(res.Candidates),
		"pruned_combos", res.Stats.PrunedCombos,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	stats := res.Stats
	emit(Message{
		Kind:       KindResult,
		JobID:      d.JobID,
		ChunkIndex: d.Chunk.Index,
		Candidates: res.Candidates,
		Stats:      &stats,
	})
}

func (w *Worker) safeRun(d Dispatch, emit func(Message)) (res search.PartitionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("partition %d panicked: %v", d.Chunk.Index, r)
		}
	}()
	progress := func(processed, total int) {
		emit(Message{Kind: KindProgress, JobID: d.JobID, ChunkIndex: d.Chunk.Index, Processed: processed, Total: total})
	}
	return w.run(d.Request, d.Chunk, progress)
}
