package pipeline

import (
	"fmt"
	"sync"

	"github.com/dgallion1/rescalc/internal/search"
)

// Outcome collects the terminal messages of a fanned-out search.
type Outcome struct {
	Parts  []search.PartitionResult
	Errors []string
}

// RunLocal splits req into chunkCount partitions and runs them on at most
// workers goroutines. onProgress, if set, is called from the calling
// goroutine only. Failed partitions are reported in Errors and do not stop
// their siblings.
func RunLocal(w *Worker, req search.Request, chunkCount, workers int, onProgress func(Message)) Outcome {
	chunkCount = max(chunkCount, 1)
	workers = max(workers, 1)

	msgs := make(chan Message, chunkCount*4)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range chunkCount {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			w.Process(Dispatch{Request: req, Chunk: search.ChunkSpec{Index: i, Count: chunkCount}}, func(m Message) {
				msgs <- m
			})
		}(i)
	}
	go func() {
		wg.Wait()
		close(msgs)
	}()

	var out Outcome
	for m := range msgs {
		switch m.Kind {
		case KindProgress:
			if onProgress != nil {
				onProgress(m)
			}
		case KindResult:
			out.Parts = append(out.Parts, m.Partition(chunkCount))
		case KindError:
			out.Errors = append(out.Errors, fmt.Sprintf("chunk %d: %s", m.ChunkIndex, m.Message))
		}
	}
	return out
}
