package pipeline

import "github.com/dgallion1/rescalc/internal/search"

// MessageKind tags the messages a partition sends back to its caller.
type MessageKind string

const (
	KindProgress MessageKind = "progress"
	KindResult   MessageKind = "result"
	KindError    MessageKind = "error"
)

// Dispatch is the one message sent to a worker to start a partition. The
// request is shared read-only between partitions of the same job.
type Dispatch struct {
	JobID   string           `json:"job_id"`
	Request search.Request   `json:"request"`
	Chunk   search.ChunkSpec `json:"chunk"`
}

// Message is a progress update or the terminal outcome of a partition.
// Every partition ends with exactly one result or error message.
type Message struct {
	Kind       MessageKind        `json:"kind"`
	JobID      string             `json:"job_id,omitempty"`
	ChunkIndex int                `json:"chunk_index"`
	Processed  int                `json:"processed,omitempty"`
	Total      int                `json:"total,omitempty"`
	Candidates []search.Candidate `json:"candidates,omitempty"`
	Stats      *search.Stats      `json:"stats,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// Terminal reports whether m ends its partition.
func (m Message) Terminal() bool {
	return m.Kind == KindResult || m.Kind == KindError
}

// Partition rebuilds the partition result carried by a result message.
func (m Message) Partition(count int) search.PartitionResult {
	var stats search.Stats
	if m.Stats != nil {
		stats = *m.Stats
	}
	return search.PartitionResult{
		Chunk:      search.ChunkSpec{Index: m.ChunkIndex, Count: count},
		Candidates: m.Candidates,
		Stats:      stats,
	}
}
