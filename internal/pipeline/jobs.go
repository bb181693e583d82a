package pipeline

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/rescalc/internal/search"
)

// JobStatus represents the state of an asynchronous search.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Partition states reported in progress snapshots.
const (
	partitionPending = "pending"
	partitionRunning = "running"
	partitionDone    = "done"
	partitionFailed  = "failed"
)

// Job tracks one search split into partitions.
type Job struct {
	mu sync.Mutex

	ID        string    `json:"job_id"`
	SessionID string    `json:"session_id,omitempty"`
	Status    JobStatus `json:"status"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	prepared   search.Prepared
	parts      []search.PartitionResult
	terminal   int
	result     *search.Result
	onComplete []func(search.Result)
	errors     []string
}

// Progress aggregates per-partition progress.
type Progress struct {
	ChunkCount int                 `json:"chunk_count"`
	ChunksDone int                 `json:"chunks_done"`
	Processed  int                 `json:"processed"`
	Total      int                 `json:"total"`
	Partitions []PartitionProgress `json:"partitions"`
	Errors     []string            `json:"errors"`
}

// PartitionProgress is the last reported state of one partition.
type PartitionProgress struct {
	ChunkIndex int    `json:"chunk_index"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	State      string `json:"state"`
}

// NewJob creates a queued job that will run p in chunkCount partitions.
func NewJob(p search.Prepared, chunkCount int, sessionID string) *Job {
	chunkCount = max(chunkCount, 1)
	now := time.Now()
	j := &Job{
		ID:        newJobID(),
		SessionID: sessionID,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		prepared:  p,
	}
	j.Progress.ChunkCount = chunkCount
	j.Progress.Partitions = make([]PartitionProgress, chunkCount)
	for i := range j.Progress.Partitions {
		j.Progress.Partitions[i] = PartitionProgress{ChunkIndex: i, State: partitionPending}
	}
	return j
}

// Dispatches returns one dispatch message per partition.
func (j *Job) Dispatches() []Dispatch {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Dispatch, j.Progress.ChunkCount)
	for i := range out {
		out[i] = Dispatch{
			JobID:   j.ID,
			Request: j.prepared.Request,
			Chunk:   search.ChunkSpec{Index: i, Count: j.Progress.ChunkCount},
		}
	}
	return out
}

// Prepared returns the parsed request the job runs.
func (j *Job) Prepared() search.Prepared {
	return j.prepared
}

// OnComplete registers fn to receive the merged result when every partition
// succeeded. Partial or failed jobs do not call it.
func (j *Job) OnComplete(fn func(search.Result)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.onComplete = append(j.onComplete, fn)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.addErrorLocked(err)
}

func (j *Job) addErrorLocked(err string) {
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Apply folds one partition message into the job. It returns true for the
// message that completes the last partition, after the merged result has
// been stored.
func (j *Job) Apply(m Message) bool {
	j.mu.Lock()
	if m.ChunkIndex < 0 || m.ChunkIndex >= len(j.Progress.Partitions) || j.result != nil {
		j.mu.Unlock()
		return false
	}
	p := &j.Progress.Partitions[m.ChunkIndex]
	if p.State == partitionDone || p.State == partitionFailed {
		j.mu.Unlock()
		return false
	}
	if j.Status == StatusQueued {
		j.Status = StatusRunning
	}
	j.UpdatedAt = time.Now()

	switch m.Kind {
	case KindProgress:
		p.Processed, p.Total = m.Processed, m.Total
		p.State = partitionRunning
	case KindResult:
		p.State = partitionDone
		p.Processed = p.Total
		j.parts = append(j.parts, m.Partition(j.Progress.ChunkCount))
		j.terminal++
	case KindError:
		p.State = partitionFailed
		j.addErrorLocked(fmt.Sprintf("chunk %d: %s", m.ChunkIndex, m.Message))
		j.terminal++
	}
	j.recountLocked()

	if j.terminal < j.Progress.ChunkCount {
		j.mu.Unlock()
		return false
	}

	succeeded := len(j.parts)
	res := search.Merge(j.parts, j.prepared.Request.Limits, j.prepared.Order)
	j.parts = nil
	var status JobStatus
	var callbacks []func(search.Result)
	switch {
	case len(j.errors) == 0:
		status = StatusCompleted
		callbacks = j.onComplete
	case succeeded > 0:
		status = StatusPartial
	default:
		status = StatusFailed
	}
	j.mu.Unlock()

	// Callbacks finish before the job reports done, so a caller that sees
	// the final status also sees their effects.
	for _, fn := range callbacks {
		fn(res)
	}

	j.mu.Lock()
	j.result = &res
	j.Status = status
	j.UpdatedAt = time.Now()
	j.mu.Unlock()
	return true
}

func (j *Job) recountLocked() {
	j.Progress.ChunksDone, j.Progress.Processed, j.Progress.Total = 0, 0, 0
	for _, p := range j.Progress.Partitions {
		if p.State == partitionDone || p.State == partitionFailed {
			j.Progress.ChunksDone++
		}
		j.Progress.Processed += p.Processed
		j.Progress.Total += p.Total
	}
}

// Result returns the merged, unfiltered result once the job has finished.
func (j *Job) Result() (search.Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return search.Result{}, false
	}
	r := *j.result
	r.Candidates = slices.Clone(r.Candidates)
	return r, true
}

// Done reports whether every partition has reported a terminal message.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result != nil || j.Status == StatusFailed
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	SessionID string    `json:"session_id,omitempty"`
	Status    JobStatus `json:"status"`
	Progress  Progress  `json:"progress"`
	Warnings  []string  `json:"warnings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Partitions = slices.Clone(j.Progress.Partitions)
	progress.Errors = slices.Clone(j.errors)
	if progress.Errors == nil {
		progress.Errors = []string{}
	}
	warnings := slices.Clone(j.prepared.Warnings)
	if warnings == nil {
		warnings = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		SessionID: j.SessionID,
		Status:    j.Status,
		Progress:  progress,
		Warnings:  warnings,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		idle := now.Sub(job.UpdatedAt)
		job.mu.Unlock()
		if idle > s.ttl {
			delete(s.jobs, id)
		}
	}
}
