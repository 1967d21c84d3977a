package pipeline

import (
	"sync"
	"time"

	"github.com/dconnell/bookmaster/internal/bookmark"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusParsing      JobStatus = "parsing"
	StatusCategorizing JobStatus = "categorizing"
	StatusOrganizing   JobStatus = "organizing"
	StatusStoring      JobStatus = "storing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
	StatusPartial      JobStatus = "partial"
)

// Job tracks the state of a single bookmark-file import.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Browser string `json:"browser"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *bookmark.Folder
	errors   []string
}

// Progress tracks import progress.
type Progress struct {
	ChunksParsed    int      `json:"chunks_parsed"`
	BookmarksParsed int      `json:"bookmarks_parsed"`
	Categorized     int      `json:"categorized"`
	Errors          []string `json:"errors"`
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a non-fatal error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddChunk records one parsed chunk and its bookmark count.
func (j *Job) AddChunk(bookmarks int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksParsed++
	j.Progress.BookmarksParsed += bookmarks
	j.UpdatedAt = time.Now()
}

// SetCategorized records how many bookmarks received a category.
func (j *Job) SetCategorized(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Categorized = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw upload bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw upload bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult stores the organized folder tree.
func (j *Job) SetResult(tree *bookmark.Folder) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = tree
	j.UpdatedAt = time.Now()
}

// Result returns the organized folder tree, nil until the job is done.
func (j *Job) Result() *bookmark.Folder {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Browser  string    `json:"browser"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Browser:  j.Browser,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			ChunksParsed:    j.Progress.ChunksParsed,
			BookmarksParsed: j.Progress.BookmarksParsed,
			Categorized:     j.Progress.Categorized,
			Errors:          errs,
		},
	}
}
