package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/sylcheck/internal/checker"
)

// JobStatus represents the state of a batch check job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusChecking  JobStatus = "checking"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// File is one uploaded document.
type File struct {
	Name string
	Data []byte
}

// FileResult is the outcome for one file of a job. Exactly one of Report
// and Error is set once the file has been checked.
type FileResult struct {
	Filename    string          `json:"filename"`
	ContentHash string          `json:"content_hash"`
	Report      *checker.Report `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Job tracks the state of one batch of syllabi.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	files   []File
	results []FileResult
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalFiles   int      `json:"total_files"`
	FilesChecked int      `json:"files_checked"`
	FilesFailed  int      `json:"files_failed"`
	Errors       []string `json:"errors"`
}

// NewJob creates a queued job for files.
func NewJob(files []File) *Job {
	now := time.Now()
	results := make([]FileResult, len(files))
	for i, f := range files {
		results[i] = FileResult{Filename: f.Name, ContentHash: ContentHashHex(f.Data)}
	}
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalFiles: len(files)},
		CreatedAt: now,
		UpdatedAt: now,
		files:     files,
		results:   results,
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

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult records the outcome for file i.
func (j *Job) SetResult(i int, rep *checker.Report, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	r := &j.results[i]
	if err != nil {
		r.Error = err.Error()
		j.Progress.FilesFailed++
		j.errors = append(j.errors, fmt.Sprintf("%s: %s", r.Filename, err))
		j.Progress.Errors = j.errors
	} else {
		r.Report = rep
	}
	j.Progress.FilesChecked++
	j.UpdatedAt = time.Now()
}

// Files returns the uploaded files.
func (j *Job) Files() []File {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// ReleaseFiles drops the uploaded bytes once they are no longer needed.
func (j *Job) ReleaseFiles() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = nil
}

// Finish sets the terminal status from the per-file outcomes.
func (j *Job) Finish() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.Progress.FilesFailed == 0:
		j.Status = StatusCompleted
	case j.Progress.FilesFailed < j.Progress.TotalFiles:
		j.Status = StatusPartial
	default:
		j.Status = StatusFailed
	}
	j.Phase = "done"
	j.UpdatedAt = time.Now()
	return j.Status
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string       `json:"job_id"`
	Status    JobStatus    `json:"status"`
	Phase     string       `json:"phase"`
	Progress  Progress     `json:"progress"`
	Results   []FileResult `json:"results"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state. Reports are shared,
// they are not modified after a file is checked.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	results := make([]FileResult, len(j.results))
	copy(results, j.results)
	return JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalFiles:   j.Progress.TotalFiles,
			FilesChecked: j.Progress.FilesChecked,
			FilesFailed:  j.Progress.FilesFailed,
			Errors:       errs,
		},
		Results:   results,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
