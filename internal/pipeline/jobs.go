package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/inkgest/inkgest/internal/stats"
)

// JobStatus represents the state of a notebook ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusAnalyzing  JobStatus = "analyzing"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single notebook ingestion.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData      []byte
	notesData     []byte
	notesFilename string
	summary       *stats.Summary
	findings      []stats.Finding
	errors        []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages         int      `json:"pages"`
	Strokes       int      `json:"strokes"`
	NotesChunks   int      `json:"notes_chunks"`
	RecordsStored int      `json:"records_stored"`
	Errors        []string `json:"errors"`
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

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetSummary records the notebook summary and its headline figures.
func (j *Job) SetSummary(s stats.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.summary = &s
	j.Progress.Pages = s.Pages
	j.Progress.Strokes = s.Strokes
	j.UpdatedAt = time.Now()
}

// Summary returns the recorded summary, or nil before analysis.
func (j *Job) Summary() *stats.Summary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary
}

// SetFindings records integrity findings.
func (j *Job) SetFindings(f []stats.Finding) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.findings = f
	j.UpdatedAt = time.Now()
}

// Findings returns the recorded integrity findings.
func (j *Job) Findings() []stats.Finding {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.findings
}

// SetNotesChunks records how many note chunks were produced.
func (j *Job) SetNotesChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.NotesChunks = n
	j.UpdatedAt = time.Now()
}

// AddRecordsStored counts archive records written.
func (j *Job) AddRecordsStored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.RecordsStored += n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw notebook bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw notebook bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetNotesData attaches an optional notes sidecar for import.
func (j *Job) SetNotesData(filename string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.notesFilename = filename
	j.notesData = data
}

// NotesData returns the notes sidecar, if any.
func (j *Job) NotesData() (string, []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.notesFilename, j.notesData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string          `json:"job_id"`
	DocID    string          `json:"doc_id"`
	UserID   string          `json:"user_id"`
	Status   JobStatus       `json:"status"`
	Phase    string          `json:"phase"`
	Filename string          `json:"filename"`
	Title    string          `json:"title"`
	Progress Progress        `json:"progress"`
	Summary  *stats.Summary  `json:"summary,omitempty"`
	Findings []stats.Finding `json:"findings,omitempty"`
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
		DocID:    j.DocID,
		UserID:   j.UserID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			Pages:         j.Progress.Pages,
			Strokes:       j.Progress.Strokes,
			NotesChunks:   j.Progress.NotesChunks,
			RecordsStored: j.Progress.RecordsStored,
			Errors:        errs,
		},
		Summary:  j.summary,
		Findings: j.findings,
	}
}

// ContentHashHex computes SHA-256 of content and returns a hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
