package pipeline

import (
	"testing"
	"time"

	"github.com/inkgest/inkgest/internal/stats"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing notebook"},
		{StatusAnalyzing, "computing statistics"},
		{StatusStoring, "storing results"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure the time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("chunk 3 failed")
	job.AddError("chunk 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "chunk 3 failed" {
		t.Errorf("expected first error %q, got %q", "chunk 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_SummaryAndFindings(t *testing.T) {
	job := &Job{ID: "sum-test", UpdatedAt: time.Now()}
	job.SetSummary(stats.Summary{Pages: 3, Strokes: 42})
	job.SetFindings([]stats.Finding{{Code: "incomplete"}})

	snap := job.Snapshot()
	if snap.Progress.Pages != 3 || snap.Progress.Strokes != 42 {
		t.Errorf("progress mismatch: %+v", snap.Progress)
	}
	if snap.Summary == nil || snap.Summary.Pages != 3 {
		t.Errorf("summary mismatch: %+v", snap.Summary)
	}
	if len(snap.Findings) != 1 || snap.Findings[0].Code != "incomplete" {
		t.Errorf("findings mismatch: %+v", snap.Findings)
	}
}

func TestJob_RecordsStoredAndNotesChunks(t *testing.T) {
	job := &Job{ID: "store-test", UpdatedAt: time.Now()}
	job.SetNotesChunks(7)
	job.AddRecordsStored(3)
	job.AddRecordsStored(2)

	snap := job.Snapshot()
	if snap.Progress.NotesChunks != 7 {
		t.Errorf("expected 7 notes chunks, got %d", snap.Progress.NotesChunks)
	}
	if snap.Progress.RecordsStored != 5 {
		t.Errorf("expected 5 records stored, got %d", snap.Progress.RecordsStored)
	}
}

func TestJob_FileAndNotesData(t *testing.T) {
	job := &Job{ID: "data-test"}
	job.SetFileData([]byte("notebook bytes"))
	job.SetNotesData("notes.md", []byte("# notes"))

	if string(job.FileData()) != "notebook bytes" {
		t.Errorf("file data mismatch: %q", job.FileData())
	}
	name, data := job.NotesData()
	if name != "notes.md" || string(data) != "# notes" {
		t.Errorf("notes data mismatch: %q %q", name, data)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	job := &Job{ID: "old", UpdatedAt: time.Now().Add(-time.Minute)}
	store.Put(job)
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()
	if store.Get("old") != nil {
		t.Error("expected expired job to be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestGenerateULID(t *testing.T) {
	a := generateULID()
	b := generateULID()
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26-character ULIDs, got %q and %q", a, b)
	}
	if a == b {
		t.Error("expected distinct ULIDs")
	}
}
