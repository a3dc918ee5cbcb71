package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkgest/inkgest/internal/archive"
	"github.com/inkgest/inkgest/internal/document"
	"github.com/inkgest/inkgest/internal/notes"
	"github.com/inkgest/inkgest/internal/outline"
	"github.com/inkgest/inkgest/internal/parser"
	"github.com/inkgest/inkgest/internal/stats"
)

// Worker processes a single notebook job.
type Worker struct {
	archive   *archive.Client
	pdf       document.PdfResolver
	log       *slog.Logger
	chunkCfg  outline.Config
	latencies *stats.ParseLatencies

	maxConcurrentStore int
}

func NewWorker(ac *archive.Client, pdf document.PdfResolver, log *slog.Logger,
	chunkCfg outline.Config, latencies *stats.ParseLatencies, maxStore int) *Worker {
	return &Worker{
		archive:            ac,
		pdf:                pdf,
		log:                log,
		chunkCfg:           chunkCfg,
		latencies:          latencies,
		maxConcurrentStore: maxStore,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, log, w.pdf)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if w.latencies != nil {
		w.latencies.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.ContentHash = ContentHashHex(job.FileData())

	// Phase 1.5: Dedup check against the archive.
	if w.archive.Enabled() {
		exists, existingDocID, err := w.checkDuplicate(ctx, job)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate notebook, skipping", "existing_doc_id", existingDocID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Analyze
	job.SetStatus(StatusAnalyzing, "analyzing")
	summary := stats.Summarize(doc)
	job.SetSummary(summary)

	findings := stats.Check(doc)
	job.SetFindings(findings)
	for _, f := range findings {
		log.Warn("integrity finding", "code", f.Code, "message", f.Message, "page", f.Page)
	}

	hadErrors := false
	var chunks []outline.Chunk
	if notesFile, notesData := job.NotesData(); len(notesData) > 0 {
		var ok bool
		chunks, ok = w.importNotes(job, notesFile, notesData, log)
		if !ok {
			hadErrors = true
		}
	}
	log.Info("analysis complete",
		"pages", summary.Pages, "strokes", summary.Strokes,
		"findings", len(findings), "notes_chunks", len(chunks))

	if !w.archive.Enabled() {
		if hadErrors {
			job.SetStatus(StatusPartial, "done")
		} else {
			job.SetStatus(StatusCompleted, "done")
		}
		return
	}

	// Phase 3: Store results in the archive.
	job.SetStatus(StatusStoring, "storing")
	docPrefix := fmt.Sprintf("notebooks/users/%s/documents/%s", job.UserID, job.DocID)
	source := "inkgest:" + job.DocID

	if err := w.putWithRetry(ctx, docPrefix+"/summary", archive.RecordRequest{
		Value:  summary,
		Kind:   "summary",
		Source: source,
	}); err != nil {
		log.Error("summary store failed", "error", err)
		job.AddError(fmt.Sprintf("store summary: %s", err))
		hadErrors = true
	} else {
		job.AddRecordsStored(1)
	}

	if len(findings) > 0 {
		if err := w.putWithRetry(ctx, docPrefix+"/findings", archive.RecordRequest{
			Value:  findings,
			Kind:   "meta",
			Source: source,
		}); err != nil {
			log.Error("findings store failed", "error", err)
			job.AddError(fmt.Sprintf("store findings: %s", err))
			hadErrors = true
		} else {
			job.AddRecordsStored(1)
		}
	}

	// Note chunks with bounded concurrency.
	if len(chunks) > 0 {
		storeSem := make(chan struct{}, w.maxConcurrentStore)
		type storeResult struct {
			err  error
			path string
		}
		storeResults := make(chan storeResult, len(chunks))

		for _, chunk := range chunks {
			storeSem <- struct{}{}
			go func(c outline.Chunk) {
				defer func() { <-storeSem }()
				path := fmt.Sprintf("%s/notes/%s", docPrefix, generateULID())
				err := w.putWithRetry(ctx, path, archive.RecordRequest{
					Value: map[string]any{
						"text":       c.Text,
						"index":      c.Index,
						"breadcrumb": c.Breadcrumb,
					},
					Kind:   "chunk",
					Source: source,
				})
				storeResults <- storeResult{err: err, path: path}
			}(chunk)
		}

		stored := 0
		for range chunks {
			r := <-storeResults
			if r.err != nil {
				log.Error("chunk store failed", "path", r.path, "error", r.err)
				job.AddError(fmt.Sprintf("store %s: %s", r.path, r.err))
				hadErrors = true
				continue
			}
			stored++
		}
		job.AddRecordsStored(stored)
	}

	// Document metadata.
	if err := w.putWithRetry(ctx, docPrefix+"/meta", archive.RecordRequest{
		Value: map[string]any{
			"filename":     job.Filename,
			"title":        job.Title,
			"content_hash": job.ContentHash,
			"pages":        summary.Pages,
			"strokes":      summary.Strokes,
			"notes_chunks": len(chunks),
			"created_at":   job.CreatedAt.Format(time.RFC3339),
		},
		Kind:   "meta",
		Source: source,
	}); err != nil {
		log.Error("meta write failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
		hadErrors = true
	}

	// Hash index for dedup.
	hashPath := fmt.Sprintf("notebooks/users/%s/documents/by_hash/%s/%s", job.UserID, job.ContentHash, job.DocID)
	if err := w.putWithRetry(ctx, hashPath, archive.RecordRequest{
		Value: map[string]any{
			"filename":   job.Filename,
			"created_at": job.CreatedAt.Format(time.RFC3339),
		},
		Kind:   "hash",
		Source: source,
	}); err != nil {
		log.Error("hash index write failed", "error", err)
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// importNotes parses the notes sidecar and chunks its outline. ok is
// false when the sidecar could not be imported.
func (w *Worker) importNotes(job *Job, filename string, data []byte, log *slog.Logger) (chunks []outline.Chunk, ok bool) {
	imp, err := notes.ForFile(filename)
	if err != nil {
		log.Warn("unsupported notes sidecar", "filename", filename, "error", err)
		job.AddError(fmt.Sprintf("notes: %s", err))
		return nil, false
	}
	o, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		log.Warn("notes import failed", "filename", filename, "error", err)
		job.AddError(fmt.Sprintf("notes: %s", err))
		return nil, false
	}
	chunks = outline.ChunkOutline(o, w.chunkCfg)
	job.SetNotesChunks(len(chunks))
	return chunks, true
}

// putWithRetry writes a record, retrying transient archive failures.
func (w *Worker) putWithRetry(ctx context.Context, key string, req archive.RecordRequest) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.archive.PutRecord(ctx, key, req)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// checkDuplicate checks if this content hash already exists for the user.
func (w *Worker) checkDuplicate(ctx context.Context, job *Job) (bool, string, error) {
	hashPrefix := fmt.Sprintf("notebooks/users/%s/documents/by_hash/%s", job.UserID, job.ContentHash)
	entries, err := w.archive.ListRecords(ctx, hashPrefix, 1)
	if err != nil {
		return false, "", err
	}
	if len(entries) > 0 {
		parts := strings.Split(entries[0].Key, "/")
		docID := parts[len(parts)-1]
		return true, docID, nil
	}
	return false, "", nil
}
