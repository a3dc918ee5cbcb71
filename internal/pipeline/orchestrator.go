package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inkgest/inkgest/internal/archive"
	"github.com/inkgest/inkgest/internal/config"
	"github.com/inkgest/inkgest/internal/document"
	"github.com/inkgest/inkgest/internal/outline"
	"github.com/inkgest/inkgest/internal/stats"
)

// Orchestrator manages the notebook ingestion pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	archive   *archive.Client
	pdf       document.PdfResolver
	latencies *stats.ParseLatencies
	log       *slog.Logger
	cfg       config.Config
	chunkCfg  outline.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; call Start to launch workers.
func NewOrchestrator(cfg config.Config, ac *archive.Client, pdf document.PdfResolver, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		archive:   ac,
		pdf:       pdf,
		latencies: stats.NewParseLatencies(cfg.LatencyWindow),
		log:       log,
		cfg:       cfg,
		chunkCfg: outline.Config{
			ChunkSize:    cfg.DefaultChunkSize,
			ChunkOverlap: cfg.DefaultChunkOverlap,
			MinChunk:     100,
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.archive, o.pdf, o.log, o.chunkCfg, o.latencies, o.cfg.MaxConcurrentStore)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// ArchiveClient returns the archive client for direct use by API handlers.
func (o *Orchestrator) ArchiveClient() *archive.Client {
	return o.archive
}

// Latencies exposes the rolling parse-latency window.
func (o *Orchestrator) Latencies() *stats.ParseLatencies {
	return o.latencies
}
