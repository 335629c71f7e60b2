// Package jobs runs collection imports asynchronously. The triggering
// request gets an immediate acknowledgment; the import itself executes on
// a background worker and reports through the persisted job row.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/importer"
	"github.com/barkeepapp/barkeep-server/internal/sse"
	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
)

// EventEmitter publishes job lifecycle transitions to stream subscribers.
type EventEmitter interface {
	Emit(event sse.Event)
}

// AckStatus is the only status a submitter ever sees synchronously.
const AckStatus = "started"

// Ack acknowledges an accepted job. Completion is observed by polling.
type Ack struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type task struct {
	jobID   string
	barID   string
	userID  string
	payload importer.CollectionPayload
	action  importer.DuplicateAction
}

// Runner owns the in-process job queue and its single worker. Queued tasks
// live in memory only; the job row is the durable record of the outcome.
type Runner struct {
	store    *sqlite.Store
	importer *importer.Importer
	events   EventEmitter
	logger   *slog.Logger

	queue  chan task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a job runner with the given queue capacity.
func NewRunner(st *sqlite.Store, imp *importer.Importer, queueSize int, logger *slog.Logger) *Runner {
	if queueSize <= 0 {
		queueSize = 32
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:    st,
		importer: imp,
		logger:   logger.With("component", "jobs"),
		queue:    make(chan task, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetEventEmitter wires an optional event stream. Call before Start.
func (r *Runner) SetEventEmitter(e EventEmitter) {
	r.events = e
}

// publish reloads the job row and emits its current state.
func (r *Runner) publish(ctx context.Context, jobID string) {
	if r.events == nil {
		return
	}
	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		r.logger.Warn("failed to load job for event", "job_id", jobID, "error", err)
		return
	}
	r.events.Emit(sse.NewJobEvent(job))
}

// Start fails jobs interrupted by a previous process and launches the worker.
func (r *Runner) Start() {
	if n, err := r.store.FailInterruptedJobs(r.ctx); err != nil {
		r.logger.Error("failed to clean up interrupted jobs", "error", err)
	} else if n > 0 {
		r.logger.Warn("failed interrupted jobs from previous run", "count", n)
	}

	r.wg.Add(1)
	go r.worker()
	r.logger.Info("job runner started", "queue_capacity", cap(r.queue))
}

// Stop drains nothing: the in-flight task finishes, queued tasks are
// abandoned and their rows cleaned up at next start.
func (r *Runner) Stop() {
	r.logger.Info("stopping job runner")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("job runner stopped")
}

// EnqueueCollectionImport persists a pending job row, queues the work, and
// returns the acknowledgment immediately. The bar must exist: the job row
// references it, and a submission against an unknown bar is a caller
// error, not a job outcome.
func (r *Runner) EnqueueCollectionImport(ctx context.Context, barID, userID string, payload importer.CollectionPayload, action importer.DuplicateAction) (*Ack, error) {
	if _, err := r.store.GetBarByID(ctx, barID); err != nil {
		return nil, fmt.Errorf("load bar %s: %w", barID, err)
	}

	job := &domain.ImportJob{
		ID:        uuid.NewString(),
		BarID:     barID,
		UserID:    userID,
		Status:    domain.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	select {
	case r.queue <- task{jobID: job.ID, barID: barID, userID: userID, payload: payload, action: action}:
	default:
		if err := r.store.CompleteJob(ctx, job.ID, domain.JobFailed, 0, 0, []domain.JobError{
			{Item: "queue", Error: "job queue is full"},
		}); err != nil {
			r.logger.Error("failed to mark rejected job", "job_id", job.ID, "error", err)
		}
		return nil, fmt.Errorf("job queue is full")
	}

	r.publish(ctx, job.ID)
	r.logger.Info("collection import queued",
		"job_id", job.ID,
		"bar_id", barID,
		"cocktails", len(payload.Cocktails),
		"duplicate_action", action)

	return &Ack{JobID: job.ID, Status: AckStatus}, nil
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case t := <-r.queue:
			r.process(t)
		}
	}
}

func (r *Runner) process(t task) {
	ctx := r.ctx

	if err := r.store.MarkJobRunning(ctx, t.jobID); err != nil {
		r.logger.Error("failed to mark job running", "job_id", t.jobID, "error", err)
		return
	}
	r.publish(ctx, t.jobID)

	result, err := r.importer.ImportCollection(ctx, t.barID, t.userID, t.payload, t.action)
	if err != nil {
		r.logger.Error("collection import failed", "job_id", t.jobID, "error", err)
		if err := r.store.CompleteJob(ctx, t.jobID, domain.JobFailed, 0, 0, []domain.JobError{
			{Item: "import", Error: err.Error()},
		}); err != nil {
			r.logger.Error("failed to record job failure", "job_id", t.jobID, "error", err)
		}
		r.publish(ctx, t.jobID)
		return
	}

	if err := r.store.CompleteJob(ctx, t.jobID, domain.JobDone, result.Imported, result.Skipped, result.ItemErrors); err != nil {
		r.logger.Error("failed to record job completion", "job_id", t.jobID, "error", err)
		return
	}
	r.publish(ctx, t.jobID)

	r.logger.Info("collection import job done",
		"job_id", t.jobID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed_items", len(result.ItemErrors))
}
