package crmsync

import (
	"context"
	"fmt"
	gosync "sync"

	domsync "github.com/fenestra/backend/internal/domain/sync"
	loginfra "github.com/fenestra/backend/internal/infrastructure/logger"
	"github.com/fenestra/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// job is one queued unit of sync work. run returns the attempt's Result so
// a panic can be converted into a failed log entry by the worker.
type job struct {
	name       string
	entityType domsync.EntityType
	direction  domsync.Direction
	run        func(ctx context.Context) domsync.Result
}

// Dispatcher runs queued sync jobs on a fixed pool of workers. Enqueueing
// never blocks the caller: when the queue is full the job is dropped and
// the drop is logged. A dropped job is repaired by the next write or
// webhook for the same entity.
type Dispatcher struct {
	logs   domsync.LogRepository
	logger *zap.Logger

	jobs chan job
	wg   gosync.WaitGroup

	mu      gosync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewDispatcher creates a dispatcher with the given queue capacity
func NewDispatcher(logs domsync.LogRepository, queueSize int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		logs:   logs,
		logger: logger,
		jobs:   make(chan job, queueSize),
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (d *Dispatcher) Start(workers int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.started = true

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.Info("sync dispatcher started",
		zap.Int("workers", workers),
		zap.Int("queue_size", cap(d.jobs)))
}

// Stop drains no further work and waits for in-flight jobs to finish.
// Queued jobs that have not started are abandoned.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	cancel := d.cancel
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
	d.logger.Info("sync dispatcher stopped")
}

// Submit offers a unit of sync work from another package without blocking.
// Returns false when the job was dropped.
func (d *Dispatcher) Submit(name string, entityType domsync.EntityType, direction domsync.Direction, run func(ctx context.Context) domsync.Result) bool {
	return d.enqueue(job{name: name, entityType: entityType, direction: direction, run: run})
}

// enqueue offers a job without blocking. Returns false when the queue is
// full.
func (d *Dispatcher) enqueue(j job) bool {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()
	if !started {
		d.logger.Warn("sync job rejected, dispatcher not running", zap.String("job", j.name))
		return false
	}

	select {
	case d.jobs <- j:
		return true
	default:
		d.logger.Warn("sync queue full, dropping job",
			zap.String("job", j.name),
			zap.Int("queue_size", cap(d.jobs)))
		return false
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.runJob(ctx, j)
		}
	}
}

// runJob executes one job, converting a panic into a failed log entry so a
// broken sync path cannot take down the pool
func (d *Dispatcher) runJob(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("sync job panicked",
				zap.String("job", j.name),
				zap.Any("panic", r))
			direction := j.direction
			if direction == "" {
				direction = domsync.DirectionERPToClickUp
			}
			entry := domsync.NewLogEntry(j.entityType, direction,
				domsync.FailedResult(fmt.Errorf("panic: %v", r)))
			if err := d.logs.Append(ctx, entry); err != nil {
				d.logger.Error("failed to record panicked sync job", zap.Error(err))
			}
		}
	}()

	ctx, span := telemetry.StartSpan(ctx, "sync."+j.name,
		telemetry.WithAttribute(telemetry.SpanAttrJobName, j.name),
		telemetry.WithAttribute(telemetry.SpanAttrEntityType, string(j.entityType)),
		telemetry.WithAttribute(telemetry.SpanAttrDirection, string(j.direction)))
	defer span.End()

	result := j.run(ctx)
	if !result.Success {
		span.SetStatus(codes.Error, result.Error)
	}
	loginfra.WithTraceContext(ctx, d.logger).Debug("sync job finished",
		zap.String("job", j.name),
		zap.String("outcome", result.Outcome.String()))
}
