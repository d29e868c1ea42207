// Package worker runs the generation worker pool.
//
// Each worker loops over the queue: claim the oldest ready task, mark its
// record processing, run the generator under the attempt timeout, write the
// terminal outcome, and ack the task. A transient failure is retried once
// within the same delivery; the retry's failure is terminal. Panics inside
// the generator are contained to the attempt. A reaper goroutine returns
// deliveries that outlive the visibility timeout to the ready set so work is
// never stranded by a dead worker.
//
// The store is the arbiter under redelivery: two workers may briefly hold
// the same record, but the store accepts exactly one terminal write and the
// loser's ack is rejected by the queue's delivery check.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mealwise/mealwise/internal/errors"
	"github.com/mealwise/mealwise/internal/event"
	"github.com/mealwise/mealwise/internal/generator"
	"github.com/mealwise/mealwise/internal/logging"
	"github.com/mealwise/mealwise/internal/mealplan"
	"github.com/mealwise/mealwise/internal/store"
	"github.com/mealwise/mealwise/internal/taskqueue"
)

// maxAttemptsPerDelivery bounds generation attempts within one delivery:
// the initial attempt plus one retry for a transient failure.
const maxAttemptsPerDelivery = 2

// Config holds the pool's tuning knobs.
type Config struct {
	// Workers is the number of concurrent worker goroutines.
	Workers int

	// PollInterval is how long an idle worker waits before re-checking the
	// queue.
	PollInterval time.Duration

	// GenerationTimeout bounds a single generation attempt.
	GenerationTimeout time.Duration

	// VisibilityTimeout is how long a delivery may stay outstanding before
	// the reaper returns it to the ready set.
	VisibilityTimeout time.Duration

	// ReapInterval is how often the reaper scans for stale deliveries.
	ReapInterval time.Duration
}

// DefaultConfig returns the pool defaults. The visibility timeout stays
// comfortably above the generation timeout so a healthy worker is never
// raced by the reaper.
func DefaultConfig() Config {
	return Config{
		Workers:           4,
		PollInterval:      200 * time.Millisecond,
		GenerationTimeout: 60 * time.Second,
		VisibilityTimeout: 90 * time.Second,
		ReapInterval:      15 * time.Second,
	}
}

// normalize fills zero fields with defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = def.GenerationTimeout
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = def.VisibilityTimeout
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = def.ReapInterval
	}
	return c
}

// Pool owns the worker goroutines and the reaper.
type Pool struct {
	cfg   Config
	queue *taskqueue.EventQueue
	store store.Store
	gen   generator.Generator
	bus   *event.Bus
	log   *logging.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a Pool. The logger may be nil, in which case output is
// discarded.
func New(queue *taskqueue.EventQueue, st store.Store, gen generator.Generator,
	bus *event.Bus, log *logging.Logger, cfg Config) *Pool {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Pool{
		cfg:   cfg.normalize(),
		queue: queue,
		store: st,
		gen:   gen,
		bus:   bus,
		log:   log.WithComponent("worker"),
	}
}

// Start launches the workers and the reaper. It returns immediately.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.cfg.Workers; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runWorker(ctx, workerID)
		}()
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runReaper(ctx)
	}()

	p.log.Info("worker pool started",
		"workers", p.cfg.Workers,
		"generation_timeout", p.cfg.GenerationTimeout.String(),
		"visibility_timeout", p.cfg.VisibilityTimeout.String())
}

// Stop cancels all workers and blocks until they exit. A worker mid-task
// requeues its delivery so the record is redelivered after restart.
func (p *Pool) Stop() {
	p.once.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		p.wg.Wait()
		p.log.Info("worker pool stopped")
	})
}

// runWorker is the claim-process loop for one worker goroutine.
func (p *Pool) runWorker(ctx context.Context, workerID string) {
	wlog := p.log.WithWorker(workerID)
	for {
		if ctx.Err() != nil {
			return
		}

		task, err := p.queue.ClaimNext(workerID)
		if err != nil {
			if errors.Is(err, errors.ErrQueueClosed) {
				return
			}
			wlog.Error("claim failed", "error", err.Error())
		}
		if task == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.cfg.PollInterval):
			}
			continue
		}

		p.process(ctx, workerID, task, wlog.WithRecord(task.RecordID))
	}
}

// runReaper periodically returns stale deliveries to the ready set.
func (p *Pool) runReaper(ctx context.Context) {
	rlog := p.log.WithComponent("reaper")
	ticker := time.NewTicker(p.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-p.cfg.VisibilityTimeout)
			if requeued := p.queue.RequeueStale(cutoff); len(requeued) > 0 {
				rlog.Warn("requeued stale deliveries", "records", requeued)
			}
		}
	}
}

// process runs the full lifecycle of one delivery.
func (p *Pool) process(ctx context.Context, workerID string, task *taskqueue.Task, wlog *logging.Logger) {
	rec, err := p.store.Get(ctx, task.RecordID)
	if err != nil {
		// The record was deleted after enqueue; drop the orphaned task.
		if errors.Is(err, errors.ErrPlanNotFound) {
			wlog.Warn("dropping task for missing record")
			p.ack(task.RecordID, workerID, wlog)
			return
		}
		wlog.Error("loading record failed", "error", err.Error())
		p.requeue(task.RecordID, workerID, "store_error", wlog)
		return
	}
	if rec.State.IsTerminal() {
		// A redelivered task whose record was already finished by another
		// worker. Nothing to do but drop it.
		p.ack(task.RecordID, workerID, wlog)
		return
	}

	for attempt := 1; attempt <= maxAttemptsPerDelivery; attempt++ {
		if err := p.store.MarkProcessing(ctx, task.RecordID); err != nil {
			if errors.Is(err, errors.ErrRecordTerminal) {
				p.ack(task.RecordID, workerID, wlog)
				return
			}
			wlog.Error("marking record processing failed", "error", err.Error())
			p.requeue(task.RecordID, workerID, "store_error", wlog)
			return
		}
		if attempt == 1 {
			p.bus.Publish(event.NewRecordStateChangedEvent(
				rec.ID, string(rec.State), string(mealplan.StateProcessing), workerID))
			// Coarse progress hint; the generator itself reports nothing.
			_ = p.store.SetProgress(ctx, task.RecordID, 10)
		}

		result, genErr := p.generate(ctx, rec.Parameters)
		if genErr == nil {
			p.complete(ctx, task.RecordID, workerID, result, wlog)
			return
		}

		// Pool shutdown aborts the attempt without judging the record:
		// the requeued task is redelivered after restart.
		if ctx.Err() != nil {
			wlog.Info("shutdown during generation, requeuing")
			p.requeue(task.RecordID, workerID, "worker_shutdown", wlog)
			return
		}

		if errors.IsRetryable(genErr) && attempt < maxAttemptsPerDelivery {
			wlog.Warn("transient failure, retrying", "attempt", attempt, "error", genErr.Error())
			p.bus.Publish(event.NewGenerationRetriedEvent(rec.ID, workerID, attempt+1, genErr.Error()))
			continue
		}

		kind := classify(genErr)
		if kind == errors.KindTransient {
			// The retry failed too; the stored failure is terminal.
			kind = errors.KindTerminal
		}
		var detail *errors.GenerationError
		if errors.As(genErr, &detail) {
			detail.WithRecordID(task.RecordID).WithAttempt(attempt)
		}

		p.fail(ctx, task.RecordID, workerID, kind, genErr, wlog)
		return
	}
}

// generate runs one attempt under the generation timeout, containing panics.
func (p *Pool) generate(ctx context.Context, params mealplan.Parameters) (result *mealplan.GeneratedPlan, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.GenerationTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = errors.NewGenerationError(errors.KindTerminal,
				fmt.Sprintf("generator panicked: %v", r), nil)
			p.log.Error("generator panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	result, err = p.gen.Generate(attemptCtx, params)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		// The attempt outlived its budget; the verdict is a timeout whatever
		// the generator returned. The budget is the whole retry allowance, so
		// the timeout is not retried.
		err = errors.NewTimeoutError("plan generation", p.cfg.GenerationTimeout).
			WithRetryable(false).WithCause(err)
	}
	return result, err
}

// complete writes the successful outcome and acks the delivery.
func (p *Pool) complete(ctx context.Context, recordID, workerID string, result *mealplan.GeneratedPlan, wlog *logging.Logger) {
	if err := p.store.MarkCompleted(ctx, recordID, result); err != nil {
		// Lost the terminal-write race with another worker; drop our claim.
		if !errors.Is(err, errors.ErrRecordTerminal) {
			wlog.Error("storing result failed", "error", err.Error())
			p.requeue(recordID, workerID, "store_error", wlog)
			return
		}
	} else {
		wlog.Info("generation completed")
		p.bus.Publish(event.NewRecordStateChangedEvent(
			recordID, string(mealplan.StateProcessing), string(mealplan.StateCompleted), workerID))
	}
	p.ack(recordID, workerID, wlog)
}

// fail writes the failed outcome and acks the delivery.
func (p *Pool) fail(ctx context.Context, recordID, workerID string, kind errors.Kind, cause error, wlog *logging.Logger) {
	info := mealplan.ErrorInfo{
		Kind:    string(kind),
		Message: cause.Error(),
	}
	if err := p.store.MarkFailed(ctx, recordID, info); err != nil {
		if !errors.Is(err, errors.ErrRecordTerminal) {
			wlog.Error("storing failure failed", "error", err.Error())
			p.requeue(recordID, workerID, "store_error", wlog)
			return
		}
	} else {
		wlog.Warn("generation failed", "kind", string(kind),
			"severity", errors.GetSeverity(cause).String(),
			"user_facing", errors.IsUserFacing(cause),
			"error", cause.Error())
		p.bus.Publish(event.NewRecordStateChangedEvent(
			recordID, string(mealplan.StateProcessing), string(mealplan.StateFailed), workerID))
	}
	p.ack(recordID, workerID, wlog)
}

// ack acknowledges a delivery, tolerating a claim the reaper already took.
func (p *Pool) ack(recordID, workerID string, wlog *logging.Logger) {
	if err := p.queue.Ack(recordID, workerID); err != nil {
		if errors.Is(err, errors.ErrNotDelivered) || errors.Is(err, errors.ErrTaskNotFound) {
			wlog.Debug("ack skipped, claim no longer held")
			return
		}
		wlog.Error("ack failed", "error", err.Error())
	}
}

// requeue returns a delivery to the ready set, tolerating a lost claim.
func (p *Pool) requeue(recordID, workerID, reason string, wlog *logging.Logger) {
	if err := p.queue.Requeue(recordID, workerID, reason); err != nil {
		if errors.Is(err, errors.ErrNotDelivered) || errors.Is(err, errors.ErrTaskNotFound) {
			return
		}
		wlog.Error("requeue failed", "error", err.Error())
	}
}

// classify maps an attempt error onto the failure taxonomy. Raw context
// errors from generators that do not wrap them are normalized first.
func classify(err error) errors.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return errors.KindCancelled
	}
	return errors.KindOf(err)
}
