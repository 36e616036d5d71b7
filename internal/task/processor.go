package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ProcessorConfig holds configuration options for the task processor
type ProcessorConfig struct {
	// WorkerCount is the number of tasks that may run concurrently
	WorkerCount int

	// QueueSize bounds outstanding tasks, queued or running
	QueueSize int

	// DefaultTimeout applies when Submit is called with a zero timeout
	DefaultTimeout time.Duration

	// SweepInterval controls how often terminal entries are swept.
	// Zero disables the background sweeper; Sweep can still be called directly.
	SweepInterval time.Duration

	// ResultRetention is the age after which terminal entries are removed
	ResultRetention time.Duration
}

// DefaultProcessorConfig returns a ProcessorConfig with reasonable defaults
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     4,
		QueueSize:       100,
		DefaultTimeout:  60 * time.Second,
		SweepInterval:   5 * time.Minute,
		ResultRetention: time.Hour,
	}
}

// Processor runs submitted work in the background and exposes a pollable
// status table. Only the processor writes terminal statuses; callers read.
type Processor struct {
	config    ProcessorConfig
	queue     *TaskQueue
	pool      *WorkerPool
	admission *semaphore.Weighted
	logger    *slog.Logger
	recorder  Recorder
	now       func() time.Time

	mu       sync.RWMutex
	statuses map[string]*Status

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewProcessor creates a new processor. Start must be called before
// submitted tasks make progress.
func NewProcessor(config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_processor")

	if config.QueueSize <= 0 {
		logger.Warn("invalid queue size specified, using default",
			"specified_size", config.QueueSize,
			"default_size", DefaultProcessorConfig().QueueSize)
		config.QueueSize = DefaultProcessorConfig().QueueSize
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = DefaultProcessorConfig().DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:    config,
		queue:     NewTaskQueue(config.QueueSize, logger),
		pool:      NewWorkerPool(WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		admission: semaphore.NewWeighted(int64(config.QueueSize)),
		logger:    logger,
		recorder:  nopRecorder{},
		now:       time.Now,
		statuses:  make(map[string]*Status),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetRecorder installs a metrics recorder. It must be called before Start.
func (p *Processor) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	p.recorder = r
}

// Start launches the dispatch loop and, when configured, the sweeper.
func (p *Processor) Start() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.stopped {
		return ErrProcessorStopped
	}
	if p.started {
		return nil
	}
	p.started = true

	p.wg.Add(1)
	go p.dispatch()

	if p.config.SweepInterval > 0 && p.config.ResultRetention > 0 {
		p.wg.Add(1)
		go p.sweeper()
	}

	p.logger.Info("task processor started",
		"worker_count", p.pool.Size(),
		"queue_size", p.queue.Cap(),
		"default_timeout", p.config.DefaultTimeout)
	return nil
}

// Stop cancels running work, waits for the dispatch loop to exit and marks
// every task still queued as failed. It is safe to call more than once.
func (p *Processor) Stop() {
	p.lifecycleMu.Lock()
	if p.stopped {
		p.lifecycleMu.Unlock()
		return
	}
	p.stopped = true
	p.lifecycleMu.Unlock()

	p.logger.Info("stopping task processor")
	p.cancel()
	p.queue.Close()
	p.wg.Wait()

	drained := 0
	for t := range p.queue.GetChannel() {
		p.finish(t, StateError, nil, ErrProcessorStopped.Error())
		drained++
	}

	p.logger.Info("task processor stopped", "drained_tasks", drained)
}

// Submit enqueues work and returns its task ID without waiting for a worker.
// A zero timeout selects the configured default.
func (p *Processor) Submit(work Work, timeout time.Duration) (string, error) {
	if work == nil {
		return "", ErrNilWork
	}

	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	if p.stopped {
		return "", ErrProcessorStopped
	}

	if !p.admission.TryAcquire(1) {
		p.recorder.TaskRejected()
		p.logger.Warn("task rejected, processor at capacity", "capacity", p.queue.Cap())
		return "", fmt.Errorf("%w: %d tasks outstanding", ErrQueueFull, p.queue.Cap())
	}

	if timeout <= 0 {
		timeout = p.config.DefaultTimeout
	}

	t := &Task{
		ID:        uuid.New().String(),
		Work:      work,
		Timeout:   timeout,
		CreatedAt: p.now(),
	}

	p.mu.Lock()
	p.statuses[t.ID] = &Status{ID: t.ID, State: StatePending, CreatedAt: t.CreatedAt}
	p.mu.Unlock()

	if err := p.queue.Enqueue(t); err != nil {
		p.mu.Lock()
		delete(p.statuses, t.ID)
		p.mu.Unlock()
		p.admission.Release(1)
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	p.recorder.TaskSubmitted()
	p.recorder.QueueDepth(p.queue.Len())
	p.logger.Debug("task submitted", "task_id", t.ID, "timeout", timeout)
	return t.ID, nil
}

// Status returns a snapshot of the task. Unknown IDs, including swept ones,
// report StateUnknown.
func (p *Processor) Status(id string) Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.statuses[id]
	if !ok {
		return Status{ID: id, State: StateUnknown}
	}
	return *s
}

// Sweep removes terminal entries that finished more than maxAge ago and
// returns how many were removed. Pending entries are never removed.
func (p *Processor) Sweep(maxAge time.Duration) int {
	cutoff := p.now().Add(-maxAge)

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, s := range p.statuses {
		if s.State.IsTerminal() && s.FinishedAt.Before(cutoff) {
			delete(p.statuses, id)
			removed++
		}
	}
	return removed
}

func (p *Processor) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.queue.GetChannel():
			if !ok {
				return
			}
			p.recorder.QueueDepth(p.queue.Len())

			if err := p.pool.Acquire(p.ctx); err != nil {
				p.finish(t, StateError, nil, ErrProcessorStopped.Error())
				return
			}
			p.recorder.WorkersBusy(p.pool.Busy())

			p.wg.Add(1)
			go p.supervise(t)
		}
	}
}

type outcome struct {
	result any
	err    error
}

// supervise runs one task under its deadline. The worker slot stays held
// until the work returns, so work that ignores cancellation keeps occupying it.
func (p *Processor) supervise(t *Task) {
	defer p.wg.Done()

	ctx, cancel := context.WithTimeout(p.ctx, t.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			p.pool.Release()
			p.recorder.WorkersBusy(p.pool.Busy())
		}()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("panic recovered in task",
					"task_id", t.ID,
					"panic_value", fmt.Sprintf("%v", r))
				done <- outcome{err: fmt.Errorf("%w: %v", ErrPanic, r)}
			}
		}()

		result, err := t.Work(ctx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		// Work that returns its context error at the deadline races the
		// ctx.Done case; the deadline wins either way.
		if o.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.timedOut(t)
			return
		}
		if o.err != nil {
			p.finish(t, StateError, nil, o.err.Error())
			return
		}
		p.finish(t, StateCompleted, o.result, "")
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.timedOut(t)
			return
		}
		p.finish(t, StateError, nil, ErrProcessorStopped.Error())
	}
}

func (p *Processor) timedOut(t *Task) {
	p.logger.Warn("task timed out", "task_id", t.ID, "timeout", t.Timeout)
	p.finish(t, StateTimeout, nil, fmt.Sprintf("%s after %s", ErrTimeout, t.Timeout))
}

// finish records the terminal state exactly once and frees the admission slot.
func (p *Processor) finish(t *Task, state State, result any, errMsg string) {
	p.mu.Lock()
	s, ok := p.statuses[t.ID]
	if !ok || s.State.IsTerminal() {
		p.mu.Unlock()
		return
	}
	s.State = state
	s.Result = result
	s.Error = errMsg
	s.FinishedAt = p.now()
	elapsed := s.FinishedAt.Sub(s.CreatedAt)
	p.mu.Unlock()

	p.admission.Release(1)
	p.recorder.TaskFinished(state, elapsed)

	if state == StateCompleted {
		p.logger.Debug("task completed", "task_id", t.ID, "elapsed", elapsed)
		return
	}
	p.logger.Info("task finished without result",
		"task_id", t.ID,
		"state", state,
		"error", errMsg,
		"elapsed", elapsed)
}

// sweeper periodically drops old terminal entries.
func (p *Processor) sweeper() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if removed := p.Sweep(p.config.ResultRetention); removed > 0 {
				p.logger.Info("swept finished tasks", "removed", removed)
			}
		}
	}
}
