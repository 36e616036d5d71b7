package task

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds how many tasks execute at the same time. The dispatcher
// acquires a slot before starting a task and the slot is released when the
// work function returns, even if the task was already marked as timed out.
type WorkerPool struct {
	slots       *semaphore.Weighted
	workerCount int
	busy        atomic.Int64
	logger      *slog.Logger
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many tasks may run concurrently
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 4,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		slots:       semaphore.NewWeighted(int64(workerCount)),
		workerCount: workerCount,
		logger:      logger,
	}
}

// Acquire blocks until a worker slot is free or ctx is done.
func (p *WorkerPool) Acquire(ctx context.Context) error {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	p.busy.Add(1)
	return nil
}

// Release returns a slot taken by Acquire.
func (p *WorkerPool) Release() {
	p.busy.Add(-1)
	p.slots.Release(1)
}

// Busy returns the number of slots currently held.
func (p *WorkerPool) Busy() int {
	return int(p.busy.Load())
}

// Size returns the configured number of workers.
func (p *WorkerPool) Size() int {
	return p.workerCount
}
