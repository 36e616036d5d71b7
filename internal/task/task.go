package task

import (
	"context"
	"errors"
	"time"
)

// State represents the lifecycle state of a task as seen by pollers.
type State string

// Possible task state values
const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateError     State = "error"
	StateTimeout   State = "timeout"
	StateUnknown   State = "unknown"
)

// IsTerminal reports whether the state is final. Terminal tasks are never
// modified again and become eligible for sweeping.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateError, StateTimeout:
		return true
	default:
		return false
	}
}

// Common errors returned by the processor
var (
	ErrQueueClosed      = errors.New("task queue is closed")
	ErrQueueFull        = errors.New("task queue is full")
	ErrProcessorStopped = errors.New("task processor is stopped")
	ErrNilWork          = errors.New("work cannot be nil")
	ErrTimeout          = errors.New("task timed out")
	ErrPanic            = errors.New("task panicked")
)

// Work is a unit of background work. Implementations must honor ctx
// cancellation: once the task deadline passes its result is discarded, and
// work that keeps running after that point only wastes a worker slot.
type Work func(ctx context.Context) (any, error)

// Task is a queued unit of work together with its execution budget.
type Task struct {
	ID        string
	Work      Work
	Timeout   time.Duration
	CreatedAt time.Time
}

// Status is a snapshot of a task's entry in the result table.
type Status struct {
	ID         string
	State      State
	Result     any
	Error      string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Recorder receives task lifecycle observations. The Prometheus
// implementation lives in internal/platform/metrics.
type Recorder interface {
	TaskSubmitted()
	TaskRejected()
	TaskFinished(state State, elapsed time.Duration)
	QueueDepth(n int)
	WorkersBusy(n int)
}

type nopRecorder struct{}

func (nopRecorder) TaskSubmitted()                     {}
func (nopRecorder) TaskRejected()                      {}
func (nopRecorder) TaskFinished(State, time.Duration) {}
func (nopRecorder) QueueDepth(int)                     {}
func (nopRecorder) WorkersBusy(int)                    {}
