// Package task manages background job queuing, processing, and lifecycle.
// A Processor accepts units of work into a bounded FIFO queue, runs them on a
// fixed-size worker pool under a per-task timeout, and keeps a pollable status
// table so callers can retrieve results later by task ID without blocking the
// request that submitted the work.
package task
