// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Components receive the configured *slog.Logger and
// attach their own attributes (component, task_id, worker_id) with With.
package logger
