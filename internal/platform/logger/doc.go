// Package logger configures the process-wide slog JSON logger and provides
// context helpers so request-scoped loggers (carrying the request ID) flow
// through service and store code without explicit plumbing.
package logger
