// Package logging assembles the structured slog loggers used across nvdecode.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes attr helpers so decode workers tag log lines uniformly. A no-op
// logger is provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
