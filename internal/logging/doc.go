// Package logging builds the slog loggers used across the daemon and CLI.
//
// It provides a console handler for interactive use, a JSON handler for
// machine-readable logs, helpers for standardized attribute keys, and
// context plumbing so document id, stage name, and request id annotations
// follow a unit of work through the workflow manager and stage capabilities.
package logging
