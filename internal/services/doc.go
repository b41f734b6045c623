// Package services defines the shared error taxonomy for pipeline stages and
// the registry.
//
// Errors are tagged with sentinel markers (validation, not found, timeout,
// stage failure, transient) via Wrap so the workflow manager can decide how a
// failure maps onto document state, and so the IPC layer can report a stable
// error kind to callers. NotFound is the only kind that never produces a
// state transition; every other stage-level failure resolves to the
// human-intervention status.
package services
