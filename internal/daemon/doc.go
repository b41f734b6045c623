// Package daemon coordinates the long-running docflow process.
//
// It wires configuration, the document registry, and the workflow manager
// into a single lifecycle with flock-based locking to prevent multiple
// instances. The daemon exposes registry maintenance helpers, handles manual
// document ingestion, and aggregates runtime status for the IPC surface.
//
// Keep orchestration logic here: individual pipeline stages live in their own
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
