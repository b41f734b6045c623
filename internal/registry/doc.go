// Package registry stores documents and drives their lifecycle bookkeeping.
//
// The Store is backed by an in-memory SQLite database: nothing survives a
// process restart, while SQLite's write serialization gives every
// read-modify-write on a document atomicity against concurrent writers of
// the same id without a global lock in Go. Updates are expressed as field
// patches and merged field-wise inside a transaction; a whole-record
// overwrite is never performed, so two concurrent patches to different
// fields of the same document both land.
//
// Treat this package as the single source of truth for document semantics;
// new statuses or fields mean updating the schema and the patch merge
// together.
package registry
