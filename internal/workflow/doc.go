// Package workflow advances documents through the processing pipeline.
//
// The Manager polls the registry for documents with work pending and assigns
// each one to a worker that runs its stages in order: extract, classify,
// route. A document that fails any stage is parked at human intervention with
// the failure recorded against the stage that produced it. Per-document locks
// guarantee at most one stage runs against a document at a time, which also
// serializes manual triggers with the automatic chain.
//
// The manager is the only component that writes documents. Stage capabilities
// are pure functions over a document snapshot; their results are merged back
// field-wise so concurrent pipelines never clobber each other.
package workflow
