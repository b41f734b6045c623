package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldDocumentID is the standardized structured logging key for document identifiers.
	FieldDocumentID = "document_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldStatus is the standardized structured logging key for document statuses.
	FieldStatus = "status"
	// FieldRequestID is the standardized structured logging key for stage invocation identifiers.
	FieldRequestID = "request_id"
	// FieldEventType tags log records with a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldErrorHint carries a suggested next step for operators on failures.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the services error classification on failures.
	FieldErrorKind = "error_kind"
)
