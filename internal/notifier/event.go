package notifier

import (
	"time"

	"docflow/internal/registry"
)

// EventType names a document lifecycle event.
type EventType string

const (
	EventDocumentCreated EventType = "document_created"
	EventStatusChanged   EventType = "status_changed"
	EventStageFailed     EventType = "stage_failed"
	EventDocumentRouted  EventType = "document_routed"
	EventDocumentRemoved EventType = "document_removed"
)

// Event is an immutable record of a document transition. Document is a deep
// copy taken at publish time; subscribers may hold it indefinitely.
type Event struct {
	Type       EventType
	Document   registry.Document
	Stage      string
	Detail     string
	OccurredAt time.Time
}

// NewEvent snapshots the document and stamps the event.
func NewEvent(eventType EventType, doc *registry.Document, stageName, detail string) Event {
	return Event{
		Type:       eventType,
		Document:   doc.Clone(),
		Stage:      stageName,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
