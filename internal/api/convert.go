package api

import (
	"encoding/json"
	"slices"

	"docflow/internal/notifier"
	"docflow/internal/registry"
	"docflow/internal/workflow"
)

// FromDocument converts a registry record to its API representation.
func FromDocument(doc *registry.Document) Document {
	if doc == nil {
		return Document{}
	}

	dto := Document{
		ID:            doc.ID,
		Name:          doc.Name,
		Locator:       doc.Locator,
		Status:        string(doc.Status),
		StatusLabel:   doc.Status.Label(),
		ExtractedText: doc.ExtractedText,
		DocumentType:  doc.DocumentType,
		Destination:   doc.Destination,
	}
	if doc.Confidence != nil {
		confidence := *doc.Confidence
		dto.Confidence = &confidence
	}
	if len(doc.Entities) > 0 {
		if raw, err := json.Marshal(doc.Entities); err == nil {
			dto.Entities = raw
		}
	}
	if len(doc.Timestamps) > 0 {
		dto.Timestamps = make(map[string]string, len(doc.Timestamps))
		for key, ts := range doc.Timestamps {
			dto.Timestamps[key] = ts.UTC().Format(dateTimeFormat)
		}
	}
	if len(doc.Messages) > 0 {
		dto.Messages = make(map[string]string, len(doc.Messages))
		for key, message := range doc.Messages {
			dto.Messages[key] = message
		}
	}
	if !doc.CreatedAt.IsZero() {
		dto.CreatedAt = doc.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !doc.UpdatedAt.IsZero() {
		dto.UpdatedAt = doc.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromDocuments converts a slice of registry records into API DTOs.
func FromDocuments(docs []*registry.Document) []Document {
	if len(docs) == 0 {
		return nil
	}
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, FromDocument(doc))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to its API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	healthNames := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		healthNames = append(healthNames, name)
	}
	slices.Sort(healthNames)

	health := make([]StageHealth, 0, len(healthNames))
	for _, name := range healthNames {
		h := summary.StageHealth[name]
		health = append(health, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}

	stats := make(map[string]int, len(summary.DocumentStats))
	for status, count := range summary.DocumentStats {
		stats[string(status)] = count
	}

	wf := WorkflowStatus{
		Running:       summary.Running,
		ActiveWorkers: summary.ActiveWorkers,
		DocumentStats: stats,
		StageHealth:   health,
	}
	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastDocument != nil {
		last := FromDocument(summary.LastDocument)
		wf.LastDocument = &last
	}
	return wf
}

// FromEvent converts a notifier event to its API payload.
func FromEvent(event notifier.Event) Event {
	doc := event.Document
	return Event{
		Type:       string(event.Type),
		Stage:      event.Stage,
		Detail:     event.Detail,
		Document:   FromDocument(&doc),
		OccurredAt: event.OccurredAt.UTC().Format(dateTimeFormat),
	}
}

// MergeDocumentStats normalizes status counts so every status appears in the
// payload, including zero counts.
func MergeDocumentStats(stats map[registry.Status]int) map[string]int {
	merged := make(map[string]int, len(registry.AllStatuses()))
	for _, status := range registry.AllStatuses() {
		merged[string(status)] = 0
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}
