package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Document describes a registry record in a transport-friendly format.
type Document struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Locator       string            `json:"locator,omitempty"`
	Status        string            `json:"status"`
	StatusLabel   string            `json:"statusLabel"`
	ExtractedText string            `json:"extractedText,omitempty"`
	Entities      json.RawMessage   `json:"entities,omitempty"`
	DocumentType  string            `json:"documentType,omitempty"`
	Confidence    *float64          `json:"confidence,omitempty"`
	Destination   string            `json:"destination,omitempty"`
	Timestamps    map[string]string `json:"timestamps,omitempty"`
	Messages      map[string]string `json:"messages,omitempty"`
	CreatedAt     string            `json:"createdAt,omitempty"`
	UpdatedAt     string            `json:"updatedAt,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running       bool           `json:"running"`
	ActiveWorkers int            `json:"activeWorkers"`
	DocumentStats map[string]int `json:"documentStats"`
	LastError     string         `json:"lastError,omitempty"`
	LastDocument  *Document      `json:"lastDocument,omitempty"`
	StageHealth   []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for pipeline stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// Event is the transport form of a document lifecycle event.
type Event struct {
	Type       string   `json:"type"`
	Stage      string   `json:"stage,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Document   Document `json:"document"`
	OccurredAt string   `json:"occurredAt"`
}

// DocumentListResponse wraps a collection of documents.
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
}

// DocumentStatsResponse provides a normalized stats payload.
type DocumentStatsResponse struct {
	Counts map[string]int `json:"counts"`
}
