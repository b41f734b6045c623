package ipc

import "docflow/internal/api"

// Document mirrors the API document DTO for IPC callers.
type Document = api.Document

// StageHealth describes readiness of a pipeline stage.
type StageHealth = api.StageHealth

// StartRequest triggers daemon workflow startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon workflow.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running       bool           `json:"running"`
	ActiveWorkers int            `json:"active_workers"`
	DocumentStats map[string]int `json:"document_stats"`
	LastError     string         `json:"last_error"`
	LastDocument  *Document      `json:"last_document"`
	LockPath      string         `json:"lock_path"`
	StageHealth   []StageHealth  `json:"stage_health"`
	PID           int            `json:"pid"`
}

// IngestRequest registers a new document.
type IngestRequest struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
}

// IngestResponse contains the created document.
type IngestResponse struct {
	Document Document `json:"document"`
}

// TriggerRequest runs a single stage against a document.
type TriggerRequest struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
}

// TriggerResponse contains the document snapshot after the stage ran.
type TriggerResponse struct {
	Document Document `json:"document"`
	Failed   bool     `json:"failed"`
	Message  string   `json:"message"`
}

// ListRequest filters document listing by status.
type ListRequest struct {
	Statuses []string `json:"statuses"`
}

// ListResponse contains document entries.
type ListResponse struct {
	Documents []Document `json:"documents"`
}

// DescribeRequest fetches a single document by id.
type DescribeRequest struct {
	ID string `json:"id"`
}

// DescribeResponse contains a single document.
type DescribeResponse struct {
	Document Document `json:"document"`
}

// RemoveRequest deletes a document.
type RemoveRequest struct {
	ID string `json:"id"`
}

// RemoveResponse reports whether a document was deleted.
type RemoveResponse struct {
	Removed bool `json:"removed"`
}

// ClearRequest removes all documents.
type ClearRequest struct{}

// ClearResponse reports number of removed documents.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// ClearRoutedRequest removes routed documents.
type ClearRoutedRequest struct{}

// ClearRoutedResponse reports number of removed documents.
type ClearRoutedResponse struct {
	Removed int64 `json:"removed"`
}

// HealthRequest fetches registry diagnostics.
type HealthRequest struct{}

// HealthResponse reports document counts by status.
type HealthResponse struct {
	Total        int `json:"total"`
	Ingested     int `json:"ingested"`
	Extracted    int `json:"extracted"`
	Classified   int `json:"classified"`
	Routed       int `json:"routed"`
	Intervention int `json:"intervention"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
