package registry

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status represents the lifecycle state of a document.
type Status string

const (
	StatusIngested          Status = "ingested"
	StatusExtracted         Status = "extracted"
	StatusClassified        Status = "classified"
	StatusRouted            Status = "routed"
	StatusHumanIntervention Status = "human_intervention"
)

var allStatuses = []Status{
	StatusIngested,
	StatusExtracted,
	StatusClassified,
	StatusRouted,
	StatusHumanIntervention,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusSet[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

var titleCaser = cases.Title(language.English)

// Label returns the human-readable form of a status, e.g. "Human Intervention".
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

// TimestampKey returns the key under which this status is recorded in a
// document's timestamp map.
func (s Status) TimestampKey() string {
	return strings.ToLower(string(s))
}

// Document is the central pipeline entity. ID, Name, and Locator are
// immutable after creation; everything else is owned by exactly one writer
// (Extract: ExtractedText/Entities, Classify: DocumentType/Confidence,
// Route: Destination, orchestrator: Status/Timestamps/Messages).
type Document struct {
	ID            string
	Name          string
	Locator       string
	Status        Status
	ExtractedText string
	Entities      map[string]any
	DocumentType  string
	Confidence    *float64
	Destination   string
	Timestamps    map[string]time.Time
	Messages      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy suitable for handing to observers.
func (d *Document) Clone() Document {
	cp := *d
	if d.Entities != nil {
		cp.Entities = make(map[string]any, len(d.Entities))
		for k, v := range d.Entities {
			cp.Entities[k] = v
		}
	}
	if d.Timestamps != nil {
		cp.Timestamps = make(map[string]time.Time, len(d.Timestamps))
		for k, v := range d.Timestamps {
			cp.Timestamps[k] = v
		}
	}
	if d.Messages != nil {
		cp.Messages = make(map[string]string, len(d.Messages))
		for k, v := range d.Messages {
			cp.Messages[k] = v
		}
	}
	if d.Confidence != nil {
		confidence := *d.Confidence
		cp.Confidence = &confidence
	}
	return cp
}

// NewDocument carries the fields the ingestion boundary supplies.
type NewDocument struct {
	Name    string
	Locator string
}

// Patch names the fields an update merges into a document. Nil fields are
// left untouched; Messages entries overwrite only their own stage key.
type Patch struct {
	Status        *Status
	ExtractedText *string
	Entities      map[string]any
	DocumentType  *string
	Confidence    *float64
	Destination   *string
	Messages      map[string]string
}

// HealthSummary describes aggregated document counts per lifecycle state.
type HealthSummary struct {
	Total        int
	Ingested     int
	Extracted    int
	Classified   int
	Routed       int
	Intervention int
}
