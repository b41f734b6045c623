package stage

import "context"

// Capability describes the contract the workflow manager needs from each
// processing stage. Invoke must be a pure function of its input: identical
// inputs produce identical results, and implementations never mutate shared
// state. The manager owns all document writes.
type Capability interface {
	Name() string
	Invoke(context.Context, Input) (Result, error)
	HealthCheck(context.Context) Health
}

// Input is the read-only document snapshot handed to a capability. Each stage
// reads only the fields earlier stages produced.
type Input struct {
	ID            string
	Name          string
	Locator       string
	ExtractedText string
	Entities      map[string]any
	DocumentType  string
}

// Result carries the fields a capability produced. The manager merges only
// the fields owned by the stage that ran; everything else is ignored.
type Result struct {
	ExtractedText string
	Entities      map[string]any
	DocumentType  string
	Confidence    float64
	Destination   string
	Message       string
}

// Health summarizes the readiness of a processing stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
