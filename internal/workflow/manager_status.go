package workflow

import (
	"context"

	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running       bool
	ActiveWorkers int
	LastError     string
	LastDocument  *registry.Document
	DocumentStats map[registry.Status]int
	StageHealth   map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	active := m.active
	lastErr := m.lastErr
	lastDoc := m.lastDoc
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read document stats", logging.Error(err))
	}

	health := make(map[string]stage.Health, 3)
	for _, kind := range stage.Kinds() {
		capability := m.stages.forKind(kind)
		if capability == nil {
			health[kind.String()] = stage.Unhealthy(kind.String(), "no capability registered")
			continue
		}
		health[capability.Name()] = capability.HealthCheck(ctx)
	}

	summary := StatusSummary{
		Running:       running,
		ActiveWorkers: active,
		DocumentStats: stats,
		StageHealth:   health,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastDoc != nil {
		snapshot := lastDoc.Clone()
		summary.LastDocument = &snapshot
	}
	return summary
}
