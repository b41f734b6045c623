package workflow

import (
	"context"

	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/stage"
)

// Trigger runs a single stage against the document immediately, regardless of
// its current status. The call waits behind any in-flight automatic stage for
// the same document, runs exactly one stage, and returns the resulting
// snapshot. When the manual run succeeds the dispatcher picks the document
// back up and continues the automatic chain from its new status.
func (m *Manager) Trigger(ctx context.Context, id string, kind stage.Kind) (*registry.Document, error) {
	doc, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := m.locks.Acquire(ctx, id); err != nil {
		return nil, err
	}
	defer m.locks.Release(id)

	// Reload under the lock; an automatic stage may have advanced the
	// document while we waited.
	doc, err = m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.logger.Info("manual stage trigger",
		logging.String(logging.FieldDocumentID, id),
		logging.String(logging.FieldStage, kind.String()),
		logging.String(logging.FieldStatus, string(doc.Status)),
	)

	runErr := m.runStage(ctx, doc, kind)

	updated, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if runErr == nil {
		m.Kick()
	}
	return updated, runErr
}
