package workflow

import (
	"context"
	"errors"
	"strings"

	"docflow/internal/logging"
	"docflow/internal/notifier"
	"docflow/internal/registry"
	"docflow/internal/services"
	"docflow/internal/stage"
)

// handleStageFailure parks the document at human intervention and records
// the failure against the stage that produced it.
func (m *Manager) handleStageFailure(ctx context.Context, doc *registry.Document, kind stage.Kind, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)
	message := classifyStageFailure(kind, stageErr)

	intervention := registry.StatusHumanIntervention
	updated, err := m.store.Update(ctx, doc.ID, registry.Patch{
		Status:   &intervention,
		Messages: map[string]string{kind.String(): message},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not record stage failure")
		} else {
			logger.Error("failed to record stage failure", logging.Error(err))
		}
		return
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(registry.StatusHumanIntervention)),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorKind, services.Kind(stageErr)),
		logging.Error(stageErr),
	)

	m.setLastDocument(updated)
	m.hub.Publish(notifier.NewEvent(notifier.EventStageFailed, updated, kind.String(), message))
	if err := m.push.NotifyIntervention(ctx, updated.Name, kind.String(), message); err != nil {
		logger.Warn("intervention notification failed", logging.Error(err))
	}
	if err := m.push.NotifyError(ctx, stageErr, kind.String()); err != nil {
		logger.Warn("error notification failed", logging.Error(err))
	}
}

func classifyStageFailure(kind stage.Kind, stageErr error) string {
	if stageErr == nil {
		return kind.String() + " failed without error detail"
	}
	message := strings.TrimSpace(services.Message(stageErr))
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = kind.String() + " failed"
	}
	return message
}
