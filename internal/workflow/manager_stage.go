package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docflow/internal/logging"
	"docflow/internal/notifier"
	"docflow/internal/registry"
	"docflow/internal/services"
	"docflow/internal/stage"
)

// runStage executes one capability against the document and persists the
// outcome. The caller must hold the document's lock. A nil return means the
// document advanced; any error has already been resolved to human
// intervention (or the run was interrupted by shutdown).
func (m *Manager) runStage(ctx context.Context, doc *registry.Document, kind stage.Kind) error {
	requestID := uuid.NewString()
	stageCtx := logging.WithRequest(ctx, requestID)
	stageCtx = logging.WithDocument(stageCtx, doc.ID)
	stageCtx = logging.WithStage(stageCtx, kind.String())
	logger := logging.WithContext(stageCtx, m.logger)

	capability := m.stages.forKind(kind)
	if capability == nil {
		err := services.Wrap(services.ErrStageFailure, kind.String(), "resolve capability",
			fmt.Sprintf("No capability registered for stage %s", kind), nil)
		m.handleStageFailure(stageCtx, doc, kind, err)
		return err
	}

	stageStart := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("name", doc.Name),
		logging.String(logging.FieldStatus, string(doc.Status)),
	)

	result, invokeErr := m.invokeWithTimeout(stageCtx, capability, stage.Input{
		ID:            doc.ID,
		Name:          doc.Name,
		Locator:       doc.Locator,
		ExtractedText: doc.ExtractedText,
		Entities:      doc.Entities,
		DocumentType:  doc.DocumentType,
	})
	if invokeErr != nil {
		if errors.Is(invokeErr, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return invokeErr
		}
		m.handleStageFailure(stageCtx, doc, kind, invokeErr)
		m.setLastError(invokeErr)
		return invokeErr
	}

	if err := validateResult(kind, result); err != nil {
		m.handleStageFailure(stageCtx, doc, kind, err)
		m.setLastError(err)
		return err
	}

	updated, err := m.store.Update(stageCtx, doc.ID, resultPatch(kind, result))
	if err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(updated.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)

	m.setLastDocument(updated)
	m.hub.Publish(notifier.NewEvent(notifier.EventStatusChanged, updated, kind.String(), result.Message))
	if updated.Status == registry.StatusRouted {
		m.hub.Publish(notifier.NewEvent(notifier.EventDocumentRouted, updated, kind.String(), updated.Destination))
		if err := m.push.NotifyDocumentRouted(stageCtx, updated.Name, updated.Destination); err != nil {
			logger.Warn("routed notification failed", logging.Error(err))
		}
	}
	return nil
}

// invokeWithTimeout enforces the configured stage deadline even when the
// capability ignores its context. The losing invocation keeps running until
// it notices the cancellation, but its result is discarded.
func (m *Manager) invokeWithTimeout(ctx context.Context, capability stage.Capability, input stage.Input) (stage.Result, error) {
	timeout := m.cfg.StageTimeout()
	invokeCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		invokeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		result stage.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := capability.Invoke(invokeCtx, input)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return stage.Result{}, m.timeoutError(capability, timeout)
		}
		return out.result, out.err
	case <-invokeCtx.Done():
		if ctx.Err() != nil {
			return stage.Result{}, context.Canceled
		}
		return stage.Result{}, m.timeoutError(capability, timeout)
	}
}

func (m *Manager) timeoutError(capability stage.Capability, timeout time.Duration) error {
	return services.Wrap(services.ErrTimeout, capability.Name(), "invoke capability",
		fmt.Sprintf("Stage exceeded its %s deadline", timeout), nil)
}

// validateResult rejects a success outcome that is missing the output the
// stage is required to produce. An empty required field parks the document
// the same way a capability error would.
func validateResult(kind stage.Kind, result stage.Result) error {
	switch kind {
	case stage.KindExtract:
		if strings.TrimSpace(result.ExtractedText) == "" {
			return services.Wrap(services.ErrValidation, kind.String(), "validate result", "extracted text is empty", nil)
		}
	case stage.KindClassify:
		if strings.TrimSpace(result.DocumentType) == "" {
			return services.Wrap(services.ErrValidation, kind.String(), "validate result", "document type is empty", nil)
		}
	case stage.KindRoute:
		if strings.TrimSpace(result.Destination) == "" {
			return services.Wrap(services.ErrValidation, kind.String(), "validate result", "destination is empty", nil)
		}
	}
	return nil
}

// resultPatch maps a capability result onto the fields its stage owns.
func resultPatch(kind stage.Kind, result stage.Result) registry.Patch {
	done := kind.DoneStatus()
	patch := registry.Patch{Status: &done}
	if result.Message != "" {
		patch.Messages = map[string]string{kind.String(): result.Message}
	}
	switch kind {
	case stage.KindExtract:
		text := result.ExtractedText
		patch.ExtractedText = &text
		patch.Entities = result.Entities
	case stage.KindClassify:
		docType := result.DocumentType
		confidence := result.Confidence
		patch.DocumentType = &docType
		patch.Confidence = &confidence
	case stage.KindRoute:
		destination := result.Destination
		patch.Destination = &destination
	}
	return patch
}
