package workflow

import (
	"context"
	"errors"
	"time"

	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/stage"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if !m.stages.complete() {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.dispatch(runCtx)
	return nil
}

// Stop terminates background processing and waits for in-flight stages to
// finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.hub.Close()
}

// Kick wakes the dispatcher without waiting for the next poll tick.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Manager) dispatch(ctx context.Context) {
	defer m.wg.Done()
	workers := make(chan struct{}, m.cfg.Workflow.MaxActiveDocuments)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		docs, err := m.store.List(ctx, registry.StatusIngested, registry.StatusExtracted, registry.StatusClassified)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to list pending documents",
				logging.Error(err),
				logging.String(logging.FieldEventType, "registry_list_failed"),
				logging.String(logging.FieldErrorHint, "check registry database access"),
			)
			m.sleep(ctx, m.cfg.ErrorRetryDuration())
			continue
		}

		for _, doc := range docs {
			if ctx.Err() != nil {
				return
			}
			if !m.locks.TryAcquire(doc.ID) {
				continue
			}
			select {
			case workers <- struct{}{}:
			case <-ctx.Done():
				m.locks.Release(doc.ID)
				return
			}
			m.mu.Lock()
			m.active++
			m.mu.Unlock()
			m.wg.Add(1)
			go func(id string) {
				defer func() {
					m.locks.Release(id)
					<-workers
					m.mu.Lock()
					m.active--
					m.mu.Unlock()
					m.wg.Done()
				}()
				m.runChain(ctx, id)
			}(doc.ID)
		}

		m.waitForWorkOrShutdown(ctx)
	}
}

// runChain advances one document stage by stage until it leaves the forward
// path. The caller holds the document lock for the whole chain.
func (m *Manager) runChain(ctx context.Context, id string) {
	for {
		doc, err := m.store.GetByID(ctx, id)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to load document for processing",
				logging.Error(err),
				logging.String(logging.FieldDocumentID, id),
			)
			return
		}
		kind, ok := stage.ForStatus(doc.Status)
		if !ok {
			return
		}
		if err := m.runStage(ctx, doc, kind); err != nil {
			return
		}
		if delay := m.cfg.StageDelay(); delay > 0 {
			if !m.sleep(ctx, delay) {
				return
			}
		}
	}
}

func (m *Manager) waitForWorkOrShutdown(ctx context.Context) {
	timer := time.NewTimer(m.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-m.kick:
	case <-timer.C:
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
