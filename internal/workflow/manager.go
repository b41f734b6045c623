package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/notifier"
	"docflow/internal/registry"
	"docflow/internal/stage"
)

// StageSet holds the capability backing each pipeline stage.
type StageSet struct {
	Extract  stage.Capability
	Classify stage.Capability
	Route    stage.Capability
}

func (s StageSet) forKind(kind stage.Kind) stage.Capability {
	switch kind {
	case stage.KindExtract:
		return s.Extract
	case stage.KindClassify:
		return s.Classify
	case stage.KindRoute:
		return s.Route
	default:
		return nil
	}
}

func (s StageSet) complete() bool {
	return s.Extract != nil && s.Classify != nil && s.Route != nil
}

// Manager coordinates document processing using the registered capabilities.
type Manager struct {
	cfg    *config.Config
	store  *registry.Store
	logger *slog.Logger
	stages StageSet
	hub    *notifier.Hub
	push   notifier.Push

	pollInterval time.Duration
	locks        *docLocks
	kick         chan struct{}

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastDoc *registry.Document
	active  int
}

// NewManager constructs a workflow manager with push notifications resolved
// from configuration.
func NewManager(cfg *config.Config, store *registry.Store, logger *slog.Logger, stages StageSet) *Manager {
	return NewManagerWithPush(cfg, store, logger, stages, notifier.NewPush(cfg))
}

// NewManagerWithPush allows injecting the push service (used in tests).
func NewManagerWithPush(cfg *config.Config, store *registry.Store, logger *slog.Logger, stages StageSet, push notifier.Push) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow-manager"),
		stages:       stages,
		hub:          notifier.NewHub(),
		push:         push,
		pollInterval: cfg.PollDuration(),
		locks:        newDocLocks(),
		kick:         make(chan struct{}, 1),
	}
}

// Hub exposes the event hub so other components can subscribe to document
// transitions.
func (m *Manager) Hub() *notifier.Hub {
	return m.hub
}

// Ingest registers a new document and wakes the dispatcher.
func (m *Manager) Ingest(ctx context.Context, name, locator string) (*registry.Document, error) {
	doc, err := m.store.Create(ctx, registry.NewDocument{Name: name, Locator: locator})
	if err != nil {
		return nil, err
	}
	m.logger.Info("document ingested",
		logging.String(logging.FieldDocumentID, doc.ID),
		logging.String("name", doc.Name),
		logging.String("locator", doc.Locator),
	)
	m.hub.Publish(notifier.NewEvent(notifier.EventDocumentCreated, doc, "", ""))
	m.Kick()
	return doc, nil
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastDocument(doc *registry.Document) {
	m.mu.Lock()
	if doc != nil {
		snapshot := doc.Clone()
		m.lastDoc = &snapshot
	} else {
		m.lastDoc = nil
	}
	m.mu.Unlock()
}
