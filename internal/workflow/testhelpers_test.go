package workflow_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/stage"
	"docflow/internal/workflow"
)

type stubCapability struct {
	name   string
	invoke func(context.Context, stage.Input) (stage.Result, error)
	health stage.Health

	mu    sync.Mutex
	calls int
}

func (s *stubCapability) Name() string { return s.name }

func (s *stubCapability) Invoke(ctx context.Context, in stage.Input) (stage.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.invoke != nil {
		return s.invoke(ctx, in)
	}
	switch s.name {
	case "extract":
		return stage.Result{
			ExtractedText: "stub text for " + in.Name,
			Entities:      map[string]any{"keywords": []any{"stub"}},
			Message:       "extracted",
		}, nil
	case "classify":
		return stage.Result{DocumentType: "invoice", Confidence: 0.8, Message: "classified"}, nil
	case "route":
		return stage.Result{Destination: "accounting", Message: "routed"}, nil
	default:
		return stage.Result{}, fmt.Errorf("unknown stub %s", s.name)
	}
}

func (s *stubCapability) HealthCheck(context.Context) stage.Health {
	if s.health.Name == "" {
		return stage.Healthy(s.name)
	}
	return s.health
}

func (s *stubCapability) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newStubStages() (workflow.StageSet, *stubCapability, *stubCapability, *stubCapability) {
	extract := &stubCapability{name: "extract"}
	classify := &stubCapability{name: "classify"}
	route := &stubCapability{name: "route"}
	return workflow.StageSet{Extract: extract, Classify: classify, Route: route}, extract, classify, route
}

type stubPush struct {
	mu            sync.Mutex
	routed        []string
	interventions []string
	errs          int
}

func (s *stubPush) NotifyDocumentRouted(_ context.Context, name, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routed = append(s.routed, name+"->"+destination)
	return nil
}

func (s *stubPush) NotifyIntervention(_ context.Context, name, stageName, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interventions = append(s.interventions, name+":"+stageName)
	return nil
}

func (s *stubPush) NotifyError(context.Context, error, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs++
	return nil
}

func (s *stubPush) TestNotification(context.Context) error { return nil }

func (s *stubPush) routedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.routed)
}

func (s *stubPush) interventionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.interventions)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Workflow.PollInterval = 1
	cfg.Workflow.StageDelayMillis = 0
	cfg.Workflow.StageTimeoutSecs = 5
	cfg.Workflow.MaxActiveDocuments = 4
	return &cfg
}

func openTestStore(t *testing.T) *registry.Store {
	t.Helper()
	store, err := registry.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func startManager(t *testing.T, cfg *config.Config, store *registry.Store, stages workflow.StageSet, push *stubPush) *workflow.Manager {
	t.Helper()
	mgr := workflow.NewManagerWithPush(cfg, store, logging.NewNop(), stages, push)
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)
	return mgr
}

func waitForStatus(t *testing.T, store *registry.Store, id string, want registry.Status) *registry.Document {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if doc.Status == want {
			return doc
		}
		time.Sleep(10 * time.Millisecond)
	}
	doc, _ := store.GetByID(context.Background(), id)
	t.Fatalf("document %s never reached %s (now %s)", id, want, doc.Status)
	return nil
}
