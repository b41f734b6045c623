package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"docflow/internal/logging"
	"docflow/internal/notifier"
	"docflow/internal/registry"
	"docflow/internal/services"
	"docflow/internal/stage"
	"docflow/internal/workflow"
)

func TestManagerRunsPipelineToRouted(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, extract, classify, route := newStubStages()
	push := &stubPush{}
	mgr := startManager(t, cfg, store, stages, push)

	doc, err := mgr.Ingest(context.Background(), "invoice.txt", "/inbox/invoice.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	final := waitForStatus(t, store, doc.ID, registry.StatusRouted)

	if extract.callCount() != 1 || classify.callCount() != 1 || route.callCount() != 1 {
		t.Fatalf("stage calls = %d/%d/%d, want 1/1/1",
			extract.callCount(), classify.callCount(), route.callCount())
	}
	if final.ExtractedText == "" || final.DocumentType != "invoice" || final.Destination != "accounting" {
		t.Fatalf("final document incomplete: %+v", final)
	}
	for _, key := range []string{"ingested", "extracted", "classified", "routed"} {
		if _, ok := final.Timestamps[key]; !ok {
			t.Fatalf("missing %s timestamp: %v", key, final.Timestamps)
		}
	}
	for _, key := range []string{"extract", "classify", "route"} {
		if final.Messages[key] == "" {
			t.Fatalf("missing %s message: %v", key, final.Messages)
		}
	}
	if push.routedCount() != 1 {
		t.Fatalf("routed notifications = %d", push.routedCount())
	}
}

func TestStageFailureParksDocumentAndIsolatesOthers(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, _, classify, _ := newStubStages()
	classify.invoke = func(_ context.Context, in stage.Input) (stage.Result, error) {
		if in.Name == "poison.txt" {
			return stage.Result{}, services.Wrap(
				services.ErrStageFailure, "classify", "match rules", "no rule matched", nil)
		}
		return stage.Result{DocumentType: "report", Confidence: 0.7, Message: "classified"}, nil
	}
	push := &stubPush{}
	mgr := startManager(t, cfg, store, stages, push)

	bad, err := mgr.Ingest(context.Background(), "poison.txt", "/inbox/poison.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	good, err := mgr.Ingest(context.Background(), "fine.txt", "/inbox/fine.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	parked := waitForStatus(t, store, bad.ID, registry.StatusHumanIntervention)
	waitForStatus(t, store, good.ID, registry.StatusRouted)

	if parked.Messages["classify"] != "no rule matched" {
		t.Fatalf("failure message = %q", parked.Messages["classify"])
	}
	if parked.ExtractedText == "" {
		t.Fatal("failure must not discard earlier stage output")
	}
	if push.interventionCount() != 1 {
		t.Fatalf("intervention notifications = %d", push.interventionCount())
	}
}

func TestValidationErrorIsStageFailure(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, extract, _, _ := newStubStages()
	extract.invoke = func(context.Context, stage.Input) (stage.Result, error) {
		return stage.Result{}, services.Wrap(
			services.ErrValidation, "extract", "validate inputs", "locator missing", nil)
	}
	mgr := startManager(t, cfg, store, stages, &stubPush{})

	doc, err := mgr.Ingest(context.Background(), "broken.txt", "")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	parked := waitForStatus(t, store, doc.ID, registry.StatusHumanIntervention)
	if parked.Messages["extract"] != "locator missing" {
		t.Fatalf("failure message = %q", parked.Messages["extract"])
	}
}

func TestEmptyStageResultParksDocument(t *testing.T) {
	cases := []struct {
		kind    string
		message string
		mutate  func(extract, classify, route *stubCapability)
	}{
		{
			kind:    "extract",
			message: "extracted text is empty",
			mutate: func(extract, _, _ *stubCapability) {
				extract.invoke = func(context.Context, stage.Input) (stage.Result, error) {
					return stage.Result{}, nil
				}
			},
		},
		{
			kind:    "classify",
			message: "document type is empty",
			mutate: func(_, classify, _ *stubCapability) {
				classify.invoke = func(context.Context, stage.Input) (stage.Result, error) {
					return stage.Result{Confidence: 0.5}, nil
				}
			},
		},
		{
			kind:    "route",
			message: "destination is empty",
			mutate: func(_, _, route *stubCapability) {
				route.invoke = func(context.Context, stage.Input) (stage.Result, error) {
					return stage.Result{Message: "routed nowhere"}, nil
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			cfg := testConfig(t)
			store := openTestStore(t)
			stages, extract, classify, route := newStubStages()
			tc.mutate(extract, classify, route)
			push := &stubPush{}
			mgr := startManager(t, cfg, store, stages, push)

			doc, err := mgr.Ingest(context.Background(), "hollow.txt", "/inbox/hollow.txt")
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}

			parked := waitForStatus(t, store, doc.ID, registry.StatusHumanIntervention)
			if parked.Messages[tc.kind] != tc.message {
				t.Fatalf("failure message = %q, want %q", parked.Messages[tc.kind], tc.message)
			}
			if push.interventionCount() != 1 {
				t.Fatalf("intervention notifications = %d", push.interventionCount())
			}
		})
	}
}

func TestStageTimeoutResolvesToIntervention(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workflow.StageTimeoutSecs = 1
	store := openTestStore(t)
	stages, extract, _, _ := newStubStages()
	extract.invoke = func(ctx context.Context, _ stage.Input) (stage.Result, error) {
		select {
		case <-ctx.Done():
			return stage.Result{}, ctx.Err()
		case <-time.After(10 * time.Second):
			return stage.Result{ExtractedText: "too late"}, nil
		}
	}
	mgr := startManager(t, cfg, store, stages, &stubPush{})

	doc, err := mgr.Ingest(context.Background(), "slow.txt", "/inbox/slow.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	parked := waitForStatus(t, store, doc.ID, registry.StatusHumanIntervention)
	if parked.Messages["extract"] == "" {
		t.Fatalf("missing timeout message: %v", parked.Messages)
	}
}

func TestAtMostOneStageInFlightPerDocument(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, extract, _, _ := newStubStages()

	var mu sync.Mutex
	inFlight := make(map[string]int)
	maxSeen := 0
	track := func(id string) func() {
		mu.Lock()
		inFlight[id]++
		if inFlight[id] > maxSeen {
			maxSeen = inFlight[id]
		}
		mu.Unlock()
		return func() {
			mu.Lock()
			inFlight[id]--
			mu.Unlock()
		}
	}
	extract.invoke = func(_ context.Context, in stage.Input) (stage.Result, error) {
		done := track(in.ID)
		defer done()
		time.Sleep(30 * time.Millisecond)
		return stage.Result{ExtractedText: "text", Message: "extracted"}, nil
	}
	mgr := startManager(t, cfg, store, stages, &stubPush{})

	doc, err := mgr.Ingest(context.Background(), "busy.txt", "/inbox/busy.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Hammer the same document with manual triggers while the automatic
	// chain runs.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mgr.Trigger(context.Background(), doc.ID, stage.KindExtract)
		}()
	}
	wg.Wait()
	waitForStatus(t, store, doc.ID, registry.StatusRouted)

	mu.Lock()
	defer mu.Unlock()
	if maxSeen > 1 {
		t.Fatalf("observed %d concurrent stage runs for one document", maxSeen)
	}
}

func TestManagerPublishesLifecycleEvents(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, _, _, _ := newStubStages()
	mgr := workflow.NewManagerWithPush(cfg, store, logging.NewNop(), stages, &stubPush{})
	sub := mgr.Hub().Subscribe()
	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	doc, err := mgr.Ingest(context.Background(), "invoice.txt", "/inbox/invoice.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	waitForStatus(t, store, doc.ID, registry.StatusRouted)

	var types []notifier.EventType
	timeout := time.After(5 * time.Second)
	// created + three status changes + routed
	for len(types) < 5 {
		select {
		case event := <-sub.Events():
			types = append(types, event.Type)
		case <-timeout:
			t.Fatalf("timed out with events %v", types)
		}
	}
	want := []notifier.EventType{
		notifier.EventDocumentCreated,
		notifier.EventStatusChanged,
		notifier.EventStatusChanged,
		notifier.EventStatusChanged,
		notifier.EventDocumentRouted,
	}
	for i, eventType := range want {
		if types[i] != eventType {
			t.Fatalf("types[%d] = %s, want %s (all: %v)", i, types[i], eventType, types)
		}
	}
}

func TestStartRequiresCompleteStageSet(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, _, _, _ := newStubStages()
	stages.Route = nil
	mgr := workflow.NewManagerWithPush(cfg, store, logging.NewNop(), stages, &stubPush{})
	if err := mgr.Start(context.Background()); err == nil {
		mgr.Stop()
		t.Fatal("expected error for incomplete stage set")
	}
}

func TestStatusSummary(t *testing.T) {
	cfg := testConfig(t)
	store := openTestStore(t)
	stages, _, _, _ := newStubStages()
	mgr := startManager(t, cfg, store, stages, &stubPush{})

	doc, err := mgr.Ingest(context.Background(), "invoice.txt", "/inbox/invoice.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	waitForStatus(t, store, doc.ID, registry.StatusRouted)

	summary := mgr.Status(context.Background())
	if !summary.Running {
		t.Fatal("expected running summary")
	}
	if summary.DocumentStats[registry.StatusRouted] != 1 {
		t.Fatalf("stats = %v", summary.DocumentStats)
	}
	if len(summary.StageHealth) != 3 {
		t.Fatalf("stage health = %v", summary.StageHealth)
	}
	for name, health := range summary.StageHealth {
		if !health.Ready {
			t.Fatalf("stage %s unhealthy: %+v", name, health)
		}
	}
	if summary.LastDocument == nil || summary.LastDocument.ID != doc.ID {
		t.Fatalf("last document = %+v", summary.LastDocument)
	}
}
