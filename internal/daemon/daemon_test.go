package daemon_test

import (
	"context"
	"testing"
	"time"

	"docflow/internal/config"
	"docflow/internal/daemon"
	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/stage"
	"docflow/internal/workflow"
)

type noopStage struct{ name string }

func (s noopStage) Name() string { return s.name }

func (s noopStage) Invoke(context.Context, stage.Input) (stage.Result, error) {
	switch s.name {
	case "extract":
		return stage.Result{ExtractedText: "text"}, nil
	case "classify":
		return stage.Result{DocumentType: "report", Confidence: 0.5}, nil
	default:
		return stage.Result{Destination: "archive"}, nil
	}
}

func (s noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(s.name)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Workflow.StageDelayMillis = 0
	return &cfg
}

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store, err := registry.Open()
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger, workflow.StageSet{
		Extract:  noopStage{name: "extract"},
		Classify: noopStage{name: "classify"},
		Route:    noopStage{name: "route"},
	})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running || !status.Workflow.Running {
		t.Fatalf("status = %+v", status)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	cfg := testConfig(t)
	first := newDaemon(t, cfg)
	second := newDaemon(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected lock conflict for second instance")
	}
	first.Stop()
}

func TestDaemonIngestDrivesPipeline(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	doc, err := d.Ingest(ctx, "invoice.txt", "/inbox/invoice.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		current, err := d.DescribeDocument(ctx, doc.ID)
		if err != nil {
			t.Fatalf("DescribeDocument: %v", err)
		}
		if current.Status == registry.StatusRouted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("document stuck at %s", current.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	health, err := d.RegistryHealth(ctx)
	if err != nil {
		t.Fatalf("RegistryHealth: %v", err)
	}
	if health.Total != 1 || health.Routed != 1 {
		t.Fatalf("health = %+v", health)
	}

	cleared, err := d.ClearRouted(ctx)
	if err != nil || cleared != 1 {
		t.Fatalf("ClearRouted = %d, %v", cleared, err)
	}
}

func TestDaemonTestNotificationWithoutTopic(t *testing.T) {
	cfg := testConfig(t)
	d := newDaemon(t, cfg)

	sent, detail, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if sent || detail == "" {
		t.Fatalf("sent = %v detail = %q", sent, detail)
	}
}
