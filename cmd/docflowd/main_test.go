package main

import (
	"path/filepath"
	"testing"

	"docflow/internal/config"
	"docflow/internal/logging"
)

func TestBuildStages(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	stages := buildStages(&cfg, logging.NewNop())

	if stages.Extract == nil || stages.Classify == nil || stages.Route == nil {
		t.Fatalf("expected all stages populated, got %+v", stages)
	}
	if got := stages.Extract.Name(); got != "extract" {
		t.Errorf("extract stage name: %q", got)
	}
	if got := stages.Classify.Name(); got != "classify" {
		t.Errorf("classify stage name: %q", got)
	}
	if got := stages.Route.Name(); got != "route" {
		t.Errorf("route stage name: %q", got)
	}
}

func TestSocketPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Paths.SocketPath = ""

	expected := filepath.Join(cfg.Paths.LogDir, "docflow.sock")
	if got := socketPath(&cfg); got != expected {
		t.Fatalf("expected socket path %q, got %q", expected, got)
	}

	cfg.Paths.SocketPath = "/tmp/custom.sock"
	if got := socketPath(&cfg); got != "/tmp/custom.sock" {
		t.Fatalf("expected configured socket path, got %q", got)
	}

	if got := socketPath(nil); got != filepath.Join("", "docflow.sock") {
		t.Fatalf("unexpected nil-config socket path %q", got)
	}
}
