package route_test

import (
	"context"
	"testing"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/stage"
	"docflow/internal/stages/route"
)

func newCapability(t *testing.T, mutate func(*config.Config)) *route.Capability {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return route.NewCapability(&cfg, logging.NewNop())
}

func TestInvokeResolvesDestination(t *testing.T) {
	cap := newCapability(t, nil)

	result, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", DocumentType: "invoice"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Destination != "accounting" {
		t.Fatalf("destination = %q, want accounting", result.Destination)
	}
}

func TestInvokeNormalizesDocumentType(t *testing.T) {
	cap := newCapability(t, nil)

	result, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", DocumentType: " Contract "})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Destination != "legal" {
		t.Fatalf("destination = %q, want legal", result.Destination)
	}
}

func TestInvokeFallsBackToDefaultDestination(t *testing.T) {
	cap := newCapability(t, nil)

	result, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", DocumentType: "memo"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.Destination != "archive" {
		t.Fatalf("destination = %q, want archive", result.Destination)
	}
}

func TestInvokeRejectsMissingType(t *testing.T) {
	cap := newCapability(t, nil)
	if _, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1"}); err == nil {
		t.Fatal("expected error for missing document type")
	}
}

func TestInvokeFailsWithoutRulesOrDefault(t *testing.T) {
	cap := newCapability(t, func(cfg *config.Config) {
		cfg.Routing.Rules = nil
		cfg.Routing.DefaultDestination = ""
	})
	if _, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", DocumentType: "invoice"}); err == nil {
		t.Fatal("expected error with no rules and no default")
	}
}

func TestHealthCheck(t *testing.T) {
	cap := newCapability(t, nil)
	if health := cap.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy, got %+v", health)
	}

	cap = newCapability(t, func(cfg *config.Config) {
		cfg.Routing.Rules = nil
		cfg.Routing.DefaultDestination = ""
	})
	if health := cap.HealthCheck(context.Background()); health.Ready {
		t.Fatalf("expected unhealthy, got %+v", health)
	}
}
