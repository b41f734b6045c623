package classify_test

import (
	"context"
	"testing"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/stage"
	"docflow/internal/stages/classify"
)

func newCapability(t *testing.T, mutate func(*config.Config)) *classify.Capability {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return classify.NewCapability(&cfg, logging.NewNop())
}

func TestInvokeMatchesKeywordRules(t *testing.T) {
	cap := newCapability(t, nil)

	result, err := cap.Invoke(context.Background(), stage.Input{
		ID:            "doc-1",
		ExtractedText: "INVOICE #42\nAmount due upon receipt. Total: $99.00",
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.DocumentType != "invoice" {
		t.Fatalf("type = %q, want invoice", result.DocumentType)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Fatalf("confidence = %v", result.Confidence)
	}
}

func TestInvokeFallsBackToDefaultType(t *testing.T) {
	cap := newCapability(t, nil)

	result, err := cap.Invoke(context.Background(), stage.Input{
		ID:            "doc-1",
		ExtractedText: "Dear colleague, thanks for the lovely postcard.",
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.DocumentType != "correspondence" {
		t.Fatalf("type = %q, want default", result.DocumentType)
	}
	if result.Confidence != 0.35 {
		t.Fatalf("confidence = %v, want default", result.Confidence)
	}
}

func TestInvokeIsDeterministicOnTies(t *testing.T) {
	cap := newCapability(t, func(cfg *config.Config) {
		cfg.Classifier.Rules = map[string][]string{
			"alpha": {"shared"},
			"beta":  {"shared"},
		}
	})

	for i := 0; i < 5; i++ {
		result, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", ExtractedText: "shared term"})
		if err != nil {
			t.Fatalf("Invoke: %v", err)
		}
		if result.DocumentType != "alpha" {
			t.Fatalf("tie resolved to %q, want alpha", result.DocumentType)
		}
	}
}

func TestInvokeRejectsMissingText(t *testing.T) {
	cap := newCapability(t, nil)
	if _, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1"}); err == nil {
		t.Fatal("expected error for missing extracted text")
	}
}

func TestInvokeFailsWithoutRulesOrDefault(t *testing.T) {
	cap := newCapability(t, func(cfg *config.Config) {
		cfg.Classifier.Rules = nil
		cfg.Classifier.DefaultType = ""
	})
	if _, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", ExtractedText: "anything"}); err == nil {
		t.Fatal("expected error with no rules and no default")
	}
}

func TestHealthCheckReportsMissingRules(t *testing.T) {
	cap := newCapability(t, func(cfg *config.Config) {
		cfg.Classifier.Rules = nil
		cfg.Classifier.DefaultType = ""
	})
	if health := cap.HealthCheck(context.Background()); health.Ready {
		t.Fatalf("expected unhealthy, got %+v", health)
	}

	cap = newCapability(t, nil)
	if health := cap.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy, got %+v", health)
	}
}
