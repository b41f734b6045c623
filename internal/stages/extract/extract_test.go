package extract_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/stage"
	"docflow/internal/stages/extract"
)

func newCapability(t *testing.T) *extract.Capability {
	t.Helper()
	cfg := config.Default()
	return extract.NewCapability(&cfg, logging.NewNop())
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestInvokeExtractsTextAndEntities(t *testing.T) {
	cap := newCapability(t)
	path := writeDoc(t, "Invoice issued 2026-01-15.\nAmount due: $1,250.00\nContact billing@example.com")

	result, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", Locator: path})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.ExtractedText == "" {
		t.Fatal("expected extracted text")
	}
	if result.Message == "" {
		t.Fatal("expected a summary message")
	}

	dates, ok := result.Entities["dates"].([]any)
	if !ok || len(dates) != 1 || dates[0] != "2026-01-15" {
		t.Fatalf("dates = %v", result.Entities["dates"])
	}
	amounts, ok := result.Entities["amounts"].([]any)
	if !ok || len(amounts) != 1 || amounts[0] != "$1,250.00" {
		t.Fatalf("amounts = %v", result.Entities["amounts"])
	}
	emails, ok := result.Entities["emails"].([]any)
	if !ok || len(emails) != 1 || emails[0] != "billing@example.com" {
		t.Fatalf("emails = %v", result.Entities["emails"])
	}
}

func TestInvokeIsIdempotent(t *testing.T) {
	cap := newCapability(t)
	path := writeDoc(t, "Quarterly report summary with findings and analysis. Dated 2026-03-31.")
	input := stage.Input{ID: "doc-1", Locator: path}

	first, err := cap.Invoke(context.Background(), input)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	second, err := cap.Invoke(context.Background(), input)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if first.ExtractedText != second.ExtractedText {
		t.Fatal("extracted text differs between invocations")
	}
	if !reflect.DeepEqual(first.Entities, second.Entities) {
		t.Fatalf("entities differ: %v vs %v", first.Entities, second.Entities)
	}
}

func TestInvokeRejectsMissingLocator(t *testing.T) {
	cap := newCapability(t)
	if _, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1"}); err == nil {
		t.Fatal("expected error for empty locator")
	}
}

func TestInvokeFailsOnUnreadableSource(t *testing.T) {
	cap := newCapability(t)
	input := stage.Input{ID: "doc-1", Locator: filepath.Join(t.TempDir(), "absent.txt")}
	if _, err := cap.Invoke(context.Background(), input); err == nil {
		t.Fatal("expected error for unreadable source")
	}
}

func TestInvokeRejectsEmptyDocument(t *testing.T) {
	cap := newCapability(t)
	path := writeDoc(t, "   \n\t  ")
	if _, err := cap.Invoke(context.Background(), stage.Input{ID: "doc-1", Locator: path}); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestHealthCheck(t *testing.T) {
	cap := newCapability(t)
	health := cap.HealthCheck(context.Background())
	if !health.Ready || health.Name != "extract" {
		t.Fatalf("health = %+v", health)
	}
}
