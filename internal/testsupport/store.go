package testsupport

import (
	"context"
	"testing"

	"docflow/internal/registry"
)

// MustOpenStore opens a registry.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB) *registry.Store {
	t.Helper()

	store, err := registry.Open()
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewDocument creates a document for tests using the provided store.
func NewDocument(t testing.TB, store *registry.Store, name, locator string) *registry.Document {
	t.Helper()

	doc, err := store.Create(context.Background(), registry.NewDocument{Name: name, Locator: locator})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return doc
}
