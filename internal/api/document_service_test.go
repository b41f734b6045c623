package api_test

import (
	"context"
	"testing"

	"docflow/internal/api"
	"docflow/internal/registry"
	"docflow/internal/services"
)

type stubReader struct {
	docs []*registry.Document
}

func (s *stubReader) List(_ context.Context, statuses ...registry.Status) ([]*registry.Document, error) {
	if len(statuses) == 0 {
		return s.docs, nil
	}
	keep := make(map[registry.Status]struct{}, len(statuses))
	for _, status := range statuses {
		keep[status] = struct{}{}
	}
	var out []*registry.Document
	for _, doc := range s.docs {
		if _, ok := keep[doc.Status]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *stubReader) Stats(context.Context) (map[registry.Status]int, error) {
	stats := make(map[registry.Status]int)
	for _, doc := range s.docs {
		stats[doc.Status]++
	}
	return stats, nil
}

func (s *stubReader) GetByID(_ context.Context, id string) (*registry.Document, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "", "get document", "no document with id "+id, nil)
}

func TestDocumentServiceList(t *testing.T) {
	svc := api.NewDocumentService(&stubReader{docs: []*registry.Document{
		{ID: "a", Name: "a.txt", Status: registry.StatusIngested},
		{ID: "b", Name: "b.txt", Status: registry.StatusRouted},
	}})

	all, err := svc.List(context.Background())
	if err != nil || len(all) != 2 {
		t.Fatalf("List = %v, %v", all, err)
	}

	routed, err := svc.List(context.Background(), registry.StatusRouted)
	if err != nil || len(routed) != 1 || routed[0].ID != "b" {
		t.Fatalf("filtered list = %v, %v", routed, err)
	}
}

func TestDocumentServiceStats(t *testing.T) {
	svc := api.NewDocumentService(&stubReader{docs: []*registry.Document{
		{ID: "a", Status: registry.StatusIngested},
		{ID: "b", Status: registry.StatusIngested},
	}})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["ingested"] != 2 || stats["routed"] != 0 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestDocumentServiceDescribe(t *testing.T) {
	svc := api.NewDocumentService(&stubReader{docs: []*registry.Document{
		{ID: "a", Name: "a.txt", Status: registry.StatusIngested},
	}})

	dto, err := svc.Describe(context.Background(), "a")
	if err != nil || dto == nil || dto.Name != "a.txt" {
		t.Fatalf("Describe = %+v, %v", dto, err)
	}

	if _, err := svc.Describe(context.Background(), "zzz"); !services.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestNilDocumentService(t *testing.T) {
	var svc *api.DocumentService
	if docs, err := svc.List(context.Background()); err != nil || docs != nil {
		t.Fatalf("nil service List = %v, %v", docs, err)
	}
}
