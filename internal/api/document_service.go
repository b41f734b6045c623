package api

import (
	"context"

	"docflow/internal/registry"
)

// RegistryReader abstracts the registry interactions needed for API queries.
type RegistryReader interface {
	List(ctx context.Context, statuses ...registry.Status) ([]*registry.Document, error)
	Stats(ctx context.Context) (map[registry.Status]int, error)
	GetByID(ctx context.Context, id string) (*registry.Document, error)
}

// DocumentService exposes read-only registry operations returning API DTOs.
type DocumentService struct {
	store RegistryReader
}

// NewDocumentService constructs a DocumentService around the provided reader.
func NewDocumentService(store RegistryReader) *DocumentService {
	if store == nil {
		return nil
	}
	return &DocumentService{store: store}
}

// List returns documents filtered by status.
func (s *DocumentService) List(ctx context.Context, statuses ...registry.Status) ([]Document, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	docs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromDocuments(docs), nil
}

// Stats returns document summary counts keyed by status string.
func (s *DocumentService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeDocumentStats(stats), nil
}

// Describe fetches a single document.
func (s *DocumentService) Describe(ctx context.Context, id string) (*Document, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromDocument(doc)
	return &dto, nil
}
