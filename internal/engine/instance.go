package engine

import (
	"context"
	"fmt"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/search"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
	"github.com/rmachado/go-faceted-search/store"
)

// IndexInstance bundles the components of a single live index: its schema,
// its document store, and its searcher. It implements
// services.IndexAccessor.
type IndexInstance struct {
	settings      *config.IndexSettings
	DocumentStore *store.DocumentStore
	searcher      services.Searcher
}

// NewIndexInstance creates a ready-to-use index from validated settings.
func NewIndexInstance(settings config.IndexSettings, tracker services.HistoryTracker) (*IndexInstance, error) {
	docStore := store.NewDocumentStore()

	searchService, err := search.NewService(docStore, &settings, tracker)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service for index '%s': %w", settings.Name, err)
	}

	return &IndexInstance{
		settings:      &settings,
		DocumentStore: docStore,
		searcher:      searchService,
	}, nil
}

// Settings returns a copy of the index schema.
func (inst *IndexInstance) Settings() config.IndexSettings {
	return *inst.settings
}

// AddDocuments adds or replaces documents in the index.
func (inst *IndexInstance) AddDocuments(docs []model.Document) error {
	return inst.DocumentStore.AddDocuments(docs)
}

// DeleteDocument removes a single document by its external id.
func (inst *IndexInstance) DeleteDocument(docID string) error {
	return inst.DocumentStore.DeleteDocument(docID)
}

// DeleteAllDocuments clears the index's documents.
func (inst *IndexInstance) DeleteAllDocuments() error {
	return inst.DocumentStore.DeleteAllDocuments()
}

// Search executes a query against this index.
func (inst *IndexInstance) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	return inst.searcher.Search(ctx, query)
}
