package services

import (
	"context"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/model"
)

// Predicate is a compiled, executable filter condition. A document store
// only needs to be able to evaluate it against each candidate document.
type Predicate func(doc model.Document) bool

// DocumentSource is the consumed storage boundary. The engine is agnostic
// to whether this is an in-memory store, a SQL store, or a remote search
// service; it only requires that the source can evaluate the compiled
// predicate and return matching documents. Execute must respect the
// context deadline and return ctx.Err() rather than hang.
type DocumentSource interface {
	Execute(ctx context.Context, predicate Predicate) ([]model.Document, error)
}

// Indexer defines operations for adding data to an index.
type Indexer interface {
	AddDocuments(docs []model.Document) error
	DeleteDocument(docID string) error
	DeleteAllDocuments() error
}

// Searcher defines operations for querying a single index.
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// IndexManager manages the lifecycle of index definitions. CreateIndex is
// idempotent per name: re-registering an existing name replaces the prior
// definition, and the replacement is eventually visible to new searches.
type IndexManager interface {
	CreateIndex(settings config.IndexSettings) error
	GetIndex(name string) (IndexAccessor, error)
	GetIndexSettings(name string) (config.IndexSettings, error)
	DeleteIndex(name string) error
	ListIndexes() []string
	PersistIndexData(indexName string) error
}

// HistoryTracker records executed searches and serves popularity queries.
// Implementations must never fail the caller's search: malformed or empty
// queries degrade to recording nothing.
type HistoryTracker interface {
	Record(record model.SearchRecord)
	History() []model.SearchRecord
	Stats() model.SearchStats
	PopularSearches(limit int) []model.PopularSearch
}

// IndexAccessor combines the per-index capabilities exposed by the registry.
type IndexAccessor interface {
	Indexer
	Searcher
	Settings() config.IndexSettings
}
