// Package engine hosts the index registry: the set of named, live search
// indexes and the shared history tracker. The registry is read-mostly;
// index creation is a rare, serialized administrative action applied with a
// copy-on-write map swap so concurrent searches never observe a partially
// updated schema.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/internal/history"
	"github.com/rmachado/go-faceted-search/internal/persistence"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

const (
	dataDirPerm       = 0750
	settingsFile      = "settings.gob"
	documentStoreFile = "document_store.gob"
)

// Engine manages named search indexes and implements services.IndexManager.
type Engine struct {
	mu      sync.RWMutex              // Serializes writers
	indexes map[string]*IndexInstance // Replaced wholesale on mutation, never edited in place
	dataDir string
	tracker *history.Tracker
}

// NewEngine creates the engine, loading previously persisted indexes and
// search history from dataDir. An empty dataDir disables persistence.
func NewEngine(dataDir string, historySize int) *Engine {
	eng := &Engine{
		indexes: make(map[string]*IndexInstance),
		dataDir: dataDir,
		tracker: history.NewTracker(dataDir, historySize),
	}
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
			log.Printf("Warning: Could not create data directory %s: %v. Proceeding without persistence.", dataDir, err)
		}
		eng.loadIndexesFromDisk()
	}
	return eng
}

func (e *Engine) loadIndexesFromDisk() {
	items, err := os.ReadDir(e.dataDir)
	if err != nil {
		log.Printf("Warning: Failed to read data directory %s: %v. No indexes loaded.", e.dataDir, err)
		return
	}

	loaded := make(map[string]*IndexInstance)
	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		indexName := item.Name()
		indexPath := filepath.Join(e.dataDir, indexName)

		var settings config.IndexSettings
		if err := persistence.LoadGob(filepath.Join(indexPath, settingsFile), &settings); err != nil {
			log.Printf("Warning: Failed to load settings for index %s: %v. Skipping this index.", indexName, err)
			continue
		}
		if settings.Name != indexName {
			log.Printf("Warning: Index name in settings ('%s') does not match directory name ('%s'). Skipping this index.", settings.Name, indexName)
			continue
		}

		instance, err := NewIndexInstance(settings, e.tracker)
		if err != nil {
			log.Printf("Warning: Failed to initialize loaded index %s: %v. Skipping.", indexName, err)
			continue
		}

		dsPath := filepath.Join(indexPath, documentStoreFile)
		if err := persistence.LoadGob(dsPath, instance.DocumentStore); err != nil && err != os.ErrNotExist {
			log.Printf("Warning: Failed to load document store for index %s: %v. Proceeding with empty store.", indexName, err)
			instance.DocumentStore.Docs = make(map[uint32]model.Document)
			instance.DocumentStore.ExternalIDtoInternalID = make(map[string]uint32)
		}

		loaded[indexName] = instance
		log.Printf("Loaded index: %s", indexName)
	}

	e.mu.Lock()
	e.indexes = loaded
	e.mu.Unlock()
}

// CreateIndex registers an index definition. It is idempotent per name:
// re-registering replaces the prior definition (and its documents), and the
// replacement becomes visible to new searches on the next registry read.
func (e *Engine) CreateIndex(settings config.IndexSettings) error {
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return errors.NewConfigError("", fmt.Sprintf("invalid index settings: %v", problems))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	instance, err := NewIndexInstance(settings, e.tracker)
	if err != nil {
		return fmt.Errorf("failed to create index instance for '%s': %w", settings.Name, err)
	}

	if e.dataDir != "" {
		indexPath := filepath.Join(e.dataDir, settings.Name)
		if err := persistence.SaveGob(filepath.Join(indexPath, settingsFile), settings); err != nil {
			return fmt.Errorf("failed to save settings for index %s: %w", settings.Name, err)
		}
		if err := persistence.SaveGob(filepath.Join(indexPath, documentStoreFile), instance.DocumentStore); err != nil {
			return fmt.Errorf("failed to save initial document store for %s: %w", settings.Name, err)
		}
	}

	// Copy-on-write swap: readers holding the old map keep a consistent view.
	next := make(map[string]*IndexInstance, len(e.indexes)+1)
	for name, inst := range e.indexes {
		next[name] = inst
	}
	next[settings.Name] = instance
	e.indexes = next

	log.Printf("Index '%s' registered.", settings.Name)
	return nil
}

// GetIndex retrieves a live index by name.
func (e *Engine) GetIndex(name string) (services.IndexAccessor, error) {
	e.mu.RLock()
	instance, exists := e.indexes[name]
	e.mu.RUnlock()

	if !exists {
		return nil, errors.NewIndexNotFoundError(name)
	}
	return instance, nil
}

// GetIndexSettings retrieves a copy of the settings for an index.
func (e *Engine) GetIndexSettings(name string) (config.IndexSettings, error) {
	e.mu.RLock()
	instance, exists := e.indexes[name]
	e.mu.RUnlock()

	if !exists {
		return config.IndexSettings{}, errors.NewIndexNotFoundError(name)
	}
	return instance.Settings(), nil
}

// DeleteIndex removes an index from the registry and from disk.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[name]; !exists {
		return errors.NewIndexNotFoundError(name)
	}

	next := make(map[string]*IndexInstance, len(e.indexes))
	for n, inst := range e.indexes {
		if n != name {
			next[n] = inst
		}
	}
	e.indexes = next

	if e.dataDir != "" {
		indexPath := filepath.Join(e.dataDir, name)
		if err := os.RemoveAll(indexPath); err != nil {
			return fmt.Errorf("failed to delete index data directory %s: %w", indexPath, err)
		}
	}
	log.Printf("Index '%s' deleted.", name)
	return nil
}

// ListIndexes returns the names of all registered indexes.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	return names
}

// PersistIndexData saves an index's current documents to disk. Call after
// mutations such as AddDocuments.
func (e *Engine) PersistIndexData(indexName string) error {
	e.mu.RLock()
	instance, exists := e.indexes[indexName]
	e.mu.RUnlock()

	if !exists {
		return errors.NewIndexNotFoundError(indexName)
	}
	if e.dataDir == "" {
		return nil
	}

	indexPath := filepath.Join(e.dataDir, indexName)
	if err := persistence.SaveGob(filepath.Join(indexPath, documentStoreFile), instance.DocumentStore); err != nil {
		return fmt.Errorf("failed to save document store for %s: %w", indexName, err)
	}
	return nil
}

// Search resolves the named index and executes the query against it.
func (e *Engine) Search(ctx context.Context, indexName string, query services.SearchQuery) (services.SearchResult, error) {
	accessor, err := e.GetIndex(indexName)
	if err != nil {
		return services.SearchResult{}, err
	}
	return accessor.Search(ctx, query)
}

// SearchHistory returns the retained search records.
func (e *Engine) SearchHistory() []model.SearchRecord {
	return e.tracker.History()
}

// SearchStats summarizes tracked search activity.
func (e *Engine) SearchStats() model.SearchStats {
	return e.tracker.Stats()
}

// PopularSearches returns the most frequent query terms.
func (e *Engine) PopularSearches(limit int) []model.PopularSearch {
	return e.tracker.PopularSearches(limit)
}

var _ services.IndexManager = (*Engine)(nil)
