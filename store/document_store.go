// Package store provides the reference in-memory document store. It
// implements the services.DocumentSource boundary by evaluating compiled
// predicates over its documents; any other backend satisfying that
// interface can replace it.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

func init() {
	// Register common types that appear inside model.Document values so
	// gob can round-trip them through interface{}.
	gob.Register([]interface{}{})
	gob.Register(map[string]interface{}{})
	gob.Register([]string{})
	gob.Register(float64(0))
	gob.Register(false)
}

// DocumentStore holds documents keyed by an internal numeric id, with a
// mapping from the caller-provided documentID. Safe for concurrent use.
type DocumentStore struct {
	Mu                     sync.RWMutex
	Docs                   map[uint32]model.Document
	ExternalIDtoInternalID map[string]uint32
	NextID                 uint32
}

// NewDocumentStore returns an empty, initialized store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		Docs:                   make(map[uint32]model.Document),
		ExternalIDtoInternalID: make(map[string]uint32),
	}
}

// AddDocuments inserts or replaces documents. Every document must carry a
// non-empty documentID.
func (ds *DocumentStore) AddDocuments(docs []model.Document) error {
	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	if ds.Docs == nil {
		ds.Docs = make(map[uint32]model.Document)
	}
	if ds.ExternalIDtoInternalID == nil {
		ds.ExternalIDtoInternalID = make(map[string]uint32)
	}

	for i, doc := range docs {
		externalID, ok := doc.GetDocumentID()
		if !ok {
			return fmt.Errorf("document at position %d has no documentID", i)
		}

		internalID, exists := ds.ExternalIDtoInternalID[externalID]
		if !exists {
			internalID = ds.NextID
			ds.NextID++
			ds.ExternalIDtoInternalID[externalID] = internalID
		}
		ds.Docs[internalID] = doc
	}
	return nil
}

// DeleteDocument removes a document by its external id. Deleting a missing
// document is not an error.
func (ds *DocumentStore) DeleteDocument(docID string) error {
	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	internalID, exists := ds.ExternalIDtoInternalID[docID]
	if !exists {
		return nil
	}
	delete(ds.Docs, internalID)
	delete(ds.ExternalIDtoInternalID, docID)
	return nil
}

// DeleteAllDocuments clears the store.
func (ds *DocumentStore) DeleteAllDocuments() error {
	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	ds.Docs = make(map[uint32]model.Document)
	ds.ExternalIDtoInternalID = make(map[string]uint32)
	ds.NextID = 0
	return nil
}

// Count returns the number of stored documents.
func (ds *DocumentStore) Count() int {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()
	return len(ds.Docs)
}

// Execute evaluates the compiled predicate over every document and returns
// the matches. It checks the context between documents so a caller deadline
// aborts the scan instead of hanging.
func (ds *DocumentStore) Execute(ctx context.Context, predicate services.Predicate) ([]model.Document, error) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()

	matches := make([]model.Document, 0)
	checked := 0
	for _, doc := range ds.Docs {
		if checked%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		checked++

		if predicate == nil || predicate(doc) {
			matches = append(matches, doc)
		}
	}
	return matches, nil
}

// gobDocumentStoreData mirrors DocumentStore without the mutex for
// encoding.
type gobDocumentStoreData struct {
	Docs                   map[uint32]model.Document
	ExternalIDtoInternalID map[string]uint32
	NextID                 uint32
}

// GobEncode implements gob.GobEncoder.
func (ds *DocumentStore) GobEncode() ([]byte, error) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()

	data := gobDocumentStoreData{
		Docs:                   ds.Docs,
		ExternalIDtoInternalID: ds.ExternalIDtoInternalID,
		NextID:                 ds.NextID,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("failed to gob encode document store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (ds *DocumentStore) GobDecode(raw []byte) error {
	var data gobDocumentStoreData
	if err := gob.NewDecoder(bytes.NewBuffer(raw)).Decode(&data); err != nil {
		return fmt.Errorf("failed to gob decode document store data: %w", err)
	}

	ds.Mu.Lock()
	defer ds.Mu.Unlock()

	ds.Docs = data.Docs
	ds.ExternalIDtoInternalID = data.ExternalIDtoInternalID
	ds.NextID = data.NextID

	if ds.Docs == nil {
		ds.Docs = make(map[uint32]model.Document)
	}
	if ds.ExternalIDtoInternalID == nil {
		ds.ExternalIDtoInternalID = make(map[string]uint32)
	}
	return nil
}
