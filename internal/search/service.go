// Package search implements query execution for a single index: filter
// compilation, text matching, facet aggregation, sorting, pagination,
// highlighting, and suggestions.
package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/compiler"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/internal/facets"
	"github.com/rmachado/go-faceted-search/internal/tokenizer"
	"github.com/rmachado/go-faceted-search/internal/typoutil"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

// Typo tolerance thresholds for fuzzy text matching: tokens shorter than
// minWordSizeFor1Typo match exactly only, longer tokens tolerate edits.
const (
	minWordSizeFor1Typo  = 4
	minWordSizeFor2Typos = 7
)

// Service executes searches against one index. It is stateless per request
// apart from the shared history tracker.
type Service struct {
	source   services.DocumentSource
	settings *config.IndexSettings
	tracker  services.HistoryTracker
}

// NewService creates a search Service for an index. tracker may be nil, in
// which case history recording and suggestions are disabled.
func NewService(source services.DocumentSource, settings *config.IndexSettings, tracker services.HistoryTracker) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("document source cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	return &Service{source: source, settings: settings, tracker: tracker}, nil
}

// scoredHit pairs a document with its accumulated text relevance score.
type scoredHit struct {
	doc   model.Document
	docID string
	score float64
}

// Search executes a query end to end: validation, filter compilation, store
// execution, facet aggregation, sorting, pagination, highlighting, and
// suggestion lookup. Configuration and compilation errors surface before
// the store is called; a failed search returns no partial result.
func (s *Service) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()

	page := query.Pagination.Page
	limit := query.Pagination.Limit
	if page < 1 {
		return services.SearchResult{}, errors.NewConfigError("", fmt.Sprintf("page must be >= 1, got %d", page))
	}
	if limit < 1 {
		return services.SearchResult{}, errors.NewConfigError("", fmt.Sprintf("limit must be >= 1, got %d", limit))
	}

	if err := validateSort(query.Sort, s.settings); err != nil {
		return services.SearchResult{}, err
	}

	predicate, err := compiler.Compile(query.Filters, s.settings)
	if err != nil {
		return services.SearchResult{}, err
	}

	docs, err := s.source.Execute(ctx, predicate)
	if err != nil {
		reason := "store execution failed"
		if ctx.Err() != nil {
			reason = "store execution exceeded the caller deadline"
		}
		return services.SearchResult{}, errors.NewExecutionError(s.settings.Name, reason, false, err)
	}

	hits := s.matchText(docs, query)

	// Facets are computed over the full filtered, pre-pagination set.
	matched := make([]model.Document, len(hits))
	for i, hit := range hits {
		matched[i] = hit.doc
	}
	facetResults, warnings := facets.Aggregate(matched, query.Facets, s.settings, query.Filters)
	for _, warning := range warnings {
		log.Printf("Warning: %s", warning)
	}

	if len(query.Sort) > 0 {
		sortHits(hits, query.Sort, s.settings)
	} else {
		// Default ordering: relevance score descending, document id
		// ascending for determinism.
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].score != hits[j].score {
				return hits[i].score > hits[j].score
			}
			return hits[i].docID < hits[j].docID
		})
	}

	total := len(hits)
	totalPages := (total + limit - 1) / limit

	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}
	pageHits := hits[offset:end]

	queryTokens := tokenizer.Tokenize(query.Query)
	items := make([]services.HitResult, 0, len(pageHits))
	for _, hit := range pageHits {
		item := services.HitResult{Document: hit.doc, Score: hit.score}
		if query.Highlight && len(queryTokens) > 0 {
			item.Highlights = s.highlightDocument(hit.doc, queryTokens, query)
		}
		items = append(items, item)
	}

	searchID := uuid.New().String()
	result := services.SearchResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
		Facets:     facetResults,
		SearchTime: time.Since(startTime).Milliseconds(),
		SearchID:   searchID,
		Query:      query,
	}

	if s.tracker != nil {
		result.Suggestions = s.suggest(queryTokens)
		s.tracker.Record(model.SearchRecord{
			SearchID:    searchID,
			IndexName:   s.settings.Name,
			Query:       query.Query,
			FilterCount: len(query.Filters),
			ResultCount: total,
			Took:        time.Since(startTime),
			Timestamp:   time.Now(),
		})
	}

	return result, nil
}

// matchText scores documents against the free-text query across searchable
// fields. Without a text query every filtered document is a hit with score
// zero. A document must contain every query token (in some searchable
// field) to match, mirroring AND semantics across tokens.
func (s *Service) matchText(docs []model.Document, query services.SearchQuery) []scoredHit {
	queryTokens := uniqueTokens(tokenizer.Tokenize(query.Query))

	hits := make([]scoredHit, 0, len(docs))
	for _, doc := range docs {
		docID, _ := doc.GetDocumentID()
		if len(queryTokens) == 0 {
			hits = append(hits, scoredHit{doc: doc, docID: docID})
			continue
		}

		score, allMatched := s.scoreDocument(doc, queryTokens, query)
		if allMatched {
			hits = append(hits, scoredHit{doc: doc, docID: docID, score: score})
		}
	}
	return hits
}

// uniqueTokens drops repeated tokens while preserving first-seen order, so
// a query like "data data" needs each distinct token to match only once and
// a repeated token does not inflate the score.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		unique = append(unique, tok)
	}
	return unique
}

// scoreDocument accumulates boosted per-field matches for every query
// token. The second return value reports whether every token matched at
// least one searchable field.
func (s *Service) scoreDocument(doc model.Document, queryTokens []string, query services.SearchQuery) (float64, bool) {
	score := 0.0
	matchedTokens := make(map[string]bool)

	for _, field := range s.settings.Fields {
		if !field.Searchable {
			continue
		}
		raw, ok := doc[field.Name]
		if !ok {
			continue
		}

		fieldTokens := fieldTokenSet(raw)
		if len(fieldTokens) == 0 {
			continue
		}

		boost := field.Boost
		if boost == 0 {
			boost = 1.0
		}
		if override, ok := query.Boost[field.Name]; ok {
			boost = override
		}

		for _, token := range queryTokens {
			if tokenMatches(token, fieldTokens, query.Fuzzy) {
				matchedTokens[token] = true
				score += boost
			}
		}
	}

	return score, len(matchedTokens) == len(queryTokens)
}

// tokenMatches reports whether a query token matches any field token,
// exactly or within typo distance when fuzzy matching is on.
func tokenMatches(token string, fieldTokens map[string]struct{}, fuzzy bool) bool {
	if _, ok := fieldTokens[token]; ok {
		return true
	}
	if !fuzzy {
		return false
	}

	maxDist := 0
	if len(token) >= minWordSizeFor2Typos {
		maxDist = 2
	} else if len(token) >= minWordSizeFor1Typo {
		maxDist = 1
	}
	if maxDist == 0 {
		return false
	}

	for fieldToken := range fieldTokens {
		if typoutil.WithinDistance(token, fieldToken, maxDist) {
			return true
		}
	}
	return false
}

// fieldTokenSet tokenizes a document field value of any supported string
// shape into a token set.
func fieldTokenSet(raw interface{}) map[string]struct{} {
	switch v := raw.(type) {
	case string:
		return tokenizer.TokenSet(v)
	case []string:
		set := make(map[string]struct{})
		for _, item := range v {
			for tok := range tokenizer.TokenSet(item) {
				set[tok] = struct{}{}
			}
		}
		return set
	case []interface{}:
		set := make(map[string]struct{})
		for _, item := range v {
			if str, ok := item.(string); ok {
				for tok := range tokenizer.TokenSet(str) {
					set[tok] = struct{}{}
				}
			}
		}
		return set
	}
	return nil
}
