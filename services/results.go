package services

import (
	"time"

	"github.com/rmachado/go-faceted-search/model"
)

// FacetType names the aggregation shape of a FacetResult.
type FacetType string

const (
	FacetTerms         FacetType = "terms"
	FacetRange         FacetType = "range"
	FacetDateHistogram FacetType = "date_histogram"
	FacetGeoDistance   FacetType = "geo_distance"
)

// FacetBucket is one group within a facet: a term, a numeric range, a date
// interval, or a distance ring, together with its match count. Selected is
// true when the bucket's value is already targeted by an active filter on
// the query, so UIs can render toggle state.
type FacetBucket struct {
	Key      string     `json:"key"`
	Count    int        `json:"count"`
	Selected bool       `json:"selected"`
	Min      *float64   `json:"min,omitempty"`
	Max      *float64   `json:"max,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// FacetResult is the aggregated breakdown of one field over the full
// filtered result set. Total always equals the sum of bucket counts.
type FacetResult struct {
	Field   string        `json:"field"`
	Name    string        `json:"name"`
	Type    FacetType     `json:"type"`
	Buckets []FacetBucket `json:"buckets"`
	Total   int           `json:"total"`
}

// HighlightResult carries highlighted fragments for one field of one hit.
type HighlightResult struct {
	Field     string   `json:"field"`
	Fragments []string `json:"fragments"`
	Score     float64  `json:"score"`
}

// HitResult is a single matched document with its relevance score and any
// highlight fragments.
type HitResult struct {
	Document   model.Document    `json:"document"`
	Score      float64           `json:"score"`
	Highlights []HighlightResult `json:"highlights,omitempty"`
}

// SearchResult packages one executed search: the requested page of hits,
// pagination bookkeeping, facets over the full filtered set, suggestions,
// and timing.
type SearchResult struct {
	Items       []HitResult   `json:"items"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	Limit       int           `json:"limit"`
	TotalPages  int           `json:"total_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrev     bool          `json:"has_prev"`
	Facets      []FacetResult `json:"facets,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
	SearchTime  int64         `json:"search_time"` // milliseconds
	SearchID    string        `json:"search_id"`
	Query       SearchQuery   `json:"query"`
}
