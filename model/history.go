package model

import "time"

// SearchRecord represents a single executed search for history tracking.
type SearchRecord struct {
	SearchID    string        `json:"search_id"`
	IndexName   string        `json:"index_name"`
	Query       string        `json:"query"`
	FilterCount int           `json:"filter_count"`
	ResultCount int           `json:"result_count"`
	Took        time.Duration `json:"took"`
	Timestamp   time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for a popular search term.
type PopularSearch struct {
	Term        string `json:"term"`
	SearchCount int    `json:"search_count"`
}

// SearchStats summarizes tracked search activity.
type SearchStats struct {
	TotalSearches   int            `json:"total_searches"`
	UniqueTerms     int            `json:"unique_terms"`
	AvgResponseTime int64          `json:"avg_response_time"` // milliseconds
	SearchesByIndex map[string]int `json:"searches_by_index"`
}
