package search

import (
	"context"
	"testing"
	"time"

	"github.com/rmachado/go-faceted-search/internal/history"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
	"github.com/rmachado/go-faceted-search/store"
)

func serviceWithTracker(t *testing.T) (*Service, *history.Tracker) {
	t.Helper()
	tracker := history.NewTracker("", 0)
	svc, err := NewService(store.NewDocumentStore(), usersSettings(), tracker)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	return svc, tracker
}

func seedQueries(tracker *history.Tracker, queries ...string) {
	for _, q := range queries {
		tracker.Record(model.SearchRecord{
			IndexName: "users",
			Query:     q,
			Timestamp: time.Now(),
		})
	}
}

func TestSuggest_PrefixMatches(t *testing.T) {
	svc, tracker := serviceWithTracker(t)
	seedQueries(tracker, "golang tutorial", "gophers unite")

	result, err := svc.Search(context.Background(),
		services.NewSearchQueryBuilder().SetQuery("gola").Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	if len(result.Suggestions) == 0 {
		t.Fatal("expected prefix suggestions for 'gola'")
	}
	if result.Suggestions[0] != "golang" {
		t.Errorf("suggestions = %v, want golang first", result.Suggestions)
	}
}

func TestSuggest_TypoDistanceMatches(t *testing.T) {
	svc, tracker := serviceWithTracker(t)
	seedQueries(tracker, "keyboard reviews")

	result, err := svc.Search(context.Background(),
		services.NewSearchQueryBuilder().SetQuery("keybaord").Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	found := false
	for _, s := range result.Suggestions {
		if s == "keyboard" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'keyboard' among suggestions, got %v", result.Suggestions)
	}
}

func TestSuggest_ExactTermNotSuggested(t *testing.T) {
	svc, tracker := serviceWithTracker(t)
	seedQueries(tracker, "keyboard reviews")

	result, err := svc.Search(context.Background(),
		services.NewSearchQueryBuilder().SetQuery("keyboard").Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	for _, s := range result.Suggestions {
		if s == "keyboard" {
			t.Errorf("the query's own term should not be suggested: %v", result.Suggestions)
		}
	}
}

func TestSuggest_EmptyQueryHasNoSuggestions(t *testing.T) {
	svc, tracker := serviceWithTracker(t)
	seedQueries(tracker, "golang tutorial")

	result, err := svc.Search(context.Background(), services.NewSearchQueryBuilder().Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("expected no suggestions without a text query, got %v", result.Suggestions)
	}
}

func TestSuggest_CappedAtMaximum(t *testing.T) {
	svc, tracker := serviceWithTracker(t)
	seedQueries(tracker,
		"searching one", "searched two", "searches three",
		"searcher four", "searchable five", "searchlight six", "search party")

	result, err := svc.Search(context.Background(),
		services.NewSearchQueryBuilder().SetQuery("searc").Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(result.Suggestions) > maxSuggestions {
		t.Errorf("suggestions exceed cap of %d: %v", maxSuggestions, result.Suggestions)
	}
	if len(result.Suggestions) != maxSuggestions {
		t.Errorf("expected %d suggestions, got %v", maxSuggestions, result.Suggestions)
	}
}
