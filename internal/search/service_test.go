package search

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
	"github.com/rmachado/go-faceted-search/store"
)

func usersSettings() *config.IndexSettings {
	settings := &config.IndexSettings{
		Name: "users",
		Fields: []config.IndexField{
			{Name: "name", Type: config.FieldTypeText, Searchable: true, Boost: 2.0},
			{Name: "bio", Type: config.FieldTypeText, Searchable: true},
			{Name: "role", Type: config.FieldTypeKeyword, Filterable: true, Facetable: true},
			{Name: "age", Type: config.FieldTypeNumber, Filterable: true, Sortable: true},
		},
	}
	settings.ApplyDefaults()
	return settings
}

func usersService(t *testing.T, docs []model.Document) *Service {
	t.Helper()
	docStore := store.NewDocumentStore()
	if err := docStore.AddDocuments(docs); err != nil {
		t.Fatalf("AddDocuments() failed: %v", err)
	}
	svc, err := NewService(docStore, usersSettings(), nil)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	return svc
}

func userDoc(id, name, role string, age float64) model.Document {
	return model.Document{"documentID": id, "name": name, "role": role, "age": age}
}

func TestSearch_FilterFacetSortPaginate(t *testing.T) {
	docs := []model.Document{
		userDoc("u1", "Alice", "learner", 25),
		userDoc("u2", "Bob", "learner", 42),
		userDoc("u3", "Carol", "teacher", 35),
		userDoc("u4", "Dave", "learner", 58),
		userDoc("u5", "Eve", "learner", 17),
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().
		AddFilter("role", services.OpEquals, services.Text("learner")).
		AddFilter("age", services.OpBetween, services.List(services.Number(18), services.Number(60))).
		AddFacet("role").
		AddSort("age", services.SortDesc).
		SetPagination(1, 10).
		Build()

	result, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	// u1, u2, u4 pass both filters; u3 has the wrong role, u5 is under 18.
	if result.Total != 3 {
		t.Fatalf("Total = %d, want 3", result.Total)
	}
	wantOrder := []string{"u4", "u2", "u1"} // age 58, 42, 25
	for i, want := range wantOrder {
		got, _ := result.Items[i].Document.GetDocumentID()
		if got != want {
			t.Errorf("item %d = %s, want %s", i, got, want)
		}
	}

	if len(result.Facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(result.Facets))
	}
	facet := result.Facets[0]
	if len(facet.Buckets) != 1 || facet.Buckets[0].Key != "learner" || facet.Buckets[0].Count != 3 {
		t.Errorf("role facet = %+v, want single learner/3 bucket", facet.Buckets)
	}
	if !facet.Buckets[0].Selected {
		t.Error("learner bucket should be marked selected by the active equals filter")
	}

	if result.TotalPages != 1 || result.HasNext || result.HasPrev {
		t.Errorf("pagination = pages:%d next:%v prev:%v, want 1/false/false",
			result.TotalPages, result.HasNext, result.HasPrev)
	}
	if result.SearchID == "" {
		t.Error("expected a generated search ID")
	}
}

func TestSearch_PaginationInvariants(t *testing.T) {
	var docs []model.Document
	for i := 0; i < 25; i++ {
		docs = append(docs, userDoc(fmt.Sprintf("u%02d", i), "User", "learner", float64(20+i)))
	}
	svc := usersService(t, docs)

	tests := []struct {
		page, limit    int
		wantItems      int
		wantTotalPages int
		wantNext       bool
		wantPrev       bool
	}{
		{1, 10, 10, 3, true, false},
		{2, 10, 10, 3, true, true},
		{3, 10, 5, 3, false, true},
		{4, 10, 0, 3, false, true},
		{1, 25, 25, 1, false, false},
		{1, 100, 25, 1, false, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d_limit=%d", tt.page, tt.limit), func(t *testing.T) {
			query := services.NewSearchQueryBuilder().SetPagination(tt.page, tt.limit).Build()
			result, err := svc.Search(context.Background(), query)
			if err != nil {
				t.Fatalf("Search() failed: %v", err)
			}
			if result.Total != 25 {
				t.Errorf("Total = %d, want 25", result.Total)
			}
			if len(result.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(result.Items), tt.wantItems)
			}
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.HasNext != tt.wantNext || result.HasPrev != tt.wantPrev {
				t.Errorf("HasNext/HasPrev = %v/%v, want %v/%v",
					result.HasNext, result.HasPrev, tt.wantNext, tt.wantPrev)
			}
		})
	}
}

func TestSearch_InvalidPagination(t *testing.T) {
	svc := usersService(t, nil)
	for _, pagination := range []services.Pagination{{Page: 0, Limit: 10}, {Page: 1, Limit: 0}, {Page: -1, Limit: -1}} {
		query := services.SearchQuery{Pagination: pagination}
		_, err := svc.Search(context.Background(), query)
		if !stderrors.Is(err, errors.ErrConfig) {
			t.Errorf("pagination %+v: expected ErrConfig, got %v", pagination, err)
		}
	}
}

func TestSearch_TextMatchingAndScoring(t *testing.T) {
	docs := []model.Document{
		{"documentID": "u1", "name": "Go Developer", "bio": "writes Go services", "role": "dev", "age": 30.0},
		{"documentID": "u2", "name": "Data Analyst", "bio": "Go enthusiast on weekends", "role": "analyst", "age": 31.0},
		{"documentID": "u3", "name": "Manager", "bio": "plans roadmaps", "role": "manager", "age": 45.0},
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().SetQuery("go").Build()
	result, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("Total = %d, want 2 (u3 has no 'go')", result.Total)
	}
	// u1 matches in name (boost 2.0) and bio (1.0); u2 only in bio.
	first, _ := result.Items[0].Document.GetDocumentID()
	if first != "u1" {
		t.Errorf("highest scored item = %s, want u1", first)
	}
	if result.Items[0].Score <= result.Items[1].Score {
		t.Errorf("expected strictly higher score first: %v vs %v", result.Items[0].Score, result.Items[1].Score)
	}
}

func TestSearch_TextMatchRequiresEveryToken(t *testing.T) {
	docs := []model.Document{
		{"documentID": "u1", "name": "Go Developer", "role": "dev", "age": 30.0},
		{"documentID": "u2", "name": "Python Developer", "role": "dev", "age": 30.0},
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().SetQuery("go developer").Build()
	result, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("Total = %d, want 1: every token must match", result.Total)
	}
	id, _ := result.Items[0].Document.GetDocumentID()
	if id != "u1" {
		t.Errorf("matched %s, want u1", id)
	}
}

func TestSearch_RepeatedQueryTokenStillMatches(t *testing.T) {
	docs := []model.Document{
		{"documentID": "u1", "name": "Data Analyst", "role": "analyst", "age": 28.0},
	}
	svc := usersService(t, docs)

	single, err := svc.Search(context.Background(), services.NewSearchQueryBuilder().SetQuery("data").Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	repeated, err := svc.Search(context.Background(), services.NewSearchQueryBuilder().SetQuery("data data").Build())
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	if repeated.Total != 1 {
		t.Fatalf("query with a repeated token matched %d docs, want 1", repeated.Total)
	}
	if repeated.Items[0].Score != single.Items[0].Score {
		t.Errorf("repeated token inflated the score: %v vs %v", repeated.Items[0].Score, single.Items[0].Score)
	}
}

func TestSearch_FuzzyMatching(t *testing.T) {
	docs := []model.Document{
		{"documentID": "u1", "name": "Keyboard Specialist", "role": "dev", "age": 30.0},
	}
	svc := usersService(t, docs)

	exact := services.NewSearchQueryBuilder().SetQuery("keybaord").Build()
	result, err := svc.Search(context.Background(), exact)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("typo should not match without fuzzy, got %d hits", result.Total)
	}

	fuzzy := services.NewSearchQueryBuilder().SetQuery("keybaord").SetFuzzy(true).Build()
	result, err = svc.Search(context.Background(), fuzzy)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("transposition typo should match with fuzzy on, got %d hits", result.Total)
	}
}

func TestSearch_FuzzyShortTokensStayExact(t *testing.T) {
	docs := []model.Document{
		{"documentID": "u1", "name": "cat lover", "role": "dev", "age": 30.0},
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().SetQuery("car").SetFuzzy(true).Build()
	result, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("3-letter tokens should not fuzzy match, got %d hits", result.Total)
	}
}

func TestSearch_NonFacetableFacetSkippedItemsIntact(t *testing.T) {
	docs := []model.Document{userDoc("u1", "Alice", "learner", 25)}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().
		AddFacet("age_missing_field").
		Build()
	result, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unknown facet field should warn, not fail: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Errorf("items should be unaffected by a skipped facet: %+v", result)
	}
	if len(result.Facets) != 0 {
		t.Errorf("skipped facet should produce no result: %+v", result.Facets)
	}
}

func TestSearch_ConfigErrorsBeforeStoreCall(t *testing.T) {
	svc := usersService(t, nil)

	tests := []struct {
		name  string
		query services.SearchQuery
	}{
		{"unknown filter field", services.NewSearchQueryBuilder().
			AddFilter("ghost", services.OpEquals, services.Text("x")).Build()},
		{"type mismatch", services.NewSearchQueryBuilder().
			AddFilter("age", services.OpGreaterThan, services.Text("abc")).Build()},
		{"unknown sort field", services.NewSearchQueryBuilder().
			AddSort("ghost", services.SortAsc).Build()},
		{"non-sortable sort field", services.NewSearchQueryBuilder().
			AddSort("role", services.SortAsc).Build()},
		{"mode on non-array field", services.NewSearchQueryBuilder().
			AddSortWithMode("age", services.SortAsc, services.SortModeAvg).Build()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.query)
			if !stderrors.Is(err, errors.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestSearch_TypeMismatchErrorNamesField(t *testing.T) {
	svc := usersService(t, nil)
	query := services.NewSearchQueryBuilder().
		AddFilter("age", services.OpGreaterThan, services.Text("abc")).
		Build()
	_, err := svc.Search(context.Background(), query)
	if err == nil || !strings.Contains(err.Error(), "age") {
		t.Fatalf("error should reference the offending field: %v", err)
	}
}

func TestSearch_CancelledContextReturnsExecutionError(t *testing.T) {
	var docs []model.Document
	for i := 0; i < 2000; i++ {
		docs = append(docs, userDoc(fmt.Sprintf("u%04d", i), "User", "learner", 30))
	}
	svc := usersService(t, docs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Search(ctx, services.NewSearchQueryBuilder().Build())
	if !stderrors.Is(err, errors.ErrExecution) {
		t.Fatalf("expected ErrExecution on cancelled context, got %v", err)
	}
	var execErr *errors.ExecutionError
	if !stderrors.As(err, &execErr) {
		t.Fatalf("expected *ExecutionError, got %T", err)
	}
	if execErr.IndexName != "users" {
		t.Errorf("execution error should name the index, got %q", execErr.IndexName)
	}
}

func TestSearch_HighlightingWrapsMatches(t *testing.T) {
	docs := []model.Document{
		{"documentID": "u1", "name": "Wireless Keyboard", "role": "dev", "age": 30.0},
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().
		SetQuery("keyboard").
		SetHighlight(true).
		Build()
	result, err := svc.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	highlights := result.Items[0].Highlights
	if len(highlights) == 0 {
		t.Fatal("expected highlights for the name field")
	}
	found := false
	for _, h := range highlights {
		for _, frag := range h.Fragments {
			if strings.Contains(frag, "<em>") && strings.Contains(frag, "</em>") {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("no fragment wraps the match: %+v", highlights)
	}
}

func TestSearch_DefaultOrderIsDeterministic(t *testing.T) {
	docs := []model.Document{
		userDoc("u3", "Same", "r", 1),
		userDoc("u1", "Same", "r", 1),
		userDoc("u2", "Same", "r", 1),
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().Build()
	var firstOrder []string
	for run := 0; run < 5; run++ {
		result, err := svc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("Search() failed: %v", err)
		}
		var order []string
		for _, item := range result.Items {
			id, _ := item.Document.GetDocumentID()
			order = append(order, id)
		}
		if run == 0 {
			firstOrder = order
			continue
		}
		for i := range order {
			if order[i] != firstOrder[i] {
				t.Fatalf("run %d: order changed: %v vs %v", run, order, firstOrder)
			}
		}
	}
	if firstOrder[0] != "u1" || firstOrder[1] != "u2" || firstOrder[2] != "u3" {
		t.Errorf("equal scores should order by document id: %v", firstOrder)
	}
}

// Explicit sorts must be deterministic under ties too, or page boundaries
// would shift between identical requests.
func TestSearch_ExplicitSortDeterministicUnderTies(t *testing.T) {
	docs := make([]model.Document, 0, 30)
	for i := 0; i < 30; i++ {
		docs = append(docs, userDoc(fmt.Sprintf("u%02d", i), "Same", "r", 40))
	}
	svc := usersService(t, docs)

	query := services.NewSearchQueryBuilder().
		AddSort("age", services.SortAsc).
		SetPagination(1, 30).
		Build()

	var firstOrder []string
	for run := 0; run < 5; run++ {
		result, err := svc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("Search() failed: %v", err)
		}
		var order []string
		for _, item := range result.Items {
			id, _ := item.Document.GetDocumentID()
			order = append(order, id)
		}
		if run == 0 {
			firstOrder = order
			continue
		}
		for i := range order {
			if order[i] != firstOrder[i] {
				t.Fatalf("run %d: tied sort order changed: %v vs %v", run, order, firstOrder)
			}
		}
	}
	if firstOrder[0] != "u00" || firstOrder[29] != "u29" {
		t.Errorf("tied sort keys should order by document id: %v", firstOrder)
	}
}
