package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

func productSettings() config.IndexSettings {
	return config.IndexSettings{
		Name: "products",
		Fields: []config.IndexField{
			{Name: "title", Type: config.FieldTypeText, Searchable: true},
			{Name: "brand", Type: config.FieldTypeKeyword, Filterable: true, Facetable: true},
			{Name: "price", Type: config.FieldTypeNumber, Filterable: true, Sortable: true},
		},
	}
}

func TestEngine_CreateAndGetIndex(t *testing.T) {
	eng := NewEngine("", 0)

	require.NoError(t, eng.CreateIndex(productSettings()))

	accessor, err := eng.GetIndex("products")
	require.NoError(t, err)
	assert.Equal(t, "products", accessor.Settings().Name)

	settings, err := eng.GetIndexSettings("products")
	require.NoError(t, err)
	assert.Equal(t, "products", settings.Name)
	assert.Len(t, settings.Fields, 3)
}

func TestEngine_CreateIndexValidation(t *testing.T) {
	eng := NewEngine("", 0)

	err := eng.CreateIndex(config.IndexSettings{Name: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfig)

	err = eng.CreateIndex(config.IndexSettings{
		Name: "bad",
		Fields: []config.IndexField{
			{Name: "f", Type: "imaginary"},
		},
	})
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestEngine_CreateIndexIdempotentReplace(t *testing.T) {
	eng := NewEngine("", 0)
	require.NoError(t, eng.CreateIndex(productSettings()))

	accessor, err := eng.GetIndex("products")
	require.NoError(t, err)
	require.NoError(t, accessor.AddDocuments([]model.Document{
		{"documentID": "p1", "title": "Keyboard", "brand": "Logi", "price": 50.0},
	}))

	// Re-registering the same name replaces the definition and its documents.
	replacement := productSettings()
	replacement.Fields = append(replacement.Fields, config.IndexField{
		Name: "color", Type: config.FieldTypeKeyword, Facetable: true,
	})
	require.NoError(t, eng.CreateIndex(replacement))

	settings, err := eng.GetIndexSettings("products")
	require.NoError(t, err)
	assert.Len(t, settings.Fields, 4)

	accessor, err = eng.GetIndex("products")
	require.NoError(t, err)
	result, err := accessor.Search(context.Background(), services.NewSearchQueryBuilder().Build())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total, "replacement should start empty")
}

func TestEngine_GetIndexNotFound(t *testing.T) {
	eng := NewEngine("", 0)

	_, err := eng.GetIndex("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIndexNotFound)

	_, err = eng.GetIndexSettings("ghost")
	assert.ErrorIs(t, err, errors.ErrIndexNotFound)

	err = eng.DeleteIndex("ghost")
	assert.ErrorIs(t, err, errors.ErrIndexNotFound)
}

func TestEngine_DeleteIndex(t *testing.T) {
	eng := NewEngine("", 0)
	require.NoError(t, eng.CreateIndex(productSettings()))
	require.NoError(t, eng.DeleteIndex("products"))

	_, err := eng.GetIndex("products")
	assert.ErrorIs(t, err, errors.ErrIndexNotFound)
	assert.Empty(t, eng.ListIndexes())
}

func TestEngine_ListIndexes(t *testing.T) {
	eng := NewEngine("", 0)
	require.NoError(t, eng.CreateIndex(productSettings()))

	other := productSettings()
	other.Name = "archive"
	require.NoError(t, eng.CreateIndex(other))

	names := eng.ListIndexes()
	assert.ElementsMatch(t, []string{"products", "archive"}, names)
}

func TestEngine_SearchThroughRegistry(t *testing.T) {
	eng := NewEngine("", 0)
	require.NoError(t, eng.CreateIndex(productSettings()))

	accessor, err := eng.GetIndex("products")
	require.NoError(t, err)
	require.NoError(t, accessor.AddDocuments([]model.Document{
		{"documentID": "p1", "title": "Wireless Keyboard", "brand": "Logi", "price": 50.0},
		{"documentID": "p2", "title": "Wired Mouse", "brand": "Logi", "price": 20.0},
	}))

	query := services.NewSearchQueryBuilder().
		AddFilter("price", services.OpLessThan, services.Number(30)).
		Build()
	result, err := eng.Search(context.Background(), "products", query)
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	id, _ := result.Items[0].Document.GetDocumentID()
	assert.Equal(t, "p2", id)

	_, err = eng.Search(context.Background(), "ghost", query)
	assert.ErrorIs(t, err, errors.ErrIndexNotFound)
}

func TestEngine_PersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	eng := NewEngine(dir, 0)
	require.NoError(t, eng.CreateIndex(productSettings()))

	accessor, err := eng.GetIndex("products")
	require.NoError(t, err)
	require.NoError(t, accessor.AddDocuments([]model.Document{
		{"documentID": "p1", "title": "Keyboard", "brand": "Logi", "price": 50.0},
	}))
	require.NoError(t, eng.PersistIndexData("products"))

	reloaded := NewEngine(dir, 0)
	assert.ElementsMatch(t, []string{"products"}, reloaded.ListIndexes())

	result, err := reloaded.Search(context.Background(), "products", services.NewSearchQueryBuilder().Build())
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	id, _ := result.Items[0].Document.GetDocumentID()
	assert.Equal(t, "p1", id)
}

func TestEngine_SearchRecordedInHistory(t *testing.T) {
	eng := NewEngine("", 0)
	require.NoError(t, eng.CreateIndex(productSettings()))

	_, err := eng.Search(context.Background(), "products",
		services.NewSearchQueryBuilder().SetQuery("keyboard deals").Build())
	require.NoError(t, err)

	history := eng.SearchHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "products", history[0].IndexName)
	assert.Equal(t, "keyboard deals", history[0].Query)

	stats := eng.SearchStats()
	assert.Equal(t, 1, stats.TotalSearches)
	assert.Equal(t, 1, stats.SearchesByIndex["products"])

	popular := eng.PopularSearches(10)
	require.Len(t, popular, 2)
	assert.Equal(t, "keyboard", popular[0].Term)
}
