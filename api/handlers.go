// Package api exposes the engine over HTTP. It is a thin wrapper: all
// search semantics live in the engine and its internal packages.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/engine"
	internalErrors "github.com/rmachado/go-faceted-search/internal/errors"
	"github.com/rmachado/go-faceted-search/model"
	"github.com/rmachado/go-faceted-search/services"
)

// API holds the handler dependencies.
type API struct {
	engine *engine.Engine
}

// NewAPI creates the API handler structure.
func NewAPI(eng *engine.Engine) *API {
	return &API{engine: eng}
}

// SetupRoutes registers all routes on the router.
func SetupRoutes(router *gin.Engine, eng *engine.Engine) {
	apiHandler := NewAPI(eng)

	router.GET("/health", apiHandler.HealthCheckHandler)

	searchRoutes := router.Group("/search")
	{
		searchRoutes.GET("/history", apiHandler.GetSearchHistoryHandler)
		searchRoutes.GET("/stats", apiHandler.GetSearchStatsHandler)
		searchRoutes.GET("/popular", apiHandler.GetPopularSearchesHandler)
	}

	indexRoutes := router.Group("/indexes")
	{
		indexRoutes.POST("", apiHandler.CreateIndexHandler)
		indexRoutes.GET("", apiHandler.ListIndexesHandler)
		indexRoutes.GET("/:indexName", apiHandler.GetIndexHandler)
		indexRoutes.DELETE("/:indexName", apiHandler.DeleteIndexHandler)

		indexRoutes.PUT("/:indexName/documents", apiHandler.AddDocumentsHandler)
		indexRoutes.DELETE("/:indexName/documents", apiHandler.DeleteAllDocumentsHandler)
		indexRoutes.DELETE("/:indexName/documents/:documentId", apiHandler.DeleteDocumentHandler)

		indexRoutes.POST("/:indexName/_search", apiHandler.SearchHandler)
	}
}

// HealthCheckHandler reports liveness.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateIndexHandler registers a new index definition.
// Request Body: config.IndexSettings
func (api *API) CreateIndexHandler(c *gin.Context) {
	var settings config.IndexSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body: "+err.Error())
		return
	}

	if err := api.engine.CreateIndex(settings); err != nil {
		if errors.Is(err, internalErrors.ErrConfig) {
			sendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "index created", "name": settings.Name})
}

// ListIndexesHandler returns the names of all registered indexes.
func (api *API) ListIndexesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"indexes": api.engine.ListIndexes()})
}

// GetIndexHandler returns the settings of one index.
func (api *API) GetIndexHandler(c *gin.Context) {
	settings, err := api.engine.GetIndexSettings(c.Param("indexName"))
	if err != nil {
		sendIndexError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// DeleteIndexHandler removes an index and its data.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	if err := api.engine.DeleteIndex(c.Param("indexName")); err != nil {
		sendIndexError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "index deleted"})
}

// AddDocumentsHandler adds or replaces documents in an index.
// Request Body: []model.Document
func (api *API) AddDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	accessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		sendIndexError(c, err)
		return
	}

	var docs []model.Document
	if err := c.ShouldBindJSON(&docs); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body: "+err.Error())
		return
	}

	if err := accessor.AddDocuments(docs); err != nil {
		sendError(c, http.StatusBadRequest, "INDEXING_FAILED", err.Error())
		return
	}
	if err := api.engine.PersistIndexData(indexName); err != nil {
		sendError(c, http.StatusInternalServerError, "PERSISTENCE_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "documents added", "count": len(docs)})
}

// DeleteAllDocumentsHandler clears an index's documents.
func (api *API) DeleteAllDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	accessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		sendIndexError(c, err)
		return
	}
	if err := accessor.DeleteAllDocuments(); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if err := api.engine.PersistIndexData(indexName); err != nil {
		sendError(c, http.StatusInternalServerError, "PERSISTENCE_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all documents deleted"})
}

// DeleteDocumentHandler removes one document by id.
func (api *API) DeleteDocumentHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	accessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		sendIndexError(c, err)
		return
	}
	if err := accessor.DeleteDocument(c.Param("documentId")); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if err := api.engine.PersistIndexData(indexName); err != nil {
		sendError(c, http.StatusInternalServerError, "PERSISTENCE_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// SearchHandler executes a search against an index.
// Request Body: services.SearchQuery
func (api *API) SearchHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	accessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		sendIndexError(c, err)
		return
	}

	var query services.SearchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid request body: "+err.Error())
		return
	}
	if query.Pagination.Page == 0 {
		query.Pagination.Page = 1
	}
	if query.Pagination.Limit == 0 {
		query.Pagination.Limit = 10
	}

	result, err := accessor.Search(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, internalErrors.ErrConfig), errors.Is(err, internalErrors.ErrCompilation):
			sendError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		case errors.Is(err, internalErrors.ErrExecution):
			sendError(c, http.StatusBadGateway, "SEARCH_FAILED", err.Error())
		default:
			sendError(c, http.StatusInternalServerError, "SEARCH_FAILED", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSearchHistoryHandler returns the retained search records.
func (api *API) GetSearchHistoryHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": api.engine.SearchHistory()})
}

// GetSearchStatsHandler returns aggregate search statistics.
func (api *API) GetSearchStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.SearchStats())
}

// GetPopularSearchesHandler returns the most frequent query terms.
// Query param: limit (default 10).
func (api *API) GetPopularSearchesHandler(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, gin.H{"popular": api.engine.PopularSearches(limit)})
}

func sendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func sendIndexError(c *gin.Context, err error) {
	if errors.Is(err, internalErrors.ErrIndexNotFound) {
		sendError(c, http.StatusNotFound, "INDEX_NOT_FOUND", err.Error())
		return
	}
	sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}
