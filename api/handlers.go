package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devinalusiana15/KMS-OOP/config"
	"github.com/devinalusiana15/KMS-OOP/internal/engine"
	"github.com/devinalusiana15/KMS-OOP/model"
	"github.com/devinalusiana15/KMS-OOP/services"
	"github.com/devinalusiana15/KMS-OOP/store"
)

// Backend is the question answering engine the handlers call into.
type Backend interface {
	Ingest(ctx context.Context, name string, content []byte) (engine.IngestResult, error)
	ListDocuments(ctx context.Context) ([]engine.DocumentSummary, error)
	GetDocument(ctx context.Context, id int64) (engine.DocumentDetail, error)
	Ask(ctx context.Context, question string) (services.Answer, error)
	Stats(ctx context.Context) (store.Stats, error)
	Refinements(ctx context.Context) ([]model.Refinement, error)
}

// API holds dependencies for API handlers.
type API struct {
	engine Backend
}

// NewAPI creates a new API handler structure.
func NewAPI(engine Backend) *API {
	return &API{engine: engine}
}

// NewRouter creates a gin router with the service middleware and routes.
// Request logging and panic recovery are added by the caller.
func NewRouter(engine Backend, cfg config.ServerConfig, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware...)
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
	router.Use(RequestSizeLimitMiddleware(cfg.MaxUploadBytes))
	SetupRoutes(router, engine)
	return router
}

// SetupRoutes defines all the API routes of the service.
func SetupRoutes(router *gin.Engine, engine Backend) {
	apiHandler := NewAPI(engine)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/stats", apiHandler.StatsHandler)

	// Document routes
	docRoutes := router.Group("/documents")
	{
		docRoutes.POST("", apiHandler.UploadDocumentHandler)         // Upload and index a PDF
		docRoutes.GET("", apiHandler.ListDocumentsHandler)           // List documents with previews
		docRoutes.GET("/:documentId", apiHandler.GetDocumentHandler) // Get document with full text
	}

	// Question routes
	router.POST("/questions", apiHandler.AskHandler)
	router.GET("/refinements", apiHandler.ListRefinementsHandler)
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "kms",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}

// StatsHandler returns the row counts of the store.
func (api *API) StatsHandler(c *gin.Context) {
	stats, err := api.engine.Stats(c.Request.Context())
	if err != nil {
		SendInternalError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListRefinementsHandler returns the questions that could not be answered.
func (api *API) ListRefinementsHandler(c *gin.Context) {
	refinements, err := api.engine.Refinements(c.Request.Context())
	if err != nil {
		SendInternalError(c, "listing refinements", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"refinements": refinements,
		"total":       len(refinements),
	})
}
