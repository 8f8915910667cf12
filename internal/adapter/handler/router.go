package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videogen-team/videogen/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg               *config.Config
	generationHandler *Generation
	providersHandler  *Providers
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, generationHandler *Generation, providersHandler *Providers) *Router {
	return &Router{
		cfg:               cfg,
		generationHandler: generationHandler,
		providersHandler:  providersHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupVideoRoutes(v1)
	rt.setupProviderRoutes(v1)
}

// setupVideoRoutes configures video generation routes
func (rt *Router) setupVideoRoutes(g *echo.Group) {
	videoGroup := g.Group("/videos")

	videoGroup.POST("", rt.generationHandler.CreateGeneration)
	videoGroup.GET("", rt.generationHandler.ListGenerations)
	videoGroup.GET("/:id", rt.generationHandler.GetGeneration)
	videoGroup.GET("/:id/file", rt.generationHandler.GetVideoFile)
}

// setupProviderRoutes configures provider smoke-test routes
func (rt *Router) setupProviderRoutes(g *echo.Group) {
	providerGroup := g.Group("/providers")

	providerGroup.POST("/test-script", rt.providersHandler.TestScript)
	providerGroup.POST("/test-image", rt.providersHandler.TestImage)
	providerGroup.POST("/test-speech", rt.providersHandler.TestSpeech)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
