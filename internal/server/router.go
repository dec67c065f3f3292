package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/courseforge/courseforge-backend/internal/handlers"
	"github.com/courseforge/courseforge-backend/internal/middleware"
)

type RouterConfig struct {
	HealthcheckHandler   *handlers.HealthcheckHandler
	DocumentHandler      *handlers.DocumentHandler
	RequestLogMiddleware *middleware.RequestLogMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(cfg.RequestLogMiddleware.LogRequests())

	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)

	api := router.Group("/api")
	{
		api.POST("/courses/:courseId/documents/generate", cfg.DocumentHandler.GenerateDocuments)
		api.GET("/courses/:courseId/documents", cfg.DocumentHandler.ListCourseDocuments)
		api.GET("/documents/:id/download", cfg.DocumentHandler.DownloadDocument)
		api.DELETE("/documents/:id", cfg.DocumentHandler.DeleteDocument)
	}

	return router
}
