package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Sync routes
		v1.POST("/sync/trigger", handler.TriggerSync)
		v1.GET("/sync/status/:sync_id", handler.GetSyncStatus)
		v1.GET("/sync/history", handler.GetSyncHistory)

		// Bulk account upload routes
		v1.POST("/uploads", handler.UploadAccounts)
		v1.GET("/uploads/:file_id", handler.GetUploadStatus)
	}
}
