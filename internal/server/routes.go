package server

import "github.com/gin-gonic/gin"

func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/models", h.Models)
		v1.POST("/refine", h.Refine)
	}
}
