package router

import (
	"TuneRelay/internal/handler"
	"TuneRelay/internal/stats"
	"TuneRelay/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds the admin/health API routes.
func InitRouter(agg *stats.Aggregator) *gin.Engine {
	handler.Init(agg)

	r := gin.Default()
	r.GET("/healthz", handler.Health)

	api := r.Group("/api")
	{
		api.POST("/token", handler.Token)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())
		auth.GET("/stats", handler.Stats)
	}
	return r
}
