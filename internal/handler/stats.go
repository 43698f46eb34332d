package handler

import (
	"TuneRelay/internal/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats returns the aggregate counters of the service.
func Stats(c *gin.Context) {
	summary, err := statsAgg.Summary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalUsers:       summary.TotalUsers,
		ApprovedUsers:    summary.ApprovedUsers,
		TotalRequests:    summary.TotalRequests,
		UniqueDeliveries: summary.UniqueDeliveries,
		UniqueCachedURLs: summary.UniqueCachedURLs,
		TotalBytes:       summary.TotalBytes,
	})
}
