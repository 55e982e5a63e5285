package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/cache"
)

// CacheHandler exposes read-only cache diagnostics next to /metrics.
type CacheHandler struct {
	Cache cache.Cache
}

func NewCacheHandler(cacheInstance cache.Cache) *CacheHandler {
	return &CacheHandler{Cache: cacheInstance}
}

// GET /cache/health
func (h *CacheHandler) GetCacheHealth(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "disabled",
			"healthy": false,
		})
		return
	}

	if err := h.Cache.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"healthy": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"healthy": true,
	})
}

// GET /cache/stats
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	stats := gin.H{"enabled": h.Cache != nil}
	if h.Cache != nil {
		stats["cache"] = h.Cache.Stats()
	}
	c.JSON(http.StatusOK, stats)
}
