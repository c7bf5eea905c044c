package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Address Resolver Service",
			"version": "1.0.0",
			"docs":    "/docs",
		})
	})

	router.GET("/docs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"api": "Address Resolver API v1",
			"endpoints": map[string]string{
				"search":      "GET /v1/fias/address/:id/search?name=&levels=&page_size=",
				"by_id":       "GET /v1/fias/address/:id",
				"kladr":       "GET /v1/fias/address/:id/kladr?region_code=true",
				"postal":      "GET /v1/fias/postal/:code",
				"check":       "POST /v1/fias/check",
				"cache_clear": "POST /v1/admin/cache/clear",
				"cache_stats": "GET /v1/admin/cache/stats",
				"health":      "GET /health",
			},
		})
	})
}
