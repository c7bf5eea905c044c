package routes

import (
	"net/http"

	"github.com/address-resolver/app/controllers"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		fiasGroup := v1.Group("/fias")
		{
			fiasGroup.GET("/address/:id", addressController.GetByID)
			fiasGroup.GET("/address/:id/search", addressController.Search)
			fiasGroup.GET("/address/:id/kladr", addressController.Kladr)
			fiasGroup.GET("/postal/:code", addressController.PostalCode)
			fiasGroup.POST("/check", addressController.Check)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/cache/clear", adminController.ClearCache)
			admin.GET("/cache/stats", adminController.CacheStats)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.Ready)
	router.GET("/live", addressController.HealthCheck)
}

// SetupAllRoutes thiết lập tất cả routes
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// setupMiddleware thiết lập middleware cho router
func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
