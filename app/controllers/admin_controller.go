package controllers

import (
	"net/http"
	"time"

	"github.com/address-resolver/app/responses"
	"github.com/address-resolver/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminController controller xử lý các request admin
type AdminController struct {
	addressService *services.AddressService
	logger         *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(addressService *services.AddressService, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{addressService: addressService, logger: logger}
}

// ClearCache xóa toàn bộ cache kết quả
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.addressService.ClearCache(c.Request.Context()); err != nil {
		ac.logger.Error("Lỗi clear cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "CACHE_CLEAR_ERROR",
			Message:   "Lỗi clear cache: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	ac.logger.Info("Đã clear cache")
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Cache đã được xóa",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// CacheStats thống kê cache và số thao tác đã xử lý
func (ac *AdminController) CacheStats(c *gin.Context) {
	resp := responses.CacheStatsResponse{
		Enabled:       ac.addressService.CacheEnabled(),
		Processed:     ac.addressService.Processed(),
		UptimeSeconds: int64(time.Since(ac.addressService.GetStartTime()).Seconds()),
	}

	stats, err := ac.addressService.CacheStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy thống kê cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "CACHE_STATS_ERROR",
			Message:   "Lỗi lấy thống kê cache: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}
	if stats != nil {
		resp.Backend = stats.Backend
		resp.HitRate = stats.HitRate
		resp.TotalHits = stats.TotalHits
		resp.TotalMiss = stats.TotalMiss
		resp.TotalItems = stats.TotalItems
	}

	c.JSON(http.StatusOK, resp)
}
