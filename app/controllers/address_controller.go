package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/address-resolver/app/requests"
	"github.com/address-resolver/app/responses"
	"github.com/address-resolver/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

// Probe kiểm tra một phụ thuộc cho readiness
type Probe func(ctx context.Context) error

// AddressController controller xử lý các request liên quan đến địa chỉ
type AddressController struct {
	addressService *services.AddressService
	probes         map[string]Probe
	logger         *zap.Logger
}

// NewAddressController tạo mới AddressController
func NewAddressController(addressService *services.AddressService, probes map[string]Probe, logger *zap.Logger) *AddressController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressController{
		addressService: addressService,
		probes:         probes,
		logger:         logger,
	}
}

// Search tìm phần địa chỉ theo tiền tố tên dưới nút cha :id
func (ac *AddressController) Search(c *gin.Context) {
	var req requests.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ParentID = c.Param("id")

	started := time.Now()
	result, hit, err := ac.addressService.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewAddressResponse(result, hit, started))
}

// Check kiểm tra tên đầy đủ trùng khớp
func (ac *AddressController) Check(c *gin.Context) {
	var req requests.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	started := time.Now()
	result, err := ac.addressService.Check(c.Request.Context(), req)
	if err != nil {
		writeError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewAddressResponse(result, false, started))
}

// GetByID lấy nút :id cùng chuỗi tổ tiên; nhà cần thêm ?parent_id=
func (ac *AddressController) GetByID(c *gin.Context) {
	var opts requests.LookupOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		badRequest(c, err)
		return
	}

	started := time.Now()
	result, hit, err := ac.addressService.GetByID(c.Request.Context(), c.Param("id"), opts.ParentID, opts.UseCache)
	if err != nil {
		writeError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewAddressResponse(result, hit, started))
}

// PostalCode tìm nút chung sâu nhất của chỉ số bưu chính :code
func (ac *AddressController) PostalCode(c *gin.Context) {
	var opts requests.LookupOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		badRequest(c, err)
		return
	}

	started := time.Now()
	result, hit, err := ac.addressService.ResolvePostalCode(c.Request.Context(), c.Param("code"), opts.UseCache)
	if err != nil {
		writeError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewAddressResponse(result, hit, started))
}

// Kladr mã hóa nút :id sang bản ghi KLADR; nhà cần thêm ?parent_id=
func (ac *AddressController) Kladr(c *gin.Context) {
	var opts requests.LookupOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		badRequest(c, err)
		return
	}

	started := time.Now()
	result, hit, err := ac.addressService.Kladr(c.Request.Context(), c.Param("id"), opts.ParentID, opts.RegionCode, opts.UseCache)
	if err != nil {
		writeError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewAddressResponse(result, hit, started))
}

// HealthCheck kiểm tra sức khỏe service (liveness)
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(ac.addressService.GetStartTime()).String(),
		Version:   version,
		Services:  map[string]string{"address_resolver": "healthy"},
	})
}

// Ready kiểm tra từng phụ thuộc; 503 nếu có phụ thuộc lỗi
func (ac *AddressController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	states := map[string]string{"address_resolver": "healthy"}
	for name, probe := range ac.probes {
		if err := probe(ctx); err != nil {
			ac.logger.Warn("Readiness probe lỗi", zap.String("service", name), zap.Error(err))
			states[name] = "unhealthy"
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		states[name] = "healthy"
	}

	c.JSON(code, responses.HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(ac.addressService.GetStartTime()).String(),
		Version:   version,
		Services:  states,
	})
}
