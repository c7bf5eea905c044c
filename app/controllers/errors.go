package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/address-resolver/app/responses"
	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/gis"
	"github.com/address-resolver/internal/resolver"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError ánh xạ lỗi domain sang HTTP status
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"

	var resErr *resolver.ResolutionError
	switch {
	case errors.Is(err, resolver.ErrInvalidID):
		status, code = http.StatusBadRequest, "INVALID_ID"
	case errors.Is(err, resolver.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &resErr):
		status, code = http.StatusBadGateway, "RESOLUTION_ERROR"
	case errors.Is(err, gis.ErrEmptyResponse):
		status, code = http.StatusBadGateway, "EMPTY_RESPONSE"
	case errors.Is(err, fias.ErrUnknownLevel), errors.Is(err, fias.ErrRootNotRegion):
		status, code = http.StatusBadGateway, "UNEXPECTED_RESPONSE"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Lỗi xử lý request", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.JSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, responses.ErrorResponse{
		Error:     "INVALID_REQUEST",
		Message:   "Request không hợp lệ: " + err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
