package services

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/app/requests"
	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/resolver"
	"go.uber.org/zap"
)

// AddressService điều phối resolver, tra mã vùng và cache kết quả
type AddressService struct {
	resolver  *resolver.Resolver
	regions   resolver.RegionCodeLookup
	cache     ICacheService
	logger    *zap.Logger
	startTime time.Time
	processed atomic.Int64
}

// NewAddressService tạo mới AddressService. regions và cache có thể nil.
func NewAddressService(res *resolver.Resolver, regions resolver.RegionCodeLookup, cache ICacheService, logger *zap.Logger) *AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressService{
		resolver:  res,
		regions:   regions,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Search tìm các phần địa chỉ theo tiền tố tên dưới ParentID
func (as *AddressService) Search(ctx context.Context, req requests.SearchRequest) (*models.AddressResult, bool, error) {
	levels := fias.FiasLevel(req.Levels)
	key := cacheKey(models.OperationSearch, req.ParentID, strconv.Itoa(req.Levels), strconv.Itoa(req.PageSize), req.Name)

	return as.cached(ctx, key, req.UseCache, func(ctx context.Context) (*models.AddressResult, error) {
		parts, err := as.resolver.Resolve(ctx, req.Name, levels, req.ParentID, resolver.ResolveOptions{PageSize: req.PageSize})
		if err != nil {
			return nil, err
		}
		result := models.NewAddressResult(models.OperationSearch, req.Name, parts)
		result.Levels = levels
		result.ParentID = req.ParentID
		return result, nil
	})
}

// Check giữ lại các phần có tên đầy đủ trùng khớp; không dùng cache
func (as *AddressService) Check(ctx context.Context, req requests.CheckRequest) (*models.AddressResult, error) {
	as.processed.Add(1)
	parts, err := as.resolver.Check(ctx, req.Name, fias.FiasLevel(req.Levels), req.ParentID)
	if err != nil {
		return nil, err
	}
	result := models.NewAddressResult(models.OperationCheck, req.Name, parts)
	result.Levels = fias.FiasLevel(req.Levels)
	result.ParentID = req.ParentID
	return result, nil
}

// GetByID lấy nút theo ID cùng chuỗi tổ tiên; parentID cần cho nút lá
func (as *AddressService) GetByID(ctx context.Context, id, parentID string, useCache bool) (*models.AddressResult, bool, error) {
	return as.cached(ctx, cacheKey(models.OperationByID, id, parentID), useCache, func(ctx context.Context) (*models.AddressResult, error) {
		part, index, err := as.resolver.PartByID(ctx, id, parentID)
		if err != nil {
			return nil, err
		}
		result := models.NewAddressResult(models.OperationByID, id, []*fias.AddressPart{part})
		result.Index = index
		return result, nil
	})
}

// ResolvePostalCode tìm nút chung sâu nhất của một chỉ số bưu chính
func (as *AddressService) ResolvePostalCode(ctx context.Context, code string, useCache bool) (*models.AddressResult, bool, error) {
	return as.cached(ctx, cacheKey(models.OperationPostal, code), useCache, func(ctx context.Context) (*models.AddressResult, error) {
		part, err := as.resolver.ResolvePostalCode(ctx, code)
		if err != nil {
			return nil, err
		}
		result := models.NewAddressResult(models.OperationPostal, code, []*fias.AddressPart{part})
		result.Index = code
		return result, nil
	})
}

// Kladr mã hóa nút id sang KLADR; withRegionCode bật tra mã vùng
func (as *AddressService) Kladr(ctx context.Context, id, parentID string, withRegionCode, useCache bool) (*models.AddressResult, bool, error) {
	key := cacheKey(models.OperationKladr, id, parentID, strconv.FormatBool(withRegionCode))

	return as.cached(ctx, key, useCache, func(ctx context.Context) (*models.AddressResult, error) {
		var lookup resolver.RegionCodeLookup
		if withRegionCode {
			lookup = as.regions
		}

		kladr, err := as.resolver.KladrByID(ctx, id, parentID, lookup)
		if err != nil {
			return nil, err
		}
		result := models.NewAddressResult(models.OperationKladr, id, nil)
		result.Status = models.StatusMatched
		result.Index = kladr.Index
		result.Kladr = &kladr
		result.KladrLine = kladr.String()
		return result, nil
	})
}

// ClearCache xóa toàn bộ cache kết quả
func (as *AddressService) ClearCache(ctx context.Context) error {
	if as.cache == nil {
		return nil
	}
	return as.cache.Clear(ctx)
}

// CacheStats thống kê cache; nil khi không bật cache
func (as *AddressService) CacheStats(ctx context.Context) (*CacheStats, error) {
	if as.cache == nil {
		return nil, nil
	}
	return as.cache.GetStats(ctx)
}

// CacheEnabled có cache kết quả hay không
func (as *AddressService) CacheEnabled() bool {
	return as.cache != nil
}

// GetStartTime thời điểm service khởi động
func (as *AddressService) GetStartTime() time.Time {
	return as.startTime
}

// Processed số thao tác đã thực sự gọi resolver
func (as *AddressService) Processed() int64 {
	return as.processed.Load()
}

// cached trả kết quả từ cache nếu có, nếu không thì tính bằng compute rồi lưu.
// Lỗi cache chỉ được ghi log; lỗi của compute không được cache.
func (as *AddressService) cached(ctx context.Context, key string, useCache bool, compute func(context.Context) (*models.AddressResult, error)) (*models.AddressResult, bool, error) {
	useCache = useCache && as.cache != nil

	if useCache {
		result, found, err := as.cache.Get(ctx, key)
		switch {
		case err != nil:
			as.logger.Warn("Lỗi đọc cache", zap.String("key", key), zap.Error(err))
		case found:
			as.logger.Debug("Cache hit", zap.String("key", key))
			return result, true, nil
		}
	}

	as.processed.Add(1)
	result, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	if useCache {
		if err := as.cache.Set(ctx, key, result); err != nil {
			as.logger.Warn("Lỗi ghi cache", zap.String("key", key), zap.Error(err))
		}
	}
	return result, false, nil
}

func cacheKey(operation string, args ...string) string {
	return operation + ":" + strings.Join(args, "|")
}
