package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/address-resolver/app/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HybridCacheService cache hai tầng: L1 nhanh (Redis) + L2 persistent (MongoDB)
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// Get lấy kết quả từ L1 trước, L2 sau; hit ở L2 được đồng bộ lên L1
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.AddressResult, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi cache L1, fallback L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		hcs.logger.Debug("Cache miss (L1 & L2)", zap.String("key", key))
		return nil, false, nil
	}

	if err := hcs.l1.Set(ctx, key, result); err != nil {
		hcs.logger.Warn("Lỗi sync L2->L1", zap.Error(err), zap.String("key", key))
	}

	hcs.logger.Debug("L2 cache hit", zap.String("key", key))
	return result, true, nil
}

// Set lưu kết quả song song vào cả hai tầng
func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.AddressResult) error {
	return hcs.both(ctx, "set", func(ctx context.Context, c ICacheService) error {
		return c.Set(ctx, key, result)
	})
}

// Delete xóa key khỏi cả hai tầng
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(ctx, "delete", func(ctx context.Context, c ICacheService) error {
		return c.Delete(ctx, key)
	})
}

// Clear xóa toàn bộ cả hai tầng
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(ctx, "clear", func(ctx context.Context, c ICacheService) error {
		return c.Clear(ctx)
	}); err != nil {
		return err
	}
	hcs.logger.Info("Cleared hybrid cache")
	return nil
}

// GetStats kết hợp thống kê; chỉ lỗi khi cả hai tầng đều lỗi
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	l1Stats, l1Err := hcs.l1.GetStats(ctx)
	l2Stats, l2Err := hcs.l2.GetStats(ctx)

	switch {
	case l1Err != nil && l2Err != nil:
		return nil, fmt.Errorf("cả L1 và L2 đều lỗi: %w", errors.Join(l1Err, l2Err))
	case l1Err != nil:
		return l2Stats, nil
	case l2Err != nil:
		return l1Stats, nil
	}

	// hit ở L2 là miss ở L1, nên miss thật chỉ là miss của L2
	hits := l1Stats.TotalHits + l2Stats.TotalHits
	misses := l2Stats.TotalMiss
	return &CacheStats{
		Backend:    "hybrid",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: l2Stats.TotalItems,
	}, nil
}

// Exists kiểm tra L1 trước, L2 sau
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check L1 exists, fallback L2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

// GetTTL lấy TTL của key từ L1
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

// Close đóng cả hai tầng
func (hcs *HybridCacheService) Close() error {
	return errors.Join(hcs.l1.Close(), hcs.l2.Close())
}

func (hcs *HybridCacheService) both(ctx context.Context, op string, fn func(context.Context, ICacheService) error) error {
	var g errgroup.Group
	var l1Err, l2Err error
	g.Go(func() error {
		l1Err = fn(ctx, hcs.l1)
		return nil
	})
	g.Go(func() error {
		l2Err = fn(ctx, hcs.l2)
		return nil
	})
	_ = g.Wait()

	if l1Err != nil || l2Err != nil {
		hcs.logger.Warn("Lỗi cache", zap.String("op", op), zap.NamedError("l1", l1Err), zap.NamedError("l2", l2Err))
		return fmt.Errorf("cache %s: %w", op, errors.Join(l1Err, l2Err))
	}
	return nil
}
