// Package regioncode tra mã số vùng (2 chữ số KLADR) theo ID nút Region trong PostgreSQL.
package regioncode

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const lookupQuery = `SELECT code::text FROM region_code WHERE fias_id = $1 LIMIT 1`

const defaultCacheSize = 256

// querier phần của pgxpool.Pool mà Store cần
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store tra mã vùng; chỉ kết quả tìm thấy được giữ trong LRU
type Store struct {
	db     querier
	cache  *lru.Cache[string, string]
	logger *zap.Logger
}

// NewPool tạo pool kết nối PostgreSQL và ping thử
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse DSN postgres: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo pool postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("lỗi ping postgres: %w", err)
	}
	return pool, nil
}

// NewStore tạo mới Store trên pool
func NewStore(pool *pgxpool.Pool, cacheSize int, logger *zap.Logger) (*Store, error) {
	return newStore(pool, cacheSize, logger)
}

func newStore(db querier, cacheSize int, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo LRU mã vùng: %w", err)
	}
	return &Store{db: db, cache: cache, logger: logger}, nil
}

// Lookup trả về mã vùng của regionID; "" nếu bảng không có dòng nào
func (s *Store) Lookup(ctx context.Context, regionID string) (string, error) {
	if regionID == "" {
		return "", nil
	}
	if code, ok := s.cache.Get(regionID); ok {
		return code, nil
	}

	var code string
	err := s.db.QueryRow(ctx, lookupQuery, regionID).Scan(&code)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		s.logger.Debug("Không có mã vùng", zap.String("region_id", regionID))
		return "", nil
	case err != nil:
		return "", fmt.Errorf("lỗi truy vấn mã vùng %s: %w", regionID, err)
	}

	s.cache.Add(regionID, code)
	return code, nil
}

// Purge xóa LRU
func (s *Store) Purge() {
	s.cache.Purge()
}

// Len số mục đang giữ trong LRU
func (s *Store) Len() int {
	return s.cache.Len()
}
