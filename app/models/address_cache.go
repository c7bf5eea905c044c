package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressCache document cache kết quả trong MongoDB
type AddressCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CacheKey     string             `bson:"cache_key" json:"cache_key"`         // Khóa cache (thao tác + tham số)
	Operation    string             `bson:"operation" json:"operation"`         // Thao tác tạo ra kết quả
	Result       AddressResult      `bson:"result" json:"result"`               // Kết quả
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`       // Thời gian tạo
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"` // Lần truy cập cuối
	AccessCount  int                `bson:"access_count" json:"access_count"`   // Số lần truy cập
}

// NewAddressCache tạo mới một AddressCache
func NewAddressCache(key string, result AddressResult) *AddressCache {
	now := time.Now()
	return &AddressCache{
		CacheKey:     key,
		Operation:    result.Operation,
		Result:       result,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
}

// UpdateAccess cập nhật thông tin truy cập
func (ac *AddressCache) UpdateAccess() {
	ac.LastAccessed = time.Now()
	ac.AccessCount++
}

// IsExpired kiểm tra cache có hết hạn không (dựa trên thời gian tạo)
func (ac *AddressCache) IsExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(ac.CreatedAt) > ttl
}
