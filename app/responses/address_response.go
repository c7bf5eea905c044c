package responses

import (
	"time"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/resolver"
)

// PartView dạng hiển thị của AddressPart, kèm tên đầy đủ và tên cấp
type PartView struct {
	ID        string    `json:"id"`
	Level     int       `json:"level"`
	LevelName string    `json:"level_name"`
	Name      string    `json:"name"`
	FullName  string    `json:"full_name"`
	Index     string    `json:"index,omitempty"`
	Housing   string    `json:"housing,omitempty"`
	Structure string    `json:"structure,omitempty"`
	Parent    *PartView `json:"parent,omitempty"`
}

// NewPartView chuyển cả chuỗi tổ tiên của part
func NewPartView(part *fias.AddressPart) *PartView {
	if part == nil {
		return nil
	}
	return &PartView{
		ID:        part.ID,
		Level:     int(part.Level),
		LevelName: part.Level.String(),
		Name:      part.Name,
		FullName:  part.GetFullName(),
		Index:     deref(part.Index),
		Housing:   deref(part.Housing),
		Structure: deref(part.Structure),
		Parent:    NewPartView(part.Parent),
	}
}

// AddressResponse response của mọi thao tác giải quyết địa chỉ
type AddressResponse struct {
	Operation        string                 `json:"operation"`            // Thao tác
	Status           string                 `json:"status"`               // matched / ambiguous / unmatched
	Parts            []*PartView            `json:"parts"`                // Các phần địa chỉ
	Index            string                 `json:"index,omitempty"`      // Chỉ số bưu chính của kết quả
	Kladr            *resolver.KladrAddress `json:"kladr,omitempty"`      // Bản ghi KLADR
	KladrLine        string                 `json:"kladr_line,omitempty"` // Dạng 10 trường
	ProcessingTimeMs int64                  `json:"processing_time_ms"`   // Thời gian xử lý (ms)
	CacheHit         bool                   `json:"cache_hit"`            // Có hit cache không
}

// NewAddressResponse dựng response từ kết quả service
func NewAddressResponse(result *models.AddressResult, cacheHit bool, started time.Time) AddressResponse {
	views := make([]*PartView, 0, len(result.Parts))
	for _, part := range result.Parts {
		views = append(views, NewPartView(part))
	}
	return AddressResponse{
		Operation:        result.Operation,
		Status:           result.Status,
		Parts:            views,
		Index:            result.Index,
		Kladr:            result.Kladr,
		KladrLine:        result.KladrLine,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		CacheHit:         cacheHit,
	}
}

// CacheStatsResponse response thống kê cache
type CacheStatsResponse struct {
	Enabled       bool    `json:"enabled"`
	Backend       string  `json:"backend,omitempty"`
	HitRate       float64 `json:"hit_rate"`
	TotalHits     int64   `json:"total_hits"`
	TotalMiss     int64   `json:"total_miss"`
	TotalItems    int64   `json:"total_items"`
	Processed     int64   `json:"processed"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`                // Mã lỗi
	Message   string      `json:"message"`              // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"`    // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string      `json:"request_id,omitempty"` // ID của request
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
