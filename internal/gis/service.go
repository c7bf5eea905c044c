package gis

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse dịch vụ trả về body rỗng
	ErrEmptyResponse = errors.New("không nhận được địa chỉ: phản hồi rỗng")
	// ErrNotFound không tìm thấy địa chỉ theo ID
	ErrNotFound = errors.New("không tìm thấy địa chỉ")
)

// ChildrenQuery tham số truy vấn con của một nút
type ChildrenQuery struct {
	ParentID string
	PageSize int    // 0 = mặc định của client
	Filter   string // lọc theo văn bản, có thể rỗng
}

// SuggestionService interface tối thiểu mà engine cần từ dịch vụ gợi ý
type SuggestionService interface {
	// Search tìm kiếm địa chỉ theo văn bản tự do
	Search(ctx context.Context, text string) (*SearchResponse, error)

	// Children lấy các địa chỉ con của ParentID
	Children(ctx context.Context, query ChildrenQuery) (*ChildrenResponse, error)

	// ByID lấy một kết quả có chứa nút id trong chuỗi phần tử
	ByID(ctx context.Context, id string) (*Address, error)
}
