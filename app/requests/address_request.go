package requests

// SearchRequest tìm phần địa chỉ theo tiền tố tên dưới một nút cha
type SearchRequest struct {
	ParentID string `form:"-"`                                             // ID cha lấy từ path; "0" hoặc GUID không hợp lệ = không có cha
	Name     string `form:"name" binding:"required"`                       // Tiền tố tên đầy đủ
	Levels   int    `form:"levels" binding:"required,min=1,max=32767"`     // Tổ hợp cấp FIAS (bitmask)
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=20000"` // Kích thước trang children cố định
	UseCache bool   `form:"use_cache,default=true"`                        // Có sử dụng cache không
}

// CheckRequest kiểm tra tên đầy đủ trùng khớp
type CheckRequest struct {
	Name     string `json:"name" binding:"required"`                   // Tên đầy đủ cần kiểm tra
	Levels   int    `json:"levels" binding:"required,min=1,max=32767"` // Tổ hợp cấp FIAS (bitmask)
	ParentID string `json:"parent_id,omitempty"`                       // ID cha
}

// LookupOptions tùy chọn chung của các truy vấn theo ID / mã
type LookupOptions struct {
	UseCache   bool   `form:"use_cache,default=true"` // Có sử dụng cache không
	RegionCode bool   `form:"region_code"`            // KLADR: có tra mã vùng không
	ParentID   string `form:"parent_id"`              // ID cha, bắt buộc để tìm nút lá (nhà)
}
