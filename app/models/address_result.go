package models

import (
	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/resolver"
)

// AddressResult kết quả một thao tác giải quyết địa chỉ, cũng là giá trị được cache
type AddressResult struct {
	Operation string                 `json:"operation" bson:"operation"`                   // Thao tác: search, check, by_id, postal, kladr
	Query     string                 `json:"query,omitempty" bson:"query,omitempty"`       // Văn bản truy vấn / mã bưu chính / ID
	Levels    fias.FiasLevel         `json:"levels,omitempty" bson:"levels,omitempty"`     // Tổ hợp cấp được phép
	ParentID  string                 `json:"parent_id,omitempty" bson:"parent_id,omitempty"` // ID cha (nếu có)
	Index     string                 `json:"index,omitempty" bson:"index,omitempty"`       // Chỉ số bưu chính của kết quả chứa nút
	Parts     []*fias.AddressPart    `json:"parts" bson:"parts"`                           // Các phần địa chỉ
	Kladr     *resolver.KladrAddress `json:"kladr,omitempty" bson:"kladr,omitempty"`       // Bản ghi KLADR
	KladrLine string                 `json:"kladr_line,omitempty" bson:"kladr_line,omitempty"` // Dạng 10 trường
	Status    string                 `json:"status" bson:"status"`                         // Trạng thái xử lý
}

// Status constants
const (
	StatusMatched   = "matched"
	StatusAmbiguous = "ambiguous"
	StatusUnmatched = "unmatched"
)

// Operation constants
const (
	OperationSearch = "search"
	OperationCheck  = "check"
	OperationByID   = "by_id"
	OperationPostal = "postal"
	OperationKladr  = "kladr"
)

// NewAddressResult tạo kết quả và tính Status theo số phần địa chỉ
func NewAddressResult(operation, query string, parts []*fias.AddressPart) *AddressResult {
	if parts == nil {
		parts = []*fias.AddressPart{}
	}
	result := &AddressResult{Operation: operation, Query: query, Parts: parts}
	switch len(parts) {
	case 0:
		result.Status = StatusUnmatched
	case 1:
		result.Status = StatusMatched
	default:
		result.Status = StatusAmbiguous
	}
	return result
}

// IsValidStatus kiểm tra status có hợp lệ không
func (ar *AddressResult) IsValidStatus() bool {
	switch ar.Status {
	case StatusMatched, StatusAmbiguous, StatusUnmatched:
		return true
	}
	return false
}

// First phần địa chỉ đầu tiên hoặc nil
func (ar *AddressResult) First() *fias.AddressPart {
	if len(ar.Parts) == 0 {
		return nil
	}
	return ar.Parts[0]
}
