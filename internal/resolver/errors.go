package resolver

import (
	"errors"
	"fmt"
)

// ErrNotFound không có ứng viên nào để giải quyết
var ErrNotFound = errors.New("không tìm thấy địa chỉ")

// ResolutionError dịch vụ GIS báo mã lỗi kèm danh sách kết quả rỗng
type ResolutionError struct {
	Op   string // thao tác gây lỗi: search, children, postal
	Code string // errorCode của dịch vụ
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("không thể lấy địa chỉ (%s). ErrorCode: %s", e.Op, e.Code)
}
