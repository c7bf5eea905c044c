// Package resolver giải quyết đoạn địa chỉ tự do thành cây AddressPart
// dựa trên kết quả của dịch vụ gợi ý GIS.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/gis"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidID ID địa chỉ không phải GUID hợp lệ
var ErrInvalidID = errors.New("ID địa chỉ không hợp lệ")

// Config tham số của Resolver
type Config struct {
	PageStep    int    // khoảng cách giữa hai kích thước trang khi dò
	MaxPageSize int    // giới hạn trên của countOnPage khi dò
	CountryCode string // mã quốc gia trong bản ghi KLADR
}

// DefaultConfig cấu hình mặc định
func DefaultConfig() Config {
	return Config{
		PageStep:    500,
		MaxPageSize: 20000,
		CountryCode: "643",
	}
}

// ResolveOptions tùy chọn cho một lần Resolve
type ResolveOptions struct {
	PageSize int // > 0: gọi children đúng một lần với kích thước này, bỏ qua dò trang
}

// Resolver điều phối truy vấn dịch vụ gợi ý và lọc kết quả.
// Không giữ trạng thái giữa các lần gọi.
type Resolver struct {
	svc    gis.SuggestionService
	cfg    Config
	logger *zap.Logger
}

// New tạo mới Resolver
func New(svc gis.SuggestionService, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.PageStep <= 0 {
		cfg.PageStep = def.PageStep
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = def.MaxPageSize
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = def.CountryCode
	}
	return &Resolver{svc: svc, cfg: cfg, logger: logger}
}

// Resolve trả về các phần địa chỉ có cấp thuộc levels, tên đầy đủ bắt đầu bằng query
// (không phân biệt hoa thường) và, khi có parentID, nằm dưới parentID.
// parentID không hợp lệ được coi như không có. Thứ tự kết quả không xác định.
func (r *Resolver) Resolve(ctx context.Context, query string, levels fias.FiasLevel, parentID string, opts ResolveOptions) ([]*fias.AddressPart, error) {
	parentID = normalizeID(parentID)
	if query == "" {
		return nil, nil
	}

	gisLevels := fias.ToGis(levels)
	if len(gisLevels) == 0 {
		return nil, nil
	}

	var (
		matches []gis.Address
		scoped  bool
		err     error
	)

	switch {
	case gisLevels.Contains(fias.GisRegion):
		// cấp Region không hỗ trợ giới hạn theo cha
		matches, err = r.search(ctx, query)
	case parentID == "":
		return nil, nil
	default:
		scoped = true
		matches, err = r.fetchChildren(ctx, parentID, query, opts.PageSize)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(matches))
	parts := make([]*fias.AddressPart, 0, len(matches))
	for _, match := range matches {
		i := fias.FirstIndex(match.Elements, gisLevels)
		if i < 0 {
			continue
		}

		part, err := r.buildPart(match, i)
		if err != nil {
			return nil, err
		}
		if part == nil {
			continue
		}

		if _, ok := seen[part.ID]; ok {
			continue
		}
		if !hasPrefixFold(part.GetFullName(), query) {
			continue
		}
		if scoped && part.StartsWith(parentID) == nil {
			continue
		}

		seen[part.ID] = struct{}{}
		parts = append(parts, part)
	}

	r.logger.Debug("Resolve hoàn thành",
		zap.String("query", query),
		zap.Stringer("levels", levels),
		zap.String("parent_id", parentID),
		zap.Int("matches", len(matches)),
		zap.Int("parts", len(parts)))

	return parts, nil
}

// Check giống Resolve nhưng chỉ giữ các phần có tên đầy đủ trùng khớp name
func (r *Resolver) Check(ctx context.Context, name string, levels fias.FiasLevel, parentID string) ([]*fias.AddressPart, error) {
	parts, err := r.Resolve(ctx, name, levels, parentID, ResolveOptions{})
	if err != nil {
		return nil, err
	}

	exact := parts[:0]
	for _, part := range parts {
		if part.GetFullName() == name {
			exact = append(exact, part)
		}
	}
	return exact, nil
}

// PartByID lấy nút id cùng chuỗi tổ tiên; trả kèm chỉ số bưu chính của kết quả chứa nó.
// Nút lá (nhà) không có con nên chỉ tìm được khi biết parentID: khi đó nút được
// chọn trong danh sách con của parentID.
func (r *Resolver) PartByID(ctx context.Context, id, parentID string) (*fias.AddressPart, string, error) {
	normalized := normalizeID(id)
	if normalized == "" {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	match, err := r.svc.ByID(ctx, normalized)
	switch {
	case errors.Is(err, gis.ErrNotFound):
		return r.leafByID(ctx, normalized, normalizeID(parentID))
	case err != nil:
		return nil, "", err
	}

	part, err := partWithID(*match, normalized)
	if err != nil {
		return nil, "", err
	}
	if part == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, normalized)
	}
	return part, match.Index, nil
}

func (r *Resolver) leafByID(ctx context.Context, id, parentID string) (*fias.AddressPart, string, error) {
	if parentID == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	matches, err := r.fetchChildren(ctx, parentID, "", 0)
	if err != nil {
		return nil, "", err
	}
	for _, match := range matches {
		part, err := partWithID(match, id)
		if err != nil {
			return nil, "", err
		}
		if part != nil && part.StartsWith(parentID) != nil {
			return part, match.Index, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s dưới %s", ErrNotFound, id, parentID)
}

// partWithID dựng phần địa chỉ tại phần tử có ID id; nil nếu chuỗi không chứa id
func partWithID(match gis.Address, id string) (*fias.AddressPart, error) {
	for i, element := range match.Elements {
		if strings.EqualFold(element.ID, id) {
			return fias.BuildAddressPart(match.Elements, match.Index, i)
		}
	}
	return nil, nil
}

// buildPart dựng phần địa chỉ tại elements[i]. Chuỗi có gốc không phải Region
// bị bỏ qua (nil, nil) kèm cảnh báo; lỗi bảng cấp vẫn được trả về.
func (r *Resolver) buildPart(match gis.Address, i int) (*fias.AddressPart, error) {
	part, err := fias.BuildAddressPart(match.Elements, match.Index, i)
	switch {
	case errors.Is(err, fias.ErrRootNotRegion):
		r.logger.Warn("Bỏ qua kết quả có chuỗi phần tử không hợp lệ",
			zap.String("address_guid", match.AddressGUID), zap.Error(err))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("lỗi dựng phần địa chỉ %s: %w", match.AddressGUID, err)
	}
	return part, nil
}

func (r *Resolver) search(ctx context.Context, text string) ([]gis.Address, error) {
	resp, err := r.svc.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, gis.ErrEmptyResponse
	}
	if resp.ErrorCode != "" && len(resp.Addr) == 0 {
		return nil, &ResolutionError{Op: "search", Code: resp.ErrorCode}
	}
	return resp.Addr, nil
}

func (r *Resolver) children(ctx context.Context, parentID, filter string, pageSize int) ([]gis.Address, error) {
	resp, err := r.svc.Children(ctx, gis.ChildrenQuery{ParentID: parentID, PageSize: pageSize, Filter: filter})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, gis.ErrEmptyResponse
	}
	if resp.ErrorCode != "" && len(resp.Children) == 0 {
		return nil, &ResolutionError{Op: "children", Code: resp.ErrorCode}
	}
	return resp.Children, nil
}

// fetchChildren lấy con của parentID. Không có pageSize thì dò theo cặp kích thước
// cách nhau PageStep cho tới khi số kết quả không tăng nữa, vì máy chủ cắt trang ngầm.
// Đây là xấp xỉ: không đảm bảo lấy đủ nếu máy chủ dừng đúng ở bội số của PageStep.
func (r *Resolver) fetchChildren(ctx context.Context, parentID, filter string, pageSize int) ([]gis.Address, error) {
	if pageSize > 0 {
		return r.children(ctx, parentID, filter, pageSize)
	}

	small := r.cfg.PageStep
	for {
		large := small + r.cfg.PageStep
		if large > r.cfg.MaxPageSize {
			r.logger.Warn("Đạt giới hạn countOnPage, kết quả có thể thiếu",
				zap.String("parent_id", parentID),
				zap.Int("max_page_size", r.cfg.MaxPageSize))
			return r.children(ctx, parentID, filter, r.cfg.MaxPageSize)
		}

		var smallRes, largeRes []gis.Address
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			smallRes, err = r.children(gctx, parentID, filter, small)
			return err
		})
		g.Go(func() error {
			var err error
			largeRes, err = r.children(gctx, parentID, filter, large)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		r.logger.Debug("Dò trang children",
			zap.String("parent_id", parentID),
			zap.Int("small", small), zap.Int("small_count", len(smallRes)),
			zap.Int("large", large), zap.Int("large_count", len(largeRes)))

		if len(largeRes) <= len(smallRes) {
			return largeRes, nil
		}
		small = large
	}
}

// normalizeID trả về dạng chuẩn của GUID, hoặc "" nếu không hợp lệ
func normalizeID(id string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ""
	}
	return parsed.String()
}

func hasPrefixFold(s, prefix string) bool {
	lower := cases.Lower(language.Russian)
	return strings.HasPrefix(lower.String(s), lower.String(prefix))
}
