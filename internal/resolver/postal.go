package resolver

import (
	"context"
	"fmt"

	"github.com/address-resolver/internal/fias"
	"go.uber.org/zap"
)

// ResolvePostalCode tìm nút duy nhất mà chỉ số bưu chính code xác định.
//
// Mọi kết quả tìm kiếm theo code được dựng thành chuỗi đầy đủ rồi hợp lại thành
// một cây cha -> tập con. Từ gốc đi xuống chừng nào nút hiện tại có đúng một con;
// nút dừng (không con hoặc nhiều con) là nút chung sâu nhất của mọi ứng viên.
func (r *Resolver) ResolvePostalCode(ctx context.Context, code string) (*fias.AddressPart, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: chỉ số bưu chính rỗng", ErrNotFound)
	}

	matches, err := r.search(ctx, code)
	if err != nil {
		return nil, err
	}

	children := make(map[string]map[string]struct{})
	candidates := make([]*fias.AddressPart, 0, len(matches))
	for _, match := range matches {
		i := fias.NodeIndex(match.Elements)
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
		candidates = append(candidates, part)

		for node := part; node.Parent != nil; node = node.Parent {
			set, ok := children[node.Parent.ID]
			if !ok {
				set = make(map[string]struct{})
				children[node.Parent.ID] = set
			}
			set[node.ID] = struct{}{}
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: chỉ số bưu chính %s", ErrNotFound, code)
	}

	target := candidates[0].Root().ID
	for {
		next, ok := children[target]
		if !ok || len(next) != 1 {
			break
		}
		for id := range next {
			target = id
		}
	}

	for _, candidate := range candidates {
		if node := candidate.StartsWith(target); node != nil {
			r.logger.Debug("Giải quyết chỉ số bưu chính",
				zap.String("code", code),
				zap.Int("candidates", len(candidates)),
				zap.String("target", target),
				zap.Stringer("level", node.Level))
			return node, nil
		}
	}
	return nil, fmt.Errorf("%w: chỉ số bưu chính %s", ErrNotFound, code)
}
