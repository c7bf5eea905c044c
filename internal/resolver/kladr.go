package resolver

import (
	"context"
	"strings"

	"github.com/address-resolver/internal/fias"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ownedPlotMarker đánh dấu dạng nhà "владение", dùng quy ước dấu chấm khác
const ownedPlotMarker = "влд"

// RegionCodeLookup tra mã số vùng theo ID nút Region. Chuỗi rỗng nghĩa là không có mã.
type RegionCodeLookup interface {
	Lookup(ctx context.Context, regionID string) (string, error)
}

// RegionCodeFunc adapter cho phép dùng hàm thường làm RegionCodeLookup
type RegionCodeFunc func(ctx context.Context, regionID string) (string, error)

// Lookup gọi f(ctx, regionID)
func (f RegionCodeFunc) Lookup(ctx context.Context, regionID string) (string, error) {
	return f(ctx, regionID)
}

// KladrAddress bản ghi địa chỉ phẳng định dạng KLADR
type KladrAddress struct {
	CountryCode string `json:"country_code" bson:"country_code"`
	Index       string `json:"index" bson:"index"`
	RegionCode  string `json:"region_code" bson:"region_code"`
	District    string `json:"district" bson:"district"`
	City        string `json:"city" bson:"city"`
	Locality    string `json:"locality" bson:"locality"`
	Street      string `json:"street" bson:"street"`
	House       string `json:"house" bson:"house"`
	Building    string `json:"building" bson:"building"`
}

// AddressString 10 trường ngăn cách bởi dấu phẩy, trường cuối luôn rỗng
func (k KladrAddress) AddressString() string {
	return strings.Join([]string{
		k.CountryCode,
		k.Index,
		k.RegionCode,
		k.District,
		k.City,
		k.Locality,
		k.Street,
		k.House,
		k.Building,
		"",
	}, ",")
}

func (k KladrAddress) String() string {
	return k.AddressString()
}

// EncodeKladr làm phẳng chuỗi part thành bản ghi KLADR.
// postalIndex là chỉ số của kết quả chứa part; lookup có thể nil.
// Lỗi tra mã vùng chỉ được ghi log, mã vùng khi đó để trống.
func (r *Resolver) EncodeKladr(ctx context.Context, part *fias.AddressPart, postalIndex string, lookup RegionCodeLookup) KladrAddress {
	upper := cases.Upper(language.Russian)
	kladr := KladrAddress{CountryCode: r.cfg.CountryCode}
	if part == nil {
		return kladr
	}

	if part.Level != fias.Region && part.Level != fias.City {
		kladr.Index = postalIndex
	}

	if lookup != nil {
		regionID := part.Root().ID
		code, err := lookup.Lookup(ctx, regionID)
		if err != nil {
			r.logger.Warn("Không tra được mã vùng", zap.String("region_id", regionID), zap.Error(err))
		} else {
			kladr.RegionCode = code
		}
	}

	nameAt := func(levels fias.FiasLevel) string {
		if node := part.FirstAncestor(atLevel(levels)); node != nil {
			return upper.String(node.Name)
		}
		return ""
	}

	kladr.District = nameAt(fias.District)
	kladr.City = nameAt(fias.City)
	kladr.Locality = nameAt(fias.Locality | fias.IntraArea)
	kladr.Street = nameAt(fias.Street | fias.PlanStructure)

	if house := part.FirstAncestor(atLevel(fias.House)); house != nil {
		name := house.Name
		if strings.Contains(strings.ToLower(name), ownedPlotMarker) {
			name = strings.ReplaceAll(name, ". ", "")
		}
		kladr.House = upper.String(name)

		if house.Housing != nil {
			kladr.Building = *house.Housing
		}
		if house.Structure != nil && *house.Structure != "" {
			kladr.Building += "СТР" + *house.Structure
		}
	}

	return kladr
}

// KladrByID lấy nút theo id (xem PartByID về parentID) rồi mã hóa sang KLADR
func (r *Resolver) KladrByID(ctx context.Context, id, parentID string, lookup RegionCodeLookup) (KladrAddress, error) {
	part, index, err := r.PartByID(ctx, id, parentID)
	if err != nil {
		return KladrAddress{}, err
	}
	return r.EncodeKladr(ctx, part, index, lookup), nil
}

func atLevel(levels fias.FiasLevel) func(*fias.AddressPart) bool {
	return func(p *fias.AddressPart) bool {
		return levels.Has(p.Level)
	}
}
