// Package fias chứa hai hệ cấp địa chỉ (FIAS cũ và cấp của dịch vụ gợi ý GIS),
// bảng ánh xạ giữa chúng và cây AddressPart dựng từ chuỗi phần tử địa chỉ.
package fias

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FiasLevel cấp địa chỉ theo phân loại FIAS cũ dạng bit flag.
// Một giá trị có thể gộp nhiều cờ khi dùng làm bộ lọc tìm kiếm,
// nhưng một AddressPart luôn mang đúng một cờ.
type FiasLevel int

const (
	Region          FiasLevel = 1
	AO              FiasLevel = 2
	District        FiasLevel = 4
	City            FiasLevel = 8
	IntraArea       FiasLevel = 16
	Locality        FiasLevel = 32
	Street          FiasLevel = 64
	House           FiasLevel = 128
	AddTerritory    FiasLevel = 256
	SubAddTerritory FiasLevel = 512
	Flat            FiasLevel = 1024
	Settlements     FiasLevel = 2048
	PlanStructure   FiasLevel = 4096
	LandPlot        FiasLevel = 8192
	AllLevels       FiasLevel = 16384
)

// GisLevel cấp địa chỉ của dịch vụ gợi ý, luôn là một giá trị đơn.
type GisLevel int

const (
	GisRegion        GisLevel = 1
	GisAO            GisLevel = 2
	GisDistrict      GisLevel = 3
	GisCity          GisLevel = 4
	GisIntraArea     GisLevel = 5
	GisLocality      GisLevel = 6
	GisStreet        GisLevel = 7
	GisHouse         GisLevel = 8
	GisFlat          GisLevel = 9
	GisSettlements   GisLevel = 10
	GisPlanStructure GisLevel = 65
	GisLandPlot      GisLevel = 75
)

// AOSuffix hậu tố tên phân biệt khu tự trị: dịch vụ GIS gộp AO vào Region.
const AOSuffix = "АО"

// ErrUnknownLevel cấp GIS nằm ngoài bảng ánh xạ đóng.
var ErrUnknownLevel = errors.New("cấp địa chỉ GIS không có trong bảng ánh xạ")

// fiasLevels liệt kê mọi cờ đơn theo thứ tự tăng dần.
var fiasLevels = []FiasLevel{
	Region, AO, District, City, IntraArea, Locality, Street, House,
	AddTerritory, SubAddTerritory, Flat, Settlements, PlanStructure, LandPlot, AllLevels,
}

var gisLevels = []GisLevel{
	GisRegion, GisAO, GisDistrict, GisCity, GisIntraArea, GisLocality, GisStreet,
	GisHouse, GisFlat, GisSettlements, GisPlanStructure, GisLandPlot,
}

// LegacyFold các cấp FIAS lịch sử được gộp về một cấp chuẩn.
var LegacyFold = map[FiasLevel]FiasLevel{
	AO:              Region,
	SubAddTerritory: Street,
	AddTerritory:    PlanStructure,
}

// fiasToGis ánh xạ mỗi cờ đơn (sau khi gộp) sang cấp GIS cùng tên.
var fiasToGis = map[FiasLevel]GisLevel{
	Region:        GisRegion,
	District:      GisDistrict,
	City:          GisCity,
	IntraArea:     GisIntraArea,
	Locality:      GisLocality,
	Street:        GisStreet,
	House:         GisHouse,
	Flat:          GisFlat,
	Settlements:   GisSettlements,
	PlanStructure: GisPlanStructure,
	LandPlot:      GisLandPlot,
}

var gisToFias = map[GisLevel]FiasLevel{
	GisRegion:        Region,
	GisAO:            AO,
	GisDistrict:      District,
	GisCity:          City,
	GisIntraArea:     IntraArea,
	GisLocality:      Locality,
	GisStreet:        Street,
	GisHouse:         House,
	GisFlat:          Flat,
	GisSettlements:   Settlements,
	GisPlanStructure: PlanStructure,
	GisLandPlot:      LandPlot,
}

var fiasNames = map[FiasLevel]string{
	Region: "Region", AO: "AO", District: "District", City: "City", IntraArea: "IntraArea",
	Locality: "Locality", Street: "Street", House: "House", AddTerritory: "AddTerritory",
	SubAddTerritory: "SubAddTerritory", Flat: "Flat", Settlements: "Settlements",
	PlanStructure: "PlanStructure", LandPlot: "LandPlot", AllLevels: "AllLevels",
}

var gisNames = map[GisLevel]string{
	GisRegion: "Region", GisAO: "AO", GisDistrict: "District", GisCity: "City",
	GisIntraArea: "IntraArea", GisLocality: "Locality", GisStreet: "Street", GisHouse: "House",
	GisFlat: "Flat", GisSettlements: "Settlements", GisPlanStructure: "PlanStructure",
	GisLandPlot: "LandPlot",
}

// Has kiểm tra combo có chứa cờ flag không
func (l FiasLevel) Has(flag FiasLevel) bool {
	return flag != 0 && l&flag == flag
}

// Flags tách combo thành các cờ đơn
func (l FiasLevel) Flags() []FiasLevel {
	var flags []FiasLevel
	for _, f := range fiasLevels {
		if l.Has(f) {
			flags = append(flags, f)
		}
	}
	return flags
}

func (l FiasLevel) String() string {
	flags := l.Flags()
	if len(flags) == 0 {
		return fmt.Sprintf("FiasLevel(%d)", int(l))
	}
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, fiasNames[f])
	}
	return strings.Join(names, "|")
}

func (l GisLevel) String() string {
	if name, ok := gisNames[l]; ok {
		return name
	}
	return fmt.Sprintf("GisLevel(%d)", int(l))
}

// GisLevelSet tập cấp GIS
type GisLevelSet map[GisLevel]struct{}

// Contains kiểm tra tập có chứa cấp level không
func (s GisLevelSet) Contains(level GisLevel) bool {
	_, ok := s[level]
	return ok
}

// Slice trả về các cấp đã sắp xếp tăng dần
func (s GisLevelSet) Slice() []GisLevel {
	out := make([]GisLevel, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ToGis mở rộng combo FIAS thành tập cấp GIS, thay các cấp lịch sử theo LegacyFold.
// AllLevels mở rộng thành mọi cấp GIS.
func ToGis(combo FiasLevel) GisLevelSet {
	set := GisLevelSet{}
	for _, f := range combo.Flags() {
		if f == AllLevels {
			for _, g := range gisLevels {
				set[g] = struct{}{}
			}
			continue
		}
		if folded, ok := LegacyFold[f]; ok {
			f = folded
		}
		set[fiasToGis[f]] = struct{}{}
	}
	return set
}

// ToFias chuyển một cấp GIS sang cấp FIAS.
// Region mang hậu tố "АО" được trả về là AO.
func ToFias(level GisLevel, typeSuffix string) (FiasLevel, error) {
	fl, ok := gisToFias[level]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownLevel, int(level))
	}
	if fl == Region && typeSuffix == AOSuffix {
		return AO, nil
	}
	return fl, nil
}
