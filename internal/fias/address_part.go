package fias

import (
	"errors"
	"fmt"
	"strings"
)

// Nội dung bổ sung của phần tử nhà
const (
	ContentHousing   = "E" // корпус
	ContentStructure = "B" // строение
)

var (
	ErrElementIndex  = errors.New("chỉ số phần tử nằm ngoài chuỗi")
	ErrRootNotRegion = errors.New("gốc chuỗi phần tử không phải cấp Region")
)

// AddressElement một token trong địa chỉ đầy đủ do dịch vụ GIS trả về
type AddressElement struct {
	ID            string   `json:"guid" bson:"guid"`                 // ID ngoài (opaque)
	Value         string   `json:"val" bson:"val"`                   // Giá trị gốc
	TypeName      string   `json:"tname,omitempty" bson:"tname"`     // Tên loại
	ValueWithType string   `json:"valWithType" bson:"val_with_type"` // Giá trị kèm loại
	TypeSuffix    string   `json:"stname,omitempty" bson:"stname"`   // Hậu tố loại, vd "АО"
	Content       string   `json:"content,omitempty" bson:"content"` // "E" корпус, "B" строение
	Origin        int      `json:"origin,omitempty" bson:"origin"`
	Historical    int      `json:"historical,omitempty" bson:"historical"`
	Level         GisLevel `json:"level" bson:"level"`
}

// IsHouseModifier phần tử chỉ là корпус/строение bổ sung cho nhà
func (e AddressElement) IsHouseModifier() bool {
	return e.Content == ContentHousing || e.Content == ContentStructure
}

// AddressPart nút địa chỉ đã giải quyết, sở hữu chuỗi tổ tiên của nó
type AddressPart struct {
	ID        string       `json:"id" bson:"id"`
	Level     FiasLevel    `json:"level" bson:"level"`
	Name      string       `json:"name" bson:"name"`
	Index     *string      `json:"index,omitempty" bson:"index,omitempty"`
	Housing   *string      `json:"housing,omitempty" bson:"housing,omitempty"`
	Structure *string      `json:"structure,omitempty" bson:"structure,omitempty"`
	Parent    *AddressPart `json:"parent,omitempty" bson:"parent,omitempty"`
}

// BuildAddressPart dựng AddressPart từ elements[i] và đệ quy dựng cha từ elements[i-1].
// elements sắp xếp từ tổ tiên rộng nhất (index 0) tới cụ thể nhất.
func BuildAddressPart(elements []AddressElement, postalIndex string, i int) (*AddressPart, error) {
	if i < 0 || i >= len(elements) {
		return nil, fmt.Errorf("%w: %d/%d", ErrElementIndex, i, len(elements))
	}

	element := elements[i]
	level, err := ToFias(element.Level, element.TypeSuffix)
	if err != nil {
		return nil, err
	}

	part := &AddressPart{
		ID:    element.ID,
		Level: level,
		Name:  element.ValueWithType,
	}

	if element.Level == GisHouse {
		part.Name = element.Value
		if postalIndex != "" {
			part.Index = strPtr(postalIndex)
		}
		for j := len(elements) - 1; j > i; j-- {
			switch elements[j].Content {
			case ContentHousing:
				part.Housing = strPtr(elements[j].Value)
			case ContentStructure:
				part.Structure = strPtr(elements[j].Value)
			}
		}
	}

	if element.Level == GisRegion || element.Level == GisAO {
		return part, nil
	}
	if i == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRootNotRegion, element.Level)
	}

	// корпус/строение không phải nút của cây
	j := i - 1
	for j > 0 && elements[j].IsHouseModifier() {
		j--
	}
	parent, err := BuildAddressPart(elements, postalIndex, j)
	if err != nil {
		return nil, err
	}
	part.Parent = parent
	return part, nil
}

// GetFullName tên hiển thị đầy đủ; với nhà nối thêm ", к. N" và ", стр. N"
func (p *AddressPart) GetFullName() string {
	if p.Level != House {
		return p.Name
	}

	var b strings.Builder
	b.WriteString(p.Name)
	if p.Housing != nil && *p.Housing != "" {
		b.WriteString(", к. ")
		b.WriteString(*p.Housing)
	}
	if p.Structure != nil && *p.Structure != "" {
		b.WriteString(", стр. ")
		b.WriteString(*p.Structure)
	}
	return b.String()
}

// StartsWith trả về nút trong chuỗi (kể cả chính nó) có ID bằng id, hoặc nil
func (p *AddressPart) StartsWith(id string) *AddressPart {
	for node := p; node != nil; node = node.Parent {
		if strings.EqualFold(node.ID, id) {
			return node
		}
	}
	return nil
}

// FirstAncestor trả về nút đầu tiên (kể cả chính nó) thỏa match
func (p *AddressPart) FirstAncestor(match func(*AddressPart) bool) *AddressPart {
	for node := p; node != nil; node = node.Parent {
		if match(node) {
			return node
		}
	}
	return nil
}

// Root nút gốc của chuỗi
func (p *AddressPart) Root() *AddressPart {
	node := p
	for node.Parent != nil {
		node = node.Parent
	}
	return node
}

// Equal so sánh sâu hai nút, kể cả toàn bộ chuỗi tổ tiên
func (p *AddressPart) Equal(other *AddressPart) bool {
	if p == nil || other == nil {
		return p == nil && other == nil
	}
	return p.ID == other.ID &&
		p.Level == other.Level &&
		p.Name == other.Name &&
		equalOptional(p.Index, other.Index) &&
		equalOptional(p.Structure, other.Structure) &&
		equalOptional(p.Housing, other.Housing) &&
		p.Parent.Equal(other.Parent)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func strPtr(s string) *string {
	return &s
}

// FirstIndex chỉ số phần tử đầu tiên (tính từ gốc) có cấp thuộc levels, bỏ qua корпус/строение.
// Trả về -1 nếu không có.
func FirstIndex(elements []AddressElement, levels GisLevelSet) int {
	for i, element := range elements {
		if element.IsHouseModifier() {
			continue
		}
		if levels.Contains(element.Level) {
			return i
		}
	}
	return -1
}

// NodeIndex chỉ số phần tử cụ thể nhất không phải корпус/строение, -1 nếu không có
func NodeIndex(elements []AddressElement) int {
	for i := len(elements) - 1; i >= 0; i-- {
		if !elements[i].IsHouseModifier() {
			return i
		}
	}
	return -1
}
