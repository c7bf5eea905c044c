package resolver

import (
	"context"
	"sync"

	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/gis"
)

const (
	moscowID  = "0c5b2444-70a0-4932-980c-b4dc0d3f02b5"
	streetID  = "73b67e9d-4c88-44b2-9758-d7a367c4bc27"
	street2ID = "9f6a1c2e-3b4d-4e5f-8a7b-6c5d4e3f2a1b"
	house1ID  = "77b7217e-1a2b-4c3d-9e8f-0a1b2c3d4e5f"
	house2ID  = "a6a6bc37-2b3c-4d4e-8f9a-1b2c3d4e5f6a"
	house3ID  = "87ddf1c8-3c4d-4e5f-9a0b-2c3d4e5f6a7b"
	house4ID  = "6236b8ec-4d5e-4f6a-8b1c-3d4e5f6a7b8c"
	postal    = "127434"
)

// fakeService SuggestionService trong bộ nhớ
type fakeService struct {
	mu sync.Mutex

	search    map[string]*gis.SearchResponse
	searchErr error

	children     map[string][]gis.Address // parentID -> toàn bộ con
	childrenCode string
	childrenErr  error
	pageSizes    []int

	byID map[string]*gis.Address

	searchCalls   int
	childrenCalls int
}

func newFakeService() *fakeService {
	return &fakeService{
		search:   make(map[string]*gis.SearchResponse),
		children: make(map[string][]gis.Address),
		byID:     make(map[string]*gis.Address),
	}
}

func (f *fakeService) Search(_ context.Context, text string) (*gis.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if resp, ok := f.search[text]; ok {
		return resp, nil
	}
	return &gis.SearchResponse{}, nil
}

// Children cắt danh sách con theo PageSize như máy chủ thật
func (f *fakeService) Children(_ context.Context, query gis.ChildrenQuery) (*gis.ChildrenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.childrenCalls++
	f.pageSizes = append(f.pageSizes, query.PageSize)
	if f.childrenErr != nil {
		return nil, f.childrenErr
	}
	if f.childrenCode != "" {
		return &gis.ChildrenResponse{ErrorCode: f.childrenCode}, nil
	}

	all := f.children[query.ParentID]
	n := len(all)
	if query.PageSize > 0 && query.PageSize < n {
		n = query.PageSize
	}
	return &gis.ChildrenResponse{IsEnd: n == len(all), Children: all[:n]}, nil
}

func (f *fakeService) ByID(_ context.Context, id string) (*gis.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if addr, ok := f.byID[id]; ok {
		return addr, nil
	}
	return nil, gis.ErrNotFound
}

func regionElement(id, name string) fias.AddressElement {
	return fias.AddressElement{ID: id, Value: name, ValueWithType: name, Level: fias.GisRegion}
}

func element(id, value, withType string, level fias.GisLevel) fias.AddressElement {
	return fias.AddressElement{ID: id, Value: value, ValueWithType: withType, Level: level}
}

func houseElement(id, number string) fias.AddressElement {
	return fias.AddressElement{ID: id, Value: number, ValueWithType: "д. " + number, Level: fias.GisHouse}
}

func moscow() fias.AddressElement {
	return regionElement(moscowID, "Москва г")
}

func krasnostudencheskiy() fias.AddressElement {
	return element(streetID, "Красностуденческий", "Красностуденческий проезд", fias.GisStreet)
}

func address(index string, elements ...fias.AddressElement) gis.Address {
	last := elements[fias.NodeIndex(elements)]
	return gis.Address{
		AddressGUID: last.ID,
		Index:       index,
		Level:       last.Level,
		Elements:    elements,
	}
}

func streetAddress() gis.Address {
	return address(postal, moscow(), krasnostudencheskiy())
}

func houseAddress(id, number string) gis.Address {
	return address(postal, moscow(), krasnostudencheskiy(), houseElement(id, number))
}
