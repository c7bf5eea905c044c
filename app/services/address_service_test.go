package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/app/requests"
	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/gis"
	"github.com/address-resolver/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	moscowID = "0c5b2444-70a0-4932-980c-b4dc0d3f02b5"
	streetID = "73b67e9d-4c88-44b2-9758-d7a367c4bc27"
)

var (
	moscowElement = fias.AddressElement{ID: moscowID, Value: "Москва", ValueWithType: "Москва г", Level: fias.GisRegion}
	streetElement = fias.AddressElement{ID: streetID, Value: "Красностуденческий", ValueWithType: "Красностуденческий проезд", Level: fias.GisStreet}
	houseElement  = fias.AddressElement{ID: "77b7217e-1a2b-4c3d-9e8f-0a1b2c3d4e5f", Value: "4", ValueWithType: "д. 4", Level: fias.GisHouse}
)

// stubGis dịch vụ gợi ý cố định, đếm số lần gọi
type stubGis struct {
	calls int
	err   error
}

func (s *stubGis) Search(_ context.Context, text string) (*gis.SearchResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &gis.SearchResponse{Addr: []gis.Address{{
		AddressGUID: houseElement.ID,
		Index:       "127434",
		Elements:    []fias.AddressElement{moscowElement, streetElement, houseElement},
	}}}, nil
}

func (s *stubGis) Children(_ context.Context, q gis.ChildrenQuery) (*gis.ChildrenResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &gis.ChildrenResponse{IsEnd: true, Children: []gis.Address{{
		AddressGUID: streetID,
		Index:       "127434",
		Elements:    []fias.AddressElement{moscowElement, streetElement},
	}}}, nil
}

func (s *stubGis) ByID(ctx context.Context, id string) (*gis.Address, error) {
	s.calls++
	if id != streetID {
		return nil, gis.ErrNotFound
	}
	return &gis.Address{Index: "127434", Elements: []fias.AddressElement{moscowElement, streetElement, houseElement}}, nil
}

func newTestAddressService(svc gis.SuggestionService, cache ICacheService) *AddressService {
	regions := resolver.RegionCodeFunc(func(_ context.Context, id string) (string, error) {
		if id == moscowID {
			return "77", nil
		}
		return "", nil
	})
	return NewAddressService(resolver.New(svc, resolver.Config{}, nil), regions, cache, nil)
}

func TestAddressService_SearchCached(t *testing.T) {
	ctx := context.Background()
	svc := &stubGis{}
	as := newTestAddressService(svc, NewCacheService(time.Hour))
	req := requests.SearchRequest{ParentID: moscowID, Name: "Красно", Levels: int(fias.Street), UseCache: true}

	result, hit, err := as.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.StatusMatched, result.Status)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, streetID, result.Parts[0].ID)
	calls := svc.calls

	result, hit, err = as.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, streetID, result.First().ID)
	assert.Equal(t, calls, svc.calls)

	req.UseCache = false
	_, hit, err = as.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Greater(t, svc.calls, calls)
}

func TestAddressService_NoCache(t *testing.T) {
	as := newTestAddressService(&stubGis{}, nil)
	assert.False(t, as.CacheEnabled())

	_, hit, err := as.ResolvePostalCode(context.Background(), "127434", true)
	require.NoError(t, err)
	assert.False(t, hit)

	stats, err := as.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats)
	assert.NoError(t, as.ClearCache(context.Background()))
}

func TestAddressService_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("upstream down")
	cache := NewCacheService(time.Hour)
	as := newTestAddressService(&stubGis{err: boom}, cache)

	_, _, err := as.ResolvePostalCode(ctx, "127434", true)
	assert.True(t, errors.Is(err, boom))
	assert.Zero(t, cache.Size())
}

func TestAddressService_Postal(t *testing.T) {
	as := newTestAddressService(&stubGis{}, nil)

	result, _, err := as.ResolvePostalCode(context.Background(), "127434", false)
	require.NoError(t, err)
	assert.Equal(t, "127434", result.Index)
	// chỉ một kết quả nên đi xuống tới tận nhà
	assert.Equal(t, fias.House, result.First().Level)
}

func TestAddressService_GetByIDAndKladr(t *testing.T) {
	ctx := context.Background()
	as := newTestAddressService(&stubGis{}, NewCacheService(time.Hour))

	result, _, err := as.GetByID(ctx, streetID, "", true)
	require.NoError(t, err)
	assert.Equal(t, fias.Street, result.First().Level)
	assert.Equal(t, "127434", result.Index)

	_, _, err = as.GetByID(ctx, "73b67e9d-0000-44b2-9758-d7a367c4bc27", "", true)
	assert.True(t, errors.Is(err, resolver.ErrNotFound))

	result, _, err = as.Kladr(ctx, streetID, "", true, true)
	require.NoError(t, err)
	assert.Equal(t, "643,127434,77,,,,КРАСНОСТУДЕНЧЕСКИЙ ПРОЕЗД,,,", result.KladrLine)
	assert.Equal(t, models.StatusMatched, result.Status)

	result, _, err = as.Kladr(ctx, streetID, "", false, true)
	require.NoError(t, err)
	assert.Empty(t, result.Kladr.RegionCode)
}

func TestAddressService_Check(t *testing.T) {
	as := newTestAddressService(&stubGis{}, nil)

	result, err := as.Check(context.Background(), requests.CheckRequest{
		Name: "Красностуденческий проезд", Levels: int(fias.Street), ParentID: moscowID,
	})
	require.NoError(t, err)
	assert.Len(t, result.Parts, 1)

	result, err = as.Check(context.Background(), requests.CheckRequest{
		Name: "Красностуденческий", Levels: int(fias.Street), ParentID: moscowID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnmatched, result.Status)
	assert.Equal(t, int64(2), as.Processed())
}
