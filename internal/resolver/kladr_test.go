package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/address-resolver/internal/fias"
	"github.com/address-resolver/internal/gis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCodes(codes map[string]string) RegionCodeLookup {
	return RegionCodeFunc(func(_ context.Context, regionID string) (string, error) {
		return codes[regionID], nil
	})
}

func buildAt(t *testing.T, addr gis.Address) *fias.AddressPart {
	t.Helper()
	part, err := fias.BuildAddressPart(addr.Elements, addr.Index, fias.NodeIndex(addr.Elements))
	require.NoError(t, err)
	return part
}

func TestKladrAddress_String(t *testing.T) {
	k := KladrAddress{CountryCode: "643", City: "КАЛУГА Г"}
	s := k.String()
	assert.Equal(t, "643,,,,КАЛУГА Г,,,,,", s)
	assert.Len(t, strings.Split(s, ","), 10)
}

func TestEncodeKladr(t *testing.T) {
	tests := []struct {
		name   string
		addr   gis.Address
		lookup RegionCodeLookup
		want   string
	}{
		{
			name: "дом в городе",
			addr: address("",
				regionElement("kaluga-obl", "Калужская обл"),
				element("kaluga", "Калуга", "Калуга г", fias.GisCity),
				element("gorkogo", "Максима Горького", "Максима Горького ул", fias.GisStreet),
				houseElement("h1b", "1Б")),
			lookup: staticCodes(map[string]string{"kaluga-obl": "40"}),
			want:   "643,,40,,КАЛУГА Г,,МАКСИМА ГОРЬКОГО УЛ,1Б,,",
		},
		{
			name: "квартал в поселении",
			addr: address("108830",
				moscow(),
				element("voronovskoe", "Вороновское", "Вороновское п", fias.GisDistrict),
				element("kv420", "420", "420 кв-л", fias.GisPlanStructure)),
			want: "643,108830,,ВОРОНОВСКОЕ П,,,420 КВ-Л,,,",
		},
		{
			name: "деревня в районе",
			addr: address("613310",
				regionElement("kirov-obl", "Кировская обл"),
				element("verkhoshizhemsky", "Верхошижемский", "Верхошижемский р-н", fias.GisDistrict),
				element("moskva-d", "Москва", "Москва д", fias.GisLocality)),
			want: "643,613310,,ВЕРХОШИЖЕМСКИЙ Р-Н,,МОСКВА Д,,,,",
		},
		{
			name: "внутригородская территория как населённый пункт",
			addr: address("",
				moscow(),
				element("zelenograd", "Зеленоград", "Зеленоград г", fias.GisIntraArea)),
			want: "643,,,,,ЗЕЛЕНОГРАД Г,,,,",
		},
	}

	r := newTestResolver(newFakeService())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := buildAt(t, tt.addr)
			got := r.EncodeKladr(context.Background(), part, tt.addr.Index, tt.lookup)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestEncodeKladr_HouseWithBuilding(t *testing.T) {
	moscowCity := element("moscow-city", "Москва", "Москва г", fias.GisCity)
	addr := address(postal, moscow(), moscowCity, krasnostudencheskiy(), houseElement(house1ID, "4"),
		fias.AddressElement{Value: "2", Content: fias.ContentHousing, Level: fias.GisHouse},
		fias.AddressElement{Value: "1", Content: fias.ContentStructure, Level: fias.GisHouse})
	part := buildAt(t, addr)
	r := newTestResolver(newFakeService())

	for _, lookup := range []RegionCodeLookup{nil, staticCodes(map[string]string{moscowID: "77"})} {
		got := r.EncodeKladr(context.Background(), part, postal, lookup)
		fields := strings.Split(got.String(), ",")
		require.Len(t, fields, 10)

		assert.Equal(t, "643", got.CountryCode)
		assert.Equal(t, postal, got.Index)
		assert.Empty(t, got.District)
		assert.Equal(t, "МОСКВА Г", got.City)
		assert.Equal(t, "КРАСНОСТУДЕНЧЕСКИЙ ПРОЕЗД", got.Street)
		assert.Equal(t, "4", got.House)
		assert.Equal(t, "2СТР1", got.Building)
		assert.Empty(t, fields[9])
	}

	got := r.EncodeKladr(context.Background(), part, postal, staticCodes(map[string]string{moscowID: "77"}))
	assert.Equal(t, "77", got.RegionCode)
}

func TestEncodeKladr_StructureOnly(t *testing.T) {
	addr := houseAddress(house1ID, "4")
	addr.Elements = append(addr.Elements, fias.AddressElement{Value: "3", Content: fias.ContentStructure, Level: fias.GisHouse})
	r := newTestResolver(newFakeService())

	got := r.EncodeKladr(context.Background(), buildAt(t, addr), postal, nil)
	assert.Equal(t, "СТР3", got.Building)
}

func TestEncodeKladr_OwnedPlot(t *testing.T) {
	addr := address(postal, moscow(), krasnostudencheskiy(), houseElement(house1ID, "влд. 5"))
	r := newTestResolver(newFakeService())

	got := r.EncodeKladr(context.Background(), buildAt(t, addr), postal, nil)
	assert.Equal(t, "ВЛД5", got.House)
}

func TestEncodeKladr_IndexRule(t *testing.T) {
	r := newTestResolver(newFakeService())

	region := buildAt(t, address(postal, moscow()))
	assert.Empty(t, r.EncodeKladr(context.Background(), region, postal, nil).Index)

	city := buildAt(t, address(postal, moscow(), element("c", "Москва", "Москва г", fias.GisCity)))
	assert.Empty(t, r.EncodeKladr(context.Background(), city, postal, nil).Index)

	street := buildAt(t, streetAddress())
	assert.Equal(t, postal, r.EncodeKladr(context.Background(), street, postal, nil).Index)

	// chỉ số lấy từ kết quả chứa nút, kể cả với nhà
	house := buildAt(t, houseAddress(house1ID, "4"))
	assert.Equal(t, "101000", r.EncodeKladr(context.Background(), house, "101000", nil).Index)
	assert.Empty(t, r.EncodeKladr(context.Background(), house, "", nil).Index)
}

func TestEncodeKladr_LookupFailure(t *testing.T) {
	r := newTestResolver(newFakeService())
	failing := RegionCodeFunc(func(context.Context, string) (string, error) {
		return "", errors.New("db down")
	})

	got := r.EncodeKladr(context.Background(), buildAt(t, streetAddress()), postal, failing)
	assert.Empty(t, got.RegionCode)
	assert.Equal(t, "КРАСНОСТУДЕНЧЕСКИЙ ПРОЕЗД", got.Street)
}

func TestEncodeKladr_NilPart(t *testing.T) {
	r := newTestResolver(newFakeService())
	assert.Equal(t, "643,,,,,,,,,", r.EncodeKladr(context.Background(), nil, postal, nil).String())
}

func TestKladrByID(t *testing.T) {
	svc := newFakeService()
	house := houseAddress(house1ID, "4")
	svc.byID[streetID] = &house
	r := newTestResolver(svc)

	got, err := r.KladrByID(context.Background(), streetID, "", staticCodes(map[string]string{moscowID: "77"}))
	require.NoError(t, err)
	assert.Equal(t, "643,127434,77,,,,КРАСНОСТУДЕНЧЕСКИЙ ПРОЕЗД,,,", got.String())

	_, err = r.KladrByID(context.Background(), house2ID, "", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestKladrByID_House(t *testing.T) {
	svc := newFakeService()
	svc.children[streetID] = []gis.Address{houseAddress(house1ID, "1Б")}
	r := newTestResolver(svc)

	got, err := r.KladrByID(context.Background(), house1ID, streetID, staticCodes(map[string]string{moscowID: "77"}))
	require.NoError(t, err)
	assert.Equal(t, "643,127434,77,,,,КРАСНОСТУДЕНЧЕСКИЙ ПРОЕЗД,1Б,,", got.String())
}
