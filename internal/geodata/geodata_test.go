package geodata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvinceTable(t *testing.T) {
	assert.Len(t, Provinces, 81)
	seen := map[string]bool{}
	for _, p := range SortedProvinces() {
		assert.Len(t, p.Code, 2)
		assert.False(t, seen[p.Name], "duplicate province %s", p.Name)
		seen[p.Name] = true
	}
	assert.Equal(t, "01", SortedProvinces()[0].Code)
	assert.Equal(t, "81", SortedProvinces()[80].Code)
}

func TestProvinceByCode(t *testing.T) {
	p, ok := ProvinceByCode("06")
	require.True(t, ok)
	assert.Equal(t, "Ankara", p.Name)

	p, ok = ProvinceByCode("6")
	require.True(t, ok)
	assert.Equal(t, "06", p.Code)

	_, ok = ProvinceByCode("99")
	assert.False(t, ok)
}

func TestProvinceByName(t *testing.T) {
	p, ok := ProvinceByName("ISTANBUL")
	require.True(t, ok)
	assert.Equal(t, IstanbulCode, p.Code)

	p, ok = ProvinceByName("Ã‡anakkale")
	require.True(t, ok)
	assert.Equal(t, "17", p.Code)

	_, ok = ProvinceByName("")
	assert.False(t, ok)
}

func TestIstanbulDistricts(t *testing.T) {
	assert.Len(t, IstanbulDistricts, 39)
	assert.True(t, IsIstanbulDistrictKey("kadikoy"))
	assert.True(t, IsIstanbulDistrictKey("sisli"))
	assert.False(t, IsIstanbulDistrictKey("cankaya"))

	assert.True(t, IsIstanbul("34", ""))
	assert.True(t, IsIstanbul("", "istanbul"))
	assert.False(t, IsIstanbul("06", "ankara"))
}

func TestGroupFor(t *testing.T) {
	g, ok := GroupFor(AttrDistrict, "Eminönü")
	require.True(t, ok)
	assert.Equal(t, "fatih", g.Key)

	g, ok = GroupFor(AttrID, "adalar_3")
	require.True(t, ok)
	assert.Equal(t, "adalar", g.Key)

	_, ok = GroupFor(AttrDistrict, "Kadıköy")
	assert.False(t, ok)

	// 前缀匹配只对声明了 Prefix 的条件生效
	_, ok = GroupFor(AttrDistrict, "fatihpasa")
	assert.False(t, ok)
}

func TestCanonicalDistrict(t *testing.T) {
	key, display, keys := CanonicalDistrict(AttrDistrict, "Eyüp")
	assert.Equal(t, "eyupsultan", key)
	assert.Equal(t, "Eyüpsultan", display)
	assert.Equal(t, []string{"Eyüpsultan", "Eyüp"}, keys)

	key, display, keys = CanonicalDistrict(AttrDistrict, " KadÄ±kÃ¶y ")
	assert.Equal(t, "kadikoy", key)
	assert.Equal(t, "Kadıköy", display)
	assert.Equal(t, []string{"Kadıköy"}, keys)
}

func TestLoadDistrictFeaturesEmbedded(t *testing.T) {
	fc, err := LoadDistrictFeatures("")
	require.NoError(t, err)
	ds := Districts(fc)
	assert.Len(t, ds, 39)
	assert.Equal(t, "Adalar", ds[0].Name)
	assert.Equal(t, "adalar", ds[0].Key)
	assert.InDelta(t, 29.09, ds[0].Center.Lon(), 0.001)
}

func TestLoadDistrictFeaturesFromDir(t *testing.T) {
	dir := t.TempDir()
	body := `{"type":"FeatureCollection","features":[
	 {"type":"Feature","properties":{"name":"Kadıköy"},"geometry":{"type":"Point","coordinates":[29.03,40.99]}},
	 {"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DistrictFile), []byte(body), 0o644))

	fc, err := LoadDistrictFeatures(dir)
	require.NoError(t, err)
	ds := Districts(fc)
	require.Len(t, ds, 1)
	assert.Equal(t, "kadikoy", ds[0].Key)
}

func TestParseDistrictFeaturesError(t *testing.T) {
	_, err := ParseDistrictFeatures([]byte("{"))
	assert.Error(t, err)
}
