package regionindex

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saha-map/internal/geodata"
)

func mustDecode(t *testing.T, raw string) *CityMemberIndex {
	t.Helper()
	c, err := DecodeCityMembers(json.RawMessage(raw))
	require.NoError(t, err)
	return c
}

func TestDecodeCityMembersKeepsOrder(t *testing.T) {
	c := mustDecode(t, `{"Zonguldak":[{"name":"A","role":"member"}],"Adana":[],"Bursa":[{"name":"B","role":"admin"},{"name":"C","role":"superadmin"}],"bad":"x"}`)
	assert.Equal(t, []string{"Zonguldak", "Adana", "Bursa"}, c.Keys())
	assert.Equal(t, 3, c.Total())
}

func TestDecodeCityMembersEmpty(t *testing.T) {
	for _, raw := range []string{"", "null", "{}"} {
		c, err := DecodeCityMembers(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	}
	_, err := DecodeCityMembers(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestNewCityMemberIndexMergesDuplicateKeys(t *testing.T) {
	c := NewCityMemberIndex([]Entry{
		{Key: "Van", Members: []MemberRecord{{Name: "a"}}},
		{Key: "Van", Members: []MemberRecord{{Name: "b"}}},
	})
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Total())
}

func TestResolveProvince(t *testing.T) {
	r, ok := ResolveProvince("06", "")
	require.True(t, ok)
	assert.Equal(t, "Ankara", r.Name)
	assert.Equal(t, KindProvince, r.Kind)

	r, ok = ResolveProvince("", "izmir")
	require.True(t, ok)
	assert.Equal(t, "35", r.Code)

	// 代码优先于名称
	r, ok = ResolveProvince("01", "Ankara")
	require.True(t, ok)
	assert.Equal(t, "Adana", r.Name)

	_, ok = ResolveProvince("", "Atlantis")
	assert.False(t, ok)
}

func TestMembersForProvinceRankedMatch(t *testing.T) {
	x := New(mustDecode(t, `{
		"ankara":[{"name":"ci","role":"member"}],
		"Ankara":[{"name":"exact","role":"member"}],
		"KONYA":[{"name":"fold","role":"member"}],
		"Afyon":[{"name":"sub","role":"member"}],
		"Kahramanmaraş Merkez":[{"name":"sub2","role":"admin"}]
	}`), nil)

	ankara, _ := ResolveProvince("06", "")
	assert.Equal(t, "exact", x.MembersForProvince(ankara)[0].Name)

	konya, _ := ResolveProvince("42", "")
	assert.Equal(t, "fold", x.MembersForProvince(konya)[0].Name)

	afyon, _ := ResolveProvince("03", "")
	assert.Equal(t, "sub", x.MembersForProvince(afyon)[0].Name)

	maras, _ := ResolveProvince("46", "")
	assert.Equal(t, "sub2", x.MembersForProvince(maras)[0].Name)

	van, _ := ResolveProvince("65", "")
	assert.Empty(t, x.MembersForProvince(van))
}

func TestMembersForProvinceSubstringFirstMatchWins(t *testing.T) {
	x := New(mustDecode(t, `{"Sivas Merkez":[{"name":"first","role":"member"}],"Sivaslı":[{"name":"second","role":"member"}]}`), nil)
	sivas, _ := ResolveProvince("58", "")
	got := x.MembersForProvince(sivas)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Name)
}

func TestMembersForProvinceIstanbulAggregatesDistricts(t *testing.T) {
	x := New(mustDecode(t, `{
		"Kadıköy":[{"name":"Ayşe","role":"member"}],
		"Ankara":[{"name":"Veli","role":"member"}],
		"FATIH":[{"name":"Ali","role":"admin"}],
		"Eminönü":[{"name":"Can","role":"member"}],
		"İstanbul":[{"name":"city-level","role":"member"}]
	}`), nil)
	ist, ok := ResolveProvince("34", "")
	require.True(t, ok)
	require.True(t, ist.IsIstanbul())

	var names []string
	for _, m := range x.MembersForProvince(ist) {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Ayşe", "Ali", "Can"}, names)
}

func TestMembersForDistrict(t *testing.T) {
	x := New(mustDecode(t, `{"Kadıköy":[{"name":"Ayşe","role":"member"}],"Fatih":[{"name":"Ali","role":"admin"}]}`), nil)

	got := x.MembersForDistrict("KADIKÖY")
	require.Len(t, got, 1)
	assert.Equal(t, "Ayşe", got[0].Name)

	assert.Len(t, x.MembersForDistrict("Fatih"), 1)
	assert.Empty(t, x.MembersForDistrict("Pendik"))
	assert.Empty(t, x.MembersForDistrict(""))
}

func TestMembersForRegionMergedDistrict(t *testing.T) {
	x := New(mustDecode(t, `{"Kadıköy":[{"name":"Ayşe","role":"member"}],"Fatih":[{"name":"Ali","role":"admin"}]}`), nil)

	fatih, ok := x.DistrictRegion(geodata.AttrDistrict, "Eminönü")
	require.True(t, ok)
	assert.Equal(t, "fatih", fatih.Key)
	got := x.MembersForRegion(fatih)
	require.Len(t, got, 1)
	assert.Equal(t, MemberRecord{Name: "Ali", Role: RoleAdmin}, got[0])

	kadikoy, ok := x.DistrictRegion(geodata.AttrDistrict, "Kadıköy")
	require.True(t, ok)
	assert.Equal(t, 1, x.CountForRegion(kadikoy))
}

func TestMembersForRegionCountsEachFeedKeyOnce(t *testing.T) {
	// "Eyüp" 与 "Eyüpsultan" 都包含在同一个数据键中
	x := New(mustDecode(t, `{"Eyüpsultan":[{"name":"a","role":"member"}]}`), nil)
	r, ok := x.DistrictRegion(geodata.AttrDistrict, "Eyüpsultan")
	require.True(t, ok)
	assert.Len(t, x.MembersForRegion(r), 1)
}

func TestEmptyIndexNeverFails(t *testing.T) {
	x := Empty()
	ankara, _ := ResolveProvince("06", "")
	assert.Empty(t, x.MembersForProvince(ankara))
	assert.Empty(t, x.MembersForDistrict("Kadıköy"))
	counts := x.ProvinceCounts()
	assert.Len(t, counts, 81)
	assert.Zero(t, counts["06"])
}

func TestBuildDistrictDisplayLookup(t *testing.T) {
	fc, err := geodata.LoadDistrictFeatures("")
	require.NoError(t, err)
	m := BuildDistrictDisplayLookup(fc)
	assert.Len(t, m, 39)
	assert.Equal(t, "Kadıköy", m["kadikoy"])
	assert.Equal(t, "Şişli", m["sisli"])

	x := New(nil, m)
	r, ok := x.DistrictRegion(geodata.AttrDistrict, "KADIKOY")
	require.True(t, ok)
	assert.Equal(t, "Kadıköy", r.Name)
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	assert.Equal(t, 0, h.Load().Cities().Len())

	next := New(mustDecode(t, `{"Van":[{"name":"a","role":"member"}]}`), nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := h.Load().Cities().Len()
			assert.True(t, n == 0 || n == 1)
		}()
	}
	h.Swap(next)
	wg.Wait()
	assert.Equal(t, 1, h.Load().Cities().Len())

	h.Swap(nil)
	assert.Equal(t, 0, h.Load().Cities().Len())
}

func TestCityMemberIndexMarshalKeepsOrder(t *testing.T) {
	c := mustDecode(t, `{"Zonguldak":[{"name":"A","role":"member"}],"Adana":[],"Bursa":[{"name":"B","role":"admin"}]}`)
	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"Zonguldak":[{"name":"A","role":"member"}],"Adana":[],"Bursa":[{"name":"B","role":"admin"}]}`, string(raw))
	back := mustDecode(t, string(raw))
	assert.Equal(t, c.Keys(), back.Keys())
}

func TestDistrictCounts(t *testing.T) {
	x := New(mustDecode(t, `{"Kadıköy":[{"name":"Ayşe","role":"member"}],"Eminönü":[{"name":"Ali","role":"admin"},{"name":"Can","role":"member"}]}`), nil)
	counts := x.DistrictCounts()
	assert.Len(t, counts, len(geodata.IstanbulDistricts))
	assert.Equal(t, 1, counts["kadikoy"])
	assert.Equal(t, 2, counts["fatih"])
	assert.Zero(t, counts["pendik"])
}

func TestMemberListsDoNotAliasIndex(t *testing.T) {
	x := New(mustDecode(t, `{"Ankara":[{"name":"Can","role":"member"}],"Kadıköy":[{"name":"Ayşe","role":"member"}]}`), nil)
	ankara, _ := ResolveProvince("06", "")

	got := x.MembersForProvince(ankara)
	got[0].Name = "changed"
	_ = append(got[:0], MemberRecord{Name: "other"})
	assert.Equal(t, "Can", x.MembersForProvince(ankara)[0].Name)

	d := x.MembersForDistrict("Kadıköy")
	d[0].Role = RoleAdmin
	assert.Equal(t, RoleMember, x.MembersForDistrict("Kadıköy")[0].Role)
}

func TestNewCityMemberIndexLeavesCallerSlices(t *testing.T) {
	first := make([]MemberRecord, 1, 4)
	first[0] = MemberRecord{Name: "a", Role: RoleMember}
	c := NewCityMemberIndex([]Entry{
		{Key: "Ankara", Members: first},
		{Key: "Ankara", Members: []MemberRecord{{Name: "b", Role: RoleMember}}},
	})
	assert.Equal(t, 2, c.Total())
	assert.Equal(t, MemberRecord{}, first[:2][1])
}
