package regionindex

import (
	"strings"
	"sync/atomic"

	"github.com/paulmach/orb/geojson"

	"saha-map/internal/geodata"
	"saha-map/internal/normalize"
)

// Index：地区数据索引（只读快照）
// 约束：所有查询在无数据时返回空结果，从不报错。
type Index struct {
	cities          *CityMemberIndex
	districtDisplay map[string]string
	istanbulKeys    map[string]struct{}
}

// New：以城市会员索引与区展示名表构建索引；任一参数可为空
func New(cities *CityMemberIndex, districtDisplay map[string]string) *Index {
	if cities == nil {
		cities = NewCityMemberIndex(nil)
	}
	if districtDisplay == nil {
		districtDisplay = map[string]string{}
	}
	return &Index{cities: cities, districtDisplay: districtDisplay, istanbulKeys: istanbulMemberKeys()}
}

// Empty：无会员数据的索引
func Empty() *Index { return New(nil, nil) }

// 伊斯坦布尔会员聚合使用的区键：39 区加上多路径区表中的历史名称
func istanbulMemberKeys() map[string]struct{} {
	m := make(map[string]struct{}, len(geodata.IstanbulDistricts)+8)
	for _, d := range geodata.IstanbulDistricts {
		m[normalize.Key(d)] = struct{}{}
	}
	for _, g := range geodata.Groups {
		for _, k := range g.MemberKeys {
			m[normalize.Key(k)] = struct{}{}
		}
	}
	return m
}

// Cities：底层城市会员索引
func (x *Index) Cities() *CityMemberIndex { return x.cities }

// WithCities：保留展示名表，替换会员数据
func (x *Index) WithCities(c *CityMemberIndex) *Index { return New(c, x.districtDisplay) }

// ResolveProvince：按车牌代码（权威）或名称解析省
func (x *Index) ResolveProvince(plateCode, rawName string) (Region, bool) {
	return ResolveProvince(plateCode, rawName)
}

// ResolveProvince：车牌代码优先；缺失或未知时按归一化名称匹配参考表
func ResolveProvince(plateCode, rawName string) (Region, bool) {
	plateCode = strings.TrimSpace(plateCode)
	p, ok := geodata.ProvinceByCode(plateCode)
	if !ok {
		p, ok = geodata.ProvinceByName(rawName)
	}
	if !ok {
		return Region{}, false
	}
	return Region{
		Kind:       KindProvince,
		Code:       p.Code,
		Name:       p.Name,
		Key:        normalize.Key(p.Name),
		MemberKeys: []string{p.Name},
	}, true
}

// DistrictRegion：由区元素属性构建区身份；多路径区归并到规范键
func (x *Index) DistrictRegion(attr, value string) (Region, bool) {
	key, display, memberKeys := geodata.CanonicalDistrict(attr, value)
	if key == "" {
		return Region{}, false
	}
	if d, ok := x.districtDisplay[key]; ok {
		display = d
	}
	return Region{Kind: KindDistrict, Name: display, Key: key, MemberKeys: memberKeys}, true
}

// DistrictDisplay：区归一化键 → 展示名
func (x *Index) DistrictDisplay(key string) (string, bool) {
	d, ok := x.districtDisplay[key]
	return d, ok
}

// MembersForProvince：省会员列表；伊斯坦布尔按区聚合
func (x *Index) MembersForProvince(r Region) []MemberRecord {
	if r.IsIstanbul() {
		var out []MemberRecord
		for _, e := range x.cities.entries {
			if _, ok := x.istanbulKeys[e.norm]; ok {
				out = append(out, e.Members...)
			}
		}
		return out
	}
	name := r.Name
	if name == "" && len(r.MemberKeys) > 0 {
		name = r.MemberKeys[0]
	}
	i, ok := resolve(x.cities, name, normalize.Key(name), provinceStrategies)
	if !ok {
		return nil
	}
	return append([]MemberRecord(nil), x.cities.entries[i].Members...)
}

// MembersForDistrict：区会员列表（单个名称）
func (x *Index) MembersForDistrict(name string) []MemberRecord {
	i, ok := resolve(x.cities, name, normalize.Key(name), districtStrategies)
	if !ok {
		return nil
	}
	return append([]MemberRecord(nil), x.cities.entries[i].Members...)
}

// MembersForRegion：按地区身份取会员；区级聚合全部 MemberKeys，同一数据键只计一次
func (x *Index) MembersForRegion(r Region) []MemberRecord {
	if r.Kind == KindProvince {
		return x.MembersForProvince(r)
	}
	names := r.MemberKeys
	if len(names) == 0 {
		names = []string{r.Name}
	}
	var out []MemberRecord
	used := make(map[int]struct{}, len(names))
	for _, n := range names {
		i, ok := resolve(x.cities, n, normalize.Key(n), districtStrategies)
		if !ok {
			continue
		}
		if _, dup := used[i]; dup {
			continue
		}
		used[i] = struct{}{}
		out = append(out, x.cities.entries[i].Members...)
	}
	return out
}

// CountForRegion：地区会员数
func (x *Index) CountForRegion(r Region) int { return len(x.MembersForRegion(r)) }

// ProvinceCounts：全部 81 省的会员数（车牌代码为键）
func (x *Index) ProvinceCounts() map[string]int {
	out := make(map[string]int, len(geodata.Provinces))
	for _, p := range geodata.SortedProvinces() {
		r, _ := ResolveProvince(p.Code, "")
		out[p.Code] = len(x.MembersForProvince(r))
	}
	return out
}

// DistrictCounts：伊斯坦布尔各区会员数（规范键为键）；多路径区只出现一次
func (x *Index) DistrictCounts() map[string]int {
	out := make(map[string]int, len(geodata.IstanbulDistricts))
	for _, d := range geodata.IstanbulDistricts {
		r, ok := x.DistrictRegion(geodata.AttrDistrict, d)
		if !ok {
			continue
		}
		if _, seen := out[r.Key]; seen {
			continue
		}
		out[r.Key] = len(x.MembersForRegion(r))
	}
	return out
}

// BuildDistrictDisplayLookup：由区要素集构建 归一化键 → 展示名；同键保留首次出现
func BuildDistrictDisplayLookup(fc *geojson.FeatureCollection) map[string]string {
	out := map[string]string{}
	for _, d := range geodata.Districts(fc) {
		if _, ok := out[d.Key]; ok {
			continue
		}
		out[d.Key] = d.Name
	}
	return out
}

// Holder：当前索引的原子引用；读者只会看到完整的旧索引或新索引
type Holder struct {
	p atomic.Pointer[Index]
}

// NewHolder：以初始索引创建；nil 时为空索引
func NewHolder(initial *Index) *Holder {
	h := &Holder{}
	if initial == nil {
		initial = Empty()
	}
	h.p.Store(initial)
	return h
}

// Load：当前索引
func (h *Holder) Load() *Index {
	if x := h.p.Load(); x != nil {
		return x
	}
	return Empty()
}

// Swap：一次性替换索引
func (h *Holder) Swap(x *Index) {
	if x == nil {
		x = Empty()
	}
	h.p.Store(x)
}

// MembersForRegion：基于当前索引查询，便于直接作为会员来源
func (h *Holder) MembersForRegion(r Region) []MemberRecord {
	return h.Load().MembersForRegion(r)
}
