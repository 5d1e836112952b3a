package geodata

import (
	"strings"

	"saha-map/internal/normalize"
)

// 元素上承载区身份的属性
const (
	AttrDistrict = "data-district"
	AttrID       = "id"
)

// Criterion：元素选择条件，属性值归一化后与 Key 比较
type Criterion struct {
	Attr   string
	Key    string
	Prefix bool
}

func (c Criterion) match(attr, value string) bool {
	if attr != c.Attr {
		return false
	}
	k := normalize.Key(value)
	if k == "" {
		return false
	}
	if c.Prefix {
		return strings.HasPrefix(k, c.Key)
	}
	return k == c.Key
}

// Group：由多条路径组成、在悬停/选中时视为一个整体的区
// MemberKeys 为该区在后端数据中可能出现的全部名称（合并前的历史区名等）。
type Group struct {
	Key        string
	Display    string
	MemberKeys []string
	Match      []Criterion
}

// Groups：多路径区声明表；新增此类区只需追加一项
var Groups = []Group{
	{
		Key:        "adalar",
		Display:    "Adalar",
		MemberKeys: []string{"Adalar"},
		Match: []Criterion{
			{Attr: AttrDistrict, Key: "adalar", Prefix: true},
			{Attr: AttrID, Key: "adalar", Prefix: true},
		},
	},
	{
		Key:        "fatih",
		Display:    "Fatih",
		MemberKeys: []string{"Fatih", "Eminönü"},
		Match: []Criterion{
			{Attr: AttrDistrict, Key: "fatih"},
			{Attr: AttrDistrict, Key: "eminonu"},
			{Attr: AttrID, Key: "fatih"},
			{Attr: AttrID, Key: "eminonu"},
		},
	},
	{
		Key:        "eyupsultan",
		Display:    "Eyüpsultan",
		MemberKeys: []string{"Eyüpsultan", "Eyüp"},
		Match: []Criterion{
			{Attr: AttrDistrict, Key: "eyupsultan"},
			{Attr: AttrDistrict, Key: "eyup"},
			{Attr: AttrID, Key: "eyupsultan"},
			{Attr: AttrID, Key: "eyup"},
		},
	},
}

// GroupFor：查找属性值命中的多路径区
func GroupFor(attr, value string) (Group, bool) {
	for _, g := range Groups {
		for _, c := range g.Match {
			if c.match(attr, value) {
				return g, true
			}
		}
	}
	return Group{}, false
}

// CanonicalDistrict：把元素上的区属性映射为规范键、展示名与成员数据键
// 未登记在 Groups 中的区即为单路径区，键为自身归一化值。
func CanonicalDistrict(attr, value string) (key, display string, memberKeys []string) {
	if g, ok := GroupFor(attr, value); ok {
		return g.Key, g.Display, g.MemberKeys
	}
	fixed := normalize.Fix(strings.TrimSpace(value))
	return normalize.Key(fixed), fixed, []string{fixed}
}
