// 包 regionindex：地区数据索引，持有城市→会员列表与静态参考表，提供分级匹配的会员查询
package regionindex

import "saha-map/internal/geodata"

// Kind：可选地图单元的层级
type Kind int

const (
	KindProvince Kind = iota
	KindDistrict
)

func (k Kind) String() string {
	if k == KindDistrict {
		return "district"
	}
	return "province"
}

// Region：一个可选地图单元的规范身份，与渲染它的路径数量无关
// 约束：相等性只看 Kind 与 Key；MemberKeys 为会员计数需要聚合的后端原始键。
type Region struct {
	Kind       Kind     `json:"kind"`
	Code       string   `json:"code,omitempty"`
	Name       string   `json:"name"`
	Key        string   `json:"key"`
	MemberKeys []string `json:"-"`
}

// Same：是否同一地区
func (r Region) Same(o Region) bool { return r.Kind == o.Kind && r.Key == o.Key }

// IsIstanbul：省级伊斯坦布尔（代码 34 或名称含 istanbul）
func (r Region) IsIstanbul() bool {
	return r.Kind == KindProvince && geodata.IsIstanbul(r.Code, r.Key)
}

// Role：会员角色
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// MemberRecord：会员记录，原样来自按城市聚合的数据源
type MemberRecord struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}
