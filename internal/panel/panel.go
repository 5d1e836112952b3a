// 包 panel：会员面板展示，把选中地区与会员列表渲染为视图模型；无自身状态
package panel

import (
	"fmt"

	"saha-map/internal/mapview"
	"saha-map/internal/normalize"
	"saha-map/internal/regionindex"
)

// Kind：面板状态
type Kind string

const (
	KindPrompt Kind = "prompt"
	KindEmpty  Kind = "empty"
	KindList   Kind = "list"
)

const (
	promptProvince = "Üyeleri görmek için haritadan bir il seçin."
	promptDistrict = "Üyeleri görmek için haritadan bir ilçe seçin."
	emptyMessage   = "Bu bölgede henüz kayıtlı üye bulunmuyor."
)

var roleLabels = map[regionindex.Role]string{
	regionindex.RoleMember:     "Üye",
	regionindex.RoleAdmin:      "Admin",
	regionindex.RoleSuperAdmin: "Süper Admin",
}

// Row：一行会员
type Row struct {
	Name  string           `json:"name"`
	Role  regionindex.Role `json:"role"`
	Label string           `json:"label"`
}

// View：面板视图模型
type View struct {
	Kind    Kind                `json:"kind"`
	Level   mapview.Level       `json:"level"`
	Region  *regionindex.Region `json:"region,omitempty"`
	Title   string              `json:"title,omitempty"`
	Header  string              `json:"header,omitempty"`
	Count   int                 `json:"count"`
	Message string              `json:"message,omitempty"`
	Rows    []Row               `json:"rows"`
}

// RoleLabel：角色显示名，未知角色按普通会员显示
func RoleLabel(r regionindex.Role) string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return roleLabels[regionindex.RoleMember]
}

// CountHeader：数量标题
func CountHeader(n int) string { return fmt.Sprintf("%d üye", n) }

// Present：纯函数；未选中给出提示，选中但无会员给出空状态
func Present(st mapview.State, members []regionindex.MemberRecord) View {
	v := View{Kind: KindPrompt, Level: st.Level, Rows: []Row{}}
	if st.Selected == nil {
		v.Message = promptProvince
		if st.Level == mapview.LevelDistrict {
			v.Message = promptDistrict
		}
		return v
	}
	r := *st.Selected
	v.Region = &r
	v.Title = normalize.Fix(r.Name)
	v.Count = len(members)
	v.Header = CountHeader(v.Count)
	if len(members) == 0 {
		v.Kind = KindEmpty
		v.Message = emptyMessage
		return v
	}
	v.Kind = KindList
	for _, m := range members {
		v.Rows = append(v.Rows, Row{Name: normalize.Fix(m.Name), Role: m.Role, Label: RoleLabel(m.Role)})
	}
	return v
}

// Tooltip：悬停提示，地区名与会员数
func Tooltip(r regionindex.Region, count int) string {
	return fmt.Sprintf("%s · %s", normalize.Fix(r.Name), CountHeader(count))
}
