// 包 mapview：地图视图状态机，管理层级、悬停与选中，并把状态确定性地映射为填充色
package mapview

import (
	"fmt"

	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

// Level：当前显示的地图
type Level int

const (
	LevelProvince Level = iota
	LevelDistrict
)

func (l Level) String() string {
	if l == LevelDistrict {
		return "district"
	}
	return "province"
}

// MarshalText：JSON 中输出 province/district
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText：只接受 province/district
func (l *Level) UnmarshalText(b []byte) error {
	v, ok := ParseLevel(string(b))
	if !ok {
		return fmt.Errorf("unknown map level %q", b)
	}
	*l = v
	return nil
}

// ParseLevel：解析层级名称
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "province":
		return LevelProvince, true
	case "district":
		return LevelDistrict, true
	}
	return LevelProvince, false
}

// Target：一个地区组，即一个 Region 及渲染它的全部叶子路径
type Target struct {
	Region   regionindex.Region
	Elements []svgmap.ElementID
}

func (t *Target) has(id svgmap.ElementID) bool {
	if t == nil {
		return false
	}
	for _, e := range t.Elements {
		if e == id {
			return true
		}
	}
	return false
}

// State：对外可见的状态快照
type State struct {
	Level    Level               `json:"level"`
	Hovered  *regionindex.Region `json:"hovered"`
	Selected *regionindex.Region `json:"selected"`
}

// Visual：元素的视觉状态
type Visual int

const (
	VisualDefault Visual = iota
	VisualHovered
	VisualSelected
)

// Transition：一次输入产生的状态迁移
type Transition string

const (
	TransitionNone     Transition = "none"
	TransitionHover    Transition = "hover"
	TransitionUnhover  Transition = "unhover"
	TransitionSelect   Transition = "select"
	TransitionDeselect Transition = "deselect"
	TransitionLevel    Transition = "level_change"
	TransitionBack     Transition = "back"
	TransitionClear    Transition = "clear"
)

// Paint：一次样式修改指令，浏览器端按此更新 style
type Paint struct {
	Level   Level            `json:"level"`
	Element svgmap.ElementID `json:"el"`
	Prop    string           `json:"prop"`
	Value   string           `json:"value"`
}

// Surface：可被着色的地图；svgmap.Document 即为实现
// InlineFill 只读内联 style 的 fill（没有则为空），恢复时写回空值即删除该属性，
// 由 fill 属性、class 或祖先决定的颜色不受影响。
type Surface interface {
	InlineFill(id svgmap.ElementID) string
	SetFill(id svgmap.ElementID, fill string)
	SetCursor(id svgmap.ElementID, cursor string)
}

// MemberSource：选中地区的会员来源；regionindex.Holder 即为实现
type MemberSource interface {
	MembersForRegion(r regionindex.Region) []regionindex.MemberRecord
}

// Colors：悬停与选中颜色
type Colors struct {
	Hover    string
	Selected string
}

// DefaultColors：默认强调色与确认色
var DefaultColors = Colors{Hover: "#f4a261", Selected: "#2a9d8f"}
