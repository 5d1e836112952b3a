// 包 interaction：地区交互控制器，把指针事件解析为地区组并驱动地图状态机
package interaction

import (
	"errors"
	"fmt"

	"saha-map/internal/geodata"
	"saha-map/internal/mapview"
	"saha-map/internal/metrics"
	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

var (
	// ErrUnresolvable：目标不是可识别地区的叶子路径（装饰性路径很常见）
	ErrUnresolvable = errors.New("target resolves to no region")
	// ErrNotMounted：尚未挂载地图，或事件来自已被替换的地图
	ErrNotMounted = errors.New("no map mounted")
	// ErrUnknownEvent：不支持的事件类型
	ErrUnknownEvent = errors.New("unknown event type")
)

// EventType：指针事件类型
type EventType string

const (
	PointerEnter EventType = "pointerenter"
	PointerLeave EventType = "pointerleave"
	PointerMove  EventType = "pointermove"
	Click        EventType = "click"
)

// HoverCursor：悬停时的光标
const HoverCursor = "pointer"

// Event：浏览器上报的事件；Target 为元素先序下标，Map 为发出事件时所在地图
type Event struct {
	Type   EventType        `json:"type"`
	Target svgmap.ElementID `json:"el"`
	Map    string           `json:"map,omitempty"`
}

var (
	plateAttrs = []string{"data-plakakodu", "data-plate"}
	nameAttrs  = []string{"data-iladi", "data-name"}
)

// Controller：事件委托在 Stage 上，始终针对当前挂载的文档解析
// 约束：与 Machine 一样需由调用方串行化。
type Controller struct {
	machine *mapview.Machine
	index   func() *regionindex.Index
	doc     *svgmap.Document
	groups  map[*svgmap.Document]*groupTable
}

// New：index 返回当前地区索引（通常为 Holder.Load）
func New(m *mapview.Machine, index func() *regionindex.Index) *Controller {
	if index == nil {
		index = regionindex.Empty
	}
	return &Controller{machine: m, index: index, groups: map[*svgmap.Document]*groupTable{}}
}

// Attach：挂到 Stage 上，返回解除函数；换图无需重新绑定
func (c *Controller) Attach(stage *svgmap.Stage) func() {
	c.doc = stage.Current()
	cancel := stage.OnMount(func(d *svgmap.Document) { c.doc = d })
	return func() {
		cancel()
		c.doc = nil
	}
}

// Mounted：当前文档
func (c *Controller) Mounted() *svgmap.Document { return c.doc }

// Handle：处理一个事件；无法解析时返回 ErrUnresolvable 且状态不变
func (c *Controller) Handle(ev Event) (mapview.Transition, error) {
	switch ev.Type {
	case PointerMove:
		metrics.MapEventsTotal.WithLabelValues(string(ev.Type)).Inc()
		return mapview.TransitionNone, nil
	case PointerEnter, PointerLeave, Click:
		metrics.MapEventsTotal.WithLabelValues(string(ev.Type)).Inc()
	default:
		metrics.MapEventsTotal.WithLabelValues("unknown").Inc()
		return mapview.TransitionNone, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	doc := c.doc
	if doc == nil {
		return mapview.TransitionNone, ErrNotMounted
	}
	level := c.machine.Level()
	if ev.Map != "" && ev.Map != doc.Name {
		return mapview.TransitionNone, fmt.Errorf("%w: event for %s map", ErrNotMounted, ev.Map)
	}
	t, err := c.Resolve(doc, level, ev.Target)
	if err != nil {
		metrics.MapUnresolvedTotal.WithLabelValues(level.String()).Inc()
		return mapview.TransitionNone, err
	}
	var tr mapview.Transition
	switch ev.Type {
	case PointerEnter:
		tr = c.machine.Hover(t)
		c.machine.Pointer(t, HoverCursor)
	case PointerLeave:
		c.machine.Pointer(t, "")
		tr = c.machine.Unhover(t)
	case Click:
		if level == mapview.LevelProvince {
			tr = c.machine.SelectProvince(t)
		} else {
			tr = c.machine.SelectDistrict(t)
		}
	}
	metrics.MapTransitionsTotal.WithLabelValues(string(tr)).Inc()
	return tr, nil
}

// Resolve：把元素解析为完整地区组
func (c *Controller) Resolve(doc *svgmap.Document, level mapview.Level, id svgmap.ElementID) (mapview.Target, error) {
	n, ok := doc.Element(id)
	if !ok || !n.IsLeafPath() {
		return mapview.Target{}, fmt.Errorf("%w: element %d is not a leaf path", ErrUnresolvable, id)
	}
	idx := c.index()
	var r regionindex.Region
	if level == mapview.LevelProvince {
		r, ok = provinceOf(n)
	} else {
		r, ok = districtOf(idx, n)
	}
	if !ok {
		return mapview.Target{}, fmt.Errorf("%w: element %d", ErrUnresolvable, id)
	}
	return mapview.Target{Region: r, Elements: c.table(doc, level, idx).elements(r.Key, id)}, nil
}

// provinceOf：车牌代码与名称只看目标或其直接父元素
func provinceOf(n *svgmap.Node) (regionindex.Region, bool) {
	for _, x := range []*svgmap.Node{n, n.Parent} {
		if x == nil || x.Kind != svgmap.ElementNode {
			continue
		}
		plate := firstAttr(x, plateAttrs)
		name := firstAttr(x, nameAttrs)
		if plate == "" && name == "" {
			continue
		}
		return regionindex.ResolveProvince(plate, name)
	}
	return regionindex.Region{}, false
}

// districtOf：沿祖先查找 data-district；岛屿等多路径区也可只带登记过的 id
func districtOf(idx *regionindex.Index, n *svgmap.Node) (regionindex.Region, bool) {
	if a := svgmap.Closest(n, hasAttr(geodata.AttrDistrict)); a != nil {
		v, _ := a.Attr(geodata.AttrDistrict)
		return idx.DistrictRegion(geodata.AttrDistrict, v)
	}
	grouped := func(x *svgmap.Node) bool {
		v, ok := x.Attr(geodata.AttrID)
		if !ok {
			return false
		}
		_, ok = geodata.GroupFor(geodata.AttrID, v)
		return ok
	}
	if a := svgmap.Closest(n, grouped); a != nil {
		v, _ := a.Attr(geodata.AttrID)
		return idx.DistrictRegion(geodata.AttrID, v)
	}
	return regionindex.Region{}, false
}

func hasAttr(name string) func(*svgmap.Node) bool {
	return func(x *svgmap.Node) bool {
		v, ok := x.Attr(name)
		return ok && v != ""
	}
}

func firstAttr(n *svgmap.Node, names []string) string {
	for _, a := range names {
		if v, ok := n.Attr(a); ok && v != "" {
			return v
		}
	}
	return ""
}
