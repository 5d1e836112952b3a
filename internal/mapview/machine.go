package mapview

import (
	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

// Config：状态机依赖
type Config struct {
	Province      Surface
	District      Surface
	Source        MemberSource
	Colors        Colors
	OnLevelChange func(Level)
}

// Machine：单个访客的地图视图状态机
// 约束：非并发安全，调用方需串行化（每个会话一把锁）。
type Machine struct {
	level    Level
	hovered  *Target
	selected *Target
	members  []regionindex.MemberRecord

	surfaces map[Level]Surface
	snapshot map[Level]map[svgmap.ElementID]string
	visual   map[Level]map[svgmap.ElementID]Visual
	source   MemberSource
	colors   Colors
	onLevel  func(Level)
	pending  []Paint
}

// New：初始层级为省级地图
func New(cfg Config) *Machine {
	colors := cfg.Colors
	if colors.Hover == "" {
		colors.Hover = DefaultColors.Hover
	}
	if colors.Selected == "" {
		colors.Selected = DefaultColors.Selected
	}
	m := &Machine{
		level:    LevelProvince,
		surfaces: map[Level]Surface{},
		snapshot: map[Level]map[svgmap.ElementID]string{LevelProvince: {}, LevelDistrict: {}},
		visual:   map[Level]map[svgmap.ElementID]Visual{LevelProvince: {}, LevelDistrict: {}},
		source:   cfg.Source,
		colors:   colors,
		onLevel:  cfg.OnLevelChange,
	}
	if cfg.Province != nil {
		m.surfaces[LevelProvince] = cfg.Province
	}
	if cfg.District != nil {
		m.surfaces[LevelDistrict] = cfg.District
	}
	return m
}

// Level：当前层级
func (m *Machine) Level() Level { return m.level }

// State：状态快照
func (m *Machine) State() State {
	s := State{Level: m.level}
	if m.hovered != nil {
		r := m.hovered.Region
		s.Hovered = &r
	}
	if m.selected != nil {
		r := m.selected.Region
		s.Selected = &r
	}
	return s
}

// Selected：当前选中的地区组
func (m *Machine) Selected() (Target, bool) {
	if m.selected == nil {
		return Target{}, false
	}
	return *m.selected, true
}

// Members：当前选中地区的会员列表
func (m *Machine) Members() []regionindex.MemberRecord { return m.members }

// Visual：元素当前视觉状态
func (m *Machine) Visual(l Level, id svgmap.ElementID) Visual { return m.visual[l][id] }

// Snapshot：元素首次交互时捕获的原始内联 fill（空表示原本没有）
func (m *Machine) Snapshot(l Level, id svgmap.ElementID) (string, bool) {
	f, ok := m.snapshot[l][id]
	return f, ok
}

// Drain：取走自上次调用以来的样式修改
func (m *Machine) Drain() []Paint {
	out := m.pending
	m.pending = nil
	return out
}

// Hover：悬停；与当前悬停或已选中地区相同则不变
func (m *Machine) Hover(t Target) Transition {
	if m.hovered != nil && m.hovered.Region.Same(t.Region) {
		return TransitionNone
	}
	if m.selected != nil && m.selected.Region.Same(t.Region) {
		return TransitionNone
	}
	prev := m.hovered
	m.hovered = &t
	m.refresh(prev)
	m.refresh(&t)
	return TransitionHover
}

// Unhover：离开；仅当 t 为当前悬停地区时清除，随后按状态重绘 t
func (m *Machine) Unhover(t Target) Transition {
	tr := TransitionNone
	if m.hovered != nil && m.hovered.Region.Same(t.Region) {
		prev := m.hovered
		m.hovered = nil
		m.refresh(prev)
		tr = TransitionUnhover
	}
	m.refresh(&t)
	return tr
}

// SelectProvince：省级点击；伊斯坦布尔切换到区级地图，其余按开关逻辑选中
func (m *Machine) SelectProvince(t Target) Transition {
	if m.level != LevelProvince {
		return TransitionNone
	}
	if t.Region.IsIstanbul() {
		m.clear(LevelProvince)
		m.setLevel(LevelDistrict)
		return TransitionLevel
	}
	return m.toggle(t)
}

// SelectDistrict：区级点击，开关逻辑作用于整个地区组
func (m *Machine) SelectDistrict(t Target) Transition {
	if m.level != LevelDistrict {
		return TransitionNone
	}
	return m.toggle(t)
}

// Back：回到省级地图并清空悬停、选中与会员列表
func (m *Machine) Back() Transition {
	from := m.level
	m.clear(from)
	if from == LevelDistrict {
		m.setLevel(LevelProvince)
		return TransitionBack
	}
	return TransitionClear
}

func (m *Machine) toggle(t Target) Transition {
	if m.selected != nil && m.selected.Region.Same(t.Region) {
		prev := m.selected
		m.selected = nil
		m.members = nil
		m.refresh(prev)
		return TransitionDeselect
	}
	if prev := m.selected; prev != nil {
		m.selected = nil
		m.refresh(prev)
	}
	m.selected = &t
	m.refresh(&t)
	m.members = nil
	if m.source != nil {
		m.members = m.source.MembersForRegion(t.Region)
	}
	return TransitionSelect
}

func (m *Machine) setLevel(l Level) {
	m.level = l
	if m.onLevel != nil {
		m.onLevel(l)
	}
}

// clear：清空状态并把该层所有被修改过的元素还原为快照色
func (m *Machine) clear(l Level) {
	hovered := m.hovered
	m.hovered = nil
	m.selected = nil
	m.members = nil
	s := m.surfaces[l]
	if s == nil {
		return
	}
	if hovered != nil {
		for _, e := range hovered.Elements {
			m.emit(l, e, "cursor", "")
			s.SetCursor(e, "")
		}
	}
	for e, v := range m.visual[l] {
		if v == VisualDefault {
			continue
		}
		m.visual[l][e] = VisualDefault
		fill := m.snapshot[l][e]
		m.emit(l, e, "fill", fill)
		s.SetFill(e, fill)
	}
}

// refresh：按当前状态重绘地区组内全部元素
// 颜色 = f(快照, 视觉状态)：选中优先于悬停。
func (m *Machine) refresh(t *Target) {
	if t == nil {
		return
	}
	l := m.level
	s := m.surfaces[l]
	if s == nil {
		return
	}
	for _, e := range t.Elements {
		if _, ok := m.snapshot[l][e]; !ok {
			m.snapshot[l][e] = s.InlineFill(e)
		}
		v := VisualDefault
		switch {
		case m.selected.has(e):
			v = VisualSelected
		case m.hovered.has(e):
			v = VisualHovered
		}
		if v == m.visual[l][e] {
			continue
		}
		m.visual[l][e] = v
		fill := m.colorFor(l, e, v)
		m.emit(l, e, "fill", fill)
		s.SetFill(e, fill)
	}
}

func (m *Machine) colorFor(l Level, e svgmap.ElementID, v Visual) string {
	switch v {
	case VisualSelected:
		return m.colors.Selected
	case VisualHovered:
		return m.colors.Hover
	}
	return m.snapshot[l][e]
}

// Pointer：设置地区组的光标
func (m *Machine) Pointer(t Target, cursor string) {
	s := m.surfaces[m.level]
	if s == nil {
		return
	}
	for _, e := range t.Elements {
		m.emit(m.level, e, "cursor", cursor)
		s.SetCursor(e, cursor)
	}
}

func (m *Machine) emit(l Level, e svgmap.ElementID, prop, value string) {
	m.pending = append(m.pending, Paint{Level: l, Element: e, Prop: prop, Value: value})
}
