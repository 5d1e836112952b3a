// 包 session：访客地图会话，每个会话持有独立的状态机、控制器与地图副本
package session

import (
	"errors"
	"sync"

	"saha-map/internal/interaction"
	"saha-map/internal/mapview"
	"saha-map/internal/panel"
	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

// Update：一次输入后的响应；Panel 仅在选中或层级变化时给出
type Update struct {
	Transition mapview.Transition `json:"transition"`
	State      mapview.State      `json:"state"`
	Map        string             `json:"map"`
	Paints     []mapview.Paint    `json:"paints"`
	Tooltip    string             `json:"tooltip,omitempty"`
	Panel      *panel.View        `json:"panel,omitempty"`
	Dropped    string             `json:"dropped,omitempty"`
}

// Session：单个访客
// 约束：所有方法持有会话锁，事件按到达顺序串行处理。
type Session struct {
	ID string

	mu      sync.Mutex
	stage   *svgmap.Stage
	docs    map[mapview.Level]*svgmap.Document
	machine *mapview.Machine
	ctrl    *interaction.Controller
	holder  *regionindex.Holder
	release func()
	closed  bool
}

func newSession(id string, assets svgmap.Assets, holder *regionindex.Holder, colors mapview.Colors) *Session {
	s := &Session{
		ID:     id,
		stage:  svgmap.NewStage(),
		holder: holder,
		docs: map[mapview.Level]*svgmap.Document{
			mapview.LevelProvince: assets.Province.Clone(),
			mapview.LevelDistrict: assets.District.Clone(),
		},
	}
	s.machine = mapview.New(mapview.Config{
		Province:      s.docs[mapview.LevelProvince],
		District:      s.docs[mapview.LevelDistrict],
		Source:        holder,
		Colors:        colors,
		OnLevelChange: func(l mapview.Level) { s.stage.Mount(s.docs[l]) },
	})
	s.ctrl = interaction.New(s.machine, holder.Load)
	s.release = s.ctrl.Attach(s.stage)
	s.stage.Mount(s.docs[mapview.LevelProvince])
	return s
}

// Handle：处理一个指针事件
// 无法解析或地图未挂载的事件被静默丢弃（Dropped 给出原因），只有未知事件类型返回错误。
func (s *Session) Handle(ev interaction.Event) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Update{}, ErrNotFound
	}
	tr, err := s.ctrl.Handle(ev)
	if err != nil {
		if errors.Is(err, interaction.ErrUnresolvable) || errors.Is(err, interaction.ErrNotMounted) {
			u := s.updateLocked(mapview.TransitionNone)
			u.Dropped = err.Error()
			return u, nil
		}
		return Update{}, err
	}
	u := s.updateLocked(tr)
	if ev.Type == interaction.PointerEnter && u.State.Hovered != nil {
		r := *u.State.Hovered
		u.Tooltip = panel.Tooltip(r, s.holder.Load().CountForRegion(r))
	}
	return u, nil
}

// Back：返回省级地图
func (s *Session) Back() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(s.machine.Back())
}

// Current：当前状态与面板，不产生迁移
func (s *Session) Current() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.updateLocked(mapview.TransitionNone)
	v := panel.Present(u.State, s.machine.Members())
	u.Panel = &v
	return u
}

// Panel：会员面板
func (s *Session) Panel() panel.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return panel.Present(s.machine.State(), s.machine.Members())
}

// SVG：当前挂载地图（含本会话着色）的 SVG 文本
func (s *Session) SVG() (name string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.stage.Current()
	if d == nil {
		return "", nil
	}
	return d.Name, d.Bytes()
}

// Close：解除控制器绑定；由 LRU 淘汰时调用
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.release()
	s.stage.Mount(nil)
}

func (s *Session) updateLocked(tr mapview.Transition) Update {
	u := Update{Transition: tr, State: s.machine.State(), Paints: s.machine.Drain()}
	if u.Paints == nil {
		u.Paints = []mapview.Paint{}
	}
	if d := s.stage.Current(); d != nil {
		u.Map = d.Name
	}
	switch tr {
	case mapview.TransitionSelect, mapview.TransitionDeselect, mapview.TransitionLevel,
		mapview.TransitionBack, mapview.TransitionClear:
		v := panel.Present(u.State, s.machine.Members())
		u.Panel = &v
	}
	return u
}
