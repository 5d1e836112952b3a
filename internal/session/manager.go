package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"saha-map/internal/logger"
	"saha-map/internal/mapview"
	"saha-map/internal/metrics"
	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

// ErrNotFound：会话不存在或已过期
var ErrNotFound = errors.New("map session not found")

// CookieName：浏览器端保存会话 ID 的 Cookie
const CookieName = "map_sid"

// Options：会话容量、空闲过期与配色
type Options struct {
	TTL      time.Duration
	Capacity int
	Colors   mapview.Colors
}

// Manager：会话注册表
type Manager struct {
	assets svgmap.Assets
	holder *regionindex.Holder
	colors mapview.Colors
	store  *lru
}

// NewManager：assets 为母版地图，每个新会话复制一份
func NewManager(assets svgmap.Assets, holder *regionindex.Holder, opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 10000
	}
	m := &Manager{assets: assets, holder: holder, colors: opts.Colors}
	m.store = newLRU(capacity, ttl, func(s *Session) {
		s.Close()
		metrics.ActiveSessions.Dec()
	})
	return m
}

// Create：新建会话
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.assets, m.holder, m.colors)
	m.store.set(s.ID, s)
	metrics.ActiveSessions.Inc()
	logger.ForSession(s.ID).Debug("map_session_created")
	return s
}

// Get：按 ID 查找，访问即续期
func (m *Manager) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	s, ok := m.store.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetOrCreate：找不到时新建，created 表示是否新建
func (m *Manager) GetOrCreate(id string) (s *Session, created bool) {
	if s, err := m.Get(id); err == nil {
		return s, false
	}
	return m.Create(), true
}

// Delete：删除会话
func (m *Manager) Delete(id string) bool { return m.store.del(id) }

// Len：当前会话数
func (m *Manager) Len() int { return m.store.len() }

// StartJanitor：定期清理过期会话
func (m *Manager) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	go func() {
		tk := time.NewTicker(every)
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if n := m.store.sweep(); n > 0 {
					logger.L().Debug("map_session_sweep", "evicted", n)
				}
			}
		}
	}()
}
