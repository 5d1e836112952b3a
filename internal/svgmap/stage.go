package svgmap

import "sync"

// Stage：当前挂载的地图文档持有者
// 背景：交互控制器挂在 Stage 上而不是具体文档上，换图后无需重新绑定。
type Stage struct {
	mu   sync.RWMutex
	doc  *Document
	next int
	subs map[int]func(*Document)
}

// NewStage：创建空 Stage
func NewStage() *Stage {
	return &Stage{subs: map[int]func(*Document){}}
}

// Mount：挂载新文档并通知订阅者；传 nil 表示卸载
func (s *Stage) Mount(doc *Document) {
	s.mu.Lock()
	s.doc = doc
	fns := make([]func(*Document), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(doc)
	}
}

// Current：当前文档，未挂载时返回 nil
func (s *Stage) Current() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// OnMount：订阅挂载信号，返回取消函数
func (s *Stage) OnMount(fn func(*Document)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
