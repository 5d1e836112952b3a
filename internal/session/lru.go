package session

import (
	"container/list"
	"sync"
	"time"
)

// lru：会话 LRU，带滑动过期
// 背景：会话只存在于进程内存，容量与 TTL 限制内存占用；淘汰时回调释放资源。
type lru struct {
	mu      sync.Mutex
	cap     int
	ttl     time.Duration
	lst     *list.List
	dict    map[string]*list.Element
	now     func() time.Time
	onEvict func(*Session)
}

type item struct {
	k   string
	v   *Session
	exp time.Time
}

func newLRU(capacity int, ttl time.Duration, onEvict func(*Session)) *lru {
	return &lru{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now, onEvict: onEvict}
}

func (c *lru) get(k string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return nil, false
	}
	it := e.Value.(*item)
	if !c.now().Before(it.exp) {
		c.removeLocked(e)
		return nil, false
	}
	it.exp = c.now().Add(c.ttl)
	c.lst.MoveToFront(e)
	return it.v, true
}

func (c *lru) set(k string, v *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(*item)
		if it.v != v && c.onEvict != nil {
			c.onEvict(it.v)
		}
		it.v = v
		it.exp = c.now().Add(c.ttl)
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(&item{k: k, v: v, exp: c.now().Add(c.ttl)})
	for c.cap > 0 && c.lst.Len() > c.cap {
		c.removeLocked(c.lst.Back())
	}
}

func (c *lru) del(k string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if ok {
		c.removeLocked(e)
	}
	return ok
}

// sweep：清除全部过期项
func (c *lru) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for e := c.lst.Back(); e != nil; {
		prev := e.Prev()
		if !now.Before(e.Value.(*item).exp) {
			c.removeLocked(e)
			n++
		}
		e = prev
	}
	return n
}

func (c *lru) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

func (c *lru) removeLocked(e *list.Element) {
	it := e.Value.(*item)
	delete(c.dict, it.k)
	c.lst.Remove(e)
	if c.onEvict != nil {
		c.onEvict(it.v)
	}
}
