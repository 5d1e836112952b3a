package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"saha-map/internal/logger"
	"saha-map/internal/metrics"
)

// Options：限流参数
type Options struct {
	Enabled bool
	QPS     float64
	Burst   int
	// PerClient：按客户端 IP 单独计数；关闭时所有请求共享一个桶
	PerClient bool
	// IdleTTL：客户端桶空闲多久后回收
	IdleTTL time.Duration
}

// 文档注释：令牌桶限流中间件
// 背景：地图指针事件频率高，单个页面的抖动不应拖垮会话表与成员面板计算。
// 约束：不排队，超限直接返回 429；客户端 IP 优先取 X-Forwarded-For 首段。
type Limiter struct {
	opts    Options
	global  *rate.Limiter
	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewLimiter：QPS、Burst 非法时回退为 20/40
func NewLimiter(o Options) *Limiter {
	if o.QPS <= 0 {
		o.QPS = 20
	}
	if o.Burst <= 0 {
		o.Burst = int(o.QPS * 2)
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = 10 * time.Minute
	}
	return &Limiter{
		opts:    o,
		global:  rate.NewLimiter(rate.Limit(o.QPS), o.Burst),
		clients: map[string]*client{},
		now:     time.Now,
	}
}

// Allow：判断 key 对应的桶是否还有令牌
func (l *Limiter) Allow(key string) bool {
	if !l.opts.PerClient {
		return l.global.Allow()
	}
	now := l.now()
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(rate.Limit(l.opts.QPS), l.opts.Burst)}
		l.clients[key] = c
	}
	c.seen = now
	l.mu.Unlock()
	return c.lim.AllowN(now, 1)
}

// Sweep：回收空闲客户端桶，返回回收数量
func (l *Limiter) Sweep() int {
	cut := l.now().Add(-l.opts.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, c := range l.clients {
		if c.seen.Before(cut) {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

// Wrap：未启用时原样返回 next
func Wrap(next http.Handler, o Options) http.Handler {
	if !o.Enabled {
		return next
	}
	l := NewLimiter(o)
	if o.PerClient {
		go func() {
			t := time.NewTicker(l.opts.IdleTTL)
			defer t.Stop()
			for range t.C {
				if n := l.Sweep(); n > 0 {
					logger.L().Debug("ratelimit_sweep", "removed", n)
				}
			}
		}()
	}
	return l.Middleware(next)
}

// Middleware：超限返回 429 并计数
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !l.Allow(ip) {
			metrics.RateLimitedTotal.Inc()
			logger.L().Debug("rate_limited", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP：X-Forwarded-For 首段，其次 X-Real-IP，最后 RemoteAddr 主机部分
func ClientIP(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		first := strings.TrimSpace(strings.Split(v, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(v) != nil {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
