// 包 api：地图服务 HTTP 接口，挂载在 API_BASE 前缀下
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"saha-map/internal/ingest"
	"saha-map/internal/logger"
	"saha-map/internal/mapview"
	"saha-map/internal/metrics"
	"saha-map/internal/regionindex"
	"saha-map/internal/session"
	"saha-map/internal/store"
)

// Feed：会员数据加载器
type Feed interface {
	Refresh(ctx context.Context) error
	Status() ingest.Status
}

// Stats：选择统计存储；为空时统计接口返回 503
type Stats interface {
	RecordSelection(ctx context.Context, r regionindex.Region) error
	IncrSessions(ctx context.Context) error
	GetTotals(ctx context.Context) (*store.Totals, error)
	TopRegions(ctx context.Context, kind string, limit int) ([]store.RegionStat, error)
}

// Options：接口行为开关
type Options struct {
	AdminToken     string
	SecureCookie   bool
	AllowedOrigins []string
}

// Handler：地图接口集合
type Handler struct {
	sessions *session.Manager
	holder   *regionindex.Holder
	feed     Feed
	stats    Stats
	opts     Options
	upgrader websocket.Upgrader
}

// New：feed 与 stats 可为空
func New(sessions *session.Manager, holder *regionindex.Holder, feed Feed, stats Stats, opts Options) *Handler {
	h := &Handler{sessions: sessions, holder: holder, feed: feed, stats: stats, opts: opts}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Register：注册全部路由
func (h *Handler) Register(r chi.Router) {
	r.Route("/map", func(r chi.Router) {
		r.Get("/state", h.instrument("map_state", h.state))
		r.Get("/svg", h.instrument("map_svg", h.svg))
		r.Get("/panel", h.instrument("map_panel", h.panel))
		r.Get("/counts", h.instrument("map_counts", h.counts))
		r.Post("/events", h.instrument("map_events", h.events))
		r.Post("/back", h.instrument("map_back", h.back))
		r.Delete("/session", h.instrument("map_session_end", h.endSession))
		r.Get("/ws", h.ws)
	})
	r.Get("/stats", h.instrument("stats", h.statsHandler))
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Post("/reload-feed", h.instrument("admin_reload_feed", h.reloadFeed))
		r.Get("/feed-status", h.instrument("admin_feed_status", h.feedStatus))
	})
}

// instrument：按路由计数与记录耗时
func (h *Handler) instrument(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		fn(w, r)
		metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}
}

// requireAdmin：x-admin-token 必须与配置一致；未配置令牌时管理接口整体关闭
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.AdminToken == "" || r.Header.Get("x-admin-token") != h.opts.AdminToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin：未配置白名单时只允许同源（或无 Origin 的非浏览器客户端）
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.opts.AllowedOrigins) == 0 {
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
	for _, o := range h.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// sessionFor：按 Cookie 取会话；新建时返回需要下发的 Cookie
func (h *Handler) sessionFor(r *http.Request) (*session.Session, *http.Cookie) {
	id := ""
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}
	s, created := h.sessions.GetOrCreate(id)
	if !created {
		return s, nil
	}
	if h.stats != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.stats.IncrSessions(ctx); err != nil {
				logger.L().Warn("stats_sessions_fail", "err", err)
			}
		}()
	}
	return s, &http.Cookie{
		Name:     session.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	s, c := h.sessionFor(r)
	if c != nil {
		http.SetCookie(w, c)
	}
	return s
}

// recordSelection：选中成功后异步落库，失败只记日志
func (h *Handler) recordSelection(u session.Update) {
	if h.stats == nil || u.Transition != mapview.TransitionSelect || u.State.Selected == nil {
		return
	}
	r := *u.State.Selected
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.stats.RecordSelection(ctx, r); err != nil {
			logger.L().Warn("stats_selection_fail", "region", r.Key, "err", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
