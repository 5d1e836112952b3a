// 包 ingest：会员数据加载与定时刷新，运行在服务进程内的后台协程
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"saha-map/internal/logger"
	"saha-map/internal/metrics"
	"saha-map/internal/regionindex"
)

// DefaultCacheKey：Redis 中会员数据的键
const DefaultCacheKey = "sahamap:feed:city-members"

// Fetcher：会员数据来源；portalapi.Client 即为实现
type Fetcher interface {
	FetchCityMembers(ctx context.Context) (*regionindex.CityMemberIndex, error)
}

// Options：加载参数
type Options struct {
	CacheKey string
	CacheTTL time.Duration
}

// Loader：拉取会员数据并以一次原子替换发布到 Holder
// 约束：任何失败都发布空索引（无数据），错误只返回给调用方记录，不向地图传播。
type Loader struct {
	fetch  Fetcher
	cache  Cache
	holder *regionindex.Holder
	key    string
	ttl    time.Duration

	mu       sync.Mutex
	lastOK   time.Time
	lastErr  error
	lastFrom string
}

// NewLoader：cache 可为 nil
func NewLoader(f Fetcher, c Cache, h *regionindex.Holder, opts Options) *Loader {
	key := opts.CacheKey
	if key == "" {
		key = DefaultCacheKey
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Loader{fetch: f, cache: c, holder: h, key: key, ttl: ttl}
}

// Status：最近一次加载结果
type Status struct {
	LastOK  time.Time `json:"last_ok"`
	Source  string    `json:"source"`
	Error   string    `json:"error,omitempty"`
	Keys    int       `json:"keys"`
	Members int       `json:"members"`
}

// Status：供管理接口展示
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.holder.Load().Cities()
	s := Status{LastOK: l.lastOK, Source: l.lastFrom, Keys: c.Len(), Members: c.Total()}
	if l.lastErr != nil {
		s.Error = l.lastErr.Error()
	}
	return s
}

// Load：优先读缓存，未命中时拉取并回写
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache != nil {
		raw, err := l.cache.Get(ctx, l.key)
		switch {
		case err == nil:
			cities, derr := regionindex.DecodeCityMembers(raw)
			if derr == nil {
				metrics.FeedCacheHitsTotal.Inc()
				l.publish(cities, "cache")
				return nil
			}
			logger.L().Warn("feed_cache_corrupt", "key", l.key, "err", derr)
		case errors.Is(err, ErrCacheMiss):
		default:
			logger.L().Warn("feed_cache_error", "err", err)
		}
		metrics.FeedCacheMissesTotal.Inc()
	}
	return l.fetchLocked(ctx)
}

// Refresh：跳过缓存强制拉取（定时任务与管理接口）
func (l *Loader) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetchLocked(ctx)
}

func (l *Loader) fetchLocked(ctx context.Context) error {
	t0 := time.Now()
	metrics.FeedFetchTotal.Inc()
	cities, err := l.fetch.FetchCityMembers(ctx)
	dur := time.Since(t0).Milliseconds()
	metrics.FeedFetchDurationMs.Observe(float64(dur))
	if err != nil {
		metrics.FeedFetchFailTotal.Inc()
		logger.L().Error("feed_fetch_error", "err", err, "duration_ms", dur)
		l.lastErr = err
		l.lastFrom = "none"
		l.holder.Swap(l.holder.Load().WithCities(nil))
		metrics.IndexMembers.Set(0)
		return err
	}
	logger.L().Info("feed_fetch_ok", "keys", cities.Len(), "members", cities.Total(), "duration_ms", dur)
	l.publish(cities, "portal")
	if l.cache != nil {
		if raw, merr := json.Marshal(cities); merr == nil {
			if serr := l.cache.Set(ctx, l.key, raw, l.ttl); serr != nil {
				logger.L().Warn("feed_cache_set_error", "err", serr)
			}
		}
	}
	return nil
}

func (l *Loader) publish(c *regionindex.CityMemberIndex, from string) {
	l.holder.Swap(l.holder.Load().WithCities(c))
	l.lastOK = time.Now()
	l.lastErr = nil
	l.lastFrom = from
	metrics.IndexMembers.Set(float64(c.Total()))
}
