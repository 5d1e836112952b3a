// 程序入口：读取配置、初始化依赖并启动地图服务；接口注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"saha-map/internal/api"
	"saha-map/internal/config"
	"saha-map/internal/geodata"
	"saha-map/internal/ingest"
	"saha-map/internal/logger"
	"saha-map/internal/mapview"
	"saha-map/internal/metrics"
	"saha-map/internal/middleware"
	"saha-map/internal/migrate"
	"saha-map/internal/portalapi"
	"saha-map/internal/regionindex"
	"saha-map/internal/session"
	"saha-map/internal/store"
	"saha-map/internal/svgmap"
	"saha-map/internal/utils"
	"saha-map/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg := config.FromEnv()
	l.Debug("config_api_base", "base", cfg.APIBase)
	l.Debug("config_ui_dir", "dir", cfg.UIDist)
	l.Debug("config_asset_dir", "dir", cfg.AssetDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 地图资产缺失时无法提供任何功能，直接退出
	assets, err := svgmap.LoadAssets(cfg.AssetDir)
	if err != nil {
		l.Error("map_assets_error", "err", err)
		os.Exit(1)
	}
	l.Info("map_assets_ok", "province_nodes", assets.Province.Len(), "district_nodes", assets.District.Len())

	var display map[string]string
	if fc, err := geodata.LoadDistrictFeatures(cfg.AssetDir); err == nil {
		display = regionindex.BuildDistrictDisplayLookup(fc)
		l.Info("district_features_ok", "districts", len(display))
	} else {
		l.Error("district_features_error", "err", err)
	}
	holder := regionindex.NewHolder(regionindex.New(nil, display))

	// 选择统计（可选）
	var st *store.Store
	if cfg.StatsEnabled {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	} else {
		l.Info("stats_disabled")
	}

	var cache ingest.Cache
	if cfg.RedisEnabled {
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
			cache = ingest.NewRedisCache(rc)
		}
	} else {
		l.Info("redis_disabled")
	}

	portal, err := portalapi.New(portalapi.Config{
		BaseURL:  cfg.PortalBase,
		FeedPath: cfg.FeedPath,
		Username: cfg.PortalUser,
		Password: cfg.PortalPassword,
		Timeout:  cfg.PortalTimeout,
	})
	if err != nil {
		l.Error("portal_config_error", "err", err)
		os.Exit(1)
	}
	loader := ingest.NewLoader(portal, cache, holder, ingest.Options{CacheTTL: cfg.FeedCacheTTL})
	// 首次加载在后台进行，地图在数据到达前即可交互（会员数为 0）
	go func() {
		if err := loader.Load(ctx); err != nil {
			l.Error("feed_initial_load_error", "err", err)
		}
	}()
	loader.StartPeriodic(ctx, cfg.FeedRefresh)
	if cfg.FeedRefreshHour >= 0 && cfg.FeedRefreshHour < 24 {
		loader.StartDailyIstanbul(ctx, cfg.FeedRefreshHour)
	}

	colors := mapview.DefaultColors
	if cfg.HoverFill != "" {
		colors.Hover = cfg.HoverFill
	}
	if cfg.SelectFill != "" {
		colors.Selected = cfg.SelectFill
	}
	sessions := session.NewManager(assets, holder, session.Options{TTL: cfg.SessionTTL, Capacity: cfg.SessionCap, Colors: colors})
	sessions.StartJanitor(ctx, time.Minute)

	var stats api.Stats
	if st != nil {
		stats = st
	}
	h := api.New(sessions, holder, loader, stats, api.Options{
		AdminToken:     cfg.AdminToken,
		SecureCookie:   cfg.TLSEnable,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	r := chi.NewRouter()
	mountAPI := func(r chi.Router) {
		h.Register(r)
		r.Handle("/metrics", metrics.Handler())
	}
	if cfg.APIBase == "" {
		mountAPI(r)
	} else {
		r.Route(cfg.APIBase, mountAPI)
	}
	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	r.Get("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + cfg.APIBase + "'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__MAP_WS__='" + cfg.APIBase + "/map/ws'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'"))
	})
	r.Handle("/*", http.FileServer(http.Dir(cfg.UIDist)))

	handler := logger.AccessMiddleware(l, session.CookieName)(r)
	handler = middleware.Wrap(handler, middleware.Options{
		Enabled:   cfg.RateLimitEnabled,
		QPS:       cfg.RateLimitQPS,
		Burst:     cfg.RateLimitBurst,
		PerClient: true,
	})
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	if cfg.TLSEnable {
		_ = utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "saha-map.local")
		if cfg.TLSRedirect {
			go serveRedirect(cfg.TLSRedirectAddr, cfg.Addr)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		if err := s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
		}
		return
	}
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
	}
}

// serveRedirect：HTTP 重定向到 HTTPS 服务端口
func serveRedirect(redirAddr, httpsAddr string) {
	l := logger.L()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpsPort := strings.TrimPrefix(httpsAddr, ":")
		baseHost := r.Host
		if i := strings.LastIndex(baseHost, ":"); i != -1 {
			baseHost = baseHost[:i]
		}
		targetHost := baseHost
		if httpsPort != "" && httpsPort != "443" {
			targetHost = baseHost + ":" + httpsPort
		}
		target := "https://" + targetHost + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+httpsAddr)
	_ = http.ListenAndServe(redirAddr, logger.AccessMiddleware(l, "")(mux))
}
