// 会员数据同步工具：从门户拉取一次按城市聚合的会员列表并写入 Redis 缓存
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"saha-map/internal/config"
	"saha-map/internal/ingest"
	"saha-map/internal/logger"
	"saha-map/internal/portalapi"
	"saha-map/internal/regionindex"
	"saha-map/internal/utils"
)

// 文档注释：预热地图服务的会员缓存
// 背景：服务冷启动时首个请求无需等待门户；也用于排查门户返回的数据键。
// 约束：只写缓存，不触碰运行中服务的内存索引；FEED_SYNC_PRINT=true 时输出数据键顺序。
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	cfg := config.FromEnv()

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
	rc := utils.OpenRedisFromEnv()
	defer rc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		os.Exit(1)
	}

	holder := regionindex.NewHolder(nil)
	loader := ingest.NewLoader(portal, ingest.NewRedisCache(rc), holder, ingest.Options{CacheTTL: cfg.FeedCacheTTL})
	if err := loader.Refresh(ctx); err != nil {
		l.Error("feed_sync_error", "err", err)
		os.Exit(1)
	}
	st := loader.Status()
	if os.Getenv("FEED_SYNC_PRINT") == "true" {
		for _, k := range holder.Load().Cities().Keys() {
			l.Info("feed_key", "key", k)
		}
	}
	l.Info("feed_sync_done", "keys", st.Keys, "members", st.Members)
}
