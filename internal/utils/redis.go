// 包 utils：Redis 连接工具；Redis 只做会员数据缓存，超时取短值，缓存慢时直接回源门户
package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"saha-map/internal/logger"
)

// RedisOptionsFromEnv：REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB/REDIS_POOL_SIZE
// 约束：REDIS_DB 非法时回退到 0；ClientName 固定为服务名
func RedisOptionsFromEnv() *redis.Options {
	opts := &redis.Options{
		Addr:         envOr("REDIS_HOST", "127.0.0.1") + ":" + envOr("REDIS_PORT", "6379"),
		Password:     os.Getenv("REDIS_PASS"),
		ClientName:   logger.Service,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
	}
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && n >= 0 {
		opts.DB = n
	}
	if n, err := strconv.Atoi(os.Getenv("REDIS_POOL_SIZE")); err == nil && n > 0 {
		opts.PoolSize = n
	}
	return opts
}

// OpenRedisFromEnv：从环境变量打开 Redis 客户端；连通性由调用方 Ping 判断
func OpenRedisFromEnv() *redis.Client {
	opts := RedisOptionsFromEnv()
	logger.L().Debug("redis_env", "addr", opts.Addr, "db", opts.DB, "pool", opts.PoolSize)
	return redis.NewClient(opts)
}
