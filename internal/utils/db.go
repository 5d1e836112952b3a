// 包 utils：PostgreSQL 连接工具；地图服务只写选择统计，连接池按小流量配置
package utils

import (
	"database/sql"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// PoolConfig：统计库连接池参数
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// BuildPostgresDSNFromEnv：PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE，默认库 sahamap
// DSN 带 application_name，便于在 pg_stat_activity 中区分地图服务的连接
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   envOr("PG_HOST", "localhost") + ":" + envOr("PG_PORT", "5432"),
		Path:   "/" + envOr("PG_DB", "sahamap"),
	}
	user := envOr("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	q := url.Values{}
	q.Set("sslmode", envOr("PG_SSLMODE", "disable"))
	q.Set("application_name", envOr("PG_APP_NAME", "saha-map"))
	u.RawQuery = q.Encode()
	return u.String()
}

// PoolConfigFromEnv：PG_MAX_OPEN_CONNS（默认 10）、PG_MAX_IDLE_CONNS（默认 5）、PG_CONN_MAX_LIFETIME（默认 30m）
func PoolConfigFromEnv() PoolConfig {
	p := PoolConfig{MaxOpen: 10, MaxIdle: 5, MaxLifetime: 30 * time.Minute}
	if n, err := strconv.Atoi(os.Getenv("PG_MAX_OPEN_CONNS")); err == nil && n > 0 {
		p.MaxOpen = n
	}
	if n, err := strconv.Atoi(os.Getenv("PG_MAX_IDLE_CONNS")); err == nil && n >= 0 {
		p.MaxIdle = n
	}
	if d, err := time.ParseDuration(os.Getenv("PG_CONN_MAX_LIFETIME")); err == nil && d > 0 {
		p.MaxLifetime = d
	}
	if p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen
	}
	return p
}

// OpenPostgresFromEnv：按环境变量打开统计库；sql.Open 不建立连接，可用性由调用方 Ping 判断
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	p := PoolConfigFromEnv()
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	return db, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
