// 包 config：从环境变量读取服务配置；.env 由 main 通过 godotenv 预先载入
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config：服务配置
// Redis 与 PostgreSQL 连接参数由 utils 按 REDIS_* / PG_* 直接读取。
type Config struct {
	Addr     string
	APIBase  string
	UIDist   string
	AssetDir string

	PortalBase     string
	FeedPath       string
	PortalUser     string
	PortalPassword string
	PortalTimeout  time.Duration

	FeedRefresh     time.Duration
	FeedRefreshHour int
	FeedCacheTTL    time.Duration
	RedisEnabled    bool

	SessionTTL time.Duration
	SessionCap int

	HoverFill  string
	SelectFill string

	AdminToken     string
	StatsEnabled   bool
	AllowedOrigins []string

	RateLimitEnabled bool
	RateLimitQPS     float64
	RateLimitBurst   int

	TLSEnable       bool
	TLSCertPath     string
	TLSKeyPath      string
	TLSRedirect     bool
	TLSRedirectAddr string
}

// FromEnv：读取环境变量，缺省值适合本地开发
func FromEnv() Config {
	return Config{
		Addr:     str("ADDR", ":8080"),
		APIBase:  apiBase(str("API_BASE", "/api")),
		UIDist:   str("UI_DIST", filepath.Join("ui", "dist")),
		AssetDir: str("MAP_ASSET_DIR", filepath.Join("data", "maps")),

		PortalBase:     str("PORTAL_API_BASE", "http://127.0.0.1:8000/api/"),
		FeedPath:       str("PORTAL_FEED_PATH", ""),
		PortalUser:     os.Getenv("PORTAL_USERNAME"),
		PortalPassword: os.Getenv("PORTAL_PASSWORD"),
		PortalTimeout:  dur("PORTAL_TIMEOUT", 10*time.Second),

		FeedRefresh:     dur("FEED_REFRESH_INTERVAL", 15*time.Minute),
		FeedRefreshHour: num("FEED_REFRESH_HOUR", -1),
		FeedCacheTTL:    dur("FEED_CACHE_TTL", 10*time.Minute),
		RedisEnabled:    flag("REDIS_ENABLED", true),

		SessionTTL: dur("SESSION_TTL", 30*time.Minute),
		SessionCap: num("SESSION_CAP", 10000),

		HoverFill:  os.Getenv("MAP_HOVER_FILL"),
		SelectFill: os.Getenv("MAP_SELECT_FILL"),

		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		StatsEnabled:   flag("STATS_ENABLED", false),
		AllowedOrigins: list("WS_ALLOWED_ORIGINS"),

		RateLimitEnabled: flag("RATE_LIMIT_ENABLED", false),
		RateLimitQPS:     float("RATE_LIMIT_QPS", 20),
		RateLimitBurst:   num("RATE_LIMIT_BURST", 40),

		TLSEnable:       flag("TLS_ENABLE", true),
		TLSCertPath:     str("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt")),
		TLSKeyPath:      str("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key")),
		TLSRedirect:     flag("TLS_REDIRECT_ENABLE", false),
		TLSRedirectAddr: str("TLS_REDIRECT_ADDR", ":80"),
	}
}

// apiBase：保证以 / 开头且不以 / 结尾；"/" 表示挂在根路径
func apiBase(v string) string {
	v = strings.TrimRight(v, "/")
	if v != "" && !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	return v
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func num(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func float(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// flag：空值取默认，"true"/"1" 为真，其余为假
func flag(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def
	case "true", "1", "yes":
		return true
	}
	return false
}

// dur：接受 Go 时长（"90s"、"15m"）或整数秒；"0" 表示关闭
func dur(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func list(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
