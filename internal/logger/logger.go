// 包 logger：统一初始化与获取日志器；每条日志带 service 与 commit，会话相关日志再带 session
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"saha-map/internal/version"
)

// Service：日志中的服务名
const Service = "saha-map"

// 默认日志器：进程级复用
var defaultLogger *slog.Logger

// Setup：按 LOG_LEVEL（debug|info|warn|error）、LOG_FORMAT（text|json）、LOG_SOURCE=true 初始化默认日志器
// 约束：输出固定为标准错误
func Setup() *slog.Logger {
	defaultLogger = New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_SOURCE") == "true")
	return defaultLogger
}

// New：构建带服务属性的日志器；未知级别按 info 处理
func New(w io.Writer, level, format string, source bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level), AddSource: source}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", Service, "commit", version.Commit)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

// ForSession：附带地图会话 ID 的日志器
func ForSession(id string) *slog.Logger {
	return L().With("session", id)
}
