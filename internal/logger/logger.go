// 包 logger：统一初始化与获取日志器；通过环境变量控制级别与输出格式，避免各模块各自配置
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// 进程级默认日志器：复用单实例，保证各包输出一致
var defaultLogger *slog.Logger

// Setup：初始化默认日志器
// 背景：转换服务的日志需要按部署环境切换级别与 JSON/文本格式；集中在此处理
// 约束：固定输出到标准错误；文件落盘与聚合由外部采集链路负责
func Setup() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L：获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
