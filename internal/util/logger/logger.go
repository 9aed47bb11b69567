// Package logger 提供统一的日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（DEP2P_LOG_LEVEL, DEP2P_LOG_FORMAT）
//   - 结构化日志
//
// 环境变量配置:
//
//	# 设置所有模块为 info，transport/quic 模块为 debug
//	DEP2P_LOG_LEVEL=transport/quic=debug,info
//
//	# 使用 JSON 格式输出
//	DEP2P_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// levelVars 缓存各子系统的级别变量（用于动态调整）
	levelVars sync.Map // map[string]*slog.LevelVar

	output   io.Writer = os.Stderr
	outputMu sync.Mutex
)

// Logger 获取指定子系统的 Logger
//
// 级别由 DEP2P_LOG_LEVEL 环境变量决定，同一子系统
// 多次调用返回同一个实例。
//
// 示例:
//
//	var log = logger.Logger("transport/quic")
//	log.Info("connection established", "peer", peerID)
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := configFromEnv()

	lv := &slog.LevelVar{}
	lv.Set(cfg.levelFor(subsystem))
	levelVars.Store(subsystem, lv)

	opts := &slog.HandlerOptions{Level: lv}
	outputMu.Lock()
	w := output
	outputMu.Unlock()

	var handler slog.Handler
	if cfg.json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler).With("subsystem", subsystem)
	actual, _ := loggers.LoadOrStore(subsystem, l)
	return actual.(*slog.Logger)
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if lv, ok := levelVars.Load(subsystem); ok {
		lv.(*slog.LevelVar).Set(level)
	}
}

// SetOutput 设置日志输出目标
//
// 只影响之后创建的 Logger，建议在程序启动早期调用。
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃所有日志的 Logger，用于测试
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
//                              环境变量配置
// ============================================================================

type config struct {
	defaultLevel slog.Level
	levels       map[string]slog.Level
	json         bool
}

func (c *config) levelFor(subsystem string) slog.Level {
	if level, ok := c.levels[subsystem]; ok {
		return level
	}
	return c.defaultLevel
}

var (
	cachedConfig *config
	configOnce   sync.Once
)

// configFromEnv 解析环境变量配置
//
// DEP2P_LOG_LEVEL 格式: 子系统=级别,子系统=级别,默认级别
// 示例: transport/quic=debug,security/tls=warn,info
func configFromEnv() *config {
	configOnce.Do(func() {
		cachedConfig = parseConfig(os.Getenv("DEP2P_LOG_LEVEL"), os.Getenv("DEP2P_LOG_FORMAT"))
	})
	return cachedConfig
}

func parseConfig(levelSpec, format string) *config {
	cfg := &config{
		defaultLevel: slog.LevelInfo,
		levels:       make(map[string]slog.Level),
		json:         strings.EqualFold(format, "json"),
	}

	for _, part := range strings.Split(levelSpec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if sub, lvl, ok := strings.Cut(part, "="); ok {
			cfg.levels[strings.TrimSpace(sub)] = parseLevel(lvl)
		} else {
			cfg.defaultLevel = parseLevel(part)
		}
	}
	return cfg
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
