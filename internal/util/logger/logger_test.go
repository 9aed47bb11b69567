package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCached(t *testing.T) {
	l1 := Logger("test/cache")
	l2 := Logger("test/cache")
	assert.Same(t, l1, l2)
}

func TestParseConfig(t *testing.T) {
	cfg := parseConfig("transport/quic=debug,security/tls=warn,error", "json")

	assert.Equal(t, slog.LevelDebug, cfg.levelFor("transport/quic"))
	assert.Equal(t, slog.LevelWarn, cfg.levelFor("security/tls"))
	assert.Equal(t, slog.LevelError, cfg.levelFor("unknown"))
	assert.True(t, cfg.json)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg := parseConfig("", "")

	// 默认 info 级别、文本格式
	assert.Equal(t, slog.LevelInfo, cfg.levelFor("anything"))
	assert.False(t, cfg.json)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestDiscard(t *testing.T) {
	l := Discard()
	require.NotNil(t, l)
	l.Info("不应产生任何输出")
}
