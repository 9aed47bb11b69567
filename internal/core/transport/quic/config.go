package quic

import (
	"time"

	"github.com/quic-go/quic-go"

	"github.com/prometheus/client_golang/prometheus"
)

// Config QUIC 传输配置
type Config struct {
	// MaxIdleTimeout 连接空闲超时时间
	//
	// 快速断开检测：与 KeepAlivePeriod 配合，
	// 非优雅断开能在 KeepAlivePeriod + MaxIdleTimeout 内检测到。
	MaxIdleTimeout time.Duration

	// KeepAlivePeriod 发送 KeepAlive 的间隔
	KeepAlivePeriod time.Duration

	// MaxIncomingStreams 单连接允许对端打开的最大并发双向流数
	MaxIncomingStreams int64

	// MaxIncomingUniStreams 单连接允许对端打开的最大并发单向流数
	MaxIncomingUniStreams int64

	// HandshakeTimeout 握手超时时间
	HandshakeTimeout time.Duration

	// PerConnectionCertificate 每条连接使用独立的临时证书
	//
	// 开启后连接之间不可通过证书关联，代价是每次握手
	// 多一次密钥生成。默认关闭：证书随端点生成一次。
	PerConnectionCertificate bool

	// SessionCacheSize 0-RTT 会话缓存条目数，0 表示禁用会话恢复
	SessionCacheSize int

	// SessionCacheTTL 会话缓存条目过期时间
	SessionCacheTTL time.Duration

	// EnableDatagrams 启用不可靠数据报扩展
	EnableDatagrams bool

	// MetricsRegisterer 指标注册器，nil 表示不注册指标
	MetricsRegisterer prometheus.Registerer
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		// KeepAlivePeriod(3s) + MaxIdleTimeout(6s) ≈ 9s 最大断开检测延迟
		MaxIdleTimeout:        6 * time.Second,
		KeepAlivePeriod:       3 * time.Second,
		MaxIncomingStreams:    1024,
		MaxIncomingUniStreams: 1024,
		HandshakeTimeout:      10 * time.Second,
		SessionCacheSize:      256,
		SessionCacheTTL:       24 * time.Hour,
		EnableDatagrams:       true,
	}
}

// withDefaults 填充未设置的时间与流控参数
//
// SessionCacheSize 为 0 表示显式禁用会话恢复，不做填充。
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxIdleTimeout <= 0 {
		c.MaxIdleTimeout = def.MaxIdleTimeout
	}
	if c.KeepAlivePeriod <= 0 {
		c.KeepAlivePeriod = def.KeepAlivePeriod
	}
	if c.MaxIncomingStreams <= 0 {
		c.MaxIncomingStreams = def.MaxIncomingStreams
	}
	if c.MaxIncomingUniStreams <= 0 {
		c.MaxIncomingUniStreams = def.MaxIncomingUniStreams
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.SessionCacheTTL <= 0 {
		c.SessionCacheTTL = def.SessionCacheTTL
	}
	return c
}

// quicConfig 构建 quic-go 配置
func (c Config) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:        c.MaxIdleTimeout,
		KeepAlivePeriod:       c.KeepAlivePeriod,
		MaxIncomingStreams:    c.MaxIncomingStreams,
		MaxIncomingUniStreams: c.MaxIncomingUniStreams,
		HandshakeIdleTimeout:  c.HandshakeTimeout,
		EnableDatagrams:       c.EnableDatagrams,
		Allow0RTT:             c.SessionCacheSize > 0,
	}
}
