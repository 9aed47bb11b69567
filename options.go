package dep2pquic

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	quictransport "github.com/dep2p/go-dep2p-quic/internal/core/transport/quic"
)

// Option 传输配置选项
type Option func(*quictransport.Config)

// WithMaxIdleTimeout 设置连接空闲超时时间
//
// 与 KeepAlive 间隔共同决定断开检测延迟。
func WithMaxIdleTimeout(d time.Duration) Option {
	return func(cfg *quictransport.Config) {
		cfg.MaxIdleTimeout = d
	}
}

// WithKeepAlivePeriod 设置 KeepAlive 发送间隔
func WithKeepAlivePeriod(d time.Duration) Option {
	return func(cfg *quictransport.Config) {
		cfg.KeepAlivePeriod = d
	}
}

// WithMaxIncomingStreams 设置单连接允许对端打开的最大并发流数
func WithMaxIncomingStreams(n int64) Option {
	return func(cfg *quictransport.Config) {
		cfg.MaxIncomingStreams = n
	}
}

// WithHandshakeTimeout 设置握手超时时间
func WithHandshakeTimeout(d time.Duration) Option {
	return func(cfg *quictransport.Config) {
		cfg.HandshakeTimeout = d
	}
}

// WithPerConnectionCertificates 每条连接使用独立的临时证书
//
// 开启后连接之间不可通过证书关联，代价是每次握手
// 多一次密钥生成。
func WithPerConnectionCertificates() Option {
	return func(cfg *quictransport.Config) {
		cfg.PerConnectionCertificate = true
	}
}

// WithSessionCache 配置 0-RTT 会话缓存
func WithSessionCache(size int, ttl time.Duration) Option {
	return func(cfg *quictransport.Config) {
		cfg.SessionCacheSize = size
		cfg.SessionCacheTTL = ttl
	}
}

// WithoutSessionCache 禁用会话恢复与 0-RTT
func WithoutSessionCache() Option {
	return func(cfg *quictransport.Config) {
		cfg.SessionCacheSize = 0
	}
}

// WithMetrics 将传输指标注册到给定的 Prometheus 注册器
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *quictransport.Config) {
		cfg.MetricsRegisterer = reg
	}
}
