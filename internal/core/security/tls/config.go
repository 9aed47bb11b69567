package tls

import (
	"crypto/tls"
	"sync"

	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// alpnProtocol QUIC 传输默认的 ALPN 协议标识
const alpnProtocol = "libp2p"

// ============================================================================
//                              配置构建器
// ============================================================================

// ConfigBuilder 生成双向身份认证的 TLS 配置
//
// 服务端与客户端共用同一个构建器：证书默认在构建时生成一次，
// 所有连接复用；开启 WithPerConnectionCertificate 后每条连接
// 使用独立的临时证书，连接之间不可通过证书关联。
type ConfigBuilder struct {
	identityKey crypto.PrivateKey
	localPeer   types.PeerID

	mu   sync.Mutex
	cert *tls.Certificate

	perConnCert  bool
	nextProtos   []string
	sessionCache tls.ClientSessionCache
}

// BuilderOption 配置构建器选项
type BuilderOption func(*ConfigBuilder)

// WithPerConnectionCertificate 每条连接生成独立的临时证书
func WithPerConnectionCertificate() BuilderOption {
	return func(b *ConfigBuilder) {
		b.perConnCert = true
	}
}

// WithNextProtos 覆盖默认的 ALPN 协议列表
func WithNextProtos(protos []string) BuilderOption {
	return func(b *ConfigBuilder) {
		if len(protos) > 0 {
			b.nextProtos = protos
		}
	}
}

// WithSessionCache 设置客户端会话缓存，启用会话恢复与 0-RTT
func WithSessionCache(cache tls.ClientSessionCache) BuilderOption {
	return func(b *ConfigBuilder) {
		b.sessionCache = cache
	}
}

// NewConfigBuilder 创建配置构建器
//
// 证书密钥无法编码时在此处失败，而不是推迟到第一次握手。
func NewConfigBuilder(identityKey crypto.PrivateKey, opts ...BuilderOption) (*ConfigBuilder, error) {
	if identityKey == nil {
		return nil, crypto.ErrNilPrivateKey
	}
	localPeer, err := crypto.PeerIDFromPrivateKey(identityKey)
	if err != nil {
		return nil, err
	}

	b := &ConfigBuilder{
		identityKey: identityKey,
		localPeer:   localPeer,
		nextProtos:  []string{alpnProtocol},
	}
	for _, opt := range opts {
		opt(b)
	}

	if !b.perConnCert {
		cert, err := GenerateCertificate(identityKey)
		if err != nil {
			return nil, err
		}
		b.cert = cert
	}
	return b, nil
}

// LocalPeer 返回本地身份对应的 PeerID
func (b *ConfigBuilder) LocalPeer() types.PeerID {
	return b.localPeer
}

// certificate 按策略返回共享证书或新生成的证书
func (b *ConfigBuilder) certificate() (*tls.Certificate, error) {
	if b.perConnCert {
		return GenerateCertificate(b.identityKey)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cert, nil
}

// ServerConfig 构建监听端 TLS 配置
//
// 要求客户端出示证书并通过身份绑定验证，任何验证失败都使握手失败。
func (b *ConfigBuilder) ServerConfig() (*tls.Config, error) {
	conf := b.baseConfig()
	conf.ClientAuth = tls.RequireAnyClientCert

	if b.perConnCert {
		conf.GetCertificate = func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return GenerateCertificate(b.identityKey)
		}
		return conf, nil
	}

	cert, err := b.certificate()
	if err != nil {
		return nil, err
	}
	conf.Certificates = []tls.Certificate{*cert}
	return conf, nil
}

// ClientConfig 构建拨号端 TLS 配置
//
// expectedPeer 非空时将对端身份钉死为该 PeerID。
func (b *ConfigBuilder) ClientConfig(expectedPeer types.PeerID) (*tls.Config, error) {
	conf := b.baseConfig()
	conf.VerifyPeerCertificate = makeVerifyCallback(expectedPeer)
	conf.ClientSessionCache = b.sessionCache

	cert, err := b.certificate()
	if err != nil {
		return nil, err
	}
	conf.Certificates = []tls.Certificate{*cert}
	return conf, nil
}

// baseConfig 双端共享的配置骨架
//
// InsecureSkipVerify 只关闭标准库的 CA 链验证，
// 实际验证完全由 VerifyPeerCertificate 回调承担。
func (b *ConfigBuilder) baseConfig() *tls.Config {
	return &tls.Config{
		MinVersion:            tls.VersionTLS13,
		NextProtos:            append([]string(nil), b.nextProtos...),
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: makeVerifyCallback(types.EmptyPeerID),
	}
}
