// Package quic 实现 QUIC 传输层
package quic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/quic-go/quic-go"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	dep2ptls "github.com/dep2p/go-dep2p-quic/internal/core/security/tls"
	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// Endpoint 绑定单个 UDP socket 的 QUIC 端点
//
// 监听与拨号共享同一个 socket，这对 NAT 打洞至关重要：
// 打洞要求出站包使用与监听相同的本地端口。端点绑定时
// 确定地址族，之后只接受同族的拨号目标。
type Endpoint struct {
	udpConn       *net.UDPConn
	quicTransport *quic.Transport
	localAddr     *net.UDPAddr

	builder  *dep2ptls.ConfigBuilder
	quicConf *quic.Config
	metrics  *metrics

	mu       sync.Mutex
	conns    map[*Conn]struct{}
	listener *Listener
	closed   atomic.Bool
}

// newEndpoint 创建绑定到 laddr 的端点
//
// 证书按端点生成（每连接证书策略见 Config），
// 证书生成失败时端点创建失败。
func newEndpoint(laddr *net.UDPAddr, identityKey crypto.PrivateKey, cfg Config, store *SessionStore, m *metrics) (*Endpoint, error) {
	opts := []dep2ptls.BuilderOption{}
	if cfg.PerConnectionCertificate {
		opts = append(opts, dep2ptls.WithPerConnectionCertificate())
	}
	if store != nil {
		opts = append(opts, dep2ptls.WithSessionCache(store))
	}

	builder, err := dep2ptls.NewConfigBuilder(identityKey, opts...)
	if err != nil {
		return nil, err
	}

	network := "udp4"
	if isIPv6(laddr) {
		network = "udp6"
	}
	udpConn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}

	return &Endpoint{
		udpConn:       udpConn,
		quicTransport: &quic.Transport{Conn: udpConn},
		localAddr:     udpConn.LocalAddr().(*net.UDPAddr),
		builder:       builder,
		quicConf:      cfg.quicConfig(),
		metrics:       m,
		conns:         make(map[*Conn]struct{}),
	}, nil
}

// LocalAddr 返回端点绑定的 UDP 地址
func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.localAddr
}

// isClosed 检查端点是否已关闭
func (e *Endpoint) isClosed() bool {
	return e.closed.Load()
}

// Dial 建立到 raddr 的出站连接
//
// 目标地址族必须与端点绑定的地址族一致。
// 返回的连接已完成握手且对端身份已验证。
func (e *Endpoint) Dial(ctx context.Context, raddr *net.UDPAddr, expectedPeer types.PeerID) (*Conn, error) {
	if e.closed.Load() {
		return nil, ErrEndpointClosed
	}
	if !sameFamily(e.localAddr, raddr) {
		return nil, fmt.Errorf("%w: endpoint %s cannot reach %s", ErrAddressFamilyMismatch, e.localAddr, raddr)
	}

	tlsConf, err := e.builder.ClientConfig(expectedPeer)
	if err != nil {
		return nil, err
	}

	quicConn, err := e.quicTransport.Dial(ctx, raddr, tlsConf, e.quicConf)
	if err != nil {
		if e.metrics != nil {
			e.metrics.dialErrors.WithLabelValues(dialErrorReason(err)).Inc()
		}
		return nil, fmt.Errorf("dial %s: %w", raddr, err)
	}

	// 握手回调已验证证书与（可选的）期望身份，此处提取结果
	remotePeer, err := dep2ptls.PeerIDFromConnectionState(quicConn.ConnectionState().TLS)
	if err != nil {
		if e.metrics != nil {
			e.metrics.handshakeFailures.WithLabelValues("outbound").Inc()
		}
		_ = quicConn.CloseWithError(errorCodePeerVerification, "peer verification failed")
		return nil, err
	}

	return e.wrapConn(quicConn, remotePeer, transportif.DirOutbound), nil
}

// Listen 在端点 socket 上开始接受入站连接
//
// 一个端点同一时刻只有一个监听器。
func (e *Endpoint) Listen() (*Listener, error) {
	if e.closed.Load() {
		return nil, ErrEndpointClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener != nil && !e.listener.closed.Load() {
		return nil, fmt.Errorf("%w: endpoint already listening on %s", ErrInvalidAddress, e.localAddr)
	}

	tlsConf, err := e.builder.ServerConfig()
	if err != nil {
		return nil, err
	}

	ql, err := e.quicTransport.Listen(tlsConf, e.quicConf)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	ma, err := types.FromUDPAddr(e.localAddr)
	if err != nil {
		ql.Close()
		return nil, err
	}

	e.listener = newListener(ql, e, ma)
	return e.listener, nil
}

// wrapConn 封装并登记已验证的连接
func (e *Endpoint) wrapConn(quicConn *quic.Conn, remotePeer types.PeerID, dir transportif.Direction) *Conn {
	conn := newConn(quicConn, e.builder.LocalPeer(), remotePeer, dir, e.metrics, e.untrackConn)

	e.mu.Lock()
	e.conns[conn] = struct{}{}
	e.mu.Unlock()

	return conn
}

// untrackConn 从登记表移除连接
func (e *Endpoint) untrackConn(c *Conn) {
	e.mu.Lock()
	delete(e.conns, c)
	e.mu.Unlock()
}

// ConnCount 返回当前登记的连接数
func (e *Endpoint) ConnCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.conns)
}

// Close 关闭端点及其全部连接
//
// 并发关闭所有连接，随后释放监听器、QUIC 引擎与 socket。
// 幂等。
func (e *Endpoint) Close() error {
	if e.closed.Swap(true) {
		return nil
	}

	e.mu.Lock()
	conns := make([]*Conn, 0, len(e.conns))
	for c := range e.conns {
		conns = append(conns, c)
	}
	listener := e.listener
	e.mu.Unlock()

	var g errgroup.Group
	for _, c := range conns {
		g.Go(c.Close)
	}
	err := g.Wait()

	if listener != nil {
		err = multierr.Append(err, listener.Close())
	}
	err = multierr.Append(err, e.quicTransport.Close())
	err = multierr.Append(err, e.udpConn.Close())
	return err
}

// dialErrorReason 粗分类拨号错误用于指标标签
func dialErrorReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context"
	default:
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	return "handshake"
}
