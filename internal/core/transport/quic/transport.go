// Package quic 实现 QUIC 传输层
package quic

import (
	"context"
	"net"
	"sync"

	"go.uber.org/multierr"

	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// 确保实现了接口
var _ transportif.Transport = (*Transport)(nil)

// Transport QUIC 传输
//
// 管理一组端点（每个端点一个 UDP socket）。监听创建的端点
// 同时服务于后续的拨号：打洞要求出站包复用监听端口。
// 没有可复用端点时，拨号按目标地址族临时创建随机端口端点。
type Transport struct {
	identityKey crypto.PrivateKey
	localPeer   types.PeerID
	cfg         Config

	// sessionStore 所有端点共享：会话按目标服务端缓存，
	// 与本地使用哪个 socket 无关
	sessionStore *SessionStore
	metrics      *metrics

	mu        sync.Mutex
	endpoints map[string]*Endpoint
	closed    bool
}

// NewTransport 创建 QUIC 传输
//
// identityKey 是节点的长期身份私钥，所有连接的证书
// 都绑定到这把密钥派生的 PeerID。
func NewTransport(identityKey crypto.PrivateKey, cfg Config) (*Transport, error) {
	if identityKey == nil {
		return nil, crypto.ErrNilPrivateKey
	}
	localPeer, err := crypto.PeerIDFromPrivateKey(identityKey)
	if err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()

	var store *SessionStore
	if cfg.SessionCacheSize > 0 {
		store = NewSessionStore(cfg.SessionCacheSize, cfg.SessionCacheTTL)
	}

	return &Transport{
		identityKey:  identityKey,
		localPeer:    localPeer,
		cfg:          cfg,
		sessionStore: store,
		metrics:      newMetrics(cfg.MetricsRegisterer),
		endpoints:    make(map[string]*Endpoint),
	}, nil
}

// LocalPeer 返回本地节点 ID
func (t *Transport) LocalPeer() types.PeerID {
	return t.localPeer
}

// SessionStore 返回共享的会话缓存，禁用时返回 nil
func (t *Transport) SessionStore() *SessionStore {
	return t.sessionStore
}

// CanDial 检查是否可以拨号到指定地址
func (t *Transport) CanDial(addr types.Multiaddr) bool {
	_, err := resolveDialAddr(addr)
	return err == nil
}

// Protocols 返回支持的传输协议
func (t *Transport) Protocols() []string {
	return []string{"quic-v1"}
}

// Dial 建立出站连接
//
// 优先复用已有的同地址族端点（通常是监听端点），
// 保证打洞场景下出站包带着监听端口出门。
func (t *Transport) Dial(ctx context.Context, raddr types.Multiaddr, expectedPeer types.PeerID) (transportif.Connection, error) {
	udpAddr, err := resolveDialAddr(raddr)
	if err != nil {
		return nil, err
	}

	ep, err := t.endpointFor(udpAddr)
	if err != nil {
		return nil, err
	}

	conn, err := ep.Dial(ctx, udpAddr, expectedPeer)
	if err != nil {
		return nil, err
	}

	logger.Debug("出站连接已建立",
		"remote", raddr.String(),
		"peer", conn.RemotePeer().ShortString())
	return conn, nil
}

// Listen 监听入站连接
//
// 端口为 0 时由内核分配，返回的监听器报告实际地址。
func (t *Transport) Listen(laddr types.Multiaddr) (transportif.Listener, error) {
	udpAddr, err := resolveListenAddr(laddr)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTransportClosed
	}

	ep, err := newEndpoint(udpAddr, t.identityKey, t.cfg, t.sessionStore, t.metrics)
	if err != nil {
		return nil, err
	}

	listener, err := ep.Listen()
	if err != nil {
		multierr.AppendInto(&err, ep.Close())
		return nil, err
	}

	t.endpoints[ep.LocalAddr().String()] = ep

	logger.Info("开始监听", "addr", listener.Multiaddr().String())
	return listener, nil
}

// endpointFor 返回可到达 raddr 的端点，必要时新建
func (t *Transport) endpointFor(raddr *net.UDPAddr) (*Endpoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTransportClosed
	}

	for _, ep := range t.endpoints {
		if sameFamily(ep.LocalAddr(), raddr) && !ep.isClosed() {
			return ep, nil
		}
	}

	// 无可复用端点：绑定目标地址族的随机端口
	wildcard := &net.UDPAddr{IP: net.IPv4zero}
	if isIPv6(raddr) {
		wildcard = &net.UDPAddr{IP: net.IPv6unspecified}
	}

	ep, err := newEndpoint(wildcard, t.identityKey, t.cfg, t.sessionStore, t.metrics)
	if err != nil {
		return nil, err
	}
	t.endpoints[ep.LocalAddr().String()] = ep
	return ep, nil
}

// EndpointCount 返回当前端点数量
func (t *Transport) EndpointCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.endpoints)
}

// ListenAddrs 返回所有端点的监听地址
func (t *Transport) ListenAddrs() []types.Multiaddr {
	t.mu.Lock()
	defer t.mu.Unlock()

	addrs := make([]types.Multiaddr, 0, len(t.endpoints))
	for _, ep := range t.endpoints {
		if ma, err := types.FromUDPAddr(ep.LocalAddr()); err == nil {
			addrs = append(addrs, ma)
		}
	}
	return addrs
}

// Close 关闭传输层及其所有端点与连接
//
// 幂等。各端点的关闭错误合并返回。
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	endpoints := make([]*Endpoint, 0, len(t.endpoints))
	for _, ep := range t.endpoints {
		endpoints = append(endpoints, ep)
	}
	t.endpoints = make(map[string]*Endpoint)
	t.mu.Unlock()

	var err error
	for _, ep := range endpoints {
		err = multierr.Append(err, ep.Close())
	}
	return err
}
