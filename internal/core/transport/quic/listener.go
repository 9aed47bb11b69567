// Package quic 实现 QUIC 传输层
package quic

import (
	"context"
	"sync/atomic"

	"github.com/quic-go/quic-go"

	dep2ptls "github.com/dep2p/go-dep2p-quic/internal/core/security/tls"
	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// errorCodePeerVerification 身份提取失败时的应用层关闭码
const errorCodePeerVerification = quic.ApplicationErrorCode(0x1)

// 确保实现 transport.Listener 接口
var _ transportif.Listener = (*Listener)(nil)

// Listener QUIC 监听器
//
// Accept 产生惰性的已验证连接序列：单个入站连接的
// 握手或身份验证失败只是丢弃该连接，序列继续。
type Listener struct {
	quicListener *quic.Listener
	endpoint     *Endpoint
	localAddr    types.Multiaddr
	closed       atomic.Bool
}

func newListener(ql *quic.Listener, ep *Endpoint, localAddr types.Multiaddr) *Listener {
	return &Listener{
		quicListener: ql,
		endpoint:     ep,
		localAddr:    localAddr,
	}
}

// Accept 接受下一个已验证的入站连接
//
// 阻塞直到下一个握手成功且身份验证通过的连接到达。
// ctx 取消返回 ctx.Err()，监听器关闭返回 ErrListenerClosed。
func (l *Listener) Accept(ctx context.Context) (transportif.Connection, error) {
	for {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}

		quicConn, err := l.quicListener.Accept(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if l.closed.Load() || l.endpoint.isClosed() {
				return nil, ErrListenerClosed
			}
			return nil, err
		}

		// 握手回调已验证证书，此处提取经过认证的对端身份。
		// 提取失败按握手失败处理：丢弃该连接，继续接受下一个
		remotePeer, err := dep2ptls.PeerIDFromConnectionState(quicConn.ConnectionState().TLS)
		if err != nil {
			logger.Debug("丢弃身份验证失败的入站连接",
				"remote", quicConn.RemoteAddr().String(), "error", err)
			if l.endpoint.metrics != nil {
				l.endpoint.metrics.handshakeFailures.WithLabelValues("inbound").Inc()
			}
			_ = quicConn.CloseWithError(errorCodePeerVerification, "peer verification failed")
			continue
		}

		return l.endpoint.wrapConn(quicConn, remotePeer, transportif.DirInbound), nil
	}
}

// Multiaddr 返回监听地址
func (l *Listener) Multiaddr() types.Multiaddr {
	return l.localAddr
}

// Close 关闭监听器
//
// 已接受的连接不受影响；阻塞中的 Accept 被唤醒。
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.quicListener.Close()
}
