// Package quic 实现 QUIC 传输层
package quic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// ============================================================================
//                              连接状态
// ============================================================================

// ConnState 连接状态
//
// 状态单向推进：Handshaking → Established → Closing → Closed，
// 握手或验证失败进入 Failed（终态）。
type ConnState int32

const (
	// StateHandshaking 握手与身份验证进行中
	StateHandshaking ConnState = iota
	// StateEstablished 握手完成且对端身份已验证
	StateEstablished
	// StateClosing 关闭已发起，等待引擎释放资源
	StateClosing
	// StateClosed 连接已关闭
	StateClosed
	// StateFailed 握手或身份验证失败
	StateFailed
)

// String 返回状态名称
func (s ConnState) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateEstablished:
		return "established"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Conn 实现
// ============================================================================

// 确保实现 transport.Connection 接口
var _ transportif.Connection = (*Conn)(nil)

// Conn QUIC 连接
//
// 创建即意味着握手完成与对端身份验证通过，
// 因此对外可见的连接总是从 Established 开始。
type Conn struct {
	quicConn   *quic.Conn
	localPeer  types.PeerID
	remotePeer types.PeerID
	localAddr  types.Multiaddr
	remoteAddr types.Multiaddr
	direction  transportif.Direction

	state atomic.Int32

	mu      sync.Mutex
	streams map[quic.StreamID]*Stream

	opened    time.Time
	closeOnce sync.Once

	// onClose 连接终止时回调，用于从端点注销
	onClose func(*Conn)
	metrics *metrics
}

// newConn 创建已验证的连接封装
//
// 启动监控协程：协议引擎侧的任何终止（对端关闭、空闲超时、
// 传输错误）都会使本地状态进入 Closed，并唤醒所有等待者。
func newConn(quicConn *quic.Conn, local, remote types.PeerID, dir transportif.Direction, m *metrics, onClose func(*Conn)) *Conn {
	c := &Conn{
		quicConn:   quicConn,
		localPeer:  local,
		remotePeer: remote,
		localAddr:  toMultiaddr(quicConn.LocalAddr()),
		remoteAddr: toMultiaddr(quicConn.RemoteAddr()),
		direction:  dir,
		streams:    make(map[quic.StreamID]*Stream),
		opened:     time.Now(),
		onClose:    onClose,
		metrics:    m,
	}
	c.state.Store(int32(StateEstablished))

	if m != nil {
		m.connsOpened.WithLabelValues(dir.String()).Inc()
		m.connsActive.Inc()
	}

	go c.monitor()
	return c
}

// monitor 等待协议引擎宣告连接终止
func (c *Conn) monitor() {
	<-c.quicConn.Context().Done()
	c.markClosed()
}

// markClosed 将连接标记为已关闭并执行注销回调
func (c *Conn) markClosed() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))

		c.mu.Lock()
		c.streams = nil
		c.mu.Unlock()

		if c.metrics != nil {
			c.metrics.connsClosed.Inc()
			c.metrics.connsActive.Dec()
		}
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// State 返回当前连接状态
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

// LocalPeer 返回本地节点 ID
func (c *Conn) LocalPeer() types.PeerID {
	return c.localPeer
}

// RemotePeer 返回握手验证过的远端节点 ID
func (c *Conn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// LocalMultiaddr 返回本地多地址
func (c *Conn) LocalMultiaddr() types.Multiaddr {
	return c.localAddr
}

// RemoteMultiaddr 返回远端多地址
func (c *Conn) RemoteMultiaddr() types.Multiaddr {
	return c.remoteAddr
}

// Direction 返回连接方向
func (c *Conn) Direction() transportif.Direction {
	return c.direction
}

// IsClosed 检查连接是否已关闭或正在关闭
func (c *Conn) IsClosed() bool {
	switch c.State() {
	case StateClosing, StateClosed, StateFailed:
		return true
	default:
		return false
	}
}

// OpenStream 打开一条新的双向流
//
// 不阻塞等待流控配额：对端流数配额耗尽时立即返回
// ErrStreamLimitExceeded，调用方自行决定重试策略。
func (c *Conn) OpenStream(ctx context.Context) (transportif.Stream, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qs, err := c.quicConn.OpenStream()
	if err != nil {
		return nil, c.mapStreamError(err)
	}

	stream := newStream(qs, c)
	c.trackStream(stream)

	if c.metrics != nil {
		c.metrics.streamsOpened.WithLabelValues(transportif.DirOutbound.String()).Inc()
	}
	return stream, nil
}

// AcceptStream 接受对端打开的流
//
// 按对端打开顺序返回。连接关闭时所有阻塞中的调用
// 以 ErrConnectionClosed 被唤醒。
func (c *Conn) AcceptStream(ctx context.Context) (transportif.Stream, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}

	qs, err := c.quicConn.AcceptStream(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, c.mapStreamError(err)
	}

	stream := newStream(qs, c)
	c.trackStream(stream)

	if c.metrics != nil {
		c.metrics.streamsOpened.WithLabelValues(transportif.DirInbound.String()).Inc()
	}
	return stream, nil
}

// Close 关闭连接及其所有流
//
// 幂等：重复关闭返回 nil。所有阻塞中的流操作与
// AcceptStream 等待者都会以终止错误被唤醒。
func (c *Conn) Close() error {
	if !c.state.CompareAndSwap(int32(StateEstablished), int32(StateClosing)) {
		return nil
	}

	err := c.quicConn.CloseWithError(0, "")
	c.markClosed()
	return err
}

// checkReady 校验连接处于可用状态
func (c *Conn) checkReady() error {
	switch c.State() {
	case StateEstablished:
		return nil
	case StateHandshaking:
		return ErrConnectionNotReady
	default:
		return ErrConnectionClosed
	}
}

// trackStream 登记流
func (c *Conn) trackStream(s *Stream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streams != nil {
		c.streams[s.quicStream.StreamID()] = s
	}
}

// removeStream 注销流
func (c *Conn) removeStream(id quic.StreamID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streams != nil {
		delete(c.streams, id)
	}
}

// ActiveStreams 返回当前登记的流数量
func (c *Conn) ActiveStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.streams)
}

// mapStreamError 将引擎错误映射为传输层错误
//
// 流数配额耗尽在 quic-go 中表现为 Temporary 的 net.Error，
// 这是与连接终止错误区分的唯一可靠信号。
func (c *Conn) mapStreamError(err error) error {
	if c.quicConn.Context().Err() != nil {
		return ErrConnectionClosed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Temporary() {
		return fmt.Errorf("%w: %v", ErrStreamLimitExceeded, err)
	}

	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) {
		return ErrConnectionClosed
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("stream: %w", err)
}
