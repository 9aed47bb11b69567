// Package transport 定义传输层接口
//
// 传输模块负责底层网络通信，包括：
// - 传输协议抽象
// - 连接建立和管理
// - 监听和接受连接
// - 连接内的流多路复用
//
// 这是外部流多路复用契约：任何满足 Connection 的实现
// 都可以被上层（swarm/host）直接使用，无需额外升级。
package transport

import (
	"context"
	"io"
	"time"

	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接（对方拨号）
	DirInbound
	// DirOutbound 出站连接（本地拨号）
	DirOutbound
)

// String 返回方向名称
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Transport 接口
// ============================================================================

// Transport 传输层接口
//
// Transport 提供底层网络传输能力。连接在返回给调用方之前
// 必须已完成握手并通过对端身份验证。
type Transport interface {
	// Dial 建立出站连接
	//
	// expectedPeer 非空时，握手完成后验证对端身份必须与之匹配。
	// ctx 取消时放弃进行中的拨号并释放相关资源。
	Dial(ctx context.Context, raddr types.Multiaddr, expectedPeer types.PeerID) (Connection, error)

	// Listen 监听入站连接
	Listen(laddr types.Multiaddr) (Listener, error)

	// CanDial 检查是否可以拨号到指定地址
	CanDial(addr types.Multiaddr) bool

	// Protocols 返回支持的传输协议
	// 如 ["quic-v1"]
	Protocols() []string

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// Close 关闭传输层及其所有连接
	Close() error
}

// ============================================================================
//                              Listener 接口
// ============================================================================

// Listener 监听器接口
//
// Listener 产生一个惰性的、无限的已验证入站连接序列：
// Accept 阻塞直到下一个握手成功的连接到达或监听器关闭。
// 单个入站握手失败不会终止序列。
type Listener interface {
	// Accept 接受下一个已验证的入站连接
	//
	// ctx 取消时返回 ctx.Err()；监听器关闭后返回终止错误。
	Accept(ctx context.Context) (Connection, error)

	// Multiaddr 返回监听地址
	Multiaddr() types.Multiaddr

	// Close 关闭监听器
	Close() error
}

// ============================================================================
//                              Connection 接口
// ============================================================================

// Connection 已建立的传输连接（流多路复用器）
//
// 一条 Connection 承载任意多条相互独立的双向字节流。
type Connection interface {
	// OpenStream 打开一条新的双向流
	OpenStream(ctx context.Context) (Stream, error)

	// AcceptStream 接受对端打开的流（FIFO 顺序）
	//
	// 阻塞直到有流到达或连接关闭；连接关闭时所有等待者
	// 以终止错误被唤醒。
	AcceptStream(ctx context.Context) (Stream, error)

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回握手验证过的远端节点 ID
	RemotePeer() types.PeerID

	// LocalMultiaddr 返回本地多地址
	LocalMultiaddr() types.Multiaddr

	// RemoteMultiaddr 返回远端多地址
	RemoteMultiaddr() types.Multiaddr

	// Direction 返回连接方向
	Direction() Direction

	// IsClosed 检查连接是否已关闭
	IsClosed() bool

	// Close 关闭连接及其所有流（幂等）
	Close() error
}

// ============================================================================
//                              Stream 接口
// ============================================================================

// Stream 双向字节流
type Stream interface {
	io.ReadWriteCloser

	// ID 返回流的标识（协议引擎分配）
	ID() uint64

	// CloseRead 关闭读端
	CloseRead() error

	// CloseWrite 关闭写端
	CloseWrite() error

	// SetDeadline 设置读写超时
	SetDeadline(t time.Time) error

	// SetReadDeadline 设置读超时
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline 设置写超时
	SetWriteDeadline(t time.Time) error
}
