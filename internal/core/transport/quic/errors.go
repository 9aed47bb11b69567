// Package quic 实现 QUIC 传输层
package quic

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("endpoint closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("listener closed")

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = errors.New("connection closed")

	// ErrConnectionNotReady 连接尚未完成握手与身份验证
	ErrConnectionNotReady = errors.New("connection not ready")

	// ErrStreamLimitExceeded 超过对端允许的并发流数量
	ErrStreamLimitExceeded = errors.New("stream limit exceeded")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAddressFamilyMismatch 地址族不匹配（IPv4 端点拨 IPv6 目标或反之）
	ErrAddressFamilyMismatch = errors.New("address family mismatch")
)
