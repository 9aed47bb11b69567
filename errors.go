package dep2pquic

import (
	dep2ptls "github.com/dep2p/go-dep2p-quic/internal/core/security/tls"
	quictransport "github.com/dep2p/go-dep2p-quic/internal/core/transport/quic"
)

// 传输层错误
var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = quictransport.ErrTransportClosed

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = quictransport.ErrListenerClosed

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = quictransport.ErrConnectionClosed

	// ErrConnectionNotReady 连接尚未完成握手与身份验证
	ErrConnectionNotReady = quictransport.ErrConnectionNotReady

	// ErrStreamLimitExceeded 超过对端允许的并发流数量
	ErrStreamLimitExceeded = quictransport.ErrStreamLimitExceeded

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = quictransport.ErrInvalidAddress

	// ErrAddressFamilyMismatch 地址族不匹配
	ErrAddressFamilyMismatch = quictransport.ErrAddressFamilyMismatch
)

// 证书与身份验证错误
var (
	// ErrMalformedCertificate 证书结构无效
	ErrMalformedCertificate = dep2ptls.ErrMalformedCertificate

	// ErrMissingIdentityExtension 证书缺少身份绑定扩展
	ErrMissingIdentityExtension = dep2ptls.ErrMissingIdentityExtension

	// ErrSelfSignatureInvalid 证书自签名无效
	ErrSelfSignatureInvalid = dep2ptls.ErrSelfSignatureInvalid

	// ErrIdentityBindingInvalid 身份绑定签名无效
	ErrIdentityBindingInvalid = dep2ptls.ErrIdentityBindingInvalid

	// ErrPeerIDMismatch 对端身份与期望不符
	ErrPeerIDMismatch = dep2ptls.ErrPeerIDMismatch
)
