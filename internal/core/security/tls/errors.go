// Package tls 提供基于身份绑定证书的 TLS 1.3 安全层
package tls

import "errors"

// 证书构造/解析错误
var (
	// ErrCertificateGeneration 证书生成失败
	// 对调用方（Endpoint 构造）是致命错误
	ErrCertificateGeneration = errors.New("tls: certificate generation failed")

	// ErrMalformedCertificate 证书结构无效
	ErrMalformedCertificate = errors.New("tls: malformed certificate")

	// ErrMissingIdentityExtension 证书缺少身份绑定扩展
	ErrMissingIdentityExtension = errors.New("tls: no identity extension in certificate")
)

// 握手期身份验证错误
var (
	// ErrNoCertificate 对端未提供证书
	ErrNoCertificate = errors.New("tls: no certificate provided")

	// ErrTooManyCertificates 对端提供了多于一张证书
	ErrTooManyCertificates = errors.New("tls: expected exactly one certificate")

	// ErrSelfSignatureInvalid 证书自签名无效
	ErrSelfSignatureInvalid = errors.New("tls: certificate self-signature invalid")

	// ErrIdentityBindingInvalid 身份绑定签名无效
	ErrIdentityBindingInvalid = errors.New("tls: identity binding signature invalid")

	// ErrPeerIDMismatch 对端 PeerID 与期望不匹配
	ErrPeerIDMismatch = errors.New("tls: peer ID mismatch")
)
