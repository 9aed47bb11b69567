package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// ============================================================================
//                              证书链验证
// ============================================================================

// VerifyCertChain 验证对端证书链并提取经过认证的 PeerID
//
// 验证链上不存在任何 CA：信任完全来自两个独立的签名检查：
//  1. 证书自签名有效（持有临时私钥）
//  2. 扩展中的绑定签名有效（持有身份私钥且绑定了该临时公钥）
//
// 两者都通过后，返回由身份公钥派生的 PeerID。
//
// 失败返回：
//   - ErrNoCertificate: 对端未出示证书
//   - ErrTooManyCertificates: 对端出示了多于一张证书
//   - ErrMalformedCertificate / ErrMissingIdentityExtension: 结构无效
//   - ErrSelfSignatureInvalid: 证书自签名验证失败
//   - ErrIdentityBindingInvalid: 绑定签名验证失败
func VerifyCertChain(rawCerts [][]byte) (types.PeerID, error) {
	if len(rawCerts) == 0 {
		return types.EmptyPeerID, ErrNoCertificate
	}
	// 链上不允许出现中间证书：不存在 CA，多余的证书只能是错误或攻击
	if len(rawCerts) > 1 {
		return types.EmptyPeerID, fmt.Errorf("%w: got %d", ErrTooManyCertificates, len(rawCerts))
	}

	parsed, err := ParseCertificate(rawCerts[0])
	if err != nil {
		return types.EmptyPeerID, err
	}
	return verifyParsed(parsed)
}

// VerifyX509Chain 与 VerifyCertChain 等价，输入为已解码的证书链
//
// quic-go 的 VerifyPeerCertificate 回调同时提供两种形态，
// 走已解码形态可省一次 DER 解析。
func VerifyX509Chain(chain []*x509.Certificate) (types.PeerID, error) {
	if len(chain) == 0 {
		return types.EmptyPeerID, ErrNoCertificate
	}
	if len(chain) > 1 {
		return types.EmptyPeerID, fmt.Errorf("%w: got %d", ErrTooManyCertificates, len(chain))
	}

	parsed, err := ParseX509Certificate(chain[0])
	if err != nil {
		return types.EmptyPeerID, err
	}
	return verifyParsed(parsed)
}

func verifyParsed(parsed *ParsedCertificate) (types.PeerID, error) {
	cert := parsed.Certificate

	// 检查 1：自签名。证明对端持有证书公钥对应的私钥
	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		return types.EmptyPeerID, fmt.Errorf("%w: %v", ErrSelfSignatureInvalid, err)
	}

	// 检查 2：绑定签名。证明身份私钥的持有者签发了该临时公钥
	//
	// 签名对象用证书自带的 SPKI DER，与签名方序列化结果逐字节一致
	msg := make([]byte, 0, len(signingPrefix)+len(cert.RawSubjectPublicKeyInfo))
	msg = append(msg, signingPrefix...)
	msg = append(msg, cert.RawSubjectPublicKeyInfo...)

	ok, err := parsed.IdentityKey.Verify(msg, parsed.Signature)
	if err != nil {
		return types.EmptyPeerID, fmt.Errorf("%w: %v", ErrIdentityBindingInvalid, err)
	}
	if !ok {
		return types.EmptyPeerID, ErrIdentityBindingInvalid
	}

	return crypto.PeerIDFromPublicKey(parsed.IdentityKey)
}

// ============================================================================
//                              握手结果提取
// ============================================================================

// PeerIDFromConnectionState 从完成握手的 TLS 状态中提取对端 PeerID
//
// 仅在 VerifyPeerCertificate 回调已经通过后调用，此处的再次验证
// 是提取身份的手段而非二次防线。
func PeerIDFromConnectionState(state tls.ConnectionState) (types.PeerID, error) {
	return VerifyX509Chain(state.PeerCertificates)
}

// makeVerifyCallback 构造 tls.Config 的 VerifyPeerCertificate 回调
//
// expectedPeer 非空时额外校验对端身份是否与期望一致，
// 不一致返回 ErrPeerIDMismatch，握手随之失败。
func makeVerifyCallback(expectedPeer types.PeerID) func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		peerID, err := VerifyCertChain(rawCerts)
		if err != nil {
			return err
		}
		if !expectedPeer.IsEmpty() && !peerID.Equal(expectedPeer) {
			return fmt.Errorf("%w: expected %s, got %s", ErrPeerIDMismatch, expectedPeer.ShortString(), peerID.ShortString())
		}
		return nil
	}
}
