package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cryptobyteasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
)

// identityExtensionOID 身份绑定扩展的 OID: 1.3.6.1.4.1.53594.1.1
//
// 该值与签名前缀共同构成互操作规范的一部分，不得更改。
var identityExtensionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 53594, 1, 1}

// signingPrefix 绑定签名的域分隔前缀
//
// 签名对象为 prefix || SPKI-DER(证书公钥)，前缀防止身份私钥
// 签出的内容被挪用到其他协议上下文。
const signingPrefix = "libp2p-tls-handshake:"

const (
	// certValidityBackdate 证书生效时间回拨量，容忍对端时钟偏差
	certValidityBackdate = time.Hour

	// certValidityPeriod 证书有效期
	certValidityPeriod = 365 * 24 * time.Hour
)

// ============================================================================
//                              证书生成
// ============================================================================

// GenerateCertificate 生成绑定身份的临时证书
//
// 流程：
//  1. 生成临时 ECDSA P-256 证书密钥对
//  2. 用身份私钥对 prefix || SPKI(临时公钥) 签名
//  3. 将 {身份公钥, 绑定签名} 作为扩展嵌入证书
//  4. 用临时私钥自签名证书
//
// 临时密钥的生命周期由调用方决定：默认每个 Endpoint 一份，
// 也可每条连接一份（见 ConfigBuilder）。
func GenerateCertificate(identityKey crypto.PrivateKey) (*tls.Certificate, error) {
	if identityKey == nil {
		return nil, fmt.Errorf("%w: nil identity key", ErrCertificateGeneration)
	}

	certKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	spki, err := x509.MarshalPKIXPublicKey(&certKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	extValue, err := buildIdentityExtension(identityKey, spki)
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject: pkix.Name{
			Organization: []string{"DeP2P"},
		},
		NotBefore:             time.Now().Add(-certValidityBackdate),
		NotAfter:              time.Now().Add(certValidityPeriod),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		ExtraExtensions: []pkix.Extension{
			{
				Id:       identityExtensionOID,
				Critical: false,
				Value:    extValue,
			},
		},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &certKey.PublicKey, certKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	leaf, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  certKey,
		Leaf:        leaf,
	}, nil
}

// buildIdentityExtension 构建身份绑定扩展值
//
// 扩展编码（ASN.1 DER）：
//
//	SEQUENCE {
//	    identityPublicKey BIT STRING   -- 规范序列化的身份公钥
//	    signature         BIT STRING   -- Sign(身份私钥, prefix || SPKI)
//	}
func buildIdentityExtension(identityKey crypto.PrivateKey, spki []byte) ([]byte, error) {
	keyBytes, err := crypto.MarshalPublicKey(identityKey.GetPublic())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	msg := make([]byte, 0, len(signingPrefix)+len(spki))
	msg = append(msg, signingPrefix...)
	msg = append(msg, spki...)

	sig, err := identityKey.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	var b cryptobyte.Builder
	b.AddASN1(cryptobyteasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BitString(keyBytes)
		b.AddASN1BitString(sig)
	})
	extValue, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}
	return extValue, nil
}

// ============================================================================
//                              证书解析
// ============================================================================

// ParsedCertificate 结构解码后的身份绑定证书
//
// 解析只做结构校验，不验证任何签名；签名验证见 VerifyCertChain。
type ParsedCertificate struct {
	// Certificate 解码后的 X.509 证书
	Certificate *x509.Certificate

	// IdentityKey 扩展中嵌入的身份公钥
	IdentityKey crypto.PublicKey

	// Signature 扩展中嵌入的绑定签名
	Signature []byte
}

// ParseCertificate 解码 DER 编码的身份绑定证书
//
// 失败返回：
//   - ErrMalformedCertificate: DER/ASN.1 结构无效、扩展重复、
//     存在无法识别的 critical 扩展
//   - ErrMissingIdentityExtension: 缺少身份绑定扩展
func ParseCertificate(der []byte) (*ParsedCertificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	return ParseX509Certificate(cert)
}

// ParseX509Certificate 从已解码的 X.509 证书提取身份绑定扩展
func ParseX509Certificate(cert *x509.Certificate) (*ParsedCertificate, error) {
	// 我们不走标准链验证，未识别的 critical 扩展必须显式拒绝
	if len(cert.UnhandledCriticalExtensions) > 0 {
		return nil, fmt.Errorf("%w: unsupported critical extension", ErrMalformedCertificate)
	}

	var extValue []byte
	found := false
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(identityExtensionOID) {
			continue
		}
		if found {
			return nil, fmt.Errorf("%w: duplicate identity extension", ErrMalformedCertificate)
		}
		extValue = ext.Value
		found = true
	}
	if !found {
		return nil, ErrMissingIdentityExtension
	}

	keyBytes, sig, err := parseIdentityExtension(extValue)
	if err != nil {
		return nil, err
	}

	// 身份公钥解码失败视为结构错误：可能是损坏的对端，也可能是攻击
	identityKey, err := crypto.UnmarshalPublicKeyBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid identity key encoding", ErrMalformedCertificate)
	}

	return &ParsedCertificate{
		Certificate: cert,
		IdentityKey: identityKey,
		Signature:   sig,
	}, nil
}

// parseIdentityExtension 解码扩展值中的 {公钥, 签名}
func parseIdentityExtension(extValue []byte) (keyBytes, sig []byte, err error) {
	input := cryptobyte.String(extValue)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, cryptobyteasn1.SEQUENCE) || !input.Empty() {
		return nil, nil, fmt.Errorf("%w: invalid extension structure", ErrMalformedCertificate)
	}
	if !inner.ReadASN1BitStringAsBytes(&keyBytes) ||
		!inner.ReadASN1BitStringAsBytes(&sig) ||
		!inner.Empty() {
		return nil, nil, fmt.Errorf("%w: invalid extension structure", ErrMalformedCertificate)
	}
	return keyBytes, sig, nil
}
