// Package tls 提供基于身份绑定证书的 TLS 1.3 安全层
//
// P2P 场景没有证书颁发机构：节点出示的是自签名的临时证书，
// 证书通过自定义扩展与节点的长期身份公钥绑定：
//
//   - 证书本身使用临时密钥（ECDSA P-256）自签名
//   - 扩展中嵌入 {身份公钥, Sign(身份私钥, 前缀 || 证书公钥 SPKI)}
//
// 验证方校验两个相互独立的签名后，从嵌入的身份公钥派生对端
// PeerID。标准 CA 链验证被完全替换，绝不回退。
//
// 扩展 OID、签名前缀与 libp2p TLS 互操作规范保持一致。
package tls
