// Package crypto 提供身份密钥的密码学工具
//
// 提供以下能力：
//   - 身份密钥对的生成（Ed25519 默认推荐，Secp256k1 区块链兼容）
//   - 签名与验签
//   - 密钥的规范序列化（[Type|Length|Data] 格式）
//   - 从公钥派生 PeerID（SHA256 + Base58）
//
// 身份私钥是节点的长期密钥，仅用于签发证书绑定签名，
// 绝不通过网络传输。
package crypto
