// Package types 定义 go-dep2p-quic 的基础类型
//
// 这是整个模块的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据：
//
//   - PeerID: 节点唯一标识（由身份公钥派生）
//   - Multiaddr: 统一地址类型（/ip4/…/udp/…/quic-v1）
package types
