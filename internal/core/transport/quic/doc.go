// Package quic 实现 QUIC 传输层
//
// quic 使用 QUIC 协议提供可靠、安全、多路复用的传输层。
// QUIC 内置 TLS 1.3，握手同时完成加密协商与对端身份验证：
// 连接在返回给调用方之前，对端 PeerID 已经过证书绑定验证。
//
// # 特性
//
//   - 基于 UDP，监听与拨号共享同一 socket
//   - 内置 TLS 1.3，身份绑定证书，无 CA
//   - 原生多路复用
//   - 0-RTT 连接恢复（会话缓存）
//   - 双栈：IPv4 与 IPv6 端点相互独立
//
// # 地址格式
//
//	/ip4/1.2.3.4/udp/4001/quic-v1
//	/ip6/::1/udp/4001/quic-v1
//
// # 使用示例
//
//	transport, err := quic.NewTransport(identityKey, quic.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 监听
//	listener, err := transport.Listen("/ip4/0.0.0.0/udp/4001/quic-v1")
//
//	// 拨号
//	conn, err := transport.Dial(ctx, "/ip4/1.2.3.4/udp/4001/quic-v1", peerID)
package quic
