// Package dep2pquic 提供基于 QUIC 的点对点传输
//
// 连接安全不依赖任何证书颁发机构：每个节点用长期身份密钥
// 派生 PeerID，握手时通过绑定身份的自签名证书互相认证。
// 握手完成即意味着双方都确认了对端的 PeerID。
//
// # 快速开始
//
//	identity, peerID, err := dep2pquic.GenerateIdentity()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	transport, err := dep2pquic.New(identity)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Close()
//
//	// 监听
//	listener, err := transport.Listen("/ip4/0.0.0.0/udp/4001/quic-v1")
//
//	// 拨号（可选钉死对端身份）
//	conn, err := transport.Dial(ctx, "/ip4/1.2.3.4/udp/4001/quic-v1", peerID)
//
//	// 连接是流多路复用器
//	stream, err := conn.OpenStream(ctx)
//
// # 地址格式
//
//	/ip4/1.2.3.4/udp/4001/quic-v1
//	/ip6/::1/udp/4001/quic-v1
package dep2pquic
