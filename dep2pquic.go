package dep2pquic

import (
	"crypto/rand"

	quictransport "github.com/dep2p/go-dep2p-quic/internal/core/transport/quic"
	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// New 创建 QUIC 传输
//
// identityKey 是节点的长期身份私钥。所有出站与入站连接
// 在返回给调用方之前都已完成握手并验证了对端身份。
func New(identityKey crypto.PrivateKey, opts ...Option) (transportif.Transport, error) {
	cfg := quictransport.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return quictransport.NewTransport(identityKey, cfg)
}

// GenerateIdentity 生成新的 Ed25519 身份
//
// 返回私钥与其派生的 PeerID。私钥的持久化由调用方负责。
func GenerateIdentity() (crypto.PrivateKey, types.PeerID, error) {
	priv, pub, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, types.EmptyPeerID, err
	}
	peerID, err := crypto.PeerIDFromPublicKey(pub)
	if err != nil {
		return nil, types.EmptyPeerID, err
	}
	return priv, peerID, nil
}

// GenerateSecp256k1Identity 生成新的 Secp256k1 身份
func GenerateSecp256k1Identity() (crypto.PrivateKey, types.PeerID, error) {
	priv, pub, err := crypto.GenerateSecp256k1Key(rand.Reader)
	if err != nil {
		return nil, types.EmptyPeerID, err
	}
	peerID, err := crypto.PeerIDFromPublicKey(pub)
	if err != nil {
		return nil, types.EmptyPeerID, err
	}
	return priv, peerID, nil
}
