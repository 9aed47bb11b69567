package types

import (
	"errors"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点唯一标识符
// 由身份公钥派生（序列化公钥的 SHA256 哈希）
//
// 外部表示格式：
//   - String(): Base58 编码（用户可读、可分享）
//   - ShortString(): Base58 前缀（日志简短标识）
type PeerID [32]byte

// EmptyPeerID 空节点 ID
var EmptyPeerID PeerID

// PeerID 相关错误
var (
	// ErrInvalidPeerID 无效的 PeerID
	ErrInvalidPeerID = errors.New("invalid peer ID")

	// ErrInvalidPeerIDLength PeerID 字节长度无效
	ErrInvalidPeerIDLength = errors.New("invalid peer ID length: must be 32 bytes")
)

// String 返回 PeerID 的 Base58 字符串表示
//
// 这是 PeerID 的规范外部表示，用于日志、配置和用户间分享。
func (id PeerID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString 返回 PeerID 的短字符串表示
//
// 格式：Base58 前 8 个字符，用于日志中的简短标识。
func (id PeerID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Bytes 返回 PeerID 的字节切片
func (id PeerID) Bytes() []byte {
	return id[:]
}

// Equal 比较两个 PeerID 是否相等
func (id PeerID) Equal(other PeerID) bool {
	return id == other
}

// IsEmpty 检查 PeerID 是否为空
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// PeerIDFromBytes 从字节切片创建 PeerID
//
// 字节长度必须为 32。
func PeerIDFromBytes(b []byte) (PeerID, error) {
	if len(b) != len(PeerID{}) {
		return EmptyPeerID, ErrInvalidPeerIDLength
	}
	var id PeerID
	copy(id[:], b)
	return id, nil
}

// ParsePeerID 解析 Base58 编码的 PeerID 字符串
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return EmptyPeerID, ErrInvalidPeerID
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return EmptyPeerID, ErrInvalidPeerID
	}
	return PeerIDFromBytes(raw)
}
