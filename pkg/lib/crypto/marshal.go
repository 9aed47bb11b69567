package crypto

import (
	"encoding/binary"
	"fmt"
)

// ============================================================================
//                              序列化格式
// ============================================================================

// 序列化格式：
//
//   ┌─────────────────────────────────────────────────────────────┐
//   │                    公钥/私钥序列化格式                         │
//   ├─────────────────────────────────────────────────────────────┤
//   │  Type:   uint8 (KeyType)                                    │
//   │  Length: uint32 (大端序)                                     │
//   │  Data:   密钥数据                                            │
//   └─────────────────────────────────────────────────────────────┘
//
// 这是身份公钥的规范编码，也是证书扩展中嵌入公钥、
// 以及派生 PeerID 时使用的唯一格式。

const (
	// 序列化头大小：1 字节类型 + 4 字节长度
	marshalHeaderSize = 5
)

// ============================================================================
//                              公钥序列化
// ============================================================================

// MarshalPublicKey 序列化公钥
//
// 返回格式：[Type(1)] [Length(4)] [Data(n)]
func MarshalPublicKey(key PublicKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPublicKey
	}

	raw, err := key.Raw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}

	buf := make([]byte, marshalHeaderSize+len(raw))
	buf[0] = byte(key.Type())
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(raw)))
	copy(buf[5:], raw)

	return buf, nil
}

// UnmarshalPublicKeyBytes 从字节反序列化公钥
//
// 参数格式：[Type(1)] [Length(4)] [Data(n)]
func UnmarshalPublicKeyBytes(data []byte) (PublicKey, error) {
	if len(data) < marshalHeaderSize {
		return nil, fmt.Errorf("%w: data too short", ErrUnmarshalFailed)
	}

	keyType := KeyType(data[0])
	length := binary.BigEndian.Uint32(data[1:5])

	if len(data) != marshalHeaderSize+int(length) {
		return nil, fmt.Errorf("%w: data length mismatch", ErrUnmarshalFailed)
	}

	return UnmarshalPublicKey(keyType, data[marshalHeaderSize:])
}

// ============================================================================
//                              私钥序列化
// ============================================================================

// MarshalPrivateKey 序列化私钥
//
// 返回格式：[Type(1)] [Length(4)] [Data(n)]
//
// 用于身份密钥的持久化（由调用方负责存储安全）。
func MarshalPrivateKey(key PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, ErrNilPrivateKey
	}

	raw, err := key.Raw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}

	buf := make([]byte, marshalHeaderSize+len(raw))
	buf[0] = byte(key.Type())
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(raw)))
	copy(buf[5:], raw)

	return buf, nil
}

// UnmarshalPrivateKeyBytes 从字节反序列化私钥
func UnmarshalPrivateKeyBytes(data []byte) (PrivateKey, error) {
	if len(data) < marshalHeaderSize {
		return nil, fmt.Errorf("%w: data too short", ErrUnmarshalFailed)
	}

	keyType := KeyType(data[0])
	length := binary.BigEndian.Uint32(data[1:5])

	if len(data) != marshalHeaderSize+int(length) {
		return nil, fmt.Errorf("%w: data length mismatch", ErrUnmarshalFailed)
	}

	return UnmarshalPrivateKey(keyType, data[marshalHeaderSize:])
}
