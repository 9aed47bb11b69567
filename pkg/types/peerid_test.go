package types

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerIDString(t *testing.T) {
	var id PeerID
	for i := range id {
		id[i] = byte(i)
	}

	s := id.String()
	assert.NotEmpty(t, s)

	// Base58 可逆
	raw, err := base58.Decode(s)
	require.NoError(t, err)
	assert.Equal(t, id.Bytes(), raw)
}

func TestEmptyPeerIDString(t *testing.T) {
	assert.Equal(t, "", EmptyPeerID.String())
	assert.True(t, EmptyPeerID.IsEmpty())
}

func TestPeerIDShortString(t *testing.T) {
	var id PeerID
	id[0] = 0xFF

	short := id.ShortString()
	assert.Len(t, short, 8)
	assert.Equal(t, id.String()[:8], short)
}

func TestPeerIDEqual(t *testing.T) {
	var a, b PeerID
	a[0] = 1
	b[0] = 1
	assert.True(t, a.Equal(b))

	b[0] = 2
	assert.False(t, a.Equal(b))
}

func TestPeerIDFromBytes(t *testing.T) {
	b := make([]byte, 32)
	b[5] = 42

	id, err := PeerIDFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, b, id.Bytes())

	_, err = PeerIDFromBytes(b[:16])
	assert.ErrorIs(t, err, ErrInvalidPeerIDLength)
}

func TestParsePeerID(t *testing.T) {
	var id PeerID
	for i := range id {
		id[i] = byte(i * 3)
	}

	parsed, err := ParsePeerID(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(id))

	_, err = ParsePeerID("")
	assert.ErrorIs(t, err, ErrInvalidPeerID)

	// 非法 Base58 字符
	_, err = ParsePeerID("0OIl")
	assert.ErrorIs(t, err, ErrInvalidPeerID)

	// 合法 Base58 但长度不对
	_, err = ParsePeerID(base58.Encode([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrInvalidPeerIDLength)
}
