package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	for _, kt := range KeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(kt, rand.Reader)
			require.NoError(t, err)
			require.NotNil(t, priv)
			require.NotNil(t, pub)

			assert.Equal(t, kt, priv.Type())
			assert.Equal(t, kt, pub.Type())
			assert.True(t, pub.Equals(priv.GetPublic()))
		})
	}
}

func TestGenerateKeyPairBadType(t *testing.T) {
	_, _, err := GenerateKeyPair(KeyTypeUnspecified, rand.Reader)
	assert.ErrorIs(t, err, ErrBadKeyType)
}

func TestSignAndVerify(t *testing.T) {
	for _, kt := range KeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(kt, rand.Reader)
			require.NoError(t, err)

			data := []byte("message to sign")
			sig, err := priv.Sign(data)
			require.NoError(t, err)
			require.NotEmpty(t, sig)

			ok, err := pub.Verify(data, sig)
			require.NoError(t, err)
			assert.True(t, ok)

			// 篡改数据后验证失败
			ok, _ = pub.Verify([]byte("tampered message"), sig)
			assert.False(t, ok)

			// 篡改签名后验证失败
			badSig := append([]byte(nil), sig...)
			badSig[0] ^= 0xFF
			ok, _ = pub.Verify(data, badSig)
			assert.False(t, ok)
		})
	}
}

func TestVerifyWithWrongKey(t *testing.T) {
	priv, _, err := GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	_, otherPub, err := GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	sig, err := priv.Sign([]byte("data"))
	require.NoError(t, err)

	ok, _ := otherPub.Verify([]byte("data"), sig)
	assert.False(t, ok)
}

func TestKeyEqual(t *testing.T) {
	priv, pub, err := GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	assert.True(t, KeyEqual(pub, priv.GetPublic()))
	assert.False(t, KeyEqual(pub, nil))
	assert.False(t, KeyEqual(nil, pub))

	_, otherPub, err := GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	assert.False(t, KeyEqual(pub, otherPub))

	// 类型不同直接不等
	_, secpPub, err := GenerateSecp256k1Key(rand.Reader)
	require.NoError(t, err)
	assert.False(t, KeyEqual(pub, secpPub))
}

func TestKeyTypeString(t *testing.T) {
	assert.Equal(t, "Ed25519", KeyTypeEd25519.String())
	assert.Equal(t, "Secp256k1", KeyTypeSecp256k1.String())
	assert.Equal(t, "Unspecified", KeyTypeUnspecified.String())
	assert.Equal(t, "Unknown", KeyType(99).String())
}
