package tls

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

func TestNewConfigBuilder(t *testing.T) {
	identity := createTestIdentity(t)

	b, err := NewConfigBuilder(identity)
	require.NoError(t, err)
	require.NotNil(t, b)

	wantPeer, err := crypto.PeerIDFromPrivateKey(identity)
	require.NoError(t, err)
	assert.True(t, b.LocalPeer().Equal(wantPeer))
}

func TestNewConfigBuilderNilKey(t *testing.T) {
	_, err := NewConfigBuilder(nil)
	assert.ErrorIs(t, err, crypto.ErrNilPrivateKey)
}

func TestServerConfig(t *testing.T) {
	identity := createTestIdentity(t)
	b, err := NewConfigBuilder(identity)
	require.NoError(t, err)

	conf, err := b.ServerConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS13), conf.MinVersion)
	assert.Equal(t, tls.RequireAnyClientCert, conf.ClientAuth)
	assert.True(t, conf.InsecureSkipVerify)
	assert.NotNil(t, conf.VerifyPeerCertificate)
	assert.Equal(t, []string{alpnProtocol}, conf.NextProtos)
	require.Len(t, conf.Certificates, 1)
}

func TestClientConfig(t *testing.T) {
	identity := createTestIdentity(t)
	b, err := NewConfigBuilder(identity)
	require.NoError(t, err)

	conf, err := b.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS13), conf.MinVersion)
	assert.True(t, conf.InsecureSkipVerify)
	assert.NotNil(t, conf.VerifyPeerCertificate)
	require.Len(t, conf.Certificates, 1)
}

func TestSharedCertificateReused(t *testing.T) {
	identity := createTestIdentity(t)
	b, err := NewConfigBuilder(identity)
	require.NoError(t, err)

	c1, err := b.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)
	c2, err := b.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)

	// 默认策略：同一构建器的所有连接复用同一张证书
	assert.Equal(t, c1.Certificates[0].Certificate[0], c2.Certificates[0].Certificate[0])
}

func TestPerConnectionCertificate(t *testing.T) {
	identity := createTestIdentity(t)
	b, err := NewConfigBuilder(identity, WithPerConnectionCertificate())
	require.NoError(t, err)

	c1, err := b.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)
	c2, err := b.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)

	// 每连接证书：两次拨号拿到不同的证书
	assert.NotEqual(t, c1.Certificates[0].Certificate[0], c2.Certificates[0].Certificate[0])

	// 服务端走 GetCertificate 回调
	sc, err := b.ServerConfig()
	require.NoError(t, err)
	assert.Empty(t, sc.Certificates)
	require.NotNil(t, sc.GetCertificate)

	s1, err := sc.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	s2, err := sc.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, s1.Certificate[0], s2.Certificate[0])
}

func TestClientConfigPeerPinning(t *testing.T) {
	identity := createTestIdentity(t)
	b, err := NewConfigBuilder(identity)
	require.NoError(t, err)

	peerID, err := crypto.PeerIDFromPrivateKey(identity)
	require.NoError(t, err)

	cert, err := GenerateCertificate(identity)
	require.NoError(t, err)

	// 期望身份匹配：通过
	conf, err := b.ClientConfig(peerID)
	require.NoError(t, err)
	assert.NoError(t, conf.VerifyPeerCertificate(cert.Certificate, nil))

	// 期望其他身份：拒绝
	otherIdentity := createTestIdentity(t)
	otherPeer, err := crypto.PeerIDFromPrivateKey(otherIdentity)
	require.NoError(t, err)

	conf, err = b.ClientConfig(otherPeer)
	require.NoError(t, err)
	assert.ErrorIs(t, conf.VerifyPeerCertificate(cert.Certificate, nil), ErrPeerIDMismatch)
}

func TestWithNextProtos(t *testing.T) {
	identity := createTestIdentity(t)
	b, err := NewConfigBuilder(identity, WithNextProtos([]string{"custom/1"}))
	require.NoError(t, err)

	conf, err := b.ServerConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"custom/1"}, conf.NextProtos)
}

func TestWithSessionCache(t *testing.T) {
	identity := createTestIdentity(t)
	cache := tls.NewLRUClientSessionCache(8)

	b, err := NewConfigBuilder(identity, WithSessionCache(cache))
	require.NoError(t, err)

	conf, err := b.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)
	assert.NotNil(t, conf.ClientSessionCache)
}

func TestPeerIDFromConnectionState(t *testing.T) {
	identity := createTestIdentity(t)
	wantPeer, err := crypto.PeerIDFromPrivateKey(identity)
	require.NoError(t, err)

	cert, err := GenerateCertificate(identity)
	require.NoError(t, err)

	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert.Leaf}}
	peerID, err := PeerIDFromConnectionState(state)
	require.NoError(t, err)
	assert.True(t, peerID.Equal(wantPeer))
}

func createTestIdentitySecp(t *testing.T) crypto.PrivateKey {
	t.Helper()
	priv, _, err := crypto.GenerateSecp256k1Key(rand.Reader)
	require.NoError(t, err)
	return priv
}

func TestCrossAlgorithmHandshakeConfigs(t *testing.T) {
	// Ed25519 与 Secp256k1 身份互相验证
	edIdentity := createTestIdentity(t)
	secpIdentity := createTestIdentitySecp(t)

	edBuilder, err := NewConfigBuilder(edIdentity)
	require.NoError(t, err)
	secpCert, err := GenerateCertificate(secpIdentity)
	require.NoError(t, err)

	conf, err := edBuilder.ClientConfig(types.EmptyPeerID)
	require.NoError(t, err)
	assert.NoError(t, conf.VerifyPeerCertificate(secpCert.Certificate, nil))
}
