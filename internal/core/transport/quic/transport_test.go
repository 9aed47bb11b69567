package quic

import (
	"context"
	"crypto/rand"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
	"github.com/dep2p/go-dep2p-quic/pkg/lib/crypto"
	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// newTestTransport 创建带全新 Ed25519 身份的传输
func newTestTransport(t *testing.T) *Transport {
	t.Helper()
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	tr, err := NewTransport(priv, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}

// listenLoopback 在回环地址的随机端口开始监听
func listenLoopback(t *testing.T, tr *Transport) transportif.Listener {
	t.Helper()
	listener, err := tr.Listen("/ip4/127.0.0.1/udp/0/quic-v1")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })
	return listener
}

func TestNewTransportNilKey(t *testing.T) {
	_, err := NewTransport(nil, DefaultConfig())
	assert.ErrorIs(t, err, crypto.ErrNilPrivateKey)
}

func TestTransportCanDial(t *testing.T) {
	tr := newTestTransport(t)

	tests := []struct {
		name    string
		addr    string
		canDial bool
	}{
		{"QUIC v1 地址", "/ip4/127.0.0.1/udp/4001/quic-v1", true},
		{"IPv6 地址", "/ip6/::1/udp/4001/quic-v1", true},
		{"TCP 地址", "/ip4/127.0.0.1/tcp/4001", false},
		{"未指定 IP", "/ip4/0.0.0.0/udp/4001/quic-v1", false},
		{"零端口", "/ip4/127.0.0.1/udp/0/quic-v1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canDial, tr.CanDial(types.Multiaddr(tt.addr)))
		})
	}
}

func TestTransportProtocols(t *testing.T) {
	tr := newTestTransport(t)
	assert.Equal(t, []string{"quic-v1"}, tr.Protocols())
}

func TestTransportListenAndClose(t *testing.T) {
	tr := newTestTransport(t)

	listener := listenLoopback(t, tr)

	// 实际地址带有内核分配的端口
	addr := listener.Multiaddr()
	udpAddr, err := addr.UDPAddr()
	require.NoError(t, err)
	assert.NotZero(t, udpAddr.Port)

	assert.NoError(t, listener.Close())
	assert.NoError(t, tr.Close())
	// 幂等
	assert.NoError(t, tr.Close())
}

func TestTransportDialAndAccept(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accepted := make(chan transportif.Connection, 1)
	go func() {
		conn, err := listener.Accept(ctx)
		if err == nil {
			accepted <- conn
		}
	}()

	conn, err := client.Dial(ctx, listener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)
	defer conn.Close()

	// 双方都拿到对端经过验证的身份
	assert.True(t, conn.RemotePeer().Equal(server.LocalPeer()))
	assert.Equal(t, transportif.DirOutbound, conn.Direction())

	var serverConn transportif.Connection
	select {
	case serverConn = <-accepted:
	case <-ctx.Done():
		t.Fatal("等待入站连接超时")
	}
	defer serverConn.Close()

	assert.True(t, serverConn.RemotePeer().Equal(client.LocalPeer()))
	assert.Equal(t, transportif.DirInbound, serverConn.Direction())
}

func TestStreamEcho(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		conn, err := listener.Accept(ctx)
		if err != nil {
			return
		}
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		// 回显
		io.Copy(stream, stream)
		stream.Close()
	}()

	conn, err := client.Dial(ctx, listener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)
	defer conn.Close()

	stream, err := conn.OpenStream(ctx)
	require.NoError(t, err)

	payload := []byte("ping over quic")
	_, err = stream.Write(payload)
	require.NoError(t, err)
	require.NoError(t, stream.CloseWrite())

	echoed, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, payload, echoed)
}

func TestDialWithExpectedPeer(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		for {
			if _, err := listener.Accept(ctx); err != nil {
				return
			}
		}
	}()

	// 正确的期望身份：成功
	conn, err := client.Dial(ctx, listener.Multiaddr(), server.LocalPeer())
	require.NoError(t, err)
	conn.Close()

	// 错误的期望身份：握手失败
	other := newTestTransport(t)
	_, err = client.Dial(ctx, listener.Multiaddr(), other.LocalPeer())
	assert.Error(t, err)
}

func TestDialInvalidAddress(t *testing.T) {
	tr := newTestTransport(t)
	ctx := context.Background()

	_, err := tr.Dial(ctx, "/ip4/0.0.0.0/udp/4001/quic-v1", types.EmptyPeerID)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = tr.Dial(ctx, "/ip4/127.0.0.1/udp/0/quic-v1", types.EmptyPeerID)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEndpointAddressFamilyMismatch(t *testing.T) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	ep, err := newEndpoint(&net.UDPAddr{IP: net.ParseIP("127.0.0.1")}, priv, DefaultConfig(), nil, newMetrics(nil))
	require.NoError(t, err)
	defer ep.Close()

	v6Addr := &net.UDPAddr{IP: net.ParseIP("::1"), Port: 4001}
	_, err = ep.Dial(context.Background(), v6Addr, types.EmptyPeerID)
	assert.ErrorIs(t, err, ErrAddressFamilyMismatch)
}

func TestEndpointReuseForDial(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	serverListener := listenLoopback(t, server)
	clientListener := listenLoopback(t, client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		for {
			if _, err := serverListener.Accept(ctx); err != nil {
				return
			}
		}
	}()

	conn, err := client.Dial(ctx, serverListener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)
	defer conn.Close()

	// 拨号复用监听端点：没有新建端点，出站连接带着监听端口
	assert.Equal(t, 1, client.EndpointCount())

	localUDP, err := conn.LocalMultiaddr().UDPAddr()
	require.NoError(t, err)
	listenUDP, err := clientListener.Multiaddr().UDPAddr()
	require.NoError(t, err)
	assert.Equal(t, listenUDP.Port, localUDP.Port)
}

func TestConnCloseWakesAcceptStream(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		for {
			if _, err := listener.Accept(ctx); err != nil {
				return
			}
		}
	}()

	conn, err := client.Dial(ctx, listener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)

	acceptErr := make(chan error, 1)
	go func() {
		_, err := conn.AcceptStream(ctx)
		acceptErr <- err
	}()

	// 给 AcceptStream 时间进入阻塞
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, conn.Close())

	select {
	case err := <-acceptErr:
		assert.ErrorIs(t, err, ErrConnectionClosed)
	case <-ctx.Done():
		t.Fatal("AcceptStream 未被关闭唤醒")
	}

	assert.True(t, conn.IsClosed())

	// 关闭后的操作返回终止错误
	_, err = conn.OpenStream(ctx)
	assert.ErrorIs(t, err, ErrConnectionClosed)
	// 幂等
	assert.NoError(t, conn.Close())
}

func TestRemoteCloseObserved(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accepted := make(chan transportif.Connection, 1)
	go func() {
		conn, err := listener.Accept(ctx)
		if err == nil {
			accepted <- conn
		}
	}()

	conn, err := client.Dial(ctx, listener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)

	var serverConn transportif.Connection
	select {
	case serverConn = <-accepted:
	case <-ctx.Done():
		t.Fatal("等待入站连接超时")
	}

	// 对端关闭最终反映到本地状态
	require.NoError(t, serverConn.Close())
	assert.Eventually(t, conn.IsClosed, 5*time.Second, 50*time.Millisecond)
}

func TestListenerCloseWakesAccept(t *testing.T) {
	server := newTestTransport(t)
	listener := listenLoopback(t, server)

	acceptErr := make(chan error, 1)
	go func() {
		_, err := listener.Accept(context.Background())
		acceptErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, listener.Close())

	select {
	case err := <-acceptErr:
		assert.ErrorIs(t, err, ErrListenerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Accept 未被关闭唤醒")
	}
}

func TestListenerAcceptContextCancel(t *testing.T) {
	server := newTestTransport(t)
	listener := listenLoopback(t, server)

	ctx, cancel := context.WithCancel(context.Background())

	acceptErr := make(chan error, 1)
	go func() {
		_, err := listener.Accept(ctx)
		acceptErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-acceptErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Accept 未被取消唤醒")
	}
}

func TestTransportClosedOperations(t *testing.T) {
	tr := newTestTransport(t)
	require.NoError(t, tr.Close())

	_, err := tr.Listen("/ip4/127.0.0.1/udp/0/quic-v1")
	assert.ErrorIs(t, err, ErrTransportClosed)

	_, err = tr.Dial(context.Background(), "/ip4/127.0.0.1/udp/4001/quic-v1", types.EmptyPeerID)
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestTransportCloseClosesConnections(t *testing.T) {
	server := newTestTransport(t)
	client := newTestTransport(t)

	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		for {
			if _, err := listener.Accept(ctx); err != nil {
				return
			}
		}
	}()

	conn, err := client.Dial(ctx, listener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.Eventually(t, conn.IsClosed, 5*time.Second, 50*time.Millisecond)
}

func TestOpenStreamLimit(t *testing.T) {
	// 服务端只允许一条并发双向流
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.MaxIncomingStreams = 1

	server, err := NewTransport(priv, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })

	client := newTestTransport(t)
	listener := listenLoopback(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		for {
			if _, err := listener.Accept(ctx); err != nil {
				return
			}
		}
	}()

	conn, err := client.Dial(ctx, listener.Multiaddr(), types.EmptyPeerID)
	require.NoError(t, err)
	defer conn.Close()

	// 第一条流占满配额
	first, err := conn.OpenStream(ctx)
	require.NoError(t, err)
	defer first.Close()

	// 配额耗尽：立即失败而不是阻塞
	_, err = conn.OpenStream(ctx)
	assert.ErrorIs(t, err, ErrStreamLimitExceeded)
}

func TestConnStateString(t *testing.T) {
	assert.Equal(t, "handshaking", StateHandshaking.String())
	assert.Equal(t, "established", StateEstablished.String())
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", ConnState(99).String())
}
