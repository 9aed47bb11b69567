package quic

import (
	"fmt"
	"net"

	"github.com/dep2p/go-dep2p-quic/pkg/types"
)

// isIPv6 判断 UDP 地址是否属于 IPv6 族
//
// IPv4 映射地址（::ffff:a.b.c.d）按 IPv4 处理，
// 与 socket 层的实际行为保持一致。
func isIPv6(addr *net.UDPAddr) bool {
	return addr.IP.To4() == nil
}

// sameFamily 判断两个 UDP 地址是否属于同一地址族
func sameFamily(a, b *net.UDPAddr) bool {
	return isIPv6(a) == isIPv6(b)
}

// resolveDialAddr 解析拨号目标地址
//
// 目标地址必须是完全确定的：未指定 IP（0.0.0.0 / ::）或
// 端口为 0 的地址没有可达含义，直接拒绝。
func resolveDialAddr(raddr types.Multiaddr) (*net.UDPAddr, error) {
	udpAddr, err := raddr.UDPAddr()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if udpAddr.IP.IsUnspecified() {
		return nil, fmt.Errorf("%w: cannot dial unspecified address %s", ErrInvalidAddress, raddr)
	}
	if udpAddr.Port == 0 {
		return nil, fmt.Errorf("%w: cannot dial port 0 in %s", ErrInvalidAddress, raddr)
	}
	return udpAddr, nil
}

// resolveListenAddr 解析监听地址
//
// 监听允许未指定 IP 与端口 0（由内核分配端口）。
func resolveListenAddr(laddr types.Multiaddr) (*net.UDPAddr, error) {
	udpAddr, err := laddr.UDPAddr()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return udpAddr, nil
}

// toMultiaddr 将 net.Addr 转换为多地址
//
// 转换失败时返回空多地址，调用方只用于展示。
func toMultiaddr(addr net.Addr) types.Multiaddr {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return ""
	}
	ma, err := types.FromUDPAddr(udpAddr)
	if err != nil {
		return ""
	}
	return ma
}
