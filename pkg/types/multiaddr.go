package types

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ============================================================================
//                              Multiaddr - 统一地址类型
// ============================================================================

// Multiaddr 统一地址类型（值对象）
//
// Multiaddr 是本模块内部唯一的地址表示形式。
// 所有用于拨号/监听的地址必须是 Multiaddr 类型。
//
// 约束：
//   - String() 必须始终返回 canonical multiaddr（以 "/" 开头）
//   - 仅支持 QUIC 传输地址
//
// 格式示例：
//   - /ip4/192.168.1.1/udp/4001/quic-v1
//   - /ip6/::1/udp/4001/quic-v1
type Multiaddr string

// Multiaddr 错误定义
var (
	// ErrInvalidMultiaddr 无效的 multiaddr 格式
	ErrInvalidMultiaddr = errors.New("invalid multiaddr format")

	// ErrEmptyMultiaddr 空 multiaddr
	ErrEmptyMultiaddr = errors.New("empty multiaddr")

	// ErrNotMultiaddrFormat 不是 multiaddr 格式（不以 / 开头）
	ErrNotMultiaddrFormat = errors.New("not multiaddr format: must start with /")

	// ErrMissingTransport 缺少 QUIC 传输协议组件
	ErrMissingTransport = errors.New("missing quic-v1 transport protocol")
)

// ============================================================================
//                              解析/构建
// ============================================================================

// NewMultiaddr 解析并校验 multiaddr
//
// 仅接受 QUIC 传输地址：/ip4|ip6/<ip>/udp/<port>/quic-v1
//
// 示例：
//   - "/ip4/1.2.3.4/udp/4001/quic-v1" → Multiaddr
//   - "1.2.3.4:4001" → error（不是 multiaddr 格式）
func NewMultiaddr(s string) (Multiaddr, error) {
	if s == "" {
		return "", ErrEmptyMultiaddr
	}

	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "/") {
		return "", ErrNotMultiaddrFormat
	}

	m := Multiaddr(s)
	if _, err := m.UDPAddr(); err != nil {
		return "", err
	}
	return m, nil
}

// FromUDPAddr 从 net.UDPAddr 构建 QUIC multiaddr
func FromUDPAddr(addr *net.UDPAddr) (Multiaddr, error) {
	if addr == nil || addr.IP == nil {
		return "", ErrEmptyMultiaddr
	}
	if ip4 := addr.IP.To4(); ip4 != nil {
		return Multiaddr(fmt.Sprintf("/ip4/%s/udp/%d/quic-v1", ip4.String(), addr.Port)), nil
	}
	return Multiaddr(fmt.Sprintf("/ip6/%s/udp/%d/quic-v1", addr.IP.String(), addr.Port)), nil
}

// ============================================================================
//                              访问器
// ============================================================================

// String 返回 canonical multiaddr 字符串
func (m Multiaddr) String() string {
	return string(m)
}

// Equal 比较两个 multiaddr 是否相等
func (m Multiaddr) Equal(other Multiaddr) bool {
	return m == other
}

// UDPAddr 将 multiaddr 解析为 UDP 地址
//
// 期望格式：/ip4|ip6/<ip>/udp/<port>/quic-v1
func (m Multiaddr) UDPAddr() (*net.UDPAddr, error) {
	parts := strings.Split(string(m), "/")
	// 以 "/" 开头，Split 的第一个元素为空串
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMultiaddr, string(m))
	}

	var ip net.IP
	switch parts[1] {
	case "ip4":
		ip = net.ParseIP(parts[2])
		if ip == nil || ip.To4() == nil {
			return nil, fmt.Errorf("%w: invalid IPv4 address %q", ErrInvalidMultiaddr, parts[2])
		}
	case "ip6":
		ip = net.ParseIP(parts[2])
		if ip == nil || ip.To4() != nil {
			return nil, fmt.Errorf("%w: invalid IPv6 address %q", ErrInvalidMultiaddr, parts[2])
		}
	default:
		return nil, fmt.Errorf("%w: unknown protocol %q", ErrInvalidMultiaddr, parts[1])
	}

	if parts[3] != "udp" {
		return nil, fmt.Errorf("%w: expected udp, got %q", ErrInvalidMultiaddr, parts[3])
	}

	port, err := strconv.Atoi(parts[4])
	if err != nil || port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidMultiaddr, parts[4])
	}

	if parts[5] != "quic-v1" {
		return nil, ErrMissingTransport
	}

	return &net.UDPAddr{IP: ip, Port: port}, nil
}

// IsIPv6 检查是否为 IPv6 地址
func (m Multiaddr) IsIPv6() bool {
	return strings.HasPrefix(string(m), "/ip6/")
}
