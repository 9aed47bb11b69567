// Package quic 实现 QUIC 传输层
package quic

import (
	"time"

	"github.com/quic-go/quic-go"

	transportif "github.com/dep2p/go-dep2p-quic/pkg/interfaces/transport"
)

// 确保实现 transport.Stream 接口
var _ transportif.Stream = (*Stream)(nil)

// Stream QUIC 流封装
//
// 流的生命周期独立于同连接上的其他流：关闭、取消或出错
// 只影响自身。读写语义直接委托给 quic-go。
type Stream struct {
	quicStream *quic.Stream
	conn       *Conn
}

func newStream(qs *quic.Stream, conn *Conn) *Stream {
	return &Stream{
		quicStream: qs,
		conn:       conn,
	}
}

// ID 返回协议引擎分配的流 ID
func (s *Stream) ID() uint64 {
	return uint64(s.quicStream.StreamID())
}

// Read 从流中读取数据
func (s *Stream) Read(p []byte) (int, error) {
	return s.quicStream.Read(p)
}

// Write 向流写入数据
func (s *Stream) Write(p []byte) (int, error) {
	return s.quicStream.Write(p)
}

// Close 关闭流
//
// 关闭写端并取消读端，之后该流从连接的流表中移除。
func (s *Stream) Close() error {
	s.quicStream.CancelRead(0)
	err := s.quicStream.Close()
	s.conn.removeStream(s.quicStream.StreamID())
	return err
}

// CloseRead 关闭读端
func (s *Stream) CloseRead() error {
	s.quicStream.CancelRead(0)
	return nil
}

// CloseWrite 关闭写端
func (s *Stream) CloseWrite() error {
	return s.quicStream.Close()
}

// SetDeadline 设置读写超时
func (s *Stream) SetDeadline(t time.Time) error {
	return s.quicStream.SetDeadline(t)
}

// SetReadDeadline 设置读超时
func (s *Stream) SetReadDeadline(t time.Time) error {
	return s.quicStream.SetReadDeadline(t)
}

// SetWriteDeadline 设置写超时
func (s *Stream) SetWriteDeadline(t time.Time) error {
	return s.quicStream.SetWriteDeadline(t)
}

// Conn 返回所属连接
func (s *Stream) Conn() *Conn {
	return s.conn
}
