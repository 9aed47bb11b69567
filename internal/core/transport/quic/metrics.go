package quic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics 传输层指标集合
//
// 注册器为 nil 时 promauto.With 返回不注册的工厂，
// 指标对象仍然有效，调用方无需判空。
type metrics struct {
	connsOpened       *prometheus.CounterVec
	connsClosed       prometheus.Counter
	connsActive       prometheus.Gauge
	handshakeFailures *prometheus.CounterVec
	streamsOpened     *prometheus.CounterVec
	dialErrors        *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		connsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dep2p",
			Subsystem: "quic",
			Name:      "connections_opened_total",
			Help:      "已建立的连接总数",
		}, []string{"direction"}),
		connsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dep2p",
			Subsystem: "quic",
			Name:      "connections_closed_total",
			Help:      "已关闭的连接总数",
		}),
		connsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dep2p",
			Subsystem: "quic",
			Name:      "connections_active",
			Help:      "当前活跃连接数",
		}),
		handshakeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dep2p",
			Subsystem: "quic",
			Name:      "handshake_failures_total",
			Help:      "握手或身份验证失败总数",
		}, []string{"side"}),
		streamsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dep2p",
			Subsystem: "quic",
			Name:      "streams_opened_total",
			Help:      "打开的流总数",
		}, []string{"direction"}),
		dialErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dep2p",
			Subsystem: "quic",
			Name:      "dial_errors_total",
			Help:      "拨号失败总数",
		}, []string{"reason"}),
	}
}
