// Package instrument holds the Prometheus counters of the directory and
// node daemons.
package instrument

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ikedadada/go-onionchain/internal/domain/repository"
	"ikedadada/go-onionchain/internal/usecase/service"
)

// Metrics is a set of counters bound to one private registry, so several
// daemons in one process (tests) do not collide.
type Metrics struct {
	reg *prometheus.Registry

	chains         *prometheus.CounterVec
	registrations  *prometheus.CounterVec
	heartbeats     *prometheus.CounterVec
	relayRequests  *prometheus.CounterVec
	nodeHeartbeats *prometheus.CounterVec
	registryNodes  prometheus.GaugeFunc
}

// New creates the counters. nodeCount, if non-nil, is exported as the
// number of registered nodes.
func New(nodeCount func() int) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		chains: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onionchain_directory_chains_total",
				Help: "Number of chain requests by result",
			},
			[]string{"result"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onionchain_directory_registrations_total",
				Help: "Number of node registrations by result",
			},
			[]string{"result"},
		),
		heartbeats: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onionchain_directory_heartbeats_total",
				Help: "Number of heartbeats received by result",
			},
			[]string{"result"},
		),
		relayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onionchain_node_relay_requests_total",
				Help: "Number of relay requests by hop kind and result",
			},
			[]string{"kind", "result"},
		),
		nodeHeartbeats: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "onionchain_node_heartbeats_total",
				Help: "Number of heartbeats sent by result",
			},
			[]string{"result"},
		),
	}
	m.reg.MustRegister(m.chains, m.registrations, m.heartbeats, m.relayRequests, m.nodeHeartbeats)
	if nodeCount != nil {
		m.registryNodes = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "onionchain_directory_registered_nodes",
				Help: "Number of nodes known to the directory",
			},
			func() float64 { return float64(nodeCount()) },
		)
		m.reg.MustRegister(m.registryNodes)
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ChainAssembled(err error) {
	m.chains.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) NodeRegistered(err error) {
	m.registrations.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) HeartbeatReceived(err error) {
	m.heartbeats.WithLabelValues(resultLabel(err)).Inc()
}

// RelayRequest counts one POST /request. kind is "exit", "intermediate" or
// "unknown" when the layer could not be opened.
func (m *Metrics) RelayRequest(kind string, err error) {
	m.relayRequests.WithLabelValues(kind, resultLabel(err)).Inc()
}

// HeartbeatSent has the signature of NodeLifecycleConfig.OnHeartbeat.
func (m *Metrics) HeartbeatSent(err error) {
	m.nodeHeartbeats.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	var de *service.DownstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, service.ErrInsufficientNodes):
		return "insufficient_nodes"
	case repository.IsInvalidSecret(err):
		return "invalid_secret"
	case repository.IsInvalidInput(err):
		return "invalid_input"
	case repository.IsNotFound(err):
		return "not_found"
	case errors.Is(err, service.ErrDecryption):
		return "decryption_error"
	case errors.Is(err, service.ErrEncryption):
		return "encryption_error"
	case errors.Is(err, service.ErrRelayTimeout):
		return "timeout"
	case errors.Is(err, service.ErrRelayUnreachable):
		return "unreachable"
	case errors.Is(err, service.ErrTargetService):
		return "target_error"
	case errors.As(err, &de):
		return "downstream_error"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

// ErrRateLimited is passed to RelayRequest for requests refused by the limiter.
var ErrRateLimited = errors.New("rate limited")
