package hostsim

import (
	"strconv"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	calls      *prometheus.CounterVec
	traps      prometheus.Counter
	currentEra prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	m := &metrics{registry: registry}

	m.calls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dappstaking",
		Subsystem: "host",
		Name:      "calls_total",
		Help:      "Chain extension calls handled by the simulated host",
	}, []string{"func", "status"})

	m.traps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dappstaking",
		Subsystem: "host",
		Name:      "traps_total",
		Help:      "Transactions aborted by a protocol violation",
	})

	m.currentEra = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dappstaking",
		Subsystem: "host",
		Name:      "current_era",
		Help:      "Current era of the simulated host",
	})

	registry.MustRegister(m.calls, m.traps, m.currentEra)
	return m
}

func (m *metrics) observeCall(id chainext.FuncID, status uint32) {
	m.calls.WithLabelValues(id.String(), strconv.FormatUint(uint64(status), 10)).Inc()
}
