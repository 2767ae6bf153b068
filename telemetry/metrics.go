package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects Prometheus counters and gauges describing dispatcher
// behavior: how deep the pending-reply table runs, how many requests time
// out or fall through to an auto-reply, and how wide a broadcast's fan-out
// is.
type Metrics struct {
	pendingDepth   prometheus.Gauge
	dispatchTotal  *prometheus.CounterVec
	timeoutsTotal  prometheus.Counter
	autoRepliesTotal prometheus.Counter
	broadcastFanout prometheus.Histogram

	registerer prometheus.Registerer
	registered bool
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ipcbus",
		Subsystem: "engine",
		Name:      name,
		Help:      help,
	})
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ipcbus",
		Subsystem: "engine",
		Name:      name,
		Help:      help,
	})
}

// NewMetrics builds a Metrics bound to registerer, or
// prometheus.DefaultRegisterer if registerer is nil. Register must still be
// called before the collectors are exposed to a scrape.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		registerer:     registerer,
		pendingDepth:   newGauge("pending_requests", "Number of requests awaiting a reply or timeout"),
		dispatchTotal:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ipcbus", Subsystem: "engine", Name: "dispatch_total", Help: "Messages dispatched by outcome"}, []string{"outcome"}),
		timeoutsTotal:  newCounter("timeouts_total", "Requests that reached their deadline with no reply"),
		autoRepliesTotal: newCounter("auto_replies_total", "Requests completed by the auto-reply path instead of an explicit Reply call"),
		broadcastFanout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ipcbus",
			Subsystem: "engine",
			Name:      "broadcast_fanout",
			Help:      "Number of sessions a single broadcast was delivered to",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// Register registers every collector. Safe to call more than once.
func (m *Metrics) Register() error {
	if m.registered {
		return nil
	}
	collectors := []prometheus.Collector{
		m.pendingDepth,
		m.dispatchTotal,
		m.timeoutsTotal,
		m.autoRepliesTotal,
		m.broadcastFanout,
	}
	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	m.registered = true
	return nil
}

// SetPendingDepth records the current size of the pending-reply table.
func (m *Metrics) SetPendingDepth(n int) {
	m.pendingDepth.Set(float64(n))
}

// ObserveDispatch increments the dispatch counter for outcome (e.g.
// "request", "reply", "broadcast", "dropped").
func (m *Metrics) ObserveDispatch(outcome string) {
	m.dispatchTotal.WithLabelValues(outcome).Inc()
}

// RecordTimeout increments the timeout counter.
func (m *Metrics) RecordTimeout() {
	m.timeoutsTotal.Inc()
}

// RecordAutoReply increments the auto-reply counter.
func (m *Metrics) RecordAutoReply() {
	m.autoRepliesTotal.Inc()
}

// ObserveBroadcastFanout records how many sessions a broadcast reached.
func (m *Metrics) ObserveBroadcastFanout(sessionCount int) {
	m.broadcastFanout.Observe(float64(sessionCount))
}
