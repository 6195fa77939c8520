// Package metrics exposes the process's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the service layer records against; tests use NoOp.
type Recorder interface {
	RecordOperation(operation string, success bool)
	RecordCommandEvent(category string)
}

// Metrics is the Prometheus-backed Recorder.
type Metrics struct {
	operations *prometheus.CounterVec
	commands   *prometheus.CounterVec
}

var _ Recorder = (*Metrics)(nil)

// New registers the instruments on reg and returns the recorder.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildboard",
			Name:      "store_operations_total",
			Help:      "Config store operations by operation name and outcome.",
		}, []string{"operation", "status"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildboard",
			Name:      "command_events_total",
			Help:      "Command execution events recorded, by category.",
		}, []string{"category"}),
	}
	reg.MustRegister(m.operations, m.commands)
	return m
}

func (m *Metrics) RecordOperation(operation string, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	m.operations.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) RecordCommandEvent(category string) {
	m.commands.WithLabelValues(category).Inc()
}

// NoOp discards all recordings.
type NoOp struct{}

var _ Recorder = NoOp{}

func (NoOp) RecordOperation(string, bool) {}
func (NoOp) RecordCommandEvent(string)    {}
