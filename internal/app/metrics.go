package app

import (
	"fmt"
	"io"
	"time"

	"github.com/dshills/mapforge/internal/document"
	"github.com/dshills/mapforge/internal/engine/history"
	"github.com/dshills/mapforge/internal/observer"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names.
const (
	metricSubmitted     = "mapforge_commands_submitted_total"
	metricRejected      = "mapforge_commands_rejected_total"
	metricUndone        = "mapforge_commands_undone_total"
	metricRedone        = "mapforge_commands_redone_total"
	metricHistoryDepth  = "mapforge_history_depth"
	metricNotifications = "mapforge_notifications_total"
	metricScriptRuns    = "mapforge_script_runs_total"
	metricScriptSeconds = "mapforge_script_duration_seconds"
)

// Metrics counts document activity on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	submitted     prometheus.Counter
	rejected      prometheus.Counter
	undone        prometheus.Counter
	redone        prometheus.Counter
	historyDepth  prometheus.Gauge
	notifications *prometheus.CounterVec
	scriptRuns    *prometheus.CounterVec
	scriptSeconds prometheus.Histogram
}

// MetricsSnapshot is a point-in-time copy of the metric values.
type MetricsSnapshot struct {
	Submitted     uint64
	Rejected      uint64
	Undone        uint64
	Redone        uint64
	HistoryDepth  int
	Notifications map[string]uint64
	ScriptRuns    uint64
	ScriptErrors  uint64
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricSubmitted,
			Help: "Commands applied and recorded in the history",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricRejected,
			Help: "Commands discarded because they changed nothing",
		}),
		undone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricUndone,
			Help: "Undo steps taken",
		}),
		redone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricRedone,
			Help: "Redo steps taken",
		}),
		historyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricHistoryDepth,
			Help: "Current number of undo entries",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricNotifications,
			Help: "Observer notifications by event kind",
		}, []string{"kind"}),
		scriptRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricScriptRuns,
			Help: "Lua script runs by result",
		}, []string{"result"}),
		scriptSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricScriptSeconds,
			Help:    "Wall-clock duration of Lua script runs",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		}),
	}
	m.registry.MustRegister(
		m.submitted,
		m.rejected,
		m.undone,
		m.redone,
		m.historyDepth,
		m.notifications,
		m.scriptRuns,
		m.scriptSeconds,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe counts the history changes and notifications of doc.
func (m *Metrics) Observe(doc *document.Document) {
	h := doc.History()
	h.OnChange(func(ev history.Event) {
		switch ev.Kind {
		case history.EventSubmit:
			m.submitted.Inc()
		case history.EventReject:
			m.rejected.Inc()
		case history.EventUndo:
			m.undone.Inc()
		case history.EventRedo:
			m.redone.Inc()
		}
		m.historyDepth.Set(float64(h.UndoCount()))
	})
	doc.OnNotify(func(kind observer.EventKind) {
		m.notifications.WithLabelValues(kind.String()).Inc()
	})
}

// ObserveScript records one script run.
func (m *Metrics) ObserveScript(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.scriptRuns.WithLabelValues(result).Inc()
	m.scriptSeconds.Observe(d.Seconds())
}

// Snapshot returns the current values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Notifications: make(map[string]uint64)}
	families, err := m.registry.Gather()
	if err != nil {
		return s
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch mf.GetName() {
			case metricSubmitted:
				s.Submitted = counterValue(metric)
			case metricRejected:
				s.Rejected = counterValue(metric)
			case metricUndone:
				s.Undone = counterValue(metric)
			case metricRedone:
				s.Redone = counterValue(metric)
			case metricHistoryDepth:
				s.HistoryDepth = int(metric.GetGauge().GetValue())
			case metricNotifications:
				s.Notifications[labelValue(metric, "kind")] = counterValue(metric)
			case metricScriptRuns:
				n := counterValue(metric)
				s.ScriptRuns += n
				if labelValue(metric, "result") == "error" {
					s.ScriptErrors += n
				}
			}
		}
	}
	return s
}

// WriteText writes every metric in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func counterValue(m *dto.Metric) uint64 {
	return uint64(m.GetCounter().GetValue())
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
