// Package observability provides Prometheus metrics for attach-nas.
//
// The process is short-lived, so metrics are usually written to a
// node_exporter textfile after each command. A long-running menu session can
// serve them over HTTP instead.
package observability

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// namespace is the Prometheus metric namespace prefix for all metrics.
	namespace = "attach_nas"
)

// Metrics holds all Prometheus metrics for attach-nas.
type Metrics struct {
	registry *prometheus.Registry

	// Orchestrator operation metrics
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	// net use invocation metrics
	netCommandsTotal *prometheus.CounterVec

	// Config and probe metrics
	configReloadsTotal *prometheus.CounterVec
	probesTotal        *prometheus.CounterVec

	// mappedDrives is registered on first SetConnectionCounter call
	gaugeOnce sync.Once
	// audit event totals are registered on first SetAuditSource call
	auditOnce sync.Once
}

// AuditSource reports audit event totals kept outside the registry
type AuditSource interface {
	EventCounts() map[string]int64
	SeverityCounts() map[string]int64
}

// NewMetrics creates a new Metrics instance with all metrics registered.
// Uses a custom registry so multiple instances never collide (not DefaultRegistry).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of mount and unmount operations by type and outcome",
			},
			[]string{"operation", "outcome"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of mount and unmount operations in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),

		netCommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "net_commands_total",
				Help:      "Total number of net use invocations by command and classified status",
			},
			[]string{"command", "status"},
		),

		configReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of config file reloads by status",
			},
			[]string{"status"},
		),

		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Total number of SMB share listing probes by status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.netCommandsTotal,
		m.configReloadsTotal,
		m.probesTotal,
	)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// WriteToTextfile writes the current metrics in text exposition format to
// path, atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// SetConnectionCounter exposes mapped_drives, evaluated on every scrape.
// Only the first call has an effect.
func (m *Metrics) SetConnectionCounter(count func() int) {
	m.gaugeOnce.Do(func() {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mapped_drives",
				Help:      "Number of drive letters currently mapped to network shares",
			},
			func() float64 { return float64(count()) },
		))
	})
}

// SetAuditSource exposes the audit log counters as audit_events_total and
// audit_events_by_severity_total, read from src on every scrape.
// Only the first call has an effect.
func (m *Metrics) SetAuditSource(src AuditSource) {
	m.auditOnce.Do(func() {
		m.registry.MustRegister(&auditCollector{
			src: src,
			events: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, "", "audit_events_total"),
				"Total number of audit events by event type",
				[]string{"event"}, nil,
			),
			severities: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, "", "audit_events_by_severity_total"),
				"Total number of audit events by severity",
				[]string{"severity"}, nil,
			),
		})
	})
}

type auditCollector struct {
	src        AuditSource
	events     *prometheus.Desc
	severities *prometheus.Desc
}

func (c *auditCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.events
	ch <- c.severities
}

func (c *auditCollector) Collect(ch chan<- prometheus.Metric) {
	for event, n := range c.src.EventCounts() {
		ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(n), event)
	}
	for severity, n := range c.src.SeverityCounts() {
		ch <- prometheus.MustNewConstMetric(c.severities, prometheus.CounterValue, float64(n), severity)
	}
}

// RecordOperation records an orchestrator operation with timing.
// operation is one of: mount, mount_all, unmount, unmount_host, unmount_config,
// unmount_everything. outcome is the result kind (success, failure, ...).
func (m *Metrics) RecordOperation(operation, outcome string, duration time.Duration) {
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordNetCommand records one net use invocation.
// command is one of: mount, unmount, list, delete_all.
func (m *Metrics) RecordNetCommand(command, status string) {
	m.netCommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordConfigReload records a config reload triggered by the watcher.
func (m *Metrics) RecordConfigReload(err error) {
	m.configReloadsTotal.WithLabelValues(statusLabel(err)).Inc()
}

// RecordProbe records an SMB share listing attempt.
func (m *Metrics) RecordProbe(err error) {
	m.probesTotal.WithLabelValues(statusLabel(err)).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
