// Package metrics turns scan reports into Prometheus metrics, served over
// HTTP or written as a node_exporter textfile.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Metrics holds the collectors describing the most recent scan.
type Metrics struct {
	// Per-probe metrics, reset on every Observe
	ProbeSuccess  *prometheus.GaugeVec
	ProbeDuration *prometheus.GaugeVec
	Findings      *prometheus.GaugeVec

	// Scan-level metrics
	ScanDuration  prometheus.Gauge
	ScanTimestamp prometheus.Gauge
	ScanProbes    *prometheus.GaugeVec
	Scans         *prometheus.CounterVec

	// mu keeps scrapes out of the window between Reset and refill
	mu sync.RWMutex
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		ProbeSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sysprobe_probe_success",
				Help: "Whether the probe ran successfully (1) or failed (0) in the last scan",
			},
			[]string{"probe", "category"},
		),
		ProbeDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sysprobe_probe_duration_seconds",
				Help: "Probe run time in the last scan",
			},
			[]string{"probe", "category"},
		),
		Findings: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sysprobe_findings",
				Help: "Findings reported by the probe in the last scan, by severity",
			},
			[]string{"probe", "category", "severity"},
		),

		ScanDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sysprobe_scan_duration_seconds",
			Help: "Wall time of the last scan",
		}),
		ScanTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sysprobe_last_scan_timestamp_seconds",
			Help: "Unix time the last scan finished",
		}),
		ScanProbes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sysprobe_scan_probes",
				Help: "Probes in the last scan by outcome",
			},
			[]string{"mode", "outcome"},
		),
		Scans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysprobe_scans_total",
				Help: "Total number of completed scans",
			},
			[]string{"mode"},
		),
	}
}

// Observe replaces the per-probe series with the contents of report.
// Scrapes through Handler never see a partly replaced set.
func (m *Metrics) Observe(report *scan.Report) {
	if report == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProbeSuccess.Reset()
	m.ProbeDuration.Reset()
	m.Findings.Reset()
	m.ScanProbes.Reset()

	for _, r := range report.Results {
		key := scan.NormalizeName(r.ProbeName)
		category := string(r.Category)

		success := 0.0
		if r.Success {
			success = 1
		}
		m.ProbeSuccess.WithLabelValues(key, category).Set(success)
		m.ProbeDuration.WithLabelValues(key, category).Set(r.Duration.Seconds())

		for _, sev := range scan.Severities() {
			m.Findings.WithLabelValues(key, category, string(sev)).Set(float64(r.CountSeverity(sev)))
		}
	}

	summary := report.Summary()
	m.ScanProbes.WithLabelValues(report.Mode, "successful").Set(float64(summary.Successful))
	m.ScanProbes.WithLabelValues(report.Mode, "failed").Set(float64(summary.Failed))

	m.ScanDuration.Set(report.TotalDuration().Seconds())
	if !report.EndTime.IsZero() {
		m.ScanTimestamp.Set(float64(report.EndTime.Unix()))
	}
	m.Scans.WithLabelValues(report.Mode).Inc()
}
