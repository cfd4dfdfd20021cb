package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// NewRegistry creates a registry holding only the scan metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return reg, m
}

// NewServerRegistry also registers the Go runtime and process collectors,
// for a long-running exporter.
func NewServerRegistry() (*prometheus.Registry, *Metrics) {
	reg, m := NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, m
}

// HandlerFor returns an HTTP handler for a specific registry
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Handler serves reg like HandlerFor, holding off each scrape while
// Observe replaces the series.
func (m *Metrics) Handler(reg prometheus.Gatherer) http.Handler {
	h := HandlerFor(reg)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		h.ServeHTTP(w, r)
	})
}

// WriteTextfile writes report in the Prometheus text format to path, for
// node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string, report *scan.Report) error {
	reg, m := NewRegistry()
	m.Observe(report)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return errors.NewFileWriteError(path, err)
	}
	return nil
}
