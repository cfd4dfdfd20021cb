// Package server runs scans on a schedule and serves the results over HTTP:
//   - /metrics with the Prometheus view of the last scan
//   - /report with the last report in any export format
//   - /health/live, /health/ready and /healthz for orchestrators
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/export"
	"github.com/felixgeelhaar/sysprobe/internal/log"
	"github.com/felixgeelhaar/sysprobe/internal/metrics"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Scanner runs one scan. *scan.Engine satisfies it.
type Scanner interface {
	RunScan(ctx context.Context, mode string, onProgress scan.ProgressFunc) *scan.Report
}

// Server provides scheduled scanning and its HTTP endpoints.
type Server struct {
	httpServer      *http.Server
	scanner         Scanner
	mode            string
	interval        time.Duration
	metrics         *metrics.Metrics
	onReport        func(*scan.Report)
	logger          *log.Logger
	latest          atomic.Pointer[scan.Report]
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":9164", "127.0.0.1:9164")
	Address string

	// Mode is the scan mode run on every tick
	Mode string

	// Interval between scans. Defaults to 15 minutes.
	Interval time.Duration

	// OnReport, when set, is called with every finished report before it
	// is published, e.g. to attach system information.
	OnReport func(*scan.Report)

	// Logger defaults to the process-wide logger
	Logger *log.Logger

	// ShutdownTimeout is the maximum time to wait for connections to drain during shutdown.
	// Defaults to 30 seconds if not specified.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds if not specified.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Defaults to 10 seconds if not specified.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds if not specified.
	IdleTimeout time.Duration
}

// NewServer creates a server that scans with scanner.
func NewServer(scanner Scanner, cfg Config) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultLogger()
	}

	reg, m := metrics.NewServerRegistry()
	s := &Server{
		scanner:         scanner,
		mode:            cfg.Mode,
		interval:        cfg.Interval,
		metrics:         m,
		onReport:        cfg.OnReport,
		logger:          cfg.Logger.With("component", "server"),
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler(reg))
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/healthz", s.handleReadiness)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server is stopped or encounters an error.
// Returns http.ErrServerClosed when the server is shut down gracefully.
func (s *Server) Start() error {
	s.logger.Info("listening", "address", s.httpServer.Addr, "mode", s.mode, "interval", s.interval.String())
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server as not ready, then drains connections for up
// to the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// Latest returns the last published report, or nil before the first scan.
func (s *Server) Latest() *scan.Report {
	return s.latest.Load()
}

// ScanOnce runs one scan and publishes its report and metrics.
func (s *Server) ScanOnce(ctx context.Context) *scan.Report {
	report := s.scanner.RunScan(ctx, s.mode, nil)
	if s.onReport != nil {
		s.onReport(report)
	}
	s.metrics.Observe(report)
	s.latest.Store(report)

	summary := report.Summary()
	s.logger.Info("scan published",
		"report_id", report.ID,
		"critical", summary.Critical,
		"warnings", summary.Warnings,
		"failed", summary.Failed,
	)
	return report
}

// RunSchedule scans immediately and then every interval until ctx is done.
func (s *Server) RunSchedule(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.ScanOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type statusResponse struct {
	Status   string `json:"status"`
	Mode     string `json:"mode,omitempty"`
	ReportID string `json:"report_id,omitempty"`
	LastScan string `json:"last_scan,omitempty"`
}

func writeStatus(w http.ResponseWriter, code int, body statusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// handleLiveness always answers 200 while the process serves requests.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeStatus(w, http.StatusOK, statusResponse{Status: "alive", Mode: s.mode})
}

// handleReadiness answers 503 until the first scan is published and again
// once shutdown starts.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.IsShuttingDown() {
		writeStatus(w, http.StatusServiceUnavailable, statusResponse{Status: "shutting_down", Mode: s.mode})
		return
	}
	report := s.Latest()
	if report == nil {
		writeStatus(w, http.StatusServiceUnavailable, statusResponse{Status: "pending", Mode: s.mode})
		return
	}
	writeStatus(w, http.StatusOK, statusResponse{
		Status:   "ready",
		Mode:     s.mode,
		ReportID: report.ID,
		LastScan: report.EndTime.UTC().Format(time.RFC3339),
	})
}

// handleReport writes the last report. ?format= selects any export
// format; JSON is the default.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := export.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := export.ParseFormat(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	report := s.Latest()
	if report == nil {
		writeStatus(w, http.StatusServiceUnavailable, statusResponse{Status: "pending", Mode: s.mode})
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	if err := export.Write(w, format, report); err != nil {
		s.logger.WithError(err).Error("failed to write report")
	}
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatJSON, export.FormatSARIF:
		return "application/json"
	case export.FormatYAML:
		return "application/yaml"
	case export.FormatCSV:
		return "text/csv; charset=utf-8"
	case export.FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}
