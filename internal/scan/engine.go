package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	diagerr "github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/log"
)

// CompleteLabel is the label of the terminal progress event.
const CompleteLabel = "Complete"

// ProgressFunc receives scan progress. It is called synchronously on the
// scanning goroutine with the index of the probe about to run, the number of
// selected probes, and the probe name. A final call (total, total,
// CompleteLabel) marks the end of the scan. Implementations must tolerate
// total == 0 and should return quickly.
type ProgressFunc func(current, total int, label string)

// ResultFunc receives each probe result as soon as it is added to the
// report, on the scanning goroutine.
type ResultFunc func(result *Result)

// State is the lifecycle state of an Engine.
type State int32

const (
	// StateIdle means no scan has run yet.
	StateIdle State = iota
	// StateRunning means a scan is in progress.
	StateRunning
	// StateFinalized means the last scan finished and its report is sealed.
	StateFinalized
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Engine drives sequential probe execution and assembles Reports.
type Engine struct {
	registry *Registry
	env      Environment
	timeout  time.Duration
	logger   *log.Logger
	onResult ResultFunc

	mu    sync.Mutex
	state atomic.Int32
}

// NewEngine creates an engine over registry. env is shared, read-only, by
// every probe of every scan.
func NewEngine(registry *Registry, env Environment) *Engine {
	return &Engine{
		registry: registry,
		env:      env,
		logger:   log.DefaultLogger(),
	}
}

// WithTimeout bounds each probe's Execute call. Zero disables the bound.
func (e *Engine) WithTimeout(timeout time.Duration) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = timeout
	return e
}

// WithLogger sets the logger used for scan diagnostics.
func (e *Engine) WithLogger(logger *log.Logger) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if logger != nil {
		e.logger = logger
	}
	return e
}

// WithResultHandler sets a function called with every result of later
// scans, after it is recorded and before the next probe starts.
func (e *Engine) WithResultHandler(fn ResultFunc) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onResult = fn
	return e
}

// Registry returns the registry the engine selects probes from.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Environment returns the run environment shared by all probes.
func (e *Engine) Environment() Environment {
	return e.env
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// RunScan runs every probe selected for mode, one after another, and returns
// the finalized report.
//
// onProgress, when non-nil, is called before each probe with (i, total,
// name) and once more with (total, total, CompleteLabel) after the report is
// finalized. Probe failures never abort the scan: every selected probe
// contributes exactly one result. An unknown mode produces an empty,
// finalized report.
//
// Cancelling ctx does not stop the loop; probes that have not started yet
// are recorded as cancelled. Concurrent calls on one Engine are serialized.
func (e *Engine) RunScan(ctx context.Context, mode string, onProgress ProgressFunc) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Store(int32(StateRunning))
	report := NewReport(mode)

	probes := e.registry.SelectForMode(mode)
	total := len(probes)
	logger := e.logger.With("scan_id", report.ID, "mode", mode)
	logger.Info("scan started", "probes", total, "admin", e.env.Admin)
	if total == 0 && !e.registry.HasMode(mode) {
		logger.Warn("unknown scan mode, nothing selected")
	}

	opts := RunOptions{Timeout: e.timeout, Logger: logger}
	for i, p := range probes {
		if onProgress != nil {
			onProgress(i, total, p.Name())
		}

		result := Run(ctx, p, e.env, opts)
		logger.Debug("probe finished",
			"probe", p.Name(),
			"success", result.Success,
			"findings", len(result.Findings),
			"duration", result.Duration.String(),
		)
		// The report is not finalized inside the loop, so this cannot fail.
		_ = report.AddResult(result)
		if e.onResult != nil {
			e.onResult(result)
		}
	}

	report.Finalize()
	e.state.Store(int32(StateFinalized))

	summary := report.Summary()
	logger.Info("scan complete",
		"duration", report.TotalDuration().String(),
		"successful", summary.Successful,
		"failed", summary.Failed,
		"critical", summary.Critical,
		"warnings", summary.Warnings,
	)

	if onProgress != nil {
		onProgress(total, total, CompleteLabel)
	}
	return report
}

// RunProbe runs a single registered probe by name through the same wrapper
// a scan uses. It returns a REGISTRY-002 error when no probe matches.
func (e *Engine) RunProbe(ctx context.Context, name string) (*Result, error) {
	p, ok := e.registry.Get(name)
	if !ok {
		return nil, diagerr.NewProbeNotFoundError(name)
	}

	e.mu.Lock()
	opts := RunOptions{Timeout: e.timeout, Logger: e.logger}
	e.mu.Unlock()

	return Run(ctx, p, e.env, opts), nil
}
