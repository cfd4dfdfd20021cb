package scan

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	diagerr "github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/log"
)

// UnavailableMessage is the error text of a probe skipped because it is not
// available in the current environment.
const UnavailableMessage = "Scanner not available (missing dependencies or admin rights)"

// CancelledMessage is the error text of a probe that did not run or finish
// because the scan context was cancelled.
const CancelledMessage = "scan cancelled"

// RunOptions tunes the Run wrapper.
type RunOptions struct {
	// Timeout bounds a single Execute call. Zero disables the bound.
	Timeout time.Duration

	// Logger receives debug output about faults. Nil disables logging.
	Logger *log.Logger
}

// Run executes a probe with uniform timing and fault containment.
//
// Run always returns exactly one well-formed Result:
//   - an unavailable probe yields Success=false and UnavailableMessage,
//     without Execute being called
//   - an error, panic, timeout or cancellation yields Success=false with the
//     fault's message
//   - a normal return keeps the probe's findings, but the duration is always
//     the wrapper's own measurement
//
// Faults never propagate to the caller.
func Run(ctx context.Context, p Probe, env Environment, opts RunOptions) *Result {
	start := time.Now()
	elapsed := func() time.Duration { return time.Since(start) }

	fail := func(err *diagerr.DiagError) *Result {
		r := FailedResult(p.Name(), p.Category(), err.Message)
		r.Duration = elapsed()
		r.Timestamp = start
		if opts.Logger != nil {
			opts.Logger.Debug("probe failed", "probe", p.Name(), "error_code", string(err.Code), "error", err.Message)
		}
		return r
	}

	if ctx.Err() != nil {
		return fail(diagerr.New(diagerr.ErrCodeProbeCancelled, CancelledMessage))
	}

	available, fault := checkAvailable(p, env)
	if fault != nil {
		return fail(fault)
	}
	if !available {
		return fail(diagerr.New(diagerr.ErrCodeProbeUnavailable, UnavailableMessage))
	}

	result, fault := execute(ctx, p, opts)
	if fault != nil {
		return fail(fault)
	}

	result.Duration = elapsed()
	if result.ProbeName == "" {
		result.ProbeName = p.Name()
	}
	if result.Category == "" {
		result.Category = p.Category()
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	if result.Findings == nil {
		result.Findings = []Finding{}
	}
	if result.RawData == nil {
		result.RawData = map[string]any{}
	}
	if !result.Success && result.Error == "" {
		result.Error = "probe reported failure"
	}
	return result
}

// checkAvailable calls p.Available and converts a panic into a fault.
func checkAvailable(p Probe, env Environment) (ok bool, fault *diagerr.DiagError) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			fault = diagerr.New(diagerr.ErrCodeProbePanic, panicMessage(r))
		}
	}()
	return p.Available(env), nil
}

// execute runs p.Execute inside the fault boundary, bounded by opts.Timeout
// when set.
func execute(ctx context.Context, p Probe, opts RunOptions) (*Result, *diagerr.DiagError) {
	if opts.Timeout <= 0 {
		result, fault := invoke(ctx, p, opts.Logger)
		if fault != nil && ctx.Err() != nil {
			return nil, diagerr.New(diagerr.ErrCodeProbeCancelled, CancelledMessage)
		}
		return result, fault
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type outcome struct {
		result *Result
		fault  *diagerr.DiagError
	}

	// Buffered so a probe that ignores its context can still finish and exit.
	done := make(chan outcome, 1)
	go func() {
		r, f := invoke(runCtx, p, opts.Logger)
		done <- outcome{result: r, fault: f}
	}()

	select {
	case o := <-done:
		if o.fault != nil && runCtx.Err() != nil {
			return nil, contextFault(ctx, opts.Timeout)
		}
		return o.result, o.fault
	case <-runCtx.Done():
		return nil, contextFault(ctx, opts.Timeout)
	}
}

func contextFault(parent context.Context, timeout time.Duration) *diagerr.DiagError {
	if parent.Err() != nil {
		return diagerr.New(diagerr.ErrCodeProbeCancelled, CancelledMessage)
	}
	return diagerr.New(diagerr.ErrCodeProbeTimeout, fmt.Sprintf("probe timed out after %s", timeout))
}

// invoke calls Execute, recovering panics and normalizing errors.
func invoke(ctx context.Context, p Probe, logger *log.Logger) (result *Result, fault *diagerr.DiagError) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Debug("probe panicked", "probe", p.Name(), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			}
			result = nil
			fault = diagerr.New(diagerr.ErrCodeProbePanic, panicMessage(r))
		}
	}()

	res, err := p.Execute(ctx)
	if err != nil {
		return nil, diagerr.Wrap(diagerr.ErrCodeProbeFault, faultMessage(err), err)
	}
	if res == nil {
		return nil, diagerr.New(diagerr.ErrCodeProbeNoResult, "probe returned no result")
	}
	return res, nil
}

// faultMessage returns the single-line message of err.
func faultMessage(err error) string {
	if d, ok := err.(*diagerr.DiagError); ok {
		return d.Summary()
	}
	return err.Error()
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
