package exitcode

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates the scan ran and nothing crossed the fail-on threshold
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, unknown mode, etc.)
	UsageError = 2

	// CriticalFindings indicates at least one critical finding
	CriticalFindings = 3

	// WarningFindings indicates warnings with --fail-on warning
	WarningFindings = 4

	// IncompleteScan indicates that probes faulted or timed out
	IncompleteScan = 5

	// Interrupted indicates the scan was cancelled, usually by SIGINT
	Interrupted = 130
)

// FailOn selects the finding severity that makes a scan exit non-zero.
type FailOn string

const (
	FailOnCritical FailOn = "critical"
	FailOnWarning  FailOn = "warning"
	FailOnNone     FailOn = "none"
)

// ParseFailOn parses a --fail-on value.
func ParseFailOn(s string) (FailOn, error) {
	switch f := FailOn(strings.ToLower(strings.TrimSpace(s))); f {
	case FailOnCritical, FailOnWarning, FailOnNone:
		return f, nil
	case "":
		return FailOnCritical, nil
	default:
		return "", errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid fail-on value: %s", s)).
			WithSuggestion("Use one of: critical, warning, none")
	}
}

// Error carries an exit code a command chose after it already reported
// its outcome, so callers exit without printing anything further.
type Error struct {
	Code int
}

func (e *Error) Error() string {
	return GetExitCodeDescription(e.Code)
}

// FromReport returns an *Error for a non-zero ForReport code, or nil.
func FromReport(report *scan.Report, failOn FailOn) error {
	if code := ForReport(report, failOn); code != Success {
		return &Error{Code: code}
	}
	return nil
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// ForReport maps a finished report to an exit code.
//
// A cancelled scan always yields Interrupted. Otherwise findings are
// compared against failOn, and a scan whose probes faulted (as opposed to
// being skipped as unavailable) yields IncompleteScan. FailOnNone only
// reports interruption.
func ForReport(report *scan.Report, failOn FailOn) int {
	if report == nil {
		return GeneralError
	}

	faulted := false
	for _, res := range report.Results {
		switch {
		case res.Success:
		case res.Error == scan.CancelledMessage:
			return Interrupted
		case res.Error != scan.UnavailableMessage:
			faulted = true
		}
	}

	switch failOn {
	case FailOnNone:
		return Success
	case FailOnWarning:
		if report.CriticalCount() > 0 {
			return CriticalFindings
		}
		if report.WarningCount() > 0 {
			return WarningFindings
		}
	default:
		if report.CriticalCount() > 0 {
			return CriticalFindings
		}
	}

	if faulted {
		return IncompleteScan
	}
	return Success
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeModeUnknown, errors.ErrCodeModeInvalid,
		errors.ErrCodeConfigInvalid, errors.ErrCodeExportFormat,
		errors.ErrCodeRegistryNotFound:
		return UsageError
	case errors.ErrCodeProbeCancelled:
		return Interrupted
	}

	// cobra reports usage problems as plain errors
	errMsg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"unknown command", "unknown flag", "unknown shorthand flag",
		"invalid argument", "required flag", "accepts ", "flag needs an argument",
	} {
		if strings.Contains(errMsg, marker) {
			return UsageError
		}
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or mode)"
	case CriticalFindings:
		return "Critical findings reported"
	case WarningFindings:
		return "Warning findings reported"
	case IncompleteScan:
		return "Scan incomplete (probes faulted or timed out)"
	case Interrupted:
		return "Scan interrupted"
	default:
		return "Unknown error"
	}
}
