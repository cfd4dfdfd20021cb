package exitcode

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

func reportWith(results ...*scan.Result) *scan.Report {
	r := scan.NewReport(scan.ModeFull)
	for _, res := range results {
		_ = r.AddResult(res)
	}
	r.Finalize()
	return r
}

func resultWith(severities ...scan.Severity) *scan.Result {
	base := scan.NewBase("Stub", scan.CategorySystem)
	res := base.NewResult()
	for _, s := range severities {
		res.Add(base.Finding(string(s), "", s))
	}
	return res
}

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		input   string
		want    FailOn
		wantErr bool
	}{
		{"critical", FailOnCritical, false},
		{"WARNING", FailOnWarning, false},
		{"none", FailOnNone, false},
		{"", FailOnCritical, false},
		{"info", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFailOn(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForReport(t *testing.T) {
	clean := resultWith(scan.SeverityPass, scan.SeverityInfo)
	warning := resultWith(scan.SeverityWarning)
	critical := resultWith(scan.SeverityCritical)
	unavailable := scan.FailedResult("GPU", scan.CategoryHardware, scan.UnavailableMessage)
	faulted := scan.FailedResult("DNS", scan.CategoryNetwork, "probe timed out after 1m0s")
	cancelled := scan.FailedResult("Ports", scan.CategorySecurity, scan.CancelledMessage)

	tests := []struct {
		name   string
		report *scan.Report
		failOn FailOn
		want   int
	}{
		{"clean", reportWith(clean), FailOnCritical, Success},
		{"unavailable is not a fault", reportWith(clean, unavailable), FailOnCritical, Success},
		{"critical", reportWith(clean, critical), FailOnCritical, CriticalFindings},
		{"warning ignored by default", reportWith(warning), FailOnCritical, Success},
		{"warning with fail-on warning", reportWith(warning), FailOnWarning, WarningFindings},
		{"critical wins over warning", reportWith(warning, critical), FailOnWarning, CriticalFindings},
		{"faulted probe", reportWith(clean, faulted), FailOnCritical, IncompleteScan},
		{"findings win over fault", reportWith(critical, faulted), FailOnCritical, CriticalFindings},
		{"none ignores findings", reportWith(critical, faulted), FailOnNone, Success},
		{"cancelled", reportWith(critical, cancelled), FailOnNone, Interrupted},
		{"nil report", nil, FailOnCritical, GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForReport(tt.report, tt.failOn))
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"report exit code", fmt.Errorf("scan: %w", &Error{Code: WarningFindings}), WarningFindings},
		{"context cancelled", fmt.Errorf("scan: %w", context.Canceled), Interrupted},
		{"unknown mode", errors.NewUnknownModeError("turbo", scan.StandardModes()), UsageError},
		{"bad export format", errors.NewExportFormatError("pdf", []string{"json"}), UsageError},
		{"unknown probe", errors.NewProbeNotFoundError("gpu"), UsageError},
		{"invalid config", errors.NewConfigInvalidError("probe_timeout must not be negative"), UsageError},
		{"cobra unknown flag", stderrors.New("unknown flag: --turbo"), UsageError},
		{"cobra unknown command", stderrors.New(`unknown command "scna" for "sysprobe"`), UsageError},
		{"write failure", errors.NewFileWriteError("/root/report.json", stderrors.New("permission denied")), GeneralError},
		{"plain error", stderrors.New("something broke"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	codes := []int{Success, GeneralError, UsageError, CriticalFindings, WarningFindings, IncompleteScan, Interrupted}
	seen := map[string]bool{}
	for _, code := range codes {
		desc := GetExitCodeDescription(code)
		assert.NotEqual(t, "Unknown error", desc, "code %d", code)
		assert.False(t, seen[desc], "duplicate description %q", desc)
		seen[desc] = true
	}
	assert.Equal(t, "Unknown error", GetExitCodeDescription(42))
}

func TestFromReport(t *testing.T) {
	assert.NoError(t, FromReport(reportWith(resultWith(scan.SeverityPass)), FailOnCritical))

	err := FromReport(reportWith(resultWith(scan.SeverityCritical)), FailOnCritical)
	var coded *Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, CriticalFindings, coded.Code)
	assert.Equal(t, "Critical findings reported", err.Error())
}
