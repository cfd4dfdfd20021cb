package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Probe errors (PROBE-001 to PROBE-099)
	ErrCodeProbeUnavailable ErrorCode = "PROBE-001"
	ErrCodeProbeFault       ErrorCode = "PROBE-002"
	ErrCodeProbeTimeout     ErrorCode = "PROBE-003"
	ErrCodeProbeCancelled   ErrorCode = "PROBE-004"
	ErrCodeProbePanic       ErrorCode = "PROBE-005"
	ErrCodeProbeNoResult    ErrorCode = "PROBE-006"

	// Registry errors (REGISTRY-001 to REGISTRY-099)
	ErrCodeRegistryDuplicate ErrorCode = "REGISTRY-001"
	ErrCodeRegistryNotFound  ErrorCode = "REGISTRY-002"
	ErrCodeRegistryInvalid   ErrorCode = "REGISTRY-003"

	// Mode errors (MODE-001 to MODE-099)
	ErrCodeModeUnknown ErrorCode = "MODE-001"
	ErrCodeModeInvalid ErrorCode = "MODE-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigLoad    ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid ErrorCode = "CONFIG-002"

	// Export errors (EXPORT-001 to EXPORT-099)
	ErrCodeExportFormat ErrorCode = "EXPORT-001"
	ErrCodeExportFailed ErrorCode = "EXPORT-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// DiagError represents an enhanced error with code, suggestions, and documentation
type DiagError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *DiagError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Summary returns the code, message and cause on a single line, without
// suggestions or documentation links.
func (e *DiagError) Summary() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *DiagError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DiagError carrying the same code.
func (e *DiagError) Is(target error) bool {
	t, ok := target.(*DiagError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new DiagError
func New(code ErrorCode, message string) *DiagError {
	return &DiagError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new DiagError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *DiagError {
	return &DiagError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *DiagError) WithSuggestion(suggestion string) *DiagError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *DiagError) WithSuggestions(suggestions ...string) *DiagError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *DiagError) WithDocs(url string) *DiagError {
	e.DocsURL = url
	return e
}

// CodeOf returns the error code of the first DiagError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	for err != nil {
		if d, ok := err.(*DiagError); ok {
			return d.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Common error constructors for frequently used errors

// NewDuplicateProbeError creates a duplicate registration error
func NewDuplicateProbeError(key string) *DiagError {
	return New(ErrCodeRegistryDuplicate, fmt.Sprintf("probe already registered: %s", key)).
		WithSuggestion("Give the probe a distinct name").
		WithSuggestion("Use Registry.Replace to override an existing probe on purpose")
}

// NewProbeNotFoundError creates a probe lookup error
func NewProbeNotFoundError(name string) *DiagError {
	return New(ErrCodeRegistryNotFound, fmt.Sprintf("probe not found: %s", name)).
		WithSuggestion("Run 'sysprobe list' to see registered probes")
}

// NewUnknownModeError creates an unknown scan mode error
func NewUnknownModeError(mode string, known []string) *DiagError {
	return New(ErrCodeModeUnknown, fmt.Sprintf("unknown scan mode: %s", mode)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(known, ", "))).
		WithSuggestion("Run 'sysprobe modes' to list modes, including custom ones from config")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *DiagError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check your sysprobe.yaml and SYSPROBE_* environment variables")
}

// NewExportFormatError creates an unsupported export format error
func NewExportFormatError(format string, supported []string) *DiagError {
	return New(ErrCodeExportFormat, fmt.Sprintf("unsupported export format: %s", format)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(supported, ", ")))
}

// NewFileWriteError creates a file write error
func NewFileWriteError(path string, cause error) *DiagError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Check that the directory exists and is writable")
}
