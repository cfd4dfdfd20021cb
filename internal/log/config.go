package log

import (
	"io"
	"os"
	"strings"
)

// Format represents the output format for logs
type Format int

const (
	// FormatText outputs logs as key=value lines
	FormatText Format = iota
	// FormatJSON outputs one JSON object per line
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

// ParseFormat parses a string into a Format. Unknown values fall back to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Output represents where logs should be written
type Output struct {
	writer io.Writer
	closer io.Closer
}

// Writer returns the underlying io.Writer
func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return io.Discard
	}
	return o.writer
}

// Close releases the output if it owns a resource, such as a log file.
func (o Output) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStderr creates an Output that writes to stderr
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// OutputDiscard creates an Output that drops everything
func OutputDiscard() Output {
	return Output{writer: io.Discard}
}

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum log level to output
	Level Level

	// Format is the output format (text or JSON)
	Format Format

	// Output is where logs are written when File.Path is empty
	Output Output

	// File, when its Path is set, sends logs to a rotating file instead
	File FileConfig

	// AddSource includes source file and line number in logs
	AddSource bool

	// ServiceName is attached to every entry as "service"
	ServiceName string

	// ServiceVersion is attached to every entry as "version"
	ServiceVersion string
}

// DefaultConfig logs at INFO level as text to stderr, keeping stdout free
// for reports.
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatText,
		Output:         OutputStderr(),
		File:           DefaultFileConfig(""),
		ServiceName:    "sysprobe",
		ServiceVersion: "dev",
	}
}

// DevelopmentConfig logs at DEBUG level with source locations.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	cfg.AddSource = true
	return cfg
}

// DiscardConfig returns a configuration that writes nothing. Useful in tests.
func DiscardConfig() Config {
	cfg := DefaultConfig()
	cfg.Output = OutputDiscard()
	cfg.Level = LevelError
	return cfg
}
