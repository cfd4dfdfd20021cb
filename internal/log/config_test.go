package log

import (
	"bytes"
	"io"
	"os"
	"testing"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "json"},
		{FormatText, "text"},
		{Format(999), "text"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.format.String(); got != tt.want {
				t.Errorf("Format.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{" json ", FormatJSON},
		{"text", FormatText},
		{"console", FormatText},
		{"", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputs(t *testing.T) {
	var buf bytes.Buffer
	if NewOutput(&buf).Writer() != &buf {
		t.Error("NewOutput did not return the correct writer")
	}
	if OutputStderr().Writer() != os.Stderr {
		t.Error("OutputStderr did not return stderr")
	}
	if OutputDiscard().Writer() != io.Discard {
		t.Error("OutputDiscard did not return io.Discard")
	}
	if (Output{}).Writer() != io.Discard {
		t.Error("zero Output should discard")
	}
	if err := NewOutput(&buf).Close(); err != nil {
		t.Errorf("Close on writer-only output: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level != LevelInfo {
		t.Errorf("DefaultConfig.Level = %v, want %v", config.Level, LevelInfo)
	}
	if config.Format != FormatText {
		t.Errorf("DefaultConfig.Format = %v, want %v", config.Format, FormatText)
	}
	if config.Output.Writer() != os.Stderr {
		t.Error("DefaultConfig.Output should be stderr")
	}
	if config.File.Enabled() {
		t.Error("DefaultConfig should not log to a file")
	}
	if config.ServiceName != "sysprobe" {
		t.Errorf("DefaultConfig.ServiceName = %q, want %q", config.ServiceName, "sysprobe")
	}
}

func TestDevelopmentConfig(t *testing.T) {
	config := DevelopmentConfig()

	if config.Level != LevelDebug {
		t.Errorf("DevelopmentConfig.Level = %v, want %v", config.Level, LevelDebug)
	}
	if !config.AddSource {
		t.Error("DevelopmentConfig.AddSource should be true")
	}
}

func TestDefaultFileConfig(t *testing.T) {
	f := DefaultFileConfig("/tmp/sysprobe.log")

	if !f.Enabled() {
		t.Error("file config with a path should be enabled")
	}
	if f.MaxSizeMB <= 0 || f.MaxBackups <= 0 || f.MaxAgeDays <= 0 {
		t.Errorf("rotation limits should be positive: %+v", f)
	}
	if DefaultFileConfig("").Enabled() {
		t.Error("file config without a path should be disabled")
	}
}
