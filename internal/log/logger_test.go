package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(&buf),
	}), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected no output for debug/info at warn level, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("expected output for warn message")
	}
}

func TestJSONFormatOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("probe finished", "probe", "cpu", "findings", 3)

	entry := decodeLine(t, buf)
	if entry["msg"] != "probe finished" {
		t.Errorf("expected msg 'probe finished', got %v", entry["msg"])
	}
	if entry["probe"] != "cpu" {
		t.Errorf("expected probe 'cpu', got %v", entry["probe"])
	}
	if entry["findings"] != float64(3) {
		t.Errorf("expected findings 3, got %v", entry["findings"])
	}
}

func TestTextFormatOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)

	logger.Info("scan started", "mode", "quick")

	out := buf.String()
	for _, want := range []string{"scan started", "mode=quick", "INFO"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Output:         NewOutput(&buf),
		ServiceName:    "sysprobe",
		ServiceVersion: "1.2.3",
	})

	logger.Info("hello")

	entry := decodeLine(t, &buf)
	if entry["service"] != "sysprobe" || entry["version"] != "1.2.3" {
		t.Errorf("expected service attributes, got %v", entry)
	}
}

func TestWithAndWithGroup(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.With("scan_id", "abc").WithGroup("probe").Info("done", "name", "dns")

	entry := decodeLine(t, buf)
	if entry["scan_id"] != "abc" {
		t.Errorf("expected scan_id attribute, got %v", entry)
	}
	group, ok := entry["probe"].(map[string]any)
	if !ok || group["name"] != "dns" {
		t.Errorf("expected grouped attribute probe.name, got %v", entry["probe"])
	}
}

func TestWithError(t *testing.T) {
	t.Run("nil error returns same logger", func(t *testing.T) {
		logger, _ := newBufferLogger(LevelInfo, FormatJSON)
		if logger.WithError(nil) != logger {
			t.Error("WithError(nil) should return the receiver")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		logger.WithError(fmt.Errorf("boom")).Info("failed")

		entry := decodeLine(t, buf)
		if entry["error"] != "boom" {
			t.Errorf("expected error 'boom', got %v", entry["error"])
		}
		if _, ok := entry["error_code"]; ok {
			t.Error("plain errors should not carry an error_code")
		}
	})

	t.Run("wrapped diag error", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		diag := errors.NewProbeNotFoundError("gpu")
		logger.WithError(fmt.Errorf("lookup: %w", diag)).Info("failed")

		entry := decodeLine(t, buf)
		if entry["error_code"] != string(errors.ErrCodeRegistryNotFound) {
			t.Errorf("expected error_code %s, got %v", errors.ErrCodeRegistryNotFound, entry["error_code"])
		}
		if _, ok := entry["suggestions"]; !ok {
			t.Error("expected suggestions attribute")
		}
	})
}

func TestLogError(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Fatalf("LogError(nil) should not log, got %s", buf.String())
	}

	cause := fmt.Errorf("disk full")
	logger.LogError(errors.NewFileWriteError("/tmp/report.json", cause))

	entry := decodeLine(t, buf)
	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", entry["level"])
	}
	if entry["error_code"] != string(errors.ErrCodeFileWriteFailed) {
		t.Errorf("unexpected error_code %v", entry["error_code"])
	}
	if entry["cause"] != "disk full" {
		t.Errorf("expected cause 'disk full', got %v", entry["cause"])
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysprobe.log")
	cfg := DefaultConfig()
	cfg.Format = FormatJSON
	cfg.File = DefaultFileConfig(path)

	logger := New(cfg)
	logger.Info("written to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing entry, got: %s", data)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
	if err := logger.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
