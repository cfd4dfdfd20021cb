package log

import "testing"

func TestSetDefaultLogger(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	custom := Discard()
	SetDefaultLogger(custom)

	if DefaultLogger() != custom {
		t.Error("DefaultLogger did not return the logger set with SetDefaultLogger")
	}
}

func TestDefaultLoggerLazyInit(t *testing.T) {
	original := defaultLogger
	defer func() { defaultLogger = original }()

	defaultLogger = nil

	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("DefaultLogger returned nil when no default was set")
	}
	if DefaultLogger() != logger {
		t.Error("DefaultLogger should keep returning the lazily created logger")
	}
}
