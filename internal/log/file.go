package log

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures rotating file output.
type FileConfig struct {
	// Path of the active log file. Empty disables file output.
	Path string

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool
}

// DefaultFileConfig returns rotation limits suited to a CLI that runs for
// seconds at a time.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// Enabled reports whether file output is configured.
func (f FileConfig) Enabled() bool {
	return f.Path != ""
}

// OutputFile creates an Output backed by a rotating log file.
func OutputFile(f FileConfig) Output {
	lj := &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAge:     f.MaxAgeDays,
		Compress:   f.Compress,
	}
	return Output{writer: lj, closer: lj}
}
