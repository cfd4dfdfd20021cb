package export

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// ChecksumExtension is appended to a report path for its checksum sidecar.
const ChecksumExtension = ".b3"

// FileOptions tunes WriteFile.
type FileOptions struct {
	// Format overrides the format inferred from the file extension.
	Format Format

	// Checksum writes a BLAKE3 sidecar next to the report.
	Checksum bool
}

// Written describes a report file on disk.
type Written struct {
	Path         string
	Format       Format
	Bytes        int
	Checksum     string
	ChecksumPath string
}

// WriteFile encodes report into path, creating parent directories.
func WriteFile(path string, report *scan.Report, opts FileOptions) (*Written, error) {
	format := opts.Format
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	var buf bytes.Buffer
	if err := Write(&buf, format, report); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create directory: %s", dir), err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, errors.NewFileWriteError(path, err)
	}

	out := &Written{Path: path, Format: format, Bytes: buf.Len()}
	if !opts.Checksum {
		return out, nil
	}

	sum := Checksum(buf.Bytes())
	sidecar := path + ChecksumExtension
	line := fmt.Sprintf("%s  %s\n", sum, filepath.Base(path))
	if err := os.WriteFile(sidecar, []byte(line), 0o644); err != nil {
		return nil, errors.NewFileWriteError(sidecar, err)
	}
	out.Checksum = sum
	out.ChecksumPath = sidecar
	return out, nil
}

// Checksum returns the hex BLAKE3-256 digest of data.
func Checksum(data []byte) string {
	hasher := blake3.New()
	_, _ = hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
