// Package export writes scan reports to files and streams in machine- and
// human-readable formats.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Format is an export format name.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatSARIF    Format = "sarif"
)

// Formats returns the supported formats in display order.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatCSV, FormatHTML, FormatMarkdown, FormatSARIF}
}

func formatNames() []string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return names
}

// Extension returns the file extension used for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ParseFormat parses a format name. Common aliases such as "yml" and "md"
// are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", errors.NewExportFormatError(s, formatNames())
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.NewExportFormatError(path, formatNames()).
			WithSuggestion("Add a file extension or pass --format")
	}
	return ParseFormat(ext)
}

// DefaultPath returns a timestamped report path in dir.
func DefaultPath(dir string, f Format, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("sysprobe_%s.%s", now.Format("20060102_150405"), f.Extension()))
}

// Write encodes report to w in format f.
func Write(w io.Writer, f Format, report *scan.Report) error {
	if report == nil {
		return errors.New(errors.ErrCodeExportFailed, "no report to export")
	}

	var err error
	switch f {
	case FormatJSON:
		err = writeJSON(w, report)
	case FormatYAML:
		err = writeYAML(w, report)
	case FormatCSV:
		err = writeCSV(w, report)
	case FormatHTML:
		err = writeHTML(w, report)
	case FormatMarkdown:
		err = writeMarkdown(w, report)
	case FormatSARIF:
		err = writeSARIF(w, report)
	default:
		return errors.NewExportFormatError(string(f), formatNames())
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, fmt.Sprintf("failed to encode %s report", f), err)
	}
	return nil
}
