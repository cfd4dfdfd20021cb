package sysinfo

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count with IEC units, e.g. "16 GiB".
func FormatBytes(b uint64) string {
	return humanize.IBytes(b)
}

// FormatUptime renders how long a machine has been up, e.g. "3 hours".
func FormatUptime(d time.Duration) string {
	var boot time.Time
	return strings.TrimSpace(humanize.RelTime(boot, boot.Add(d), "", ""))
}
