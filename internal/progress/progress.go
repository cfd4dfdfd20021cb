// Package progress renders scan progress on a terminal or as plain lines
// for CI logs.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Bar tracks scan progress and draws it. Its Update method is a
// scan.ProgressFunc.
type Bar struct {
	writer      io.Writer
	startTime   time.Time
	mu          sync.Mutex
	showSpinner bool
	spinnerIdx  int
	stopChan    chan struct{}
	stopOnce    sync.Once // Ensures Stop() is only called once
	isCI        bool
	width       int

	current int
	total   int
	label   string
	done    bool
}

// Config holds configuration for the progress bar
type Config struct {
	Writer      io.Writer
	ShowSpinner bool
	IsCI        bool // Set to true in CI/CD environments to disable fancy output
	Width       int  // Bar width in cells, 30 when zero
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewBar creates a progress bar
func NewBar(cfg Config) *Bar {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Width <= 0 {
		cfg.Width = 30
	}

	// Auto-detect CI environment
	if !cfg.IsCI {
		cfg.IsCI = DetectCI()
	}

	return &Bar{
		writer:      cfg.Writer,
		startTime:   time.Now(),
		showSpinner: cfg.ShowSpinner && !cfg.IsCI,
		stopChan:    make(chan struct{}),
		isCI:        cfg.IsCI,
		width:       cfg.Width,
	}
}

// DetectCI reports whether the process runs under a CI system.
func DetectCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// Start begins the spinner animation
func (b *Bar) Start() {
	if b.showSpinner {
		go b.spinnerLoop()
	}
}

// Stop stops the spinner and clears the line
func (b *Bar) Stop() {
	b.stopOnce.Do(func() {
		if b.showSpinner {
			close(b.stopChan)
			b.mu.Lock()
			fmt.Fprintf(b.writer, "\r%s\r", strings.Repeat(" ", 80))
			b.mu.Unlock()
		}
	})
}

// Update records progress. current is the index of the probe about to
// run; the final call carries scan.CompleteLabel.
func (b *Bar) Update(current, total int, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current, b.total, b.label = current, total, label
	b.done = label == scan.CompleteLabel && current == total

	if b.isCI {
		b.printLine()
		return
	}
	b.render()
	if b.done {
		fmt.Fprintln(b.writer)
	}
}

func (b *Bar) spinnerLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.mu.Lock()
			if b.total > 0 && !b.done {
				b.spinnerIdx = (b.spinnerIdx + 1) % len(spinnerFrames)
				b.render()
			}
			b.mu.Unlock()
		}
	}
}

// fraction returns the completed share of the scan.
func (b *Bar) fraction() float64 {
	if b.total <= 0 {
		if b.done {
			return 1
		}
		return 0
	}
	return float64(b.current) / float64(b.total)
}

func (b *Bar) render() {
	progress := b.fraction()
	filled := int(float64(b.width) * progress)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.width-filled)

	prefix := "✓"
	if !b.done {
		prefix = spinnerFrames[b.spinnerIdx]
	}

	fmt.Fprintf(b.writer, "\r%s [%s] %3.0f%% | %d/%d | %-20s | %s",
		prefix,
		bar,
		progress*100,
		b.current,
		b.total,
		truncate(b.label, 20),
		formatDuration(time.Since(b.startTime)),
	)
}

// printLine prints one CI-friendly line per update
func (b *Bar) printLine() {
	if b.done {
		fmt.Fprintf(b.writer, "✓ %s: %d probes in %s\n", scan.CompleteLabel, b.total, formatDuration(time.Since(b.startTime)))
		return
	}
	fmt.Fprintf(b.writer, "▶ [%d/%d] %s\n", b.current+1, b.total, b.label)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
