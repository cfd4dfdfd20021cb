package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

// Adapter bridges between the scan engine and the TUI. The engine runs on
// a worker goroutine and its progress reaches the program through Send.
type Adapter struct {
	engine  *scan.Engine
	mode    string
	options []tea.ProgramOption
}

// NewAdapter creates a new TUI adapter
func NewAdapter(engine *scan.Engine, mode string, options ...tea.ProgramOption) *Adapter {
	return &Adapter{
		engine:  engine,
		mode:    mode,
		options: options,
	}
}

// Run starts the program and the scan and blocks until both have
// finished. Quitting the TUI early cancels the scan; the partial report
// is still returned.
func (a *Adapter) Run(ctx context.Context) (*scan.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(a.mode).WithCancel(cancel)
	program := tea.NewProgram(model, a.options...)

	a.engine.WithResultHandler(func(r *scan.Result) {
		program.Send(ResultMsg{Result: r})
	})
	defer a.engine.WithResultHandler(nil)

	reports := make(chan *scan.Report, 1)
	go func() {
		report := a.engine.RunScan(ctx, a.mode, func(current, total int, label string) {
			if label == scan.CompleteLabel {
				return
			}
			program.Send(ProgressMsg{Current: current, Total: total, Label: label})
		})
		reports <- report
		program.Send(ScanCompleteMsg{Report: report})
	}()

	final, err := program.Run()
	if err != nil {
		cancel()
		return <-reports, fmt.Errorf("TUI error: %w", err)
	}

	// Quitting before the engine finishes cancels the remaining probes.
	if m, ok := final.(Model); ok && m.Aborted() {
		cancel()
	}
	return <-reports, nil
}
