package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/tui"
)

func (c *cli) newMonitorCommand() *cobra.Command {
	var interval, duration time.Duration

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Show live CPU, memory and disk load",
		Long: `Open a full-screen dashboard that samples CPU load and temperature,
memory and disk fill levels every interval. Values are colored with the
same thresholds the probes grade against. Press q to quit.`,
		Example: `  sysprobe monitor
  sysprobe monitor --interval 2s --duration 1m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return errors.NewConfigInvalidError(fmt.Sprintf("--interval must be positive, got %s", interval))
			}
			model := tui.NewMonitor(c.opts.Source, c.app.cfg.Thresholds, interval, duration)
			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(c.opts.Stdout),
			)
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("monitor: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "time between readings")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long, 0 runs until quit")
	return cmd
}
