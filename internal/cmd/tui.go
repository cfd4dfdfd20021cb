package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/exitcode"
	"github.com/felixgeelhaar/sysprobe/internal/export"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
	"github.com/felixgeelhaar/sysprobe/internal/tui"
)

func (c *cli) newTUICommand() *cobra.Command {
	var mode, output string
	var noAdmin bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run a scan in the interactive terminal UI",
		Long: `Pick a scan mode, watch the probes run and review the summary in a
full-screen terminal UI. Press q to stop early; probes that have not
started are recorded as cancelled. Afterwards the report can be saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			ctx := cmd.Context()

			if mode == "" {
				mode = a.cfg.Scan.Mode
				if tui.ShouldPrompt() {
					picked, err := tui.PickMode(modeOptions(a.registry), mode)
					if err != nil {
						return err
					}
					mode = picked
				}
			}
			if !a.registry.HasMode(mode) {
				return errors.NewUnknownModeError(mode, a.registry.Modes())
			}
			failOn, err := exitcode.ParseFailOn(a.cfg.Scan.FailOn)
			if err != nil {
				return err
			}

			env, status := c.environment(noAdmin || a.cfg.Scan.NoAdmin)
			engine := scan.NewEngine(a.registry, env).
				WithTimeout(a.cfg.Scan.ProbeTimeout).
				WithLogger(a.logger)

			report, err := tui.NewAdapter(engine, mode).Run(ctx)
			if err != nil {
				return err
			}

			info := sysinfo.Collect(ctx, c.opts.Source).Map()
			info["privilege"] = status.Label()
			report.SystemInfo = info

			path := output
			if path == "" && tui.ShouldPrompt() {
				save, err := tui.PromptForConfirmation("Save the report?", false)
				if err != nil {
					return err
				}
				if save {
					names := make([]string, 0, len(export.Formats()))
					for _, f := range export.Formats() {
						names = append(names, string(f))
					}
					picked, err := tui.PromptForSelect("Report format", names, a.cfg.Export.Format)
					if err != nil {
						return err
					}
					format, err := export.ParseFormat(picked)
					if err != nil {
						return err
					}
					path = export.DefaultPath(a.cfg.Export.Dir, format, time.Now())
				}
			}
			if path != "" {
				written, err := export.WriteFile(path, report, export.FileOptions{Checksum: a.cfg.Export.Checksum})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.opts.Stderr, "Report saved: %s\n", written.Path)
			}

			return exitcode.FromReport(report, failOn)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "scan mode; prompts when omitted")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file")
	cmd.Flags().BoolVar(&noAdmin, "no-admin", false, "run as a standard user even when elevated")
	return cmd
}

// modeOptions labels every known mode with the number of probes it runs.
func modeOptions(registry *scan.Registry) []tui.ModeOption {
	modes := registry.Modes()
	options := make([]tui.ModeOption, 0, len(modes))
	for _, m := range modes {
		options = append(options, tui.ModeOption{
			Name:  m,
			Label: fmt.Sprintf("%-10s %d probes", m, len(registry.SelectForMode(m))),
		})
	}
	return options
}
