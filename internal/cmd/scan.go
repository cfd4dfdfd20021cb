package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/exitcode"
	"github.com/felixgeelhaar/sysprobe/internal/export"
	"github.com/felixgeelhaar/sysprobe/internal/metrics"
	"github.com/felixgeelhaar/sysprobe/internal/progress"
	"github.com/felixgeelhaar/sysprobe/internal/render"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

type scanFlags struct {
	mode        string
	output      string
	format      string
	timeout     time.Duration
	noAdmin     bool
	failOn      string
	checksum    bool
	noProgress  bool
	issuesOnly  bool
	metricsFile string
}

func (f *scanFlags) register(cmd *cobra.Command, withMode bool) {
	flags := cmd.Flags()
	if withMode {
		flags.StringVarP(&f.mode, "mode", "m", "", "scan mode (default from config, usually quick)")
	}
	flags.StringVarP(&f.output, "output", "o", "", "write the report to this file or directory")
	flags.StringVar(&f.format, "format", "", "export format: json, yaml, csv, html, markdown, sarif")
	flags.DurationVar(&f.timeout, "timeout", 0, "per-probe timeout, 0 disables (default from config)")
	flags.BoolVar(&f.noAdmin, "no-admin", false, "run as a standard user even when elevated")
	flags.StringVar(&f.failOn, "fail-on", "", "exit non-zero on: critical, warning, none")
	flags.BoolVar(&f.checksum, "checksum", false, "write a BLAKE3 checksum next to the report file")
	flags.BoolVar(&f.noProgress, "no-progress", false, "hide the progress bar")
	flags.BoolVar(&f.issuesOnly, "issues-only", false, "only show warning and critical findings")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "also write Prometheus metrics for node_exporter's textfile collector")
}

func (c *cli) newScanCommand() *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a diagnostic scan",
		Long: `Run every probe selected by a scan mode and print the report.

Modes are quick, full, hardware, security and network, plus any custom
modes defined in the config file. Probes that need administrator rights
or a missing tool are skipped and reported as unavailable.

With --format and no --output the report is written to stdout in that
format. With --output the console report is printed and the file written;
the format then follows --format or the file extension.`,
		Example: `  sysprobe scan
  sysprobe scan --mode security --fail-on warning
  sysprobe scan -m full -o report.html --checksum
  sysprobe scan --format sarif > sysprobe.sarif`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runScan(cmd, f)
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *cli) newShortcutCommand(mode string) *cobra.Command {
	f := &scanFlags{mode: mode}
	cmd := &cobra.Command{
		Use:   mode,
		Short: fmt.Sprintf("Run a %s scan (same as scan --mode %s)", mode, mode),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runScan(cmd, f)
		},
	}
	f.register(cmd, false)
	return cmd
}

func (c *cli) runScan(cmd *cobra.Command, f *scanFlags) error {
	a := c.app
	ctx := cmd.Context()

	mode := f.mode
	if mode == "" {
		mode = a.cfg.Scan.Mode
	}
	if !a.registry.HasMode(mode) {
		return errors.NewUnknownModeError(mode, a.registry.Modes())
	}

	failOnValue := f.failOn
	if failOnValue == "" {
		failOnValue = a.cfg.Scan.FailOn
	}
	failOn, err := exitcode.ParseFailOn(failOnValue)
	if err != nil {
		return err
	}

	var format export.Format
	if f.format != "" {
		if format, err = export.ParseFormat(f.format); err != nil {
			return err
		}
	}

	timeout := a.cfg.Scan.ProbeTimeout
	if cmd.Flags().Changed("timeout") {
		timeout = f.timeout
	}

	env, status := c.environment(f.noAdmin || a.cfg.Scan.NoAdmin)
	engine := scan.NewEngine(a.registry, env).WithTimeout(timeout).WithLogger(a.logger)

	var onProgress scan.ProgressFunc
	var bar *progress.Bar
	if !f.noProgress {
		isCI := progress.DetectCI()
		bar = progress.NewBar(progress.Config{
			Writer:      c.opts.Stderr,
			ShowSpinner: !isCI,
			IsCI:        isCI,
		})
		bar.Start()
		defer bar.Stop()
		onProgress = bar.Update
	}

	report := engine.RunScan(ctx, mode, onProgress)
	if bar != nil {
		bar.Stop()
	}

	info := sysinfo.Collect(ctx, c.opts.Source).Map()
	info["privilege"] = status.Label()
	report.SystemInfo = info

	if f.metricsFile != "" {
		if err := metrics.WriteTextfile(f.metricsFile, report); err != nil {
			return err
		}
		a.logger.Info("metrics written", "path", f.metricsFile)
	}

	if format != "" && f.output == "" {
		if err := export.Write(c.opts.Stdout, format, report); err != nil {
			return err
		}
		return exitcode.FromReport(report, failOn)
	}

	console := render.NewConsole(c.opts.Stdout, render.Options{
		NoColor:    a.flags.NoColor,
		IssuesOnly: f.issuesOnly,
	})
	if err := console.Report(report); err != nil {
		return err
	}

	if f.output != "" {
		path, pathFormat, err := resolveOutput(f.output, format, a.cfg.Export, time.Now())
		if err != nil {
			return err
		}
		written, err := export.WriteFile(path, report, export.FileOptions{
			Format:   pathFormat,
			Checksum: f.checksum || a.cfg.Export.Checksum,
		})
		if err != nil {
			return err
		}
		a.logger.Info("report exported", "path", written.Path, "format", string(written.Format), "bytes", written.Bytes)
		fmt.Fprintf(c.opts.Stderr, "Report saved: %s\n", written.Path)
		if written.ChecksumPath != "" {
			fmt.Fprintf(c.opts.Stderr, "Checksum:     %s\n", written.ChecksumPath)
		}
	}

	return exitcode.FromReport(report, failOn)
}

// resolveOutput turns --output into a file path. An existing directory
// receives a timestamped file in format, or the configured default format.
func resolveOutput(output string, format export.Format, cfg config.ExportConfig, now time.Time) (string, export.Format, error) {
	info, err := os.Stat(output)
	if err != nil || !info.IsDir() {
		return output, format, nil
	}
	if format == "" {
		f, err := export.ParseFormat(cfg.Format)
		if err != nil {
			return "", "", err
		}
		format = f
	}
	return export.DefaultPath(output, format, now), format, nil
}
