package cmd

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/errors"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/server"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

func (c *cli) newServeCommand() *cobra.Command {
	var mode, addr string
	var interval time.Duration
	var noAdmin bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Scan on a schedule and serve metrics and reports over HTTP",
		Long: `Run a scan every --interval and serve the results:

  /metrics        Prometheus metrics for the last scan
  /report         last report (?format=json|yaml|csv|html|markdown|sarif)
  /health/live    liveness
  /health/ready   readiness, 200 once the first scan is published

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  sysprobe serve --mode security --interval 30m
  sysprobe serve --addr 127.0.0.1:9164`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			ctx := cmd.Context()

			if mode == "" {
				mode = a.cfg.Scan.Mode
			}
			if !a.registry.HasMode(mode) {
				return errors.NewUnknownModeError(mode, a.registry.Modes())
			}

			env, status := c.environment(noAdmin || a.cfg.Scan.NoAdmin)
			engine := scan.NewEngine(a.registry, env).
				WithTimeout(a.cfg.Scan.ProbeTimeout).
				WithLogger(a.logger)

			srv := server.NewServer(engine, server.Config{
				Address:  addr,
				Mode:     mode,
				Interval: interval,
				Logger:   a.logger,
				OnReport: func(r *scan.Report) {
					info := sysinfo.Collect(ctx, c.opts.Source).Map()
					info["privilege"] = status.Label()
					r.SystemInfo = info
				},
			})

			scanCtx, stopScans := context.WithCancel(ctx)
			defer stopScans()
			go srv.RunSchedule(scanCtx)

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				if !stderrors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
				a.logger.Info("shutting down")
			}

			stopScans()
			if err := srv.Shutdown(context.Background()); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "scan mode (default from config)")
	cmd.Flags().StringVar(&addr, "addr", ":9164", "listen address")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "time between scans")
	cmd.Flags().BoolVar(&noAdmin, "no-admin", false, "run as a standard user even when elevated")
	return cmd
}
