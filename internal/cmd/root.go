package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/config"
	"github.com/felixgeelhaar/sysprobe/internal/log"
	"github.com/felixgeelhaar/sysprobe/internal/privilege"
	"github.com/felixgeelhaar/sysprobe/internal/probes"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
	"github.com/felixgeelhaar/sysprobe/internal/version"
)

// skipSetup marks commands that run without loading configuration.
const skipSetup = "sysprobe/skip-setup"

// Options holds the process boundaries of the CLI. Zero fields fall back
// to the real process: os.Stdout, os.Stderr, the gopsutil source and
// privilege.Detect.
type Options struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Source    sysinfo.Source
	Privilege func(noAdmin bool) privilege.Status
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Source == nil {
		o.Source = sysinfo.Host()
	}
	if o.Privilege == nil {
		o.Privilege = privilege.Detect
	}
	return o
}

// app is what a command needs once configuration is loaded.
type app struct {
	flags    *CommandContext
	cfg      *config.Config
	logger   *log.Logger
	registry *scan.Registry
}

type cli struct {
	opts Options
	app  *app
}

// NewRootCommand builds the sysprobe command tree.
func NewRootCommand(opts Options) *cobra.Command {
	c := &cli{opts: opts.withDefaults()}

	root := &cobra.Command{
		Use:   "sysprobe",
		Short: "Cross-platform system diagnostics",
		Long: `sysprobe runs a set of hardware, security, network and system probes
against the local machine, grades what it finds and writes a report to the
terminal or to JSON, YAML, CSV, HTML, Markdown or SARIF files.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}
	root.SetOut(c.opts.Stdout)
	root.SetErr(c.opts.Stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default ./sysprobe.yaml, then $HOME/.sysprobe/config.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	pf.Bool("no-color", false, "disable colored output")

	root.AddCommand(c.newScanCommand())
	for _, mode := range scan.StandardModes() {
		root.AddCommand(c.newShortcutCommand(mode))
	}
	root.AddCommand(
		c.newListCommand(),
		c.newModesCommand(),
		c.newTUICommand(),
		c.newMonitorCommand(),
		c.newServeCommand(),
		c.newSysinfoCommand(),
		c.newVersionCommand(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands pass on to
// the scan engine so an interrupt cancels the remaining probes.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand(Options{}).ExecuteContext(ctx)
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] != "" {
		return nil
	}

	flags, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader(flags.ConfigPath).Load()
	if err != nil {
		return err
	}
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = log.NewOutput(c.opts.Stderr)
	logCfg.ServiceVersion = version.Version
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	registry, err := probes.NewRegistry(cfg, c.opts.Source)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		"mode", cfg.Scan.Mode,
		"probes", registry.Count(),
		"modes", len(registry.Modes()),
	)

	c.app = &app{
		flags:    flags,
		cfg:      cfg,
		logger:   logger,
		registry: registry,
	}
	return nil
}

func (c *cli) teardown(*cobra.Command, []string) error {
	if c.app == nil {
		return nil
	}
	return c.app.logger.Close()
}

// environment returns the probe environment for a run.
func (c *cli) environment(noAdmin bool) (scan.Environment, privilege.Status) {
	status := c.opts.Privilege(noAdmin)
	return scan.Environment{Admin: status.Admin}, status
}
