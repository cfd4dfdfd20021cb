package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/config"
)

// CommandContext holds the persistent flags shared by every command.
type CommandContext struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	LogFile    string
	NoColor    bool
}

// NewCommandContext extracts the persistent flags from cmd.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		LogFile:    logFile,
		NoColor:    noColor,
	}, nil
}

// Apply overrides the log section of cfg with the flags that were set.
func (c *CommandContext) Apply(cfg *config.Config) {
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
}
