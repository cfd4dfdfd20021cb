package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/render"
	"github.com/felixgeelhaar/sysprobe/internal/sysinfo"
)

func (c *cli) newSysinfoCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sysinfo",
		Short: "Show host information without running probes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := sysinfo.Collect(cmd.Context(), c.opts.Source)

			if asJSON {
				data, err := json.MarshalIndent(info.Map(), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal system info: %w", err)
				}
				fmt.Fprintln(c.opts.Stdout, string(data))
				return nil
			}

			console := render.NewConsole(c.opts.Stdout, render.Options{NoColor: c.app.flags.NoColor})
			return console.SystemInfo(info)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output system information as JSON")
	return cmd
}
