package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sysprobe/internal/render"
	"github.com/felixgeelhaar/sysprobe/internal/scan"
)

func (c *cli) newListCommand() *cobra.Command {
	var category string
	var noAdmin bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"probes"},
		Short:   "List registered probes",
		Long: `List every registered probe with its category, whether it needs
administrator rights and whether it can run on this machine right now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, _ := c.environment(noAdmin || c.app.cfg.Scan.NoAdmin)

			probes := c.app.registry.Probes()
			if category != "" {
				filtered := probes[:0:0]
				for _, p := range probes {
					if p.Category() == scan.Category(category) {
						filtered = append(filtered, p)
					}
				}
				probes = filtered
			}

			console := render.NewConsole(c.opts.Stdout, render.Options{NoColor: c.app.flags.NoColor})
			return console.Probes(probes, env)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list probes in this category (hardware, security, network, system)")
	cmd.Flags().BoolVar(&noAdmin, "no-admin", false, "report availability as a standard user")
	return cmd
}

func (c *cli) newModesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List scan modes and the probes they select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console := render.NewConsole(c.opts.Stdout, render.Options{NoColor: c.app.flags.NoColor})
			return console.Modes(c.app.registry)
		},
	}
}
