package configcmd

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/conf"
)

// Command creates the config command.
func Command(ctx *cli.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  `Print the settings after defaults, the config file, REGIONEDIT_ environment variables and flags are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return conf.WriteYAML(ctx.Out, ctx.Settings)
		},
	}
}
