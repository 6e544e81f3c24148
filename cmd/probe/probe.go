package probe

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/region"
)

// Result is shaped like the sources section of a timeline file so it can
// be pasted into one.
type Result struct {
	Sources []region.Source `yaml:"sources"`
}

// Command creates the probe command.
func Command(ctx *cli.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe FILE...",
		Short: "Read sample rate, channels and duration of WAV and FLAC files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := ctx.Prober().ProbeAll(cmd.Context(), args)
			if err != nil {
				return err
			}
			return ctx.Print(Result{Sources: sources})
		},
	}

	return cmd
}
