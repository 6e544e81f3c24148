package crossfade

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/region"
)

// Result lists the detected overlap zones.
type Result struct {
	Zones []region.Zone `yaml:"zones"`
}

// Command creates the crossfades command.
func Command(ctx *cli.Context) *cobra.Command {
	var (
		timeline   string
		crossTrack bool
	)

	cmd := &cobra.Command{
		Use:     "crossfades",
		Aliases: []string{"crossfade"},
		Short:   "List overlapping region pairs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if crossTrack {
				ctx.Settings.Crossfade.SameTrackOnly = false
			}
			p, err := ctx.LoadProject(timeline)
			if err != nil {
				return err
			}

			zones := p.Crossfades()
			if zones == nil {
				zones = []region.Zone{}
			}
			return ctx.Print(Result{Zones: zones})
		},
	}

	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "Path to the timeline YAML file")
	cmd.Flags().BoolVar(&crossTrack, "cross-track", false, "Also report overlaps between regions on different tracks")
	_ = cmd.MarkFlagRequired("timeline")

	return cmd
}
