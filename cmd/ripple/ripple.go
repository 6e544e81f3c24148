package ripple

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/region"
)

// Result reports how far each track closed up.
type Result struct {
	Amounts map[string]float64 `yaml:"amounts"`
	Regions []region.Region    `yaml:"regions"`
}

// Command creates the ripple command.
func Command(ctx *cli.Context) *cobra.Command {
	var (
		tf        cli.TimelineFlags
		trackID   string
		ids       []string
		allTracks bool
	)

	cmd := &cobra.Command{
		Use:   "ripple",
		Short: "Delete regions and close the gap",
		Long: `Remove the listed regions, on any track, and shift later regions left by the
span they covered. Without --all-tracks only --track is shifted, by the span of
every deleted region; with it each track is shifted by its own span.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.LoadProject(tf.Timeline)
			if err != nil {
				return err
			}

			res := Result{Amounts: map[string]float64{}}
			if allTracks {
				if res.Amounts, err = p.RippleDeleteAll(ids); err != nil {
					return err
				}
				res.Regions = p.Regions()
			} else {
				amount, err := p.RippleDelete(ids, trackID)
				if err != nil {
					return err
				}
				res.Amounts[trackID] = amount
				res.Regions = p.RegionsOnTrack(trackID)
			}

			if err := ctx.Print(res); err != nil {
				return err
			}
			return ctx.SaveProject(p, tf.Output)
		},
	}

	cli.AddTimelineFlags(cmd, &tf)
	cmd.Flags().StringVar(&trackID, "track", "", "Track to ripple")
	cmd.Flags().StringSliceVar(&ids, "regions", nil, "Comma separated region IDs to delete")
	cmd.Flags().BoolVar(&allTracks, "all-tracks", false, "Ripple every track that loses a region")
	_ = cmd.MarkFlagRequired("regions")
	cmd.MarkFlagsOneRequired("track", "all-tracks")
	cmd.MarkFlagsMutuallyExclusive("track", "all-tracks")

	return cmd
}
