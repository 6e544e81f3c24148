package split

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/region"
)

// Result is the pair of regions that replaced the split one.
type Result struct {
	SplitTime float64       `yaml:"split_time"`
	Left      region.Region `yaml:"left"`
	Right     region.Region `yaml:"right"`
}

// Command creates the split command.
func Command(ctx *cli.Context) *cobra.Command {
	var (
		tf       cli.TimelineFlags
		regionID string
		at       float64
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a region at a timeline position",
		Long:  `Cut one region in two at --at seconds. With --snap the cut is moved to the nearest grid line first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.LoadProject(tf.Timeline)
			if err != nil {
				return err
			}

			t := at
			if ctx.Settings.Gesture.Snap {
				g, err := ctx.Grid()
				if err != nil {
					return err
				}
				t = g.Snap(at, ctx.Viewport().Zoom)
			}

			left, right, err := p.Split(regionID, t)
			if err != nil {
				return err
			}
			if err := ctx.Print(Result{SplitTime: t, Left: left, Right: right}); err != nil {
				return err
			}
			return ctx.SaveProject(p, tf.Output)
		},
	}

	cli.AddTimelineFlags(cmd, &tf)
	cmd.Flags().StringVarP(&regionID, "region", "r", "", "ID of the region to split")
	cmd.Flags().Float64Var(&at, "at", 0, "Split time in seconds")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}
