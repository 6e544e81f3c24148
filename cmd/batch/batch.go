// Package batch provides the batch command, which applies one edit to a
// selection of regions and commits the result atomically.
package batch

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/project"
	"github.com/tphakala/regionedit/internal/region"
)

// Result lists the regions written by a batch edit.
type Result struct {
	Operation string          `yaml:"operation"`
	Regions   []region.Region `yaml:"regions"`
}

// BoundsResult is the span of a selection.
type BoundsResult struct {
	Empty  bool           `yaml:"empty"`
	Bounds *region.Bounds `yaml:"bounds,omitempty"`
}

// selection holds the flags every batch subcommand shares.
type selection struct {
	tf  cli.TimelineFlags
	ids []string
}

func (s *selection) addFlags(cmd *cobra.Command) {
	cli.AddTimelineFlags(cmd, &s.tf)
	cmd.Flags().StringSliceVarP(&s.ids, "regions", "r", nil, "Comma separated region IDs")
	_ = cmd.MarkFlagRequired("regions")
}

// Command creates the batch command and its subcommands.
func Command(ctx *cli.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply one edit to several regions",
		Long:  `Batch edits either commit for every selected region or not at all. Locked regions are skipped by move, gain, fades and align.`,
	}

	cmd.AddCommand(
		moveCommand(ctx),
		gainCommand(ctx),
		fadesCommand(ctx),
		alignCommand(ctx),
		lockCommand(ctx, "lock", true),
		lockCommand(ctx, "unlock", false),
		colorCommand(ctx),
		duplicateCommand(ctx),
		boundsCommand(ctx),
	)

	return cmd
}

// run loads the timeline, applies fn to the selection and prints and
// saves the result.
func run(ctx *cli.Context, sel *selection, op string, fn project.BatchFunc) error {
	p, err := ctx.LoadProject(sel.tf.Timeline)
	if err != nil {
		return err
	}

	out, err := p.Batch(sel.ids, fn)
	if err != nil {
		return err
	}

	if err := ctx.Print(Result{Operation: op, Regions: out}); err != nil {
		return err
	}
	return ctx.SaveProject(p, sel.tf.Output)
}

func moveCommand(ctx *cli.Context) *cobra.Command {
	var (
		sel   selection
		delta float64
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Shift regions in time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, &sel, "move", func(rs []region.Region) ([]region.Region, error) {
				return region.MoveRegions(rs, delta)
			})
		},
	}
	sel.addFlags(cmd)
	cmd.Flags().Float64Var(&delta, "by", 0, "Time delta in seconds, negative moves left")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func gainCommand(ctx *cli.Context) *cobra.Command {
	var (
		sel        selection
		multiplier float64
	)
	cmd := &cobra.Command{
		Use:   "gain",
		Short: "Multiply region gain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, &sel, "gain", func(rs []region.Region) ([]region.Region, error) {
				return region.AdjustGain(rs, multiplier)
			})
		},
	}
	sel.addFlags(cmd)
	cmd.Flags().Float64Var(&multiplier, "multiplier", 1, "Gain multiplier")
	_ = cmd.MarkFlagRequired("multiplier")
	return cmd
}

func fadesCommand(ctx *cli.Context) *cobra.Command {
	var (
		sel               selection
		fadeIn, fadeOut   float64
		curveIn, curveOut string
	)
	cmd := &cobra.Command{
		Use:   "fades",
		Short: "Set fade-in and fade-out lengths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in, out *region.FadeCurve
			if cmd.Flags().Changed("curve-in") {
				c, err := region.ParseFadeCurve(curveIn)
				if err != nil {
					return err
				}
				in = &c
			}
			if cmd.Flags().Changed("curve-out") {
				c, err := region.ParseFadeCurve(curveOut)
				if err != nil {
					return err
				}
				out = &c
			}

			return run(ctx, &sel, "fades", func(rs []region.Region) ([]region.Region, error) {
				faded, err := region.ApplyFades(rs, fadeIn, fadeOut)
				if err != nil {
					return nil, err
				}
				for i := range faded {
					if faded[i].Locked {
						continue
					}
					if in != nil {
						faded[i].FadeInCurve = *in
					}
					if out != nil {
						faded[i].FadeOutCurve = *out
					}
				}
				return faded, nil
			})
		},
	}
	sel.addFlags(cmd)
	cmd.Flags().Float64Var(&fadeIn, "in", 0, "Fade-in length in seconds")
	cmd.Flags().Float64Var(&fadeOut, "out", 0, "Fade-out length in seconds")
	cmd.Flags().StringVar(&curveIn, "curve-in", "linear", "Fade-in curve: linear, exponential, logarithmic, s-curve")
	cmd.Flags().StringVar(&curveOut, "curve-out", "linear", "Fade-out curve: linear, exponential, logarithmic, s-curve")
	return cmd
}

func alignCommand(ctx *cli.Context) *cobra.Command {
	var (
		sel   selection
		at    float64
		point string
	)
	cmd := &cobra.Command{
		Use:   "align",
		Short: "Line up region starts, centers or ends at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ap, err := region.ParseAlignPoint(point)
			if err != nil {
				return err
			}
			return run(ctx, &sel, "align", func(rs []region.Region) ([]region.Region, error) {
				return region.AlignToTime(rs, at, ap)
			})
		},
	}
	sel.addFlags(cmd)
	cmd.Flags().Float64Var(&at, "at", 0, "Target time in seconds")
	cmd.Flags().StringVar(&point, "point", "start", "Point to align: start, center or end")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func lockCommand(ctx *cli.Context, name string, locked bool) *cobra.Command {
	var sel selection
	cmd := &cobra.Command{
		Use:   name,
		Short: "Set the lock flag on regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, &sel, name, func(rs []region.Region) ([]region.Region, error) {
				return region.SetLocked(rs, locked), nil
			})
		},
	}
	if !locked {
		cmd.Short = "Clear the lock flag on regions"
	}
	sel.addFlags(cmd)
	return cmd
}

func colorCommand(ctx *cli.Context) *cobra.Command {
	var (
		sel   selection
		color string
	)
	cmd := &cobra.Command{
		Use:   "color",
		Short: "Set the display color of regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, &sel, "color", func(rs []region.Region) ([]region.Region, error) {
				return region.SetColor(rs, color), nil
			})
		},
	}
	sel.addFlags(cmd)
	cmd.Flags().StringVar(&color, "color", "", "Color value, empty clears it")
	return cmd
}

func duplicateCommand(ctx *cli.Context) *cobra.Command {
	var (
		sel    selection
		offset float64
	)
	cmd := &cobra.Command{
		Use:   "duplicate",
		Short: "Copy regions, directly after themselves or by --offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, &sel, "duplicate", func(rs []region.Region) ([]region.Region, error) {
				if cmd.Flags().Changed("offset") {
					return region.DuplicateRegionsBy(rs, offset)
				}
				return region.DuplicateRegions(rs), nil
			})
		},
	}
	sel.addFlags(cmd)
	cmd.Flags().Float64Var(&offset, "offset", 0, "Place copies this many seconds after the originals")
	return cmd
}

func boundsCommand(ctx *cli.Context) *cobra.Command {
	var (
		timeline string
		ids      []string
	)
	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the time span of regions, all regions when none are given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.LoadProject(timeline)
			if err != nil {
				return err
			}
			b, ok, err := p.Bounds(ids)
			if err != nil {
				return err
			}
			if !ok {
				return ctx.Print(BoundsResult{Empty: true})
			}
			return ctx.Print(BoundsResult{Bounds: &b})
		},
	}
	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "Path to the timeline YAML file")
	cmd.Flags().StringSliceVarP(&ids, "regions", "r", nil, "Comma separated region IDs")
	_ = cmd.MarkFlagRequired("timeline")
	return cmd
}
