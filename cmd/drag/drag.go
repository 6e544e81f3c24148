// Package drag replays a pointer gesture on a region: pointer down at one
// x position, a series of moves and a release or cancel.
package drag

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/gesture"
	"github.com/tphakala/regionedit/internal/project"
	"github.com/tphakala/regionedit/internal/region"
)

const defaultTrackHeight = 100

// Step is the outcome of one pointer event.
type Step struct {
	Event   string          `yaml:"event"`
	X       float64         `yaml:"x,omitempty"`
	State   gesture.State   `yaml:"state"`
	Updated *region.Region  `yaml:"updated,omitempty"`
	Created []region.Region `yaml:"created,omitempty"`
	Removed []string        `yaml:"removed,omitempty"`
}

// Result traces the whole gesture.
type Result struct {
	Tool    string          `yaml:"tool"`
	Cursor  gesture.Cursor  `yaml:"cursor"`
	Steps   []Step          `yaml:"steps"`
	Regions []region.Region `yaml:"regions"`
}

type options struct {
	tf          cli.TimelineFlags
	regionID    string
	tool        string
	mods        string
	downX       float64
	y           float64
	trackHeight float64
	moves       []float64
	cancel      bool
}

// Command creates the drag command.
func Command(ctx *cli.Context) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Replay a pointer drag on a region",
		Long: `Press the pointer at --at (pixels) on a region, move it through each --to
position and release it, or cancel with --cancel. The pointer action is
chosen from the tool, modifiers and position the same way an editor would.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, &opts)
		},
	}

	cli.AddTimelineFlags(cmd, &opts.tf)
	cmd.Flags().StringVarP(&opts.regionID, "region", "r", "", "ID of the region under the pointer")
	cmd.Flags().StringVar(&opts.tool, "tool", "select", "Active tool: select, range, split, trim, fade, pencil, zoom, multi")
	cmd.Flags().StringVar(&opts.mods, "mods", "", "Held modifiers, e.g. alt or shift+ctrl")
	cmd.Flags().Float64Var(&opts.downX, "at", 0, "Pointer-down x position in pixels")
	cmd.Flags().Float64Var(&opts.y, "y", defaultTrackHeight/2, "Pointer y position within the track lane")
	cmd.Flags().Float64Var(&opts.trackHeight, "track-height", defaultTrackHeight, "Track lane height in pixels")
	cmd.Flags().Float64SliceVar(&opts.moves, "to", nil, "Pointer-move x positions in pixels")
	cmd.Flags().BoolVar(&opts.cancel, "cancel", false, "Cancel instead of releasing")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func run(ctx *cli.Context, opts *options) error {
	tool, err := gesture.ParseTool(opts.tool)
	if err != nil {
		return err
	}
	mods, err := gesture.ParseModifiers(opts.mods)
	if err != nil {
		return err
	}
	cfg, err := ctx.GestureConfig()
	if err != nil {
		return err
	}

	p, err := ctx.LoadProject(opts.tf.Timeline)
	if err != nil {
		return err
	}
	r, err := p.Region(opts.regionID)
	if err != nil {
		return err
	}

	vp := ctx.Viewport()
	box := gesture.RegionBox(r, vp, 0, opts.trackHeight)
	ptr := gesture.Pointer{Tool: tool, Mods: mods, Point: gesture.Point{X: opts.downX, Y: opts.y}}

	controllerOpts := []gesture.ControllerOption{}
	if ctx.Metrics != nil {
		controllerOpts = append(controllerOpts, gesture.WithRecorder(ctx.Metrics.Edit))
	}
	ctrl := gesture.NewController(cfg, controllerOpts...)

	out := Result{
		Tool:   tool.String(),
		Cursor: gesture.CursorFor(tool, mods, ptr.Point, box, r.Locked, cfg),
	}

	res, err := ctrl.PointerDown(ptr, r, box, vp)
	if err != nil {
		return err
	}
	if err := record(p, &out, "down", opts.downX, res); err != nil {
		return err
	}

	for _, x := range opts.moves {
		g, active := ctrl.Active()
		if !active {
			break
		}
		res, err := ctrl.PointerMove(x, p.SourceFor(g.Region()))
		if err != nil {
			// Nothing is saved when a step is refused.
			return err
		}
		if err := record(p, &out, "move", x, res); err != nil {
			return err
		}
	}

	if _, active := ctrl.Active(); active {
		event, finish := "up", ctrl.PointerUp
		if opts.cancel {
			event, finish = "cancel", ctrl.Cancel
		}
		res, err := finish()
		if err != nil {
			return err
		}
		if err := record(p, &out, event, 0, res); err != nil {
			return err
		}
	}

	out.Regions = p.RegionsOnTrack(r.TrackID)
	if err := ctx.Print(out); err != nil {
		return err
	}
	return ctx.SaveProject(p, opts.tf.Output)
}

// record commits one gesture step to the project and appends it to the trace.
func record(p *project.Project, out *Result, event string, x float64, res gesture.Result) error {
	if err := p.ApplyGesture(res); err != nil {
		return err
	}
	out.Steps = append(out.Steps, Step{
		Event:   event,
		X:       x,
		State:   res.State,
		Updated: res.Updated,
		Created: res.Created,
		Removed: res.Removed,
	})
	return nil
}
