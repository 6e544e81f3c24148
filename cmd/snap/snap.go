package snap

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/grid"
)

// Point describes one quantized time.
type Point struct {
	Time      float64        `yaml:"time"`
	Snapped   float64        `yaml:"snapped"`
	Interval  float64        `yaml:"interval"`
	Alignment grid.Alignment `yaml:"alignment"`
	Position  string         `yaml:"position"` // bar.beat of the snapped time
}

// Result holds the quantized times and, when a range was given, the grid
// lines inside it.
type Result struct {
	BPM        float64     `yaml:"bpm"`
	Signature  string      `yaml:"signature"`
	Resolution string      `yaml:"resolution"`
	Zoom       float64     `yaml:"zoom"`
	Points     []Point     `yaml:"points,omitempty"`
	Lines      []grid.Line `yaml:"lines,omitempty"`
}

// Command creates the snap command.
func Command(ctx *cli.Context) *cobra.Command {
	var from, to float64

	cmd := &cobra.Command{
		Use:   "snap [time...]",
		Short: "Quantize times to the tempo grid",
		Long: `Snap each time in seconds to the nearest grid line at the current zoom
and report its musical position. With --to the grid lines in [--from, --to] are listed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ctx.Grid()
			if err != nil {
				return err
			}
			zoom := ctx.Viewport().Zoom

			res := Result{
				BPM:        g.BPM(),
				Signature:  g.Signature().String(),
				Resolution: g.Resolution().String(),
				Zoom:       zoom,
			}

			for _, arg := range args {
				t, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return errors.New(err).
						Component("cli").
						Category(errors.CategoryValidation).
						Context("time", arg).
						Build()
				}
				snapped := g.Snap(t, zoom)
				res.Points = append(res.Points, Point{
					Time:      t,
					Snapped:   snapped,
					Interval:  g.Interval(zoom),
					Alignment: g.Classify(snapped, zoom),
					Position:  g.Position(snapped).String(),
				})
			}

			if to > from {
				res.Lines = g.Lines(from, to, zoom)
			}

			return ctx.Print(res)
		},
	}

	cmd.Flags().Float64Var(&from, "from", 0, "Start of the grid line range in seconds")
	cmd.Flags().Float64Var(&to, "to", 0, "End of the grid line range in seconds")

	return cmd
}
