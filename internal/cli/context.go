// Package cli holds the state shared by the regionedit subcommands: the
// loaded settings, the metrics registry and the result writer.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/regionedit/internal/conf"
	"github.com/tphakala/regionedit/internal/coords"
	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/gesture"
	"github.com/tphakala/regionedit/internal/grid"
	"github.com/tphakala/regionedit/internal/observability"
	"github.com/tphakala/regionedit/internal/project"
	"github.com/tphakala/regionedit/internal/region"
	"github.com/tphakala/regionedit/internal/source"
)

// Context is created by the root command and filled in before any
// subcommand runs.
type Context struct {
	Settings *conf.Settings
	Metrics  *observability.Metrics
	Out      io.Writer

	closers []func() error
}

// NewContext returns a Context writing results to out.
func NewContext(out io.Writer) *Context {
	return &Context{Out: out}
}

// OnClose registers fn to run when the command finishes.
func (c *Context) OnClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close runs the registered closers in reverse order and returns the
// first error.
func (c *Context) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// Viewport returns the configured timeline viewport.
func (c *Context) Viewport() coords.Viewport {
	t := c.Settings.Timeline
	return coords.Viewport{
		Zoom:    coords.ClampZoom(t.Zoom, t.MinZoom, t.MaxZoom),
		ScrollX: t.ScrollX,
	}
}

// Grid builds the configured tempo grid.
func (c *Context) Grid() (*grid.Grid, error) {
	res, err := grid.ParseResolution(c.Settings.Grid.Resolution)
	if err != nil {
		return nil, err
	}
	sig := grid.TimeSignature{BeatsPerBar: c.Settings.Grid.BeatsPerBar, BeatUnit: c.Settings.Grid.BeatUnit}
	return grid.New(c.Settings.Grid.BPM, sig, res)
}

// GestureConfig builds the gesture tolerances and snap grid.
func (c *Context) GestureConfig() (gesture.Config, error) {
	return gesture.ConfigFromSettings(c.Settings)
}

// LoadProject reads a timeline file into a project wired to the metrics.
func (c *Context) LoadProject(path string) (*project.Project, error) {
	opts := []project.Option{
		project.WithCrossfadeOptions(region.CrossfadeOptions{SameTrackOnly: c.Settings.Crossfade.SameTrackOnly}),
	}
	if c.Metrics != nil {
		opts = append(opts, project.WithMetrics(c.Metrics.Edit))
	}
	return project.LoadFile(path, opts...)
}

// SaveProject writes the project back as a timeline document. An empty
// path is a no-op and "-" writes to the result writer.
func (c *Context) SaveProject(p *project.Project, path string) error {
	switch path {
	case "":
		return nil
	case "-":
		return p.WriteYAML(c.Out)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("cli").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	if err := p.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Prober returns a source prober configured from settings.
func (c *Context) Prober() *source.Prober {
	opts := []source.Option{}
	if c.Metrics != nil {
		opts = append(opts, source.WithMetrics(c.Metrics.Edit))
	}
	return source.NewProber(c.Settings.Sources.CacheTTL, c.Settings.Sources.ProbeWorkers, opts...)
}

// Print writes v to the result writer as YAML.
func (c *Context) Print(v any) error {
	enc := yaml.NewEncoder(c.Out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error marshaling result to YAML: %w", err)
	}
	return enc.Close()
}

// TimelineFlags are the input and output flags of commands that edit a
// timeline file.
type TimelineFlags struct {
	Timeline string
	Output   string
}

// AddTimelineFlags registers --timeline (required) and --output on cmd.
func AddTimelineFlags(cmd *cobra.Command, f *TimelineFlags) {
	cmd.Flags().StringVarP(&f.Timeline, "timeline", "t", "", "Path to the timeline YAML file")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "Write the edited timeline to this path, - for stdout")
	_ = cmd.MarkFlagRequired("timeline")
}
