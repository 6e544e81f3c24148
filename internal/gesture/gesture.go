package gesture

import (
	"math"

	"github.com/tphakala/regionedit/internal/conf"
	"github.com/tphakala/regionedit/internal/coords"
	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/grid"
	"github.com/tphakala/regionedit/internal/region"
)

// Sentinel errors
var (
	ErrGestureActive   = errors.NewStd("a gesture is already active")
	ErrNoActiveGesture = errors.NewStd("no active gesture")
	ErrOutsideRegion   = errors.NewStd("pointer is outside the region")
)

// Config holds the hit-test sizes and snapping used by gestures.
type Config struct {
	EdgeTolerancePx float64
	FadeHandlePx    float64
	MinDuration     float64
	// Snap quantizes moves and split points to Grid when both are set.
	Snap bool
	Grid *grid.Grid
}

// DefaultConfig returns the stock tolerances with snapping off.
func DefaultConfig() Config {
	return Config{
		EdgeTolerancePx: 8,
		FadeHandlePx:    20,
		MinDuration:     region.MinDuration,
	}
}

// ConfigFromSettings builds a Config from loaded settings, including the
// snap grid.
func ConfigFromSettings(s *conf.Settings) (Config, error) {
	res, err := grid.ParseResolution(s.Grid.Resolution)
	if err != nil {
		return Config{}, err
	}
	g, err := grid.New(s.Grid.BPM, grid.TimeSignature{BeatsPerBar: s.Grid.BeatsPerBar, BeatUnit: s.Grid.BeatUnit}, res)
	if err != nil {
		return Config{}, err
	}
	return Config{
		EdgeTolerancePx: s.Gesture.EdgeTolerancePx,
		FadeHandlePx:    s.Gesture.FadeHandlePx,
		MinDuration:     s.Gesture.MinDuration,
		Snap:            s.Gesture.Snap,
		Grid:            g,
	}, nil
}

func (c Config) minDuration() float64 {
	if c.MinDuration > 0 {
		return c.MinDuration
	}
	return region.MinDuration
}

func (c Config) snapping() bool {
	return c.Snap && c.Grid != nil
}

// Pointer is a pointer event as reported by the host.
type Pointer struct {
	Tool Tool
	Mods Modifier
	Point
}

// Result is what the host must commit after a gesture step.
type Result struct {
	State   State           `yaml:"state"`
	Updated *region.Region  `yaml:"updated,omitempty"`
	Created []region.Region `yaml:"created,omitempty"`
	Removed []string        `yaml:"removed,omitempty"`
}

// Gesture is the state of one pointer drag, from pointer-down to
// pointer-up. The zero value is idle.
type Gesture struct {
	State    State
	Tool     Tool
	RegionID string
	// LastX is the reference pointer x. Each move measures from it and
	// then replaces it.
	LastX    float64
	Viewport coords.Viewport

	snapshot region.Region
	current  region.Region
	rawStart float64
	created  string
}

// Active reports whether a drag is in progress.
func (g Gesture) Active() bool {
	return g.State.Dragging()
}

// Region returns the region as it stands after the last applied move.
func (g Gesture) Region() region.Region {
	return g.current
}

// Snapshot returns the region as it was at pointer-down.
func (g Gesture) Snapshot() region.Region {
	return g.snapshot
}

// Begin classifies a pointer-down on r and starts a gesture. The split
// tool cuts r immediately and returns an idle gesture with both halves in
// the result.
func Begin(p Pointer, r region.Region, box Box, vp coords.Viewport, cfg Config) (Gesture, Result, error) {
	if vp.Zoom <= 0 || math.IsNaN(vp.Zoom) || math.IsInf(vp.Zoom, 0) {
		return Gesture{}, Result{}, errors.New(region.ErrInvalidArgument).
			Component("gesture").
			Category(errors.CategoryValidation).
			Context("zoom", vp.Zoom).
			Build()
	}

	if !HitTest(p.Point, box, cfg.EdgeTolerancePx) {
		return Gesture{}, Result{}, errors.New(ErrOutsideRegion).
			Component("gesture").
			Category(errors.CategoryValidation).
			RegionContext(r.ID, r.TrackID).
			Context("x", p.X).
			Context("y", p.Y).
			Build()
	}

	if r.Locked {
		return Gesture{}, Result{}, errors.New(region.ErrRegionLocked).
			Component("gesture").
			Category(errors.CategoryState).
			RegionContext(r.ID, r.TrackID).
			Context("tool", p.Tool.String()).
			Build()
	}

	state := Classify(p.Tool, p.Mods, p.Point, box, cfg)

	if state == Splitting {
		at := vp.ToTime(p.X)
		if cfg.snapping() {
			at = cfg.Grid.Snap(at, vp.Zoom)
		}
		a, b, err := region.Split(r, at)
		if err != nil {
			return Gesture{}, Result{}, err
		}
		return Gesture{Tool: p.Tool}, Result{
			State:   Idle,
			Created: []region.Region{a, b},
			Removed: []string{r.ID},
		}, nil
	}

	g := Gesture{
		State:    state,
		Tool:     p.Tool,
		RegionID: r.ID,
		LastX:    p.X,
		Viewport: vp,
		snapshot: r,
		current:  r,
		rawStart: r.StartTime,
	}
	return g, Result{State: state}, nil
}

// Move handles a pointer move to x. src is the region's source, used for
// slip bounds and window checks; it may be nil for other states.
//
// On error the gesture is returned unchanged and nothing should be
// committed.
func (g Gesture) Move(x float64, src *region.Source, cfg Config) (Gesture, Result, error) {
	if !g.Active() {
		return g, Result{}, errors.New(ErrNoActiveGesture).
			Component("gesture").
			Category(errors.CategoryState).
			Build()
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return g, Result{}, errors.New(region.ErrInvalidArgument).
			Component("gesture").
			Category(errors.CategoryValidation).
			RegionContext(g.RegionID, g.current.TrackID).
			Context("x", x).
			Build()
	}

	dt := g.Viewport.DeltaTime(x - g.LastX)
	next := g
	next.LastX = x

	if g.State == Duplicating {
		dup := region.DuplicateBy(g.current, dt)
		dup.Name = g.current.Name + " copy"
		next.rawStart = g.current.StartTime + dt
		if cfg.snapping() {
			dup.StartTime = max(0, cfg.Grid.Snap(next.rawStart, g.Viewport.Zoom))
			dup.SyncSamples()
		}
		if src != nil {
			if err := dup.ValidateAgainst(src); err != nil {
				return g, Result{}, err
			}
		}
		next.State = Moving
		next.RegionID = dup.ID
		next.created = dup.ID
		next.current = dup
		return next, Result{State: Moving, Created: []region.Region{dup}}, nil
	}

	if g.State == Moving && cfg.snapping() {
		next.rawStart = g.rawStart + dt
		target := max(0, cfg.Grid.Snap(next.rawStart, g.Viewport.Zoom))
		dt = target - g.current.StartTime
	}

	edit, _ := EditFor(g.State, dt)
	updated, err := Apply(g.current, edit, src, cfg)
	if err != nil {
		return g, Result{}, err
	}
	next.current = updated

	return next, Result{State: next.State, Updated: &updated}, nil
}

// End finishes the gesture on pointer-up. Every move was already
// committed, so the result only repeats the final region.
func (g Gesture) End() (Gesture, Result, error) {
	if !g.Active() {
		return g, Result{}, errors.New(ErrNoActiveGesture).
			Component("gesture").
			Category(errors.CategoryState).
			Build()
	}
	final := g.current
	return Gesture{Tool: g.Tool}, Result{State: Idle, Updated: &final}, nil
}

// Cancel abandons the gesture. The result restores the pre-gesture
// region and removes a copy made by an alt-drag.
func (g Gesture) Cancel() (Gesture, Result, error) {
	if !g.Active() {
		return g, Result{}, errors.New(ErrNoActiveGesture).
			Component("gesture").
			Category(errors.CategoryState).
			Build()
	}
	res := Result{State: Idle}
	snap := g.snapshot
	res.Updated = &snap
	if g.created != "" {
		res.Removed = []string{g.created}
	}
	return Gesture{Tool: g.Tool}, res, nil
}
