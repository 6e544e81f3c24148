package gesture

import (
	"math"

	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/region"
)

// Edit is one drag frame's change to a region. The set of edits is closed:
// Move, TrimLeft, TrimRight, FadeIn, FadeOut and Slip.
type Edit interface {
	// Delta is the pointer movement in timeline seconds.
	Delta() float64
	isEdit()
}

// Move shifts the region on the timeline.
type Move struct{ Dt float64 }

// TrimLeft moves the left edge, keeping the right edge and its audio fixed.
type TrimLeft struct{ Dt float64 }

// TrimRight moves the right edge.
type TrimRight struct{ Dt float64 }

// FadeIn drags the fade-in handle.
type FadeIn struct{ Dt float64 }

// FadeOut drags the fade-out handle. Dragging right shortens the fade.
type FadeOut struct{ Dt float64 }

// Slip shifts the buffer window under a stationary region.
type Slip struct{ Dt float64 }

func (e Move) Delta() float64      { return e.Dt }
func (e TrimLeft) Delta() float64  { return e.Dt }
func (e TrimRight) Delta() float64 { return e.Dt }
func (e FadeIn) Delta() float64    { return e.Dt }
func (e FadeOut) Delta() float64   { return e.Dt }
func (e Slip) Delta() float64      { return e.Dt }

func (Move) isEdit()      {}
func (TrimLeft) isEdit()  {}
func (TrimRight) isEdit() {}
func (FadeIn) isEdit()    {}
func (FadeOut) isEdit()   {}
func (Slip) isEdit()      {}

// EditFor returns the edit a drag state produces for a time delta. The
// second result is false for states that do not edit on move.
func EditFor(s State, dt float64) (Edit, bool) {
	switch s {
	case Moving:
		return Move{Dt: dt}, true
	case TrimmingLeft:
		return TrimLeft{Dt: dt}, true
	case TrimmingRight:
		return TrimRight{Dt: dt}, true
	case FadingIn:
		return FadeIn{Dt: dt}, true
	case FadingOut:
		return FadeOut{Dt: dt}, true
	case Slipping:
		return Slip{Dt: dt}, true
	default:
		return nil, false
	}
}

func editName(e Edit) string {
	switch e.(type) {
	case Move:
		return "move"
	case TrimLeft:
		return "trim_left"
	case TrimRight:
		return "trim_right"
	case FadeIn:
		return "fade_in"
	case FadeOut:
		return "fade_out"
	case Slip:
		return "slip"
	default:
		return "unknown"
	}
}

// Apply returns r with e applied. Out-of-range drags clamp silently:
// start stays at or after zero, duration at or above cfg.MinDuration and
// fades within half the duration.
//
// src may be nil except for Slip. When given, the resulting buffer window
// must fit inside it or the edit is refused with a data-integrity error.
func Apply(r region.Region, e Edit, src *region.Source, cfg Config) (region.Region, error) {
	if r.Locked {
		return r, errors.New(region.ErrRegionLocked).
			Component("gesture").
			Category(errors.CategoryState).
			RegionContext(r.ID, r.TrackID).
			Operation(editName(e)).
			Build()
	}

	if e == nil || math.IsNaN(e.Delta()) || math.IsInf(e.Delta(), 0) {
		var dt any
		if e != nil {
			dt = e.Delta()
		}
		return r, errors.New(region.ErrInvalidArgument).
			Component("gesture").
			Category(errors.CategoryValidation).
			RegionContext(r.ID, r.TrackID).
			Context("delta", dt).
			Build()
	}

	minDur := cfg.minDuration()
	out := r

	switch e := e.(type) {
	case Move:
		out.StartTime = max(0, r.StartTime+e.Dt)

	case TrimLeft:
		lo := max(-r.StartTime, -r.BufferOffset)
		hi := max(0, min(r.Duration-minDur, r.BufferDuration-minDur))
		d := clampDelta(e.Dt, lo, hi)
		out.StartTime += d
		out.Duration -= d
		out.BufferOffset += d
		out.BufferDuration -= d

	case TrimRight:
		lo := min(0, max(minDur-r.Duration, minDur-r.BufferDuration))
		hi := math.Inf(1)
		if src != nil {
			hi = max(0, src.Duration-(r.BufferOffset+r.BufferDuration))
		}
		d := clampDelta(e.Dt, lo, hi)
		out.Duration += d
		out.BufferDuration += d

	case FadeIn:
		out.FadeIn = min(max(r.FadeIn+e.Dt, 0), r.Duration/2)

	case FadeOut:
		out.FadeOut = min(max(r.FadeOut-e.Dt, 0), r.Duration/2)

	case Slip:
		if src == nil {
			return r, errors.New(region.ErrMissingSource).
				Component("gesture").
				Category(errors.CategoryDataIntegrity).
				RegionContext(r.ID, r.TrackID).
				Operation("slip").
				Context("source_id", r.SourceID).
				Build()
		}
		out.BufferOffset = min(max(r.BufferOffset+e.Dt, 0), max(0, src.Duration-r.BufferDuration))
	}

	out.ClampFades()
	out.SyncSamples()

	if src != nil {
		if err := out.ValidateAgainst(src); err != nil {
			return r, err
		}
	}
	return out, nil
}

// clampDelta limits d to [lo, hi]. Callers keep lo <= 0 <= hi so a zero
// delta is always allowed.
func clampDelta(d, lo, hi float64) float64 {
	return min(max(d, lo), hi)
}
