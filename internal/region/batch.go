package region

import (
	"slices"
	"strings"
)

// Geometric batch edits (move, gain, fades, align) leave locked regions
// untouched. Every function returns a new slice and never modifies its
// input. Non-finite arguments reject the whole call.

// MoveRegions shifts every unlocked region by dt, stopping at time zero.
func MoveRegions(regions []Region, dt float64) ([]Region, error) {
	if !finite(dt) {
		return nil, invalidArgument("move_regions", "delta", dt)
	}
	return mapUnlocked(regions, func(r *Region) {
		r.StartTime = max(0, r.StartTime+dt)
		r.SyncSamples()
	}), nil
}

// AdjustGain multiplies each unlocked region's gain, clamped to [0, MaxGain].
func AdjustGain(regions []Region, multiplier float64) ([]Region, error) {
	if !finite(multiplier) {
		return nil, invalidArgument("adjust_gain", "multiplier", multiplier)
	}
	return mapUnlocked(regions, func(r *Region) {
		r.Gain = clamp(r.Gain*multiplier, 0, MaxGain)
	}), nil
}

// ApplyFades sets both fades on every unlocked region. Each value is
// clamped per region to [0, duration/2], so regions of different lengths
// can end up with different fades.
func ApplyFades(regions []Region, fadeIn, fadeOut float64) ([]Region, error) {
	if !finite(fadeIn) {
		return nil, invalidArgument("apply_fades", "fade_in", fadeIn)
	}
	if !finite(fadeOut) {
		return nil, invalidArgument("apply_fades", "fade_out", fadeOut)
	}
	return mapUnlocked(regions, func(r *Region) {
		r.FadeIn = fadeIn
		r.FadeOut = fadeOut
		r.ClampFades()
	}), nil
}

// SetLocked sets the lock flag on every region.
func SetLocked(regions []Region, locked bool) []Region {
	return mapAll(regions, func(r *Region) { r.Locked = locked })
}

// SetColor sets the color on every region.
func SetColor(regions []Region, color string) []Region {
	return mapAll(regions, func(r *Region) { r.Color = color })
}

// DuplicateRegions copies each region directly after itself.
func DuplicateRegions(regions []Region) []Region {
	out := make([]Region, len(regions))
	for i := range regions {
		out[i] = Duplicate(regions[i])
	}
	return out
}

// DuplicateRegionsBy copies each region shifted by offset.
func DuplicateRegionsBy(regions []Region, offset float64) ([]Region, error) {
	if !finite(offset) {
		return nil, invalidArgument("duplicate_regions", "offset", offset)
	}
	out := make([]Region, len(regions))
	for i := range regions {
		out[i] = DuplicateBy(regions[i], offset)
	}
	return out, nil
}

// AlignPoint selects which part of a region AlignToTime lines up.
type AlignPoint int

const (
	AlignStart AlignPoint = iota
	AlignCenter
	AlignEnd
)

func (p AlignPoint) String() string {
	switch p {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "start"
	}
}

// ParseAlignPoint accepts start, center or end.
func ParseAlignPoint(s string) (AlignPoint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "":
		return AlignStart, nil
	case "center", "centre":
		return AlignCenter, nil
	case "end":
		return AlignEnd, nil
	default:
		return AlignStart, invalidArgument("parse_align_point", "align_point", s)
	}
}

// AlignToTime lines up the chosen point of every unlocked region with t.
// Results are clamped at time zero.
func AlignToTime(regions []Region, t float64, point AlignPoint) ([]Region, error) {
	if !finite(t) {
		return nil, invalidArgument("align_to_time", "time", t)
	}
	if point < AlignStart || point > AlignEnd {
		return nil, invalidArgument("align_to_time", "align_point", int(point))
	}

	return mapUnlocked(regions, func(r *Region) {
		switch point {
		case AlignStart:
			r.StartTime = t
		case AlignCenter:
			r.StartTime = t - r.Duration/2
		case AlignEnd:
			r.StartTime = t - r.Duration
		}
		r.StartTime = max(0, r.StartTime)
		r.SyncSamples()
	}), nil
}

// Bounds is the time span covered by a set of regions.
type Bounds struct {
	StartTime float64 `yaml:"start_time"`
	EndTime   float64 `yaml:"end_time"`
	Duration  float64 `yaml:"duration"`
}

// BoundingBox returns the span of regions. ok is false for an empty input.
func BoundingBox(regions []Region) (b Bounds, ok bool) {
	if len(regions) == 0 {
		return Bounds{}, false
	}

	b.StartTime = regions[0].StartTime
	b.EndTime = regions[0].EndTime()
	for i := 1; i < len(regions); i++ {
		b.StartTime = min(b.StartTime, regions[i].StartTime)
		b.EndTime = max(b.EndTime, regions[i].EndTime())
	}
	b.Duration = b.EndTime - b.StartTime
	return b, true
}

// RippleDelete removes the regions named in deleteIDs and closes the gap
// they leave on trackID. The gap spans the earliest start to the latest
// end of all deleted regions, whatever their track; every remaining region
// on trackID starting at or after the gap's end moves left by its length,
// stopping at zero. Other tracks lose their deleted regions but are not
// rippled. Locked regions are neither deleted nor moved.
//
// The returned amount is the gap length, 0 when nothing was deleted.
func RippleDelete(all []Region, deleteIDs []string, trackID string) ([]Region, float64) {
	doomed := deletable(all, deleteIDs)

	gap, ok := deletedSpan(all, doomed)
	if !ok {
		return removeRegions(all, doomed, nil), 0
	}
	return removeRegions(all, doomed, map[string]span{trackID: gap}), gap.amount()
}

// RippleDeleteAll is RippleDelete applied to every track that loses a
// region, each with its own gap.
func RippleDeleteAll(all []Region, deleteIDs []string) ([]Region, map[string]float64) {
	doomed := deletable(all, deleteIDs)
	spans := deletedSpans(all, doomed)

	amounts := make(map[string]float64, len(spans))
	for trackID, s := range spans {
		amounts[trackID] = s.amount()
	}
	return removeRegions(all, doomed, spans), amounts
}

type span struct{ start, end float64 }

func (s span) amount() float64 { return s.end - s.start }

// deletable resolves ids to the set of unlocked regions that exist in all.
func deletable(all []Region, ids []string) map[string]bool {
	doomed := make(map[string]bool, len(ids))
	for i := range all {
		if !all[i].Locked && slices.Contains(ids, all[i].ID) {
			doomed[all[i].ID] = true
		}
	}
	return doomed
}

// deletedSpan covers every doomed region regardless of track.
func deletedSpan(all []Region, doomed map[string]bool) (span, bool) {
	var s span
	seen := false
	for i := range all {
		r := &all[i]
		if !doomed[r.ID] {
			continue
		}
		if !seen {
			s = span{start: r.StartTime, end: r.EndTime()}
			seen = true
			continue
		}
		s.start = min(s.start, r.StartTime)
		s.end = max(s.end, r.EndTime())
	}
	return s, seen
}

func deletedSpans(all []Region, doomed map[string]bool) map[string]span {
	spans := make(map[string]span)
	for i := range all {
		r := &all[i]
		if !doomed[r.ID] {
			continue
		}
		s, seen := spans[r.TrackID]
		if !seen {
			s = span{start: r.StartTime, end: r.EndTime()}
		} else {
			s.start = min(s.start, r.StartTime)
			s.end = max(s.end, r.EndTime())
		}
		spans[r.TrackID] = s
	}
	return spans
}

func removeRegions(all []Region, doomed map[string]bool, ripple map[string]span) []Region {
	out := make([]Region, 0, len(all)-len(doomed))
	for i := range all {
		r := all[i]
		if doomed[r.ID] {
			continue
		}
		if s, ok := ripple[r.TrackID]; ok && !r.Locked && r.StartTime >= s.end-epsilon {
			r.StartTime = max(0, r.StartTime-s.amount())
			r.SyncSamples()
		}
		out = append(out, r)
	}
	return out
}

func mapAll(regions []Region, fn func(*Region)) []Region {
	out := slices.Clone(regions)
	for i := range out {
		fn(&out[i])
	}
	return out
}

func mapUnlocked(regions []Region, fn func(*Region)) []Region {
	out := slices.Clone(regions)
	for i := range out {
		if !out[i].Locked {
			fn(&out[i])
		}
	}
	return out
}
