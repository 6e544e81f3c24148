package region

import (
	"github.com/tphakala/regionedit/internal/errors"
)

// Split cuts r at splitTime into two new regions. The original should be
// replaced by both halves; neither half keeps its id.
//
// splitTime must lie strictly inside r. The left half loses its fade out
// and the right half its fade in, and each half's buffer window is trimmed
// to the part it plays.
func Split(r Region, splitTime float64) (Region, Region, error) {
	if r.Locked {
		return Region{}, Region{}, errors.New(ErrRegionLocked).
			Component("region").
			Category(errors.CategoryState).
			RegionContext(r.ID, r.TrackID).
			Operation("split").
			Build()
	}

	if !finite(splitTime) || splitTime <= r.StartTime || splitTime >= r.EndTime() {
		return Region{}, Region{}, errors.New(ErrInvalidSplit).
			Component("region").
			Category(errors.CategoryValidation).
			RegionContext(r.ID, r.TrackID).
			Context("split_time", splitTime).
			Context("start_time", r.StartTime).
			Context("end_time", r.EndTime()).
			Build()
	}

	cut := splitTime - r.StartTime
	if r.BufferDuration-cut <= 0 {
		return Region{}, Region{}, errors.New(ErrWindowExceedsSource).
			Component("region").
			Category(errors.CategoryDataIntegrity).
			RegionContext(r.ID, r.TrackID).
			Operation("split").
			Context("split_time", splitTime).
			Context("buffer_duration", r.BufferDuration).
			Build()
	}

	a := r
	a.ID = deriveID(r.ID, "a", splitTime)
	a.Duration = cut
	a.BufferDuration = cut
	a.FadeOut = 0
	a.ClampFades()
	a.SyncSamples()

	b := r
	b.ID = deriveID(r.ID, "b", splitTime)
	b.StartTime = splitTime
	b.Duration = r.Duration - cut
	b.BufferOffset = r.BufferOffset + cut
	b.BufferDuration = r.BufferDuration - cut
	b.FadeIn = 0
	b.ClampFades()
	b.SyncSamples()

	return a, b, nil
}

// Duplicate copies r directly after itself.
func Duplicate(r Region) Region {
	return DuplicateBy(r, r.Duration)
}

// DuplicateBy copies r shifted by offset seconds with a new id. Every
// other field is copied unchanged. The copy never starts before zero.
func DuplicateBy(r Region, offset float64) Region {
	d := r
	d.ID = NewID()
	d.StartTime = max(0, r.StartTime+offset)
	d.SyncSamples()
	return d
}
