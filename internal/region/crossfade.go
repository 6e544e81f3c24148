package region

import (
	"cmp"
	"slices"
)

// Zone is the overlap of two regions. A is the region that starts first.
type Zone struct {
	RegionAID string  `yaml:"region_a_id"`
	RegionBID string  `yaml:"region_b_id"`
	TrackID   string  `yaml:"track_id,omitempty"` // empty when A and B sit on different tracks
	StartTime float64 `yaml:"start_time"`
	EndTime   float64 `yaml:"end_time"`
	Duration  float64 `yaml:"duration"`
}

// CrossfadeOptions scopes crossfade detection.
type CrossfadeOptions struct {
	// SameTrackOnly ignores overlaps between regions on different tracks.
	SameTrackOnly bool
}

// DetectCrossfades returns one zone per overlapping pair. Regions are
// half-open, so a region ending exactly where another starts does not
// overlap it. The result is independent of input order and sorted by
// zone start.
func DetectCrossfades(regions []Region, opts CrossfadeOptions) []Zone {
	sorted := slices.Clone(regions)
	slices.SortFunc(sorted, func(a, b Region) int {
		return cmp.Or(
			cmp.Compare(a.StartTime, b.StartTime),
			cmp.Compare(a.ID, b.ID),
		)
	})

	var zones []Zone
	for i := range sorted {
		a := &sorted[i]
		aEnd := a.EndTime()
		for j := i + 1; j < len(sorted) && sorted[j].StartTime < aEnd; j++ {
			b := &sorted[j]
			if opts.SameTrackOnly && a.TrackID != b.TrackID {
				continue
			}

			start := b.StartTime
			end := min(aEnd, b.EndTime())
			if start >= end {
				continue
			}

			z := Zone{
				RegionAID: a.ID,
				RegionBID: b.ID,
				StartTime: start,
				EndTime:   end,
				Duration:  end - start,
			}
			if a.TrackID == b.TrackID {
				z.TrackID = a.TrackID
			}
			zones = append(zones, z)
		}
	}

	slices.SortStableFunc(zones, func(x, y Zone) int {
		return cmp.Or(
			cmp.Compare(x.StartTime, y.StartTime),
			cmp.Compare(x.RegionAID, y.RegionAID),
			cmp.Compare(x.RegionBID, y.RegionBID),
		)
	})
	return zones
}
