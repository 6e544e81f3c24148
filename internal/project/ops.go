package project

import (
	"slices"
	"time"

	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/gesture"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
	"github.com/tphakala/regionedit/internal/region"
)

// Split cuts region id at t and commits both halves in its place.
func (p *Project) Split(id string, t float64) (region.Region, region.Region, error) {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexOf(id)
	if i < 0 {
		err := notFound(ErrRegionNotFound, "region_id", id)
		p.fail(metrics.OpSplit, err)
		return region.Region{}, region.Region{}, err
	}

	a, b, err := region.Split(p.regions[i], t)
	if err != nil {
		p.fail(metrics.OpSplit, err)
		return region.Region{}, region.Region{}, err
	}

	next := slices.Clone(p.regions)
	next = slices.Replace(next, i, i+1, a, b)
	if err := p.commitLocked(next); err != nil {
		p.fail(metrics.OpSplit, err)
		return region.Region{}, region.Region{}, err
	}

	p.done(metrics.OpSplit, start)
	p.log.Debug("region split",
		logger.String("region_id", id),
		logger.Float64("split_time", t),
		logger.String("left_id", a.ID),
		logger.String("right_id", b.ID))
	return a, b, nil
}

// RippleDelete removes ids and closes the gap on trackID. It returns the
// ripple amount. Unknown ids are ignored.
func (p *Project) RippleDelete(ids []string, trackID string) (float64, error) {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tracks[trackID]; !ok {
		err := notFound(ErrTrackNotFound, "track_id", trackID)
		p.fail(metrics.OpRippleDelete, err)
		return 0, err
	}

	next, amount := region.RippleDelete(p.regions, ids, trackID)
	if err := p.commitLocked(next); err != nil {
		p.fail(metrics.OpRippleDelete, err)
		return 0, err
	}

	p.done(metrics.OpRippleDelete, start)
	p.log.Debug("ripple delete",
		logger.String("track_id", trackID),
		logger.Strings("region_ids", ids),
		logger.Float64("amount", amount))
	return amount, nil
}

// RippleDeleteAll removes ids and closes the gap on every affected track.
func (p *Project) RippleDeleteAll(ids []string) (map[string]float64, error) {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	next, amounts := region.RippleDeleteAll(p.regions, ids)
	if err := p.commitLocked(next); err != nil {
		p.fail(metrics.OpRippleDelete, err)
		return nil, err
	}

	p.done(metrics.OpRippleDelete, start)
	p.log.Debug("ripple delete across tracks",
		logger.Strings("region_ids", ids),
		logger.Int("tracks", len(amounts)))
	return amounts, nil
}

// Crossfades detects overlap zones over the committed regions.
func (p *Project) Crossfades() []region.Zone {
	start := time.Now()

	p.mu.RLock()
	zones := region.DetectCrossfades(p.regions, p.crossfade)
	p.mu.RUnlock()

	p.gauges.SetCrossfadeZones(len(zones))
	p.done(metrics.OpCrossfades, start)
	return zones
}

// Bounds returns the bounding box of the named regions, or of every
// region when ids is empty. ok is false when there is nothing to bound.
func (p *Project) Bounds(ids []string) (b region.Bounds, ok bool, err error) {
	regions := p.Regions()
	if len(ids) > 0 {
		if regions, err = p.Resolve(ids); err != nil {
			return region.Bounds{}, false, err
		}
	}
	b, ok = region.BoundingBox(regions)
	return b, ok, nil
}

// BatchFunc transforms a selection. It may return new regions (with new
// ids) alongside or instead of the ones it was given.
type BatchFunc func([]region.Region) ([]region.Region, error)

// Batch resolves ids, runs fn over them and commits the output: regions
// with known ids are replaced and new ids are added. Either everything is
// committed or nothing is. fn runs without the lock held; if another
// commit lands meanwhile the batch is refused with ErrStaleSelection.
func (p *Project) Batch(ids []string, fn BatchFunc) ([]region.Region, error) {
	start := time.Now()

	selected, rev, err := p.resolve(ids)
	if err != nil {
		p.fail(metrics.OpBatch, err)
		return nil, err
	}

	out, err := fn(selected)
	if err != nil {
		p.fail(metrics.OpBatch, err)
		return nil, err
	}

	if err := p.commitBatch(rev, out); err != nil {
		p.fail(metrics.OpBatch, err)
		return nil, err
	}

	p.done(metrics.OpBatch, start)
	p.log.Debug("batch applied",
		logger.Int("selected", len(selected)),
		logger.Int("written", len(out)))
	return out, nil
}

func (p *Project) commitBatch(rev uint64, out []region.Region) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rev != rev {
		return errors.New(ErrStaleSelection).
			Component("project").
			Category(errors.CategoryConflict).
			Operation(metrics.OpBatch).
			Build()
	}
	return p.updateLocked(nil, out)
}

// Duplicate copies the named regions, each directly after itself, and
// commits the copies.
func (p *Project) Duplicate(ids []string) ([]region.Region, error) {
	out, err := p.Batch(ids, func(rs []region.Region) ([]region.Region, error) {
		return region.DuplicateRegions(rs), nil
	})
	if err == nil {
		p.recorder.RecordOperation(metrics.OpDuplicate, metrics.StatusSuccess)
	}
	return out, err
}

// ApplyGesture commits one gesture step.
func (p *Project) ApplyGesture(res gesture.Result) error {
	upsert := slices.Clone(res.Created)
	if res.Updated != nil {
		upsert = append(upsert, *res.Updated)
	}
	if len(upsert) == 0 && len(res.Removed) == 0 {
		return nil
	}
	return p.Update(res.Removed, upsert...)
}

func (p *Project) done(op string, start time.Time) {
	p.recorder.RecordOperation(op, metrics.StatusSuccess)
	p.recorder.RecordDuration(op, time.Since(start).Seconds())
}
