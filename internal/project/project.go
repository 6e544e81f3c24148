// Package project is the in-memory store that owns tracks, sources and
// regions. It validates every commit against referential integrity and
// swaps the region list atomically, so the pure edit functions in the
// region and gesture packages never see a half-applied change.
package project

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
	"github.com/tphakala/regionedit/internal/region"
)

// Sentinel errors
var (
	ErrTrackNotFound  = errors.NewStd("track not found")
	ErrSourceNotFound = errors.NewStd("source not found")
	ErrRegionNotFound = errors.NewStd("region not found")
	ErrDuplicateID    = errors.NewStd("duplicate id")
	ErrTrackInUse     = errors.NewStd("track still has regions")
	ErrDanglingTrack  = errors.NewStd("region references a missing track")
	ErrStaleSelection = errors.NewStd("regions changed while the batch ran")
)

// GetLogger returns the project package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("project")
}

// Gauges receives the committed region count and the last crossfade count.
type Gauges interface {
	SetRegions(n int)
	SetCrossfadeZones(n int)
}

type noopGauges struct{}

func (noopGauges) SetRegions(int)        {}
func (noopGauges) SetCrossfadeZones(int) {}

// Project holds one timeline. All methods are safe for concurrent use;
// writers are serialized.
type Project struct {
	mu      sync.RWMutex
	tracks  map[string]region.Track
	sources map[string]region.Source
	regions []region.Region
	rev     uint64 // bumped by every region commit

	crossfade region.CrossfadeOptions
	log       logger.Logger
	recorder  metrics.Recorder
	gauges    Gauges
}

// Option configures a Project.
type Option func(*Project)

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Project) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRecorder records operation outcomes to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Project) {
		p.recorder = metrics.OrNoOp(r)
	}
}

// WithMetrics wires both the recorder and the gauges to m.
func WithMetrics(m *metrics.EditMetrics) Option {
	return func(p *Project) {
		if m != nil {
			p.recorder = m
			p.gauges = m
		}
	}
}

// WithCrossfadeOptions sets the scope used by Crossfades.
func WithCrossfadeOptions(opts region.CrossfadeOptions) Option {
	return func(p *Project) {
		p.crossfade = opts
	}
}

// New returns an empty project. Crossfades are same-track only unless
// configured otherwise.
func New(opts ...Option) *Project {
	p := &Project{
		tracks:    make(map[string]region.Track),
		sources:   make(map[string]region.Source),
		crossfade: region.CrossfadeOptions{SameTrackOnly: true},
		log:       GetLogger(),
		recorder:  metrics.NoOpRecorder{},
		gauges:    noopGauges{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddTrack registers a track.
func (p *Project) AddTrack(t region.Track) error {
	if t.ID == "" {
		return errors.Newf("track id is required").
			Component("project").
			Category(errors.CategoryValidation).
			Context("name", t.Name).
			Build()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tracks[t.ID]; ok {
		return duplicateID("track", t.ID)
	}
	p.tracks[t.ID] = t
	return nil
}

// RemoveTrack deletes an empty track.
func (p *Project) RemoveTrack(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tracks[id]; !ok {
		return notFound(ErrTrackNotFound, "track_id", id)
	}
	for i := range p.regions {
		if p.regions[i].TrackID == id {
			return errors.New(ErrTrackInUse).
				Component("project").
				Category(errors.CategoryConflict).
				RegionContext(p.regions[i].ID, id).
				Build()
		}
	}
	delete(p.tracks, id)
	return nil
}

// Track returns a track by id.
func (p *Project) Track(id string) (region.Track, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.tracks[id]
	if !ok {
		return region.Track{}, notFound(ErrTrackNotFound, "track_id", id)
	}
	return t, nil
}

// Tracks returns all tracks by Order, then id.
func (p *Project) Tracks() []region.Track {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]region.Track, 0, len(p.tracks))
	for _, t := range p.tracks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b region.Track) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// AddSource registers source metadata.
func (p *Project) AddSource(s region.Source) error {
	if s.ID == "" || !(s.Duration > 0) {
		return errors.Newf("source needs an id and a positive duration").
			Component("project").
			Category(errors.CategoryValidation).
			Context("source_id", s.ID).
			Context("duration", s.Duration).
			Build()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.sources[s.ID]; ok {
		return duplicateID("source", s.ID)
	}
	p.sources[s.ID] = s
	return nil
}

// Source returns a source by id.
func (p *Project) Source(id string) (region.Source, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.sources[id]
	if !ok {
		return region.Source{}, notFound(ErrSourceNotFound, "source_id", id)
	}
	return s, nil
}

// Sources returns all sources sorted by id.
func (p *Project) Sources() []region.Source {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]region.Source, 0, len(p.sources))
	for _, s := range p.sources {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b region.Source) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// SourceFor returns the source r plays from, or nil when r has none or it
// is not registered.
func (p *Project) SourceFor(r region.Region) *region.Source {
	if r.SourceID == "" {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.sources[r.SourceID]
	if !ok {
		return nil
	}
	return &s
}

// AddRegion commits one new region. An existing id is a conflict.
func (p *Project) AddRegion(r region.Region) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.indexOf(r.ID) >= 0 {
		return duplicateID("region", r.ID)
	}
	if err := p.commitLocked(append(slices.Clone(p.regions), r)); err != nil {
		p.fail(metrics.OpCommit, err)
		return err
	}
	return nil
}

// Region returns a region by id.
func (p *Project) Region(id string) (region.Region, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if i := p.indexOf(id); i >= 0 {
		return p.regions[i], nil
	}
	return region.Region{}, notFound(ErrRegionNotFound, "region_id", id)
}

// Regions returns a copy of the committed regions in commit order.
func (p *Project) Regions() []region.Region {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.regions)
}

// RegionsOnTrack returns a track's regions by start time.
func (p *Project) RegionsOnTrack(trackID string) []region.Region {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []region.Region
	for _, r := range p.regions {
		if r.TrackID == trackID {
			out = append(out, r)
		}
	}
	sortByStart(out)
	return out
}

// RegionsAt returns the regions sounding at timeline time t.
func (p *Project) RegionsAt(t float64) []region.Region {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []region.Region
	for _, r := range p.regions {
		if r.Contains(t) {
			out = append(out, r)
		}
	}
	sortByStart(out)
	return out
}

// Resolve returns the regions named by ids in the given order. Any unknown
// id fails the whole call.
func (p *Project) Resolve(ids []string) ([]region.Region, error) {
	out, _, err := p.resolve(ids)
	return out, err
}

// resolve is Resolve plus the revision the selection was read at.
func (p *Project) resolve(ids []string) ([]region.Region, uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]region.Region, 0, len(ids))
	for _, id := range ids {
		i := p.indexOf(id)
		if i < 0 {
			return nil, 0, notFound(ErrRegionNotFound, "region_id", id)
		}
		out = append(out, p.regions[i])
	}
	return out, p.rev, nil
}

// Commit replaces the region list with next after validating all of it.
// On error nothing changes.
func (p *Project) Commit(next []region.Region) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.commitLocked(next); err != nil {
		p.fail(metrics.OpCommit, err)
		return err
	}
	return nil
}

// Update removes the regions named in remove, then replaces regions in
// upsert by id or appends them when new, and commits the result.
func (p *Project) Update(remove []string, upsert ...region.Region) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.updateLocked(remove, upsert); err != nil {
		p.fail(metrics.OpCommit, err)
		return err
	}
	return nil
}

func (p *Project) updateLocked(remove []string, upsert []region.Region) error {
	doomed := make(map[string]bool, len(remove))
	for _, id := range remove {
		doomed[id] = true
	}

	next := make([]region.Region, 0, len(p.regions)+len(upsert))
	for _, r := range p.regions {
		if !doomed[r.ID] {
			next = append(next, r)
		}
	}
	for _, u := range upsert {
		if i := slices.IndexFunc(next, func(r region.Region) bool { return r.ID == u.ID }); i >= 0 {
			next[i] = u
			continue
		}
		next = append(next, u)
	}
	return p.commitLocked(next)
}

// commitLocked validates and swaps in next. Failures are left to the
// caller to record under its own operation.
func (p *Project) commitLocked(next []region.Region) error {
	start := time.Now()

	if err := p.validateLocked(next); err != nil {
		return err
	}

	p.regions = slices.Clone(next)
	p.rev++
	p.gauges.SetRegions(len(p.regions))
	p.recorder.RecordOperation(metrics.OpCommit, metrics.StatusSuccess)
	p.recorder.RecordDuration(metrics.OpCommit, time.Since(start).Seconds())
	return nil
}

func (p *Project) validateLocked(next []region.Region) error {
	seen := make(map[string]bool, len(next))
	for i := range next {
		r := &next[i]
		if seen[r.ID] {
			return duplicateID("region", r.ID)
		}
		seen[r.ID] = true

		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := p.tracks[r.TrackID]; !ok {
			return errors.New(ErrDanglingTrack).
				Component("project").
				Category(errors.CategoryDataIntegrity).
				RegionContext(r.ID, r.TrackID).
				Build()
		}
		if r.SourceID == "" {
			continue
		}
		src, ok := p.sources[r.SourceID]
		if !ok {
			return r.ValidateAgainst(nil)
		}
		if err := r.ValidateAgainst(&src); err != nil {
			return err
		}
	}
	return nil
}

// fail records and logs a rejected operation. Integrity violations are
// logged as errors, everything else as warnings.
func (p *Project) fail(op string, err error) {
	category := errors.CategoryGeneric
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.Category
	}
	p.recorder.RecordOperation(op, metrics.StatusError)
	p.recorder.RecordError(op, string(category))

	if category == errors.CategoryDataIntegrity {
		p.log.Error("edit refused", logger.String("operation", op), logger.Error(err))
		return
	}
	p.log.Warn("edit rejected", logger.String("operation", op), logger.Error(err))
}

func (p *Project) indexOf(id string) int {
	return slices.IndexFunc(p.regions, func(r region.Region) bool { return r.ID == id })
}

func sortByStart(regions []region.Region) {
	slices.SortFunc(regions, func(a, b region.Region) int {
		return cmp.Or(cmp.Compare(a.StartTime, b.StartTime), cmp.Compare(a.ID, b.ID))
	})
}

func notFound(sentinel error, key, id string) error {
	return errors.New(sentinel).
		Component("project").
		Category(errors.CategoryNotFound).
		Context(key, id).
		Build()
}

func duplicateID(kind, id string) error {
	return errors.New(ErrDuplicateID).
		Component("project").
		Category(errors.CategoryConflict).
		Context("kind", kind).
		Context("id", id).
		Build()
}
