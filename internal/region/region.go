// Package region holds the timeline data model and the pure operations
// over it: split, duplicate, batch edits, ripple delete and crossfade
// detection.
//
// Every operation takes values and returns new values. Callers own storage
// and commit results themselves.
package region

import (
	"math"

	"github.com/tphakala/regionedit/internal/errors"
)

const (
	// MinDuration is the floor for a region's duration after any edit.
	MinDuration = 0.1
	// MaxGain is the upper bound of the linear gain multiplier.
	MaxGain = 2.0

	// epsilon absorbs float noise when comparing window edges.
	epsilon = 1e-9
)

// Sentinel errors
var (
	ErrInvalidRegion       = errors.NewStd("invalid region")
	ErrInvalidSplit        = errors.NewStd("split time must fall strictly inside the region")
	ErrInvalidArgument     = errors.NewStd("invalid argument")
	ErrRegionLocked        = errors.NewStd("region is locked")
	ErrMissingSource       = errors.NewStd("region references a missing source")
	ErrWindowExceedsSource = errors.NewStd("buffer window exceeds source duration")
	ErrSampleRateMismatch  = errors.NewStd("region sample rate differs from its source")
)

// Track is a lane on the timeline. Regions point at tracks by id.
type Track struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Color       string  `yaml:"color,omitempty"`
	Height      float64 `yaml:"height,omitempty"`
	Muted       bool    `yaml:"muted,omitempty"`
	Solo        bool    `yaml:"solo,omitempty"`
	RecordArmed bool    `yaml:"record_armed,omitempty"`
	Locked      bool    `yaml:"locked,omitempty"`
	Order       int     `yaml:"order"`
}

// Source is audio buffer metadata supplied by the decode subsystem.
type Source struct {
	ID         string  `yaml:"id"`
	Path       string  `yaml:"path,omitempty"`
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	Duration   float64 `yaml:"duration"` // seconds
}

// Region places a window of a source on a track.
type Region struct {
	ID       string `yaml:"id"`
	TrackID  string `yaml:"track_id"`
	SourceID string `yaml:"source_id"`
	Name     string `yaml:"name"`

	StartTime      float64 `yaml:"start_time"`      // timeline seconds
	Duration       float64 `yaml:"duration"`        // seconds
	BufferOffset   float64 `yaml:"buffer_offset"`   // read start within the source
	BufferDuration float64 `yaml:"buffer_duration"` // window length within the source

	// Sample-accurate mirrors, kept in step by SyncSamples when SampleRate is set.
	SampleRate       int   `yaml:"sample_rate,omitempty"`
	StartTimeSamples int64 `yaml:"start_time_samples,omitempty"`
	LengthSamples    int64 `yaml:"length_samples,omitempty"`

	FadeIn       float64   `yaml:"fade_in"`
	FadeOut      float64   `yaml:"fade_out"`
	FadeInCurve  FadeCurve `yaml:"fade_in_curve,omitempty"`
	FadeOutCurve FadeCurve `yaml:"fade_out_curve,omitempty"`

	Gain   float64 `yaml:"gain"`
	Locked bool    `yaml:"locked,omitempty"`
	Muted  bool    `yaml:"muted,omitempty"`
	Color  string  `yaml:"color,omitempty"`
}

// EndTime is StartTime + Duration.
func (r *Region) EndTime() float64 {
	return r.StartTime + r.Duration
}

// Contains reports whether t lies in [StartTime, EndTime).
func (r *Region) Contains(t float64) bool {
	return t >= r.StartTime && t < r.EndTime()
}

// SyncSamples recomputes the sample mirrors from the time fields.
func (r *Region) SyncSamples() {
	if r.SampleRate <= 0 {
		return
	}
	sr := float64(r.SampleRate)
	r.StartTimeSamples = int64(math.Round(r.StartTime * sr))
	r.LengthSamples = int64(math.Round(r.Duration * sr))
}

// ClampFades limits both fades to [0, Duration/2].
func (r *Region) ClampFades() {
	half := r.Duration / 2
	r.FadeIn = clamp(r.FadeIn, 0, half)
	r.FadeOut = clamp(r.FadeOut, 0, half)
}

// BufferPosition maps a timeline instant to a position in the source.
func (r *Region) BufferPosition(t float64) (float64, bool) {
	if !r.Contains(t) {
		return 0, false
	}
	return r.BufferOffset + (t - r.StartTime), true
}

// EnvelopeAt returns the linear amplitude at timeline time t: gain shaped
// by the fade curves. Outside the region or when muted it is 0.
func (r *Region) EnvelopeAt(t float64) float64 {
	if r.Muted || !r.Contains(t) {
		return 0
	}

	g := r.Gain
	if rel := t - r.StartTime; r.FadeIn > 0 && rel < r.FadeIn {
		g *= r.FadeInCurve.GainAt(rel / r.FadeIn)
	}
	if rem := r.EndTime() - t; r.FadeOut > 0 && rem < r.FadeOut {
		g *= r.FadeOutCurve.GainAt(rem / r.FadeOut)
	}
	return g
}

// Validate checks the region's own invariants.
func (r *Region) Validate() error {
	invalid := func(field string, value any) error {
		return errors.New(ErrInvalidRegion).
			Component("region").
			Category(errors.CategoryValidation).
			RegionContext(r.ID, r.TrackID).
			Context("field", field).
			Context("value", value).
			Build()
	}

	switch {
	case r.ID == "":
		return invalid("id", r.ID)
	case r.TrackID == "":
		return invalid("track_id", r.TrackID)
	case !finite(r.StartTime) || r.StartTime < 0:
		return invalid("start_time", r.StartTime)
	case !finite(r.Duration) || r.Duration <= 0:
		return invalid("duration", r.Duration)
	case !finite(r.BufferOffset) || r.BufferOffset < 0:
		return invalid("buffer_offset", r.BufferOffset)
	case !finite(r.BufferDuration) || r.BufferDuration <= 0:
		return invalid("buffer_duration", r.BufferDuration)
	case !finite(r.FadeIn) || r.FadeIn < 0 || r.FadeIn > r.Duration/2+epsilon:
		return invalid("fade_in", r.FadeIn)
	case !finite(r.FadeOut) || r.FadeOut < 0 || r.FadeOut > r.Duration/2+epsilon:
		return invalid("fade_out", r.FadeOut)
	case !finite(r.Gain) || r.Gain < 0 || r.Gain > MaxGain:
		return invalid("gain", r.Gain)
	case !r.FadeInCurve.Valid():
		return invalid("fade_in_curve", int(r.FadeInCurve))
	case !r.FadeOutCurve.Valid():
		return invalid("fade_out_curve", int(r.FadeOutCurve))
	}
	return nil
}

// ValidateAgainst checks that the buffer window fits inside src. A nil
// source is a referential failure.
func (r *Region) ValidateAgainst(src *Source) error {
	if src == nil {
		return errors.New(ErrMissingSource).
			Component("region").
			Category(errors.CategoryDataIntegrity).
			RegionContext(r.ID, r.TrackID).
			Context("source_id", r.SourceID).
			Build()
	}

	if end := r.BufferOffset + r.BufferDuration; end > src.Duration+epsilon {
		return errors.New(ErrWindowExceedsSource).
			Component("region").
			Category(errors.CategoryDataIntegrity).
			RegionContext(r.ID, r.TrackID).
			Context("source_id", src.ID).
			Context("window_end", end).
			Context("source_duration", src.Duration).
			Build()
	}

	if r.SampleRate > 0 && src.SampleRate > 0 && r.SampleRate != src.SampleRate {
		return errors.New(ErrSampleRateMismatch).
			Component("region").
			Category(errors.CategoryDataIntegrity).
			RegionContext(r.ID, r.TrackID).
			Context("region_sample_rate", r.SampleRate).
			Context("source_sample_rate", src.SampleRate).
			Build()
	}

	return nil
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// invalidArgument builds the error returned when a whole call is rejected.
func invalidArgument(op, name string, value any) error {
	return errors.New(ErrInvalidArgument).
		Component("region").
		Category(errors.CategoryValidation).
		Operation(op).
		Context(name, value).
		Build()
}

// UnmarshalYAML decodes a region, defaulting an omitted gain to unity.
func (r *Region) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Region
	p := plain{Gain: 1}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*r = Region(p)
	return nil
}
