// Package grid quantizes timeline times to a musical grid.
//
// A Grid is built from a tempo, a time signature and a resolution policy.
// The resolution is either a fixed subdivision of a beat or Adaptive, in
// which case the step follows the current zoom so grid lines stay readable.
package grid

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/tphakala/regionedit/internal/errors"
)

// alignTolerance is the distance in seconds within which a time counts as
// sitting on a grid line.
const alignTolerance = 1e-6

// maxLines bounds Lines output for pathological ranges.
const maxLines = 100_000

// Sentinel errors
var (
	ErrInvalidTempo      = errors.NewStd("bpm must be greater than 0")
	ErrInvalidSignature  = errors.NewStd("invalid time signature")
	ErrInvalidResolution = errors.NewStd("invalid grid resolution")
)

// TimeSignature is beats per bar over the beat unit, e.g. 6/8.
type TimeSignature struct {
	BeatsPerBar int `yaml:"beats_per_bar"`
	BeatUnit    int `yaml:"beat_unit"`
}

// FourFour is common time.
var FourFour = TimeSignature{BeatsPerBar: 4, BeatUnit: 4}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.BeatsPerBar, ts.BeatUnit)
}

// Resolution is a beat divisor. Zero means the divisor follows zoom.
type Resolution int

// Supported resolutions.
const (
	Adaptive     Resolution = 0
	Quarter      Resolution = 4
	Eighth       Resolution = 8
	Sixteenth    Resolution = 16
	ThirtySecond Resolution = 32
	SixtyFourth  Resolution = 64
)

func (r Resolution) String() string {
	if r == Adaptive {
		return "adaptive"
	}
	return "1/" + strconv.Itoa(int(r))
}

// ParseResolution accepts "adaptive" or "1/N" for N in 4, 8, 16, 32, 64.
func ParseResolution(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "adaptive" || s == "" {
		return Adaptive, nil
	}

	n, ok := strings.CutPrefix(s, "1/")
	if ok {
		if d, err := strconv.Atoi(n); err == nil {
			switch r := Resolution(d); r {
			case Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth:
				return r, nil
			}
		}
	}

	return Adaptive, errors.New(ErrInvalidResolution).
		Component("grid").
		Category(errors.CategoryValidation).
		Context("resolution", s).
		Build()
}

// Alignment classifies how strongly an instant sits on the grid.
type Alignment int

const (
	None Alignment = iota
	Subdivision
	Beat
	Bar
)

func (a Alignment) String() string {
	switch a {
	case Bar:
		return "bar"
	case Beat:
		return "beat"
	case Subdivision:
		return "subdivision"
	default:
		return "none"
	}
}

// Emphasis marks phrase boundaries among bar lines.
type Emphasis int

const (
	Normal Emphasis = iota
	Phrase4
	Phrase8
)

// MarshalYAML renders the alignment by name.
func (a Alignment) MarshalYAML() (any, error) { return a.String(), nil }

func (e Emphasis) String() string {
	switch e {
	case Phrase8:
		return "phrase8"
	case Phrase4:
		return "phrase4"
	default:
		return "normal"
	}
}

// MarshalYAML renders the emphasis by name.
func (e Emphasis) MarshalYAML() (any, error) { return e.String(), nil }

// Grid is an immutable tempo grid.
type Grid struct {
	bpm        float64
	sig        TimeSignature
	resolution Resolution
}

// New validates its inputs and returns a Grid.
func New(bpm float64, sig TimeSignature, res Resolution) (*Grid, error) {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return nil, errors.New(ErrInvalidTempo).
			Component("grid").
			Category(errors.CategoryValidation).
			Context("bpm", bpm).
			Build()
	}
	if sig.BeatsPerBar < 1 || sig.BeatUnit < 1 || bits.OnesCount(uint(sig.BeatUnit)) != 1 {
		return nil, errors.New(ErrInvalidSignature).
			Component("grid").
			Category(errors.CategoryValidation).
			Context("signature", sig.String()).
			Build()
	}
	switch res {
	case Adaptive, Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth:
	default:
		return nil, errors.New(ErrInvalidResolution).
			Component("grid").
			Category(errors.CategoryValidation).
			Context("resolution", int(res)).
			Build()
	}

	return &Grid{bpm: bpm, sig: sig, resolution: res}, nil
}

// BPM returns the tempo.
func (g *Grid) BPM() float64 { return g.bpm }

// Signature returns the time signature.
func (g *Grid) Signature() TimeSignature { return g.sig }

// Resolution returns the resolution policy.
func (g *Grid) Resolution() Resolution { return g.resolution }

// SecondsPerBeat is 60/bpm.
func (g *Grid) SecondsPerBeat() float64 {
	return 60 / g.bpm
}

// SecondsPerBar is one beat times beats per bar.
func (g *Grid) SecondsPerBar() float64 {
	return g.SecondsPerBeat() * float64(g.sig.BeatsPerBar)
}

// Interval returns the snap step in seconds at zoom (pixels per second).
// Zoom only matters for Adaptive grids.
func (g *Grid) Interval(zoom float64) float64 {
	spb := g.SecondsPerBeat()
	if g.resolution != Adaptive {
		return spb / float64(g.resolution)
	}

	switch {
	case zoom < 15:
		return g.SecondsPerBar()
	case zoom < 30:
		return spb
	case zoom < 60:
		return spb / 2
	case zoom < 120:
		return spb / 4
	default:
		return spb / 8
	}
}

// Snap rounds t to the nearest grid line.
func (g *Grid) Snap(t, zoom float64) float64 {
	interval := g.Interval(zoom)
	return math.Round(t/interval) * interval
}

// SnapSamples snaps a sample position at sampleRate to the grid.
func (g *Grid) SnapSamples(samples int64, sampleRate int, zoom float64) int64 {
	if sampleRate <= 0 {
		return samples
	}
	step := g.Interval(zoom) * float64(sampleRate)
	return int64(math.Round(math.Round(float64(samples)/step) * step))
}

// Classify reports the strongest grid alignment of t.
func (g *Grid) Classify(t, zoom float64) Alignment {
	switch {
	case onMultiple(t, g.SecondsPerBar()):
		return Bar
	case onMultiple(t, g.SecondsPerBeat()):
		return Beat
	case onMultiple(t, g.Interval(zoom)):
		return Subdivision
	default:
		return None
	}
}

func onMultiple(t, step float64) bool {
	if step <= 0 {
		return false
	}
	n := math.Round(t / step)
	return math.Abs(t-n*step) <= alignTolerance
}

// BarBeat is a 1-indexed musical position.
type BarBeat struct {
	Bar      int     `yaml:"bar"`
	Beat     int     `yaml:"beat"`
	Fraction float64 `yaml:"fraction"` // progress through the beat, [0, 1)
}

func (bb BarBeat) String() string {
	return fmt.Sprintf("%d.%d.%03d", bb.Bar, bb.Beat, int(bb.Fraction*1000))
}

// Position converts a time to bar, beat and beat fraction. Negative times
// report the first beat.
func (g *Grid) Position(t float64) BarBeat {
	if t < 0 {
		t = 0
	}
	totalBeats := t / g.SecondsPerBeat()
	// absorb float noise so an exact bar line does not report the previous beat
	if r := math.Round(totalBeats); math.Abs(totalBeats-r) < 1e-9 {
		totalBeats = r
	}

	bpb := float64(g.sig.BeatsPerBar)
	whole := math.Floor(totalBeats)

	return BarBeat{
		Bar:      int(math.Floor(totalBeats/bpb)) + 1,
		Beat:     int(math.Mod(whole, bpb)) + 1,
		Fraction: totalBeats - whole,
	}
}

// Line is a grid line for the renderer.
type Line struct {
	Time      float64   `yaml:"time"`
	Alignment Alignment `yaml:"alignment"`
	Bar       int       `yaml:"bar"` // 1-indexed bar containing the line
	Emphasis  Emphasis  `yaml:"emphasis"`
}

// Lines returns the grid lines within [start, end] at zoom. Every 4th bar
// line is Phrase4 and every 8th is Phrase8, counting from bar 1. The range
// is clipped at time zero.
func (g *Grid) Lines(start, end, zoom float64) []Line {
	start = max(start, 0)
	if end < start {
		return nil
	}

	step := g.Interval(zoom)
	first := math.Ceil(start/step - alignTolerance)
	last := math.Floor(end/step + alignTolerance)
	if last < first {
		return nil
	}
	if last-first+1 > maxLines {
		last = first + maxLines - 1
	}

	lines := make([]Line, 0, int(last-first)+1)
	for k := first; k <= last; k++ {
		t := k * step
		line := Line{
			Time:      t,
			Alignment: g.Classify(t, zoom),
			Bar:       g.Position(t).Bar,
		}
		if line.Alignment == Bar {
			switch idx := line.Bar - 1; {
			case idx%8 == 0:
				line.Emphasis = Phrase8
			case idx%4 == 0:
				line.Emphasis = Phrase4
			}
		}
		lines = append(lines, line)
	}

	return lines
}
