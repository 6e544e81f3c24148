package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/regionedit/cmd/batch"
	"github.com/tphakala/regionedit/cmd/crossfade"
	"github.com/tphakala/regionedit/cmd/probe"
	"github.com/tphakala/regionedit/cmd/ripple"
	"github.com/tphakala/regionedit/cmd/split"
	"github.com/tphakala/regionedit/internal/cli"
	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/project"
	"github.com/tphakala/regionedit/internal/region"
)

const fixture = "testdata/timeline.yaml"

// The commands share viper and the global logger, so these tests do not
// run in parallel.

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	err := Execute(context.Background(), cli.NewContext(&out), args)
	return out.String(), err
}

func runYAML(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), v), out)
}

func byID(regions []region.Region) map[string]region.Region {
	m := make(map[string]region.Region, len(regions))
	for _, r := range regions {
		m[r.ID] = r
	}
	return m
}

func TestSplitCommand(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.yaml")

	var res split.Result
	runYAML(t, &res, "split", "-t", fixture, "--region", "d2", "--at", "3.5", "-o", outPath)

	assert.InDelta(t, 3.5, res.SplitTime, 1e-9)
	assert.InDelta(t, 1.5, res.Left.Duration, 1e-9)
	assert.InDelta(t, 3.5, res.Right.StartTime, 1e-9)
	assert.InDelta(t, 3.5, res.Right.BufferOffset, 1e-9)
	assert.InDelta(t, 0.5, res.Left.FadeIn, 1e-9)
	assert.Zero(t, res.Right.FadeIn)

	p, err := project.LoadFile(outPath)
	require.NoError(t, err)
	assert.Len(t, p.Regions(), 6)
	_, err = p.Region("d2")
	assert.True(t, errors.IsNotFound(err))
}

func TestSplitCommandSnaps(t *testing.T) {
	var res split.Result
	runYAML(t, &res, "split", "-t", fixture, "--region", "d2", "--at", "3.56",
		"--snap", "--bpm", "120", "--resolution", "1/4")

	assert.InDelta(t, 3.5, res.SplitTime, 1e-9)
	assert.InDelta(t, 3.5, res.Right.StartTime, 1e-9)
}

func TestSplitCommandRejectsOutsidePoint(t *testing.T) {
	_, err := run(t, "split", "-t", fixture, "--region", "d2", "--at", "9")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestRippleCommand(t *testing.T) {
	var res ripple.Result
	runYAML(t, &res, "ripple", "-t", fixture, "--track", "drums", "--regions", "d2")

	assert.InDelta(t, 3.0, res.Amounts["drums"], 1e-9)
	got := byID(res.Regions)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.0, got["d1"].StartTime, 1e-9)
	assert.InDelta(t, 3.0, got["d3"].StartTime, 1e-9)
}

func TestRippleCommandDeletesOnEveryTrack(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.yaml")
	var res ripple.Result
	runYAML(t, &res, "ripple", "-t", fixture, "--track", "drums", "--regions", "d2,b1", "-o", outPath)

	// d2 [2,5) and b1 [1,5) together span 4 seconds.
	assert.InDelta(t, 4.0, res.Amounts["drums"], 1e-9)
	got := byID(res.Regions)
	require.Len(t, got, 2)
	assert.InDelta(t, 2.0, got["d3"].StartTime, 1e-9)

	p, err := project.LoadFile(outPath)
	require.NoError(t, err)
	_, err = p.Region("b1")
	require.ErrorIs(t, err, project.ErrRegionNotFound)
	b2, err := p.Region("b2")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, b2.StartTime, 1e-9, "bass is not shifted")
}

func TestRippleCommandAllTracks(t *testing.T) {
	var res ripple.Result
	runYAML(t, &res, "ripple", "-t", fixture, "--all-tracks", "--regions", "d2,b1")

	assert.InDelta(t, 3.0, res.Amounts["drums"], 1e-9)
	assert.InDelta(t, 4.0, res.Amounts["bass"], 1e-9)
	assert.Len(t, res.Regions, 3)
}

func TestRippleCommandNeedsTrack(t *testing.T) {
	_, err := run(t, "ripple", "-t", fixture, "--regions", "d2")
	require.Error(t, err)
}

func TestCrossfadesCommand(t *testing.T) {
	var res crossfade.Result
	runYAML(t, &res, "crossfades", "-t", fixture)
	require.Len(t, res.Zones, 1)
	assert.Equal(t, "bass", res.Zones[0].TrackID)
	assert.InDelta(t, 0.5, res.Zones[0].Duration, 1e-9)

	runYAML(t, &res, "crossfades", "-t", fixture, "--cross-track")
	assert.Len(t, res.Zones, 5)
}

func TestSnapCommand(t *testing.T) {
	var res struct {
		BPM    float64 `yaml:"bpm"`
		Points []struct {
			Snapped   float64 `yaml:"snapped"`
			Interval  float64 `yaml:"interval"`
			Alignment string  `yaml:"alignment"`
			Position  string  `yaml:"position"`
		} `yaml:"points"`
		Lines []struct {
			Time float64 `yaml:"time"`
		} `yaml:"lines"`
	}
	runYAML(t, &res, "snap", "1.06", "2.01", "--bpm", "120", "--resolution", "1/4", "--from", "0", "--to", "1")

	assert.InDelta(t, 120.0, res.BPM, 0)
	require.Len(t, res.Points, 2)
	assert.InDelta(t, 1.0, res.Points[0].Snapped, 1e-9)
	assert.InDelta(t, 0.125, res.Points[0].Interval, 1e-9)
	assert.Equal(t, "beat", res.Points[0].Alignment)
	assert.Equal(t, "1.3.000", res.Points[0].Position)
	assert.InDelta(t, 2.0, res.Points[1].Snapped, 1e-9)
	assert.Equal(t, "bar", res.Points[1].Alignment)
	assert.Equal(t, "2.1.000", res.Points[1].Position)

	require.NotEmpty(t, res.Lines)
	assert.InDelta(t, 0.0, res.Lines[0].Time, 1e-9)
}

func TestSnapCommandRejectsBadTime(t *testing.T) {
	_, err := run(t, "snap", "soon")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestBatchCommands(t *testing.T) {
	var res batch.Result
	runYAML(t, &res, "batch", "move", "-t", fixture, "-r", "d1,d3", "--by", "1")
	got := byID(res.Regions)
	assert.InDelta(t, 1.0, got["d1"].StartTime, 1e-9)
	assert.InDelta(t, 7.0, got["d3"].StartTime, 1e-9)

	runYAML(t, &res, "batch", "gain", "-t", fixture, "-r", "b1,d1", "--multiplier", "2")
	got = byID(res.Regions)
	assert.InDelta(t, 1.6, got["b1"].Gain, 1e-9)
	assert.InDelta(t, region.MaxGain, got["d1"].Gain, 1e-9)

	runYAML(t, &res, "batch", "fades", "-t", fixture, "-r", "d1,d3", "--in", "0.4", "--out", "5", "--curve-out", "logarithmic")
	for _, r := range res.Regions {
		assert.InDelta(t, 0.4, r.FadeIn, 1e-9)
		assert.InDelta(t, 1.0, r.FadeOut, 1e-9, "fade out clamps to half the duration")
		assert.Equal(t, region.Logarithmic, r.FadeOutCurve)
	}

	runYAML(t, &res, "batch", "align", "-t", fixture, "-r", "b1,b2", "--at", "10", "--point", "end")
	for _, r := range res.Regions {
		assert.InDelta(t, 10.0, r.EndTime(), 1e-9)
	}

	runYAML(t, &res, "batch", "duplicate", "-t", fixture, "-r", "d1")
	require.Len(t, res.Regions, 1)
	assert.NotEqual(t, "d1", res.Regions[0].ID)
	assert.InDelta(t, 2.0, res.Regions[0].StartTime, 1e-9)

	runYAML(t, &res, "batch", "color", "-t", fixture, "-r", "d1", "--color", "#ff8800")
	assert.Equal(t, "#ff8800", res.Regions[0].Color)
}

func TestBatchLockSkipsGeometricEdits(t *testing.T) {
	locked := filepath.Join(t.TempDir(), "locked.yaml")

	var res batch.Result
	runYAML(t, &res, "batch", "lock", "-t", fixture, "-r", "d1", "-o", locked)
	assert.True(t, res.Regions[0].Locked)

	runYAML(t, &res, "batch", "move", "-t", locked, "-r", "d1,d3", "--by", "1")
	got := byID(res.Regions)
	assert.InDelta(t, 0.0, got["d1"].StartTime, 1e-9)
	assert.InDelta(t, 7.0, got["d3"].StartTime, 1e-9)

	runYAML(t, &res, "batch", "unlock", "-t", locked, "-r", "d1")
	assert.False(t, res.Regions[0].Locked)
}

func TestBatchUnknownRegionCommitsNothing(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.yaml")
	_, err := run(t, "batch", "move", "-t", fixture, "-r", "d1,nope", "--by", "1", "-o", outPath)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.NoFileExists(t, outPath)
}

func TestBatchBounds(t *testing.T) {
	var res batch.BoundsResult
	runYAML(t, &res, "batch", "bounds", "-t", fixture)
	require.NotNil(t, res.Bounds)
	assert.InDelta(t, 0.0, res.Bounds.StartTime, 1e-9)
	assert.InDelta(t, 8.0, res.Bounds.EndTime, 1e-9)

	runYAML(t, &res, "batch", "bounds", "-t", fixture, "-r", "b1,b2")
	assert.InDelta(t, 1.0, res.Bounds.StartTime, 1e-9)
	assert.InDelta(t, 6.5, res.Bounds.Duration, 1e-9)
}

type dragTrace struct {
	Cursor string `yaml:"cursor"`
	Steps  []struct {
		Event string `yaml:"event"`
		State string `yaml:"state"`
	} `yaml:"steps"`
	Regions []region.Region `yaml:"regions"`
}

func TestDragMove(t *testing.T) {
	var res dragTrace
	runYAML(t, &res, "drag", "-t", fixture, "-r", "d2", "--at", "350", "--to", "380,400")

	assert.Equal(t, "move", res.Cursor)
	require.Len(t, res.Steps, 4)
	assert.Equal(t, "moving", res.Steps[0].State)
	assert.Equal(t, "up", res.Steps[3].Event)
	assert.Equal(t, "idle", res.Steps[3].State)

	got := byID(res.Regions)
	assert.InDelta(t, 2.5, got["d2"].StartTime, 1e-9)
	assert.InDelta(t, 3.0, got["d2"].Duration, 1e-9)
}

func TestDragTrimLeft(t *testing.T) {
	var res dragTrace
	runYAML(t, &res, "drag", "-t", fixture, "-r", "d2", "--at", "203", "--to", "303")

	assert.Equal(t, "w-resize", res.Cursor)
	assert.Equal(t, "trimming-left", res.Steps[0].State)

	d2 := byID(res.Regions)["d2"]
	assert.InDelta(t, 3.0, d2.StartTime, 1e-9)
	assert.InDelta(t, 2.0, d2.Duration, 1e-9)
	assert.InDelta(t, 3.0, d2.BufferOffset, 1e-9)
	assert.InDelta(t, 5.0, d2.EndTime(), 1e-9)
}

func TestDragDuplicateCancel(t *testing.T) {
	var res dragTrace
	runYAML(t, &res, "drag", "-t", fixture, "-r", "d2", "--mods", "alt", "--at", "350", "--to", "600", "--cancel")

	assert.Equal(t, "duplicating", res.Steps[0].State)
	assert.Equal(t, "cancel", res.Steps[len(res.Steps)-1].Event)
	assert.Len(t, res.Regions, 3)
	assert.InDelta(t, 2.0, byID(res.Regions)["d2"].StartTime, 1e-9)
}

func TestDragDuplicateRelease(t *testing.T) {
	var res dragTrace
	runYAML(t, &res, "drag", "-t", fixture, "-r", "d2", "--mods", "alt", "--at", "350", "--to", "600")
	assert.Len(t, res.Regions, 4)
}

func TestDragSplitTool(t *testing.T) {
	var res dragTrace
	runYAML(t, &res, "drag", "-t", fixture, "-r", "d2", "--tool", "split", "--at", "350")

	require.Len(t, res.Steps, 1)
	assert.Len(t, res.Regions, 4)
	_, ok := byID(res.Regions)["d2"]
	assert.False(t, ok)
}

func TestDragLockedRegion(t *testing.T) {
	locked := filepath.Join(t.TempDir(), "locked.yaml")
	_, err := run(t, "batch", "lock", "-t", fixture, "-r", "d2", "-o", locked)
	require.NoError(t, err)

	_, err = run(t, "drag", "-t", locked, "-r", "d2", "--at", "350", "--to", "400")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func TestDragPastSourceEnd(t *testing.T) {
	// Trim-right of d3 (offset 6 of a 20 s source) stops at the source end.
	var res dragTrace
	runYAML(t, &res, "drag", "-t", fixture, "-r", "d3", "--at", "798", "--to", "5000")

	d3 := byID(res.Regions)["d3"]
	assert.InDelta(t, 14.0, d3.Duration, 1e-9)
	assert.InDelta(t, 20.0, d3.BufferOffset+d3.BufferDuration, 1e-9)
}

func TestProbeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           make([]int, 8000),
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	var res probe.Result
	runYAML(t, &res, "probe", path)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "tone", res.Sources[0].ID)
	assert.Equal(t, 16000, res.Sources[0].SampleRate)
	assert.InDelta(t, 0.5, res.Sources[0].Duration, 1e-9)
}

func TestConfigCommandAppliesFlagsAndEnv(t *testing.T) {
	t.Setenv("REGIONEDIT_GRID_RESOLUTION", "1/8")

	var res struct {
		Grid struct {
			BPM        float64 `yaml:"bpm"`
			Resolution string  `yaml:"resolution"`
		} `yaml:"grid"`
		Timeline struct {
			Zoom float64 `yaml:"zoom"`
		} `yaml:"timeline"`
	}
	runYAML(t, &res, "config", "--bpm", "140")

	assert.InDelta(t, 140.0, res.Grid.BPM, 0)
	assert.Equal(t, "1/8", res.Grid.Resolution)
	assert.InDelta(t, 100.0, res.Timeline.Zoom, 0)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid:\n  bpm: 90\ncrossfade:\n  same_track_only: false\n"), 0o600))

	var res crossfade.Result
	runYAML(t, &res, "crossfades", "-t", fixture, "--config", path)
	assert.Len(t, res.Zones, 5)
}

func TestMetricsDump(t *testing.T) {
	out, err := run(t, "crossfades", "-t", fixture, "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "regionedit_crossfade_zones 1")
	assert.Contains(t, out, `regionedit_operations_total{operation="load",status="success"} 1`)
	assert.Contains(t, out, "regionedit_regions 5")
}

func TestMissingTimeline(t *testing.T) {
	_, err := run(t, "crossfades", "-t", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}
