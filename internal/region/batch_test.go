package region

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/regionedit/internal/errors"
)

func byID(regions []Region) map[string]Region {
	m := make(map[string]Region, len(regions))
	for _, r := range regions {
		m[r.ID] = r
	}
	return m
}

func TestMoveRegions(t *testing.T) {
	t.Parallel()

	in := []Region{newRegion("a", "t", 1, 2), newRegion("b", "t", 5, 2)}
	in[1].Locked = true

	out, err := MoveRegions(in, -3)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, out[0].StartTime, 0, "clamped at zero")
	assert.InDelta(t, 5.0, out[1].StartTime, 0, "locked region untouched")
	assert.InDelta(t, 1.0, in[0].StartTime, 0, "input not modified")

	_, err = MoveRegions(in, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestAdjustGain(t *testing.T) {
	t.Parallel()

	in := []Region{newRegion("a", "t", 0, 1), newRegion("b", "t", 1, 1), newRegion("c", "t", 2, 1)}
	in[1].Gain = 1.5

	out, err := AdjustGain(in, 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out[0].Gain, 1e-12)
	assert.InDelta(t, 2.0, out[1].Gain, 0, "clamped to max gain")

	out, err = AdjustGain(in, -1)
	require.NoError(t, err)
	for _, r := range out {
		assert.InDelta(t, 0.0, r.Gain, 0)
	}

	_, err = AdjustGain(in, math.Inf(1))
	assert.Error(t, err)
}

func TestApplyFadesClampsPerRegion(t *testing.T) {
	t.Parallel()

	in := []Region{newRegion("short", "t", 0, 1), newRegion("long", "t", 2, 10)}

	out, err := ApplyFades(in, 2, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out[0].FadeIn, 0)
	assert.InDelta(t, 0.5, out[0].FadeOut, 0)
	assert.InDelta(t, 2.0, out[1].FadeIn, 0)
	assert.InDelta(t, 3.0, out[1].FadeOut, 0)

	out, err = ApplyFades(in, -1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out[1].FadeIn, 0)
}

func TestSetLockedAndColor(t *testing.T) {
	t.Parallel()

	in := []Region{newRegion("a", "t", 0, 1), newRegion("b", "t", 1, 1)}
	in[1].Locked = true

	locked := SetLocked(in, true)
	assert.True(t, locked[0].Locked)
	assert.True(t, locked[1].Locked)

	colored := SetColor(in, "#00ff00")
	assert.Equal(t, "#00ff00", colored[0].Color)
	assert.Equal(t, "#00ff00", colored[1].Color, "color applies to locked regions")
	assert.Empty(t, in[0].Color)
}

func TestDuplicateRegions(t *testing.T) {
	t.Parallel()

	in := []Region{newRegion("a", "t", 0, 1), newRegion("b", "t", 3, 2)}

	out := DuplicateRegions(in)
	require.Len(t, out, 2)
	assert.InDelta(t, 1.0, out[0].StartTime, 0, "offset defaults to own duration")
	assert.InDelta(t, 5.0, out[1].StartTime, 0)
	assert.NotEqual(t, out[0].ID, out[1].ID)

	out, err := DuplicateRegionsBy(in, 8)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, out[0].StartTime, 0)
	assert.InDelta(t, 11.0, out[1].StartTime, 0)
}

func TestAlignToTime(t *testing.T) {
	t.Parallel()

	in := []Region{newRegion("a", "t", 0, 2), newRegion("b", "t", 7, 4)}

	tests := []struct {
		point AlignPoint
		want  [2]float64
	}{
		{AlignStart, [2]float64{5, 5}},
		{AlignCenter, [2]float64{4, 3}},
		{AlignEnd, [2]float64{3, 1}},
	}

	for _, tt := range tests {
		out, err := AlignToTime(in, 5, tt.point)
		require.NoError(t, err)
		assert.InDelta(t, tt.want[0], out[0].StartTime, 1e-12, tt.point.String())
		assert.InDelta(t, tt.want[1], out[1].StartTime, 1e-12, tt.point.String())
	}

	out, err := AlignToTime(in, 1, AlignEnd)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out[1].StartTime, 0, "clamped at zero")

	_, err = AlignToTime(in, 1, AlignPoint(7))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	p, err := ParseAlignPoint("Center")
	require.NoError(t, err)
	assert.Equal(t, AlignCenter, p)
	_, err = ParseAlignPoint("middle")
	assert.Error(t, err)
}

func TestBoundingBox(t *testing.T) {
	t.Parallel()

	_, ok := BoundingBox(nil)
	assert.False(t, ok)

	b, ok := BoundingBox([]Region{
		newRegion("a", "t1", 4, 2),
		newRegion("b", "t2", 1, 1),
		newRegion("c", "t1", 3, 6),
	})
	require.True(t, ok)
	assert.InDelta(t, 1.0, b.StartTime, 0)
	assert.InDelta(t, 9.0, b.EndTime, 0)
	assert.InDelta(t, 8.0, b.Duration, 0)
}

func TestRippleDeleteExample(t *testing.T) {
	t.Parallel()

	all := []Region{
		newRegion("r0", "t1", 0, 2),
		newRegion("r1", "t1", 2, 3),
		newRegion("r2", "t1", 6, 2),
		newRegion("other", "t2", 6, 2),
	}

	out, amount := RippleDelete(all, []string{"r1"}, "t1")
	assert.InDelta(t, 3.0, amount, 1e-12)

	got := byID(out)
	require.Len(t, got, 3)
	assert.NotContains(t, got, "r1")
	assert.InDelta(t, 0.0, got["r0"].StartTime, 0, "before the gap: unchanged")
	assert.InDelta(t, 3.0, got["r2"].StartTime, 1e-12)
	r2 := got["r2"]
	assert.InDelta(t, 5.0, r2.EndTime(), 1e-12)
	assert.InDelta(t, 6.0, got["other"].StartTime, 0, "other tracks untouched")
}

func TestRippleDeleteSpanAndClamp(t *testing.T) {
	t.Parallel()

	all := []Region{
		newRegion("d1", "t1", 1, 1),      // deleted
		newRegion("mid", "t1", 2.5, 1),   // inside the span, kept in place
		newRegion("d2", "t1", 4, 2),      // deleted, span is [1, 6)
		newRegion("after", "t1", 6, 1),   // shifted by 5
		newRegion("far", "t1", 20, 1),    // shifted by 5
		newRegion("lock", "t1", 10, 1),   // locked, not shifted
		newRegion("x", "t2", 3, 1),       // deleted on another track
		newRegion("t2after", "t2", 8, 1), // its track does not ripple
	}
	all[5].Locked = true

	out, amount := RippleDelete(all, []string{"d1", "d2", "x", "missing"}, "t1")
	assert.InDelta(t, 5.0, amount, 1e-12)

	got := byID(out)
	assert.Len(t, got, 5)
	assert.InDelta(t, 2.5, got["mid"].StartTime, 0)
	assert.InDelta(t, 1.0, got["after"].StartTime, 1e-12)
	assert.InDelta(t, 15.0, got["far"].StartTime, 1e-12)
	assert.InDelta(t, 10.0, got["lock"].StartTime, 0)
	assert.InDelta(t, 8.0, got["t2after"].StartTime, 0)
	assert.NotContains(t, got, "x")
}

func TestRippleDeleteSpanCoversOtherTracks(t *testing.T) {
	t.Parallel()

	all := []Region{
		newRegion("a", "A", 0, 10),
		newRegion("b", "B", 20, 2),
		newRegion("b2", "B", 30, 2),
		newRegion("a2", "A", 40, 2),
	}

	out, amount := RippleDelete(all, []string{"a", "b"}, "B")
	assert.InDelta(t, 22.0, amount, 1e-12, "gap runs from the earliest start to the latest end")

	got := byID(out)
	require.Len(t, got, 2)
	assert.InDelta(t, 8.0, got["b2"].StartTime, 1e-12)
	assert.InDelta(t, 40.0, got["a2"].StartTime, 0, "only the named track ripples")
}

func TestRippleDeleteOnlyOtherTrackDeleted(t *testing.T) {
	t.Parallel()

	all := []Region{
		newRegion("a", "A", 0, 4),
		newRegion("b", "B", 6, 2),
	}

	out, amount := RippleDelete(all, []string{"a"}, "B")
	assert.InDelta(t, 4.0, amount, 1e-12)

	got := byID(out)
	require.Len(t, got, 1)
	assert.InDelta(t, 2.0, got["b"].StartTime, 1e-12)
}

func TestRippleDeleteLockedTargetSurvives(t *testing.T) {
	t.Parallel()

	all := []Region{newRegion("a", "t1", 0, 2), newRegion("b", "t1", 4, 2)}
	all[0].Locked = true

	out, amount := RippleDelete(all, []string{"a"}, "t1")
	assert.Zero(t, amount)
	assert.Equal(t, all, out)
}

func TestRippleDeleteEmptySelection(t *testing.T) {
	t.Parallel()

	all := []Region{newRegion("a", "t1", 0, 2)}
	out, amount := RippleDelete(all, nil, "t1")
	assert.Zero(t, amount)
	assert.Equal(t, all, out)
}

func TestRippleDeleteAll(t *testing.T) {
	t.Parallel()

	all := []Region{
		newRegion("a1", "t1", 0, 2),
		newRegion("a2", "t1", 3, 1),
		newRegion("b1", "t2", 1, 4),
		newRegion("b2", "t2", 6, 1),
	}

	out, amounts := RippleDeleteAll(all, []string{"a1", "b1"})
	assert.InDelta(t, 2.0, amounts["t1"], 1e-12)
	assert.InDelta(t, 4.0, amounts["t2"], 1e-12)

	got := byID(out)
	assert.InDelta(t, 1.0, got["a2"].StartTime, 1e-12)
	assert.InDelta(t, 2.0, got["b2"].StartTime, 1e-12)
}
