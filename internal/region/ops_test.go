package region

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/regionedit/internal/errors"
)

func TestSplitExample(t *testing.T) {
	t.Parallel()

	r := newRegion("r1", "t1", 2, 4)

	a, b, err := Split(r, 3)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, a.StartTime, 1e-12)
	assert.InDelta(t, 1.0, a.Duration, 1e-12)
	assert.InDelta(t, 1.0, a.BufferDuration, 1e-12)
	assert.InDelta(t, 0.0, a.BufferOffset, 1e-12)

	assert.InDelta(t, 3.0, b.StartTime, 1e-12)
	assert.InDelta(t, 3.0, b.Duration, 1e-12)
	assert.InDelta(t, 1.0, b.BufferOffset, 1e-12)
	assert.InDelta(t, 3.0, b.BufferDuration, 1e-12)

	assert.Equal(t, "t1", a.TrackID)
	assert.Equal(t, "t1", b.TrackID)
}

func TestSplitPartitionsContent(t *testing.T) {
	t.Parallel()

	r := newRegion("r1", "t1", 0.5, 7.3)
	r.BufferOffset = 0.8
	r.BufferDuration = 7.3
	r.SampleRate = 44100
	r.FadeIn = 1
	r.FadeOut = 2

	for _, at := range []float64{0.5001, 1.234, 4, 7.7999} {
		a, b, err := Split(r, at)
		require.NoError(t, err, "split at %g", at)

		assert.InDelta(t, r.Duration, a.Duration+b.Duration, 1e-9)
		assert.InDelta(t, a.BufferOffset+a.Duration, b.BufferOffset, 1e-9)
		assert.InDelta(t, r.BufferDuration, a.BufferDuration+b.BufferDuration, 1e-9)
		assert.InDelta(t, a.EndTime(), b.StartTime, 1e-12)

		assert.Zero(t, a.FadeOut, "cut edge has no fade")
		assert.Zero(t, b.FadeIn, "cut edge has no fade")
		assert.LessOrEqual(t, a.FadeIn, a.Duration/2)
		assert.LessOrEqual(t, b.FadeOut, b.Duration/2)

		assert.Equal(t, int64(math.Round(at*44100)), b.StartTimeSamples, "sample mirror follows start")
	}
}

func TestSplitIDs(t *testing.T) {
	t.Parallel()

	r := newRegion("r1", "t1", 0, 4)

	a1, b1, err := Split(r, 1)
	require.NoError(t, err)
	a2, b2, err := Split(r, 1)
	require.NoError(t, err)
	a3, _, err := Split(r, 2)
	require.NoError(t, err)

	assert.NotEqual(t, r.ID, a1.ID)
	assert.NotEqual(t, r.ID, b1.ID)
	assert.NotEqual(t, a1.ID, b1.ID)
	assert.Equal(t, a1.ID, a2.ID, "derivation is deterministic")
	assert.Equal(t, b1.ID, b2.ID, "derivation is deterministic")
	assert.NotEqual(t, a1.ID, a3.ID, "different cut, different id")
}

func TestSplitRejects(t *testing.T) {
	t.Parallel()

	r := newRegion("r1", "t1", 2, 4)

	for _, at := range []float64{2, 6, 1, 7} {
		_, _, err := Split(r, at)
		require.Error(t, err, "split at %g", at)
		assert.ErrorIs(t, err, ErrInvalidSplit)
		assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	}

	locked := r
	locked.Locked = true
	_, _, err := Split(locked, 3)
	assert.ErrorIs(t, err, ErrRegionLocked)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))

	short := r
	short.BufferDuration = 0.5
	_, _, err = Split(short, 3)
	assert.ErrorIs(t, err, ErrWindowExceedsSource)
	assert.True(t, errors.IsIntegrity(err))
}

func TestDuplicate(t *testing.T) {
	t.Parallel()

	r := newRegion("r1", "t1", 2, 4)
	r.BufferOffset = 0.5
	r.FadeIn = 1
	r.FadeOut = 1.5
	r.Gain = 0.7
	r.Color = "#ff0000"

	d := Duplicate(r)
	assert.NotEqual(t, r.ID, d.ID)
	assert.NotEmpty(t, d.ID)
	assert.InDelta(t, 6.0, d.StartTime, 1e-12)

	// everything but id and start is copied verbatim
	d.ID, d.StartTime = r.ID, r.StartTime
	assert.Equal(t, r, d)

	back := DuplicateBy(r, -10)
	assert.InDelta(t, 0.0, back.StartTime, 0)
}
