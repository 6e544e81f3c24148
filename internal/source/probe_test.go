package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("testing.(*T).Run"))
}

// writeWAV writes a silent 16-bit PCM file of frames sample frames.
func writeWAV(t *testing.T, path string, rate, channels, frames int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func newTestProber(t *testing.T) (*Prober, *metrics.TestRecorder) {
	t.Helper()
	rec := metrics.NewTestRecorder()
	p := NewProber(time.Minute, 2,
		WithLogger(logger.NewDiscardLogger()),
		WithRecorder(rec))
	return p, rec
}

func TestProbeWAV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "kick.wav")
	writeWAV(t, path, 8000, 2, 12000)

	p, rec := newTestProber(t)
	src, err := p.Probe(path)
	require.NoError(t, err)

	assert.Equal(t, "kick", src.ID)
	assert.Equal(t, path, src.Path)
	assert.Equal(t, 8000, src.SampleRate)
	assert.Equal(t, 2, src.Channels)
	assert.InDelta(t, 1.5, src.Duration, 1e-9)

	assert.Equal(t, 1, rec.GetOperationCount(metrics.OpProbe, metrics.StatusSuccess))
	assert.Len(t, rec.GetDurations(metrics.OpProbe), 1)
}

func TestProbeCachesByFileIdentity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "loop.wav")
	writeWAV(t, path, 8000, 1, 8000)

	registry := prometheus.NewRegistry()
	m, err := metrics.NewEditMetrics(registry)
	require.NoError(t, err)

	p := NewProber(time.Minute, 1, WithLogger(logger.NewDiscardLogger()), WithMetrics(m))

	first, err := p.Probe(path)
	require.NoError(t, err)
	second, err := p.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.Len())

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.SourceCacheTotal.WithLabelValues(metrics.CacheHit)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.SourceCacheTotal.WithLabelValues(metrics.CacheMiss)), 0)

	// A rewritten file has a different size and is probed again.
	writeWAV(t, path, 8000, 1, 16000)
	third, err := p.Probe(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, third.Duration, 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.SourceCacheTotal.WithLabelValues(metrics.CacheMiss)), 0)

	p.Flush()
	assert.Equal(t, 0, p.Len())
}

func TestProbeErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	notAudio := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notAudio, []byte("hello"), 0o600))

	badFLAC := filepath.Join(dir, "broken.flac")
	require.NoError(t, os.WriteFile(badFLAC, []byte("definitely not flac"), 0o600))

	badWAV := filepath.Join(dir, "broken.wav")
	require.NoError(t, os.WriteFile(badWAV, []byte("RIFF....WAVE"), 0o600))

	tests := []struct {
		name     string
		path     string
		category errors.ErrorCategory
		sentinel error
	}{
		{"missing file", filepath.Join(dir, "missing.wav"), errors.CategoryFileIO, nil},
		{"unsupported extension", notAudio, errors.CategoryFileParsing, ErrUnsupportedFormat},
		{"invalid flac", badFLAC, errors.CategoryAudioSource, ErrInvalidHeader},
		{"invalid wav", badWAV, errors.CategoryAudioSource, ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, rec := newTestProber(t)
			_, err := p.Probe(tt.path)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.category), "got %v", err)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, 1, rec.GetOperationCount(metrics.OpProbe, metrics.StatusError))
			assert.Equal(t, 1, rec.GetErrorCount(metrics.OpProbe, string(tt.category)))
			assert.Equal(t, 0, p.Len())
		})
	}
}

func TestProbeAllKeepsInputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav"} {
		path := filepath.Join(dir, name)
		writeWAV(t, path, 8000, 1, 4000*(i+1))
		paths = append(paths, path)
	}

	p, _ := newTestProber(t)
	sources, err := p.ProbeAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, sources, len(paths))

	for i, src := range sources {
		assert.Equal(t, paths[i], src.Path)
		assert.InDelta(t, 0.5*float64(i+1), src.Duration, 1e-9)
	}
}

func TestProbeAllFailsFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.wav")
	writeWAV(t, good, 8000, 1, 800)

	p, _ := newTestProber(t)
	sources, err := p.ProbeAll(context.Background(), []string{good, filepath.Join(dir, "gone.wav")})
	require.Error(t, err)
	assert.Nil(t, sources)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestProbeAllCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newTestProber(t)
	_, err := p.ProbeAll(ctx, []string{"x.wav"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewProberDefaultsWorkers(t *testing.T) {
	t.Parallel()

	p := NewProber(time.Second, 0)
	assert.Equal(t, DefaultWorkers, p.workers)
}
