// Package source reads audio file headers to build the source metadata
// that regions are validated against. Sample data is never decoded.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/patrickmn/go-cache"
	"github.com/tphakala/flac"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
	"github.com/tphakala/regionedit/internal/region"
)

// Sentinel errors
var (
	ErrUnsupportedFormat = errors.NewStd("unsupported audio format")
	ErrInvalidHeader     = errors.NewStd("invalid audio header")
)

// DefaultWorkers bounds ProbeAll when no worker count is given.
const DefaultWorkers = 4

// GetLogger returns the source package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("source")
}

// CacheObserver is told about every cache lookup.
type CacheObserver interface {
	RecordCacheLookup(hit bool)
}

// Prober reads WAV and FLAC headers and caches the results. A cached
// entry is keyed by path, size and modification time, so a rewritten file
// is probed again.
type Prober struct {
	cache    *cache.Cache
	workers  int
	log      logger.Logger
	recorder metrics.Recorder
	observer CacheObserver
}

// Option configures a Prober.
type Option func(*Prober)

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.log = l
		}
	}
}

// WithRecorder records probe outcomes to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Prober) {
		p.recorder = metrics.OrNoOp(r)
	}
}

// WithMetrics wires the recorder and cache hit counting to m.
func WithMetrics(m *metrics.EditMetrics) Option {
	return func(p *Prober) {
		if m != nil {
			p.recorder = m
			p.observer = m
		}
	}
}

// NewProber returns a Prober whose entries expire after ttl. ProbeAll runs
// at most workers probes at once.
func NewProber(ttl time.Duration, workers int, opts ...Option) *Prober {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Prober{
		// cleanupInterval 0 starts no janitor goroutine; expired entries
		// are dropped on lookup.
		cache:    cache.New(ttl, 0),
		workers:  workers,
		log:      GetLogger(),
		recorder: metrics.NoOpRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe returns the metadata of the audio file at path. The source id is
// the file name without its extension.
func (p *Prober) Probe(path string) (region.Source, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		err = errors.New(err).
			Component("source").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
		p.fail(err)
		return region.Source{}, err
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if v, ok := p.cache.Get(key); ok {
		p.observe(true)
		p.log.Debug("source cache hit", logger.String("path", path))
		return v.(region.Source), nil
	}
	p.observe(false)

	src, err := probeFile(path, info.Size())
	if err != nil {
		p.fail(err)
		return region.Source{}, err
	}

	p.cache.SetDefault(key, src)
	p.recorder.RecordOperation(metrics.OpProbe, metrics.StatusSuccess)
	p.recorder.RecordDuration(metrics.OpProbe, time.Since(start).Seconds())
	p.log.Debug("source probed",
		logger.String("path", path),
		logger.Int("sample_rate", src.SampleRate),
		logger.Int("channels", src.Channels),
		logger.Float64("duration", src.Duration))
	return src, nil
}

// ProbeAll probes paths concurrently and returns the sources in input
// order. The first failure cancels the rest.
func (p *Prober) ProbeAll(ctx context.Context, paths []string) ([]region.Source, error) {
	out := make([]region.Source, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := p.Probe(path)
			if err != nil {
				return err
			}
			out[i] = src
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.log.WithContext(ctx).Debug("sources probed",
		logger.Int("count", len(out)),
		logger.Int("workers", p.workers))
	return out, nil
}

// Len returns the number of cached entries, expired ones included until
// they are next looked up.
func (p *Prober) Len() int {
	return p.cache.ItemCount()
}

// Flush drops every cached entry.
func (p *Prober) Flush() {
	p.cache.Flush()
}

func (p *Prober) observe(hit bool) {
	if p.observer != nil {
		p.observer.RecordCacheLookup(hit)
	}
}

func (p *Prober) fail(err error) {
	category := errors.CategoryGeneric
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.Category
	}
	p.recorder.RecordOperation(metrics.OpProbe, metrics.StatusError)
	p.recorder.RecordError(metrics.OpProbe, string(category))
	p.log.Warn("source probe failed", logger.Error(err))
}

func probeFile(path string, size int64) (region.Source, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var probe func(*os.File) (region.Source, error)
	switch ext {
	case ".wav", ".wave":
		probe = probeWAV
	case ".flac":
		probe = probeFLAC
	default:
		return region.Source{}, errors.New(ErrUnsupportedFormat).
			Component("source").
			Category(errors.CategoryFileParsing).
			FileContext(path, size).
			Build()
	}

	f, err := os.Open(path)
	if err != nil {
		return region.Source{}, errors.New(err).
			Component("source").
			Category(errors.CategoryFileIO).
			FileContext(path, size).
			Build()
	}
	defer f.Close()

	src, err := probe(f)
	if err != nil {
		return region.Source{}, errors.New(fmt.Errorf("%w: %w", ErrInvalidHeader, err)).
			Component("source").
			Category(errors.CategoryAudioSource).
			FileContext(path, size).
			Build()
	}

	src.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	src.Path = path
	return src, nil
}

func probeWAV(f *os.File) (region.Source, error) {
	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return region.Source{}, errors.NewStd("not a valid WAV file")
	}

	if decoder.BitDepth < 8 || decoder.NumChans == 0 || decoder.SampleRate == 0 {
		return region.Source{}, fmt.Errorf("unsupported WAV format: %d bit, %d channels", decoder.BitDepth, decoder.NumChans)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return region.Source{}, fmt.Errorf("locating PCM chunk: %w", err)
	}

	frameBytes := int64(decoder.BitDepth/8) * int64(decoder.NumChans)
	frames := decoder.PCMLen() / frameBytes
	if frames <= 0 {
		return region.Source{}, errors.NewStd("WAV file has no audio data")
	}

	return region.Source{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		Duration:   float64(frames) / float64(decoder.SampleRate),
	}, nil
}

func probeFLAC(f *os.File) (region.Source, error) {
	decoder, err := flac.NewDecoder(f)
	if err != nil {
		return region.Source{}, err
	}
	if decoder.SampleRate <= 0 || decoder.TotalSamples == 0 {
		return region.Source{}, errors.NewStd("FLAC stream info has no sample count")
	}

	return region.Source{
		SampleRate: decoder.SampleRate,
		Channels:   decoder.NChannels,
		Duration:   float64(decoder.TotalSamples) / float64(decoder.SampleRate),
	}, nil
}
