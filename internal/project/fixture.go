package project

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/regionedit/internal/errors"
	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
	"github.com/tphakala/regionedit/internal/region"
)

// Timeline is the YAML document form of a project.
type Timeline struct {
	Tracks  []region.Track  `yaml:"tracks"`
	Sources []region.Source `yaml:"sources,omitempty"`
	Regions []region.Region `yaml:"regions"`
}

// Load decodes a timeline document and builds a validated project.
// Unknown keys are rejected.
func Load(r io.Reader, opts ...Option) (*Project, error) {
	start := time.Now()
	p := New(opts...)

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Timeline
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		err = errors.New(fmt.Errorf("decode timeline: %w", err)).
			Component("project").
			Category(errors.CategoryFileParsing).
			Build()
		p.fail(metrics.OpLoad, err)
		return nil, err
	}

	if err := p.populate(doc); err != nil {
		p.fail(metrics.OpLoad, err)
		return nil, err
	}

	p.done(metrics.OpLoad, start)
	p.log.Debug("timeline loaded",
		logger.Int("tracks", len(doc.Tracks)),
		logger.Int("sources", len(doc.Sources)),
		logger.Int("regions", len(doc.Regions)))
	return p, nil
}

// LoadFile reads a timeline document from path.
func LoadFile(path string, opts ...Option) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("project").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	return Load(bytes.NewReader(data), opts...)
}

func (p *Project) populate(doc Timeline) error {
	for _, t := range doc.Tracks {
		if err := p.AddTrack(t); err != nil {
			return err
		}
	}
	for _, s := range doc.Sources {
		if err := p.AddSource(s); err != nil {
			return err
		}
	}

	regions := make([]region.Region, len(doc.Regions))
	for i, r := range doc.Regions {
		if r.ID == "" {
			r.ID = region.NewID()
		}
		if r.BufferDuration == 0 {
			r.BufferDuration = r.Duration
		}
		if src, ok := p.sources[r.SourceID]; ok && r.SampleRate == 0 {
			r.SampleRate = src.SampleRate
		}
		r.SyncSamples()
		regions[i] = r
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commitLocked(regions)
}

// Snapshot returns the project as a Timeline document.
func (p *Project) Snapshot() Timeline {
	return Timeline{
		Tracks:  p.Tracks(),
		Sources: p.Sources(),
		Regions: p.Regions(),
	}
}

// WriteYAML renders the project as a timeline document.
func (p *Project) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p.Snapshot()); err != nil {
		return errors.New(fmt.Errorf("encode timeline: %w", err)).
			Component("project").
			Category(errors.CategoryFileIO).
			Build()
	}
	if err := enc.Close(); err != nil {
		return errors.New(fmt.Errorf("flush timeline: %w", err)).
			Component("project").
			Category(errors.CategoryFileIO).
			Build()
	}
	return nil
}
