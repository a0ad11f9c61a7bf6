// Package scenefile loads scripted scenes: entities with constant or sampled
// properties and the times at which they enter and leave a collection.
package scenefile

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/models"
	"github.com/zeusync/particleviz/internal/core/property"
	"github.com/zeusync/particleviz/internal/core/scene"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

type Scene struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`
}

type EntitySpec struct {
	ID     string `yaml:"id,omitempty"`
	Name   string `yaml:"name,omitempty"`
	Show   *bool  `yaml:"show,omitempty"`
	Parent string `yaml:"parent,omitempty"`

	// Appear and Remove are offsets from the scene start. A nil Remove keeps
	// the entity until the end of the run.
	Appear time.Duration  `yaml:"appear,omitempty"`
	Remove *time.Duration `yaml:"remove,omitempty"`

	Availability []IntervalSpec `yaml:"availability,omitempty"`

	Position    *ValueSpec[[3]float64] `yaml:"position,omitempty"`
	Orientation *ValueSpec[[4]float64] `yaml:"orientation,omitempty"` // x, y, z, w

	ParticleSystem *GraphicsSpec `yaml:"particle_system,omitempty"`
}

type IntervalSpec struct {
	Start time.Duration `yaml:"start"`
	Stop  time.Duration `yaml:"stop"`
}

type GraphicsSpec struct {
	Show  *ValueSpec[bool]   `yaml:"show,omitempty"`
	Image *ValueSpec[string] `yaml:"image,omitempty"`

	Emitter    *ValueSpec[scene.EmitterSpec] `yaml:"emitter,omitempty"`
	StartScale *ValueSpec[float64]           `yaml:"start_scale,omitempty"`
	EndScale   *ValueSpec[float64]           `yaml:"end_scale,omitempty"`
	StartColor *ValueSpec[geom.Color]        `yaml:"start_color,omitempty"`
	EndColor   *ValueSpec[geom.Color]        `yaml:"end_color,omitempty"`
	Rate       *ValueSpec[float64]           `yaml:"rate,omitempty"`

	MinWidth  *ValueSpec[float64] `yaml:"min_width,omitempty"`
	MaxWidth  *ValueSpec[float64] `yaml:"max_width,omitempty"`
	MinHeight *ValueSpec[float64] `yaml:"min_height,omitempty"`
	MaxHeight *ValueSpec[float64] `yaml:"max_height,omitempty"`
	MinSpeed  *ValueSpec[float64] `yaml:"min_speed,omitempty"`
	MaxSpeed  *ValueSpec[float64] `yaml:"max_speed,omitempty"`
	MinLife   *ValueSpec[float64] `yaml:"min_life,omitempty"`
	MaxLife   *ValueSpec[float64] `yaml:"max_life,omitempty"`

	LifeTime *ValueSpec[float64] `yaml:"life_time,omitempty"`
	Loop     *ValueSpec[bool]    `yaml:"loop,omitempty"`

	// EmitterOffset translates the emitter away from the entity origin.
	EmitterOffset *ValueSpec[[3]float64]    `yaml:"emitter_offset,omitempty"`
	Bursts        *ValueSpec[[]scene.Burst] `yaml:"bursts,omitempty"`
}

// LoadYAML decodes a scene. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile decodes and validates the scene stored at path. A scene without a
// name is named after the file.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scene: %w", err)
	}
	defer f.Close()

	s, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Validate checks ids, parents and schedules without building anything.
func (s *Scene) Validate() error {
	seen := make(map[string]struct{}, len(s.Entities))
	for _, e := range s.Entities {
		if e.ID == "" {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateEntity, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	for i, e := range s.Entities {
		label := e.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if e.Parent != "" {
			if _, ok := seen[e.Parent]; !ok || e.Parent == e.ID {
				return fmt.Errorf("%w: %s (entity %s)", ErrUnknownParent, e.Parent, label)
			}
		}
		if e.Appear < 0 || (e.Remove != nil && *e.Remove <= e.Appear) {
			return fmt.Errorf("%w: entity %s", ErrInvalidSchedule, label)
		}
		for _, iv := range e.Availability {
			if iv.Stop < iv.Start {
				return fmt.Errorf("%w: entity %s", ErrInvalidInterval, label)
			}
		}
	}
	return nil
}

// Build creates the scene's entities with property times anchored at start
// and returns the timeline that adds and removes them.
func (s *Scene) Build(start time.Time) (*Timeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	entities := make([]*models.Entity, len(s.Entities))
	byID := make(map[string]*models.Entity, len(s.Entities))
	for i := range s.Entities {
		e, err := s.Entities[i].build(start)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", s.Entities[i].ID, err)
		}
		entities[i] = e
		if s.Entities[i].ID != "" {
			byID[s.Entities[i].ID] = e
		}
	}

	for i, spec := range s.Entities {
		if spec.Parent == "" {
			continue
		}
		if err := entities[i].SetParent(byID[spec.Parent]); err != nil {
			return nil, fmt.Errorf("entity %s: %w", spec.ID, err)
		}
	}

	events := make([]Event, 0, 2*len(entities))
	for i, spec := range s.Entities {
		events = append(events, Event{At: spec.Appear, Kind: EventAppear, Entity: entities[i]})
		if spec.Remove != nil {
			events = append(events, Event{At: *spec.Remove, Kind: EventRemove, Entity: entities[i]})
		}
	}
	return newTimeline(s.Name, entities, events), nil
}

func (spec *EntitySpec) build(start time.Time) (*models.Entity, error) {
	e := models.NewEntity(models.EntityID(spec.ID))
	e.SetName(spec.Name)
	if spec.Show != nil {
		e.SetShow(*spec.Show)
	}

	if spec.Availability != nil {
		a := make(models.Availability, 0, len(spec.Availability))
		for _, iv := range spec.Availability {
			a = append(a, models.Interval{Start: start.Add(iv.Start), Stop: start.Add(iv.Stop)})
		}
		e.SetAvailability(a)
	}

	position, err := toProperty(spec.Position, start, toVec)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	e.SetPosition(position)

	orientation, err := toProperty(spec.Orientation, start, toQuat)
	if err != nil {
		return nil, fmt.Errorf("orientation: %w", err)
	}
	e.SetOrientation(orientation)

	if spec.ParticleSystem != nil {
		g, err := spec.ParticleSystem.build(start)
		if err != nil {
			return nil, fmt.Errorf("particle_system: %w", err)
		}
		e.SetParticleSystem(g)
	}
	return e, nil
}

func (spec *GraphicsSpec) build(start time.Time) (*models.ParticleSystemGraphics, error) {
	g := &models.ParticleSystemGraphics{}
	var err error

	floats := []struct {
		name   string
		spec   *ValueSpec[float64]
		target *property.Property[float64]
	}{
		{"start_scale", spec.StartScale, &g.StartScale},
		{"end_scale", spec.EndScale, &g.EndScale},
		{"rate", spec.Rate, &g.Rate},
		{"min_width", spec.MinWidth, &g.MinWidth},
		{"max_width", spec.MaxWidth, &g.MaxWidth},
		{"min_height", spec.MinHeight, &g.MinHeight},
		{"max_height", spec.MaxHeight, &g.MaxHeight},
		{"min_speed", spec.MinSpeed, &g.MinSpeed},
		{"max_speed", spec.MaxSpeed, &g.MaxSpeed},
		{"min_life", spec.MinLife, &g.MinLife},
		{"max_life", spec.MaxLife, &g.MaxLife},
		{"life_time", spec.LifeTime, &g.LifeTime},
	}
	for _, f := range floats {
		if *f.target, err = toProperty(f.spec, start, same[float64]); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	if g.Show, err = toProperty(spec.Show, start, same[bool]); err != nil {
		return nil, fmt.Errorf("show: %w", err)
	}
	if g.Loop, err = toProperty(spec.Loop, start, same[bool]); err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	if g.Image, err = toProperty(spec.Image, start, same[string]); err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	if g.Emitter, err = toProperty(spec.Emitter, start, scene.EmitterSpec.Build); err != nil {
		return nil, fmt.Errorf("emitter: %w", err)
	}
	if g.StartColor, err = toProperty(spec.StartColor, start, same[geom.Color]); err != nil {
		return nil, fmt.Errorf("start_color: %w", err)
	}
	if g.EndColor, err = toProperty(spec.EndColor, start, same[geom.Color]); err != nil {
		return nil, fmt.Errorf("end_color: %w", err)
	}
	if g.EmitterModelMatrix, err = toProperty(spec.EmitterOffset, start, toTranslation); err != nil {
		return nil, fmt.Errorf("emitter_offset: %w", err)
	}
	if g.Bursts, err = toProperty(spec.Bursts, start, same[[]scene.Burst]); err != nil {
		return nil, fmt.Errorf("bursts: %w", err)
	}
	return g, nil
}

func toVec(v [3]float64) (r3.Vec, error) {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

func toQuat(v [4]float64) (quat.Number, error) {
	q := quat.Number{Imag: v[0], Jmag: v[1], Kmag: v[2], Real: v[3]}
	if quat.Abs(q) == 0 {
		return quat.Number{}, ErrZeroQuaternion
	}
	return q, nil
}

func toTranslation(v [3]float64) (geom.Matrix4, error) {
	t, _ := toVec(v)
	return geom.FromTranslation(t), nil
}
