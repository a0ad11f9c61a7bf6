package scene

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/particleviz/internal/core/geom"
)

// ParticleSystem is the renderable particle emitter owned by a visualizer.
// Every parameter field is overwritten by the owner on each synchronization;
// the renderer only reads them.
type ParticleSystem struct {
	// ID is the identifier of the entity this system visualizes.
	ID string
	// Owner is the entity this system visualizes; nil once destroyed.
	Owner any

	Show  bool
	Image string

	Emitter    Emitter
	StartScale float64
	EndScale   float64
	StartColor geom.Color
	EndColor   geom.Color
	Rate       float64

	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
	MinSpeed  float64
	MaxSpeed  float64
	MinLife   float64
	MaxLife   float64

	LifeTime           float64
	Loop               bool
	EmitterModelMatrix geom.Matrix4
	Bursts             []Burst

	// ModelMatrix is the world transform; nil when no pose was resolved.
	ModelMatrix *geom.Matrix4

	destroyed bool
}

// NewParticleSystem returns a visible system with an identity emitter transform.
func NewParticleSystem(id string) *ParticleSystem {
	return &ParticleSystem{
		ID:                 id,
		Show:               true,
		Loop:               true,
		EmitterModelMatrix: geom.Identity,
	}
}

// Destroy releases the system. It is safe to call more than once.
func (p *ParticleSystem) Destroy() {
	p.destroyed = true
	p.Owner = nil
	p.Bursts = nil
	p.ModelMatrix = nil
}

func (p *ParticleSystem) IsDestroyed() bool {
	return p.destroyed
}

// Fingerprint hashes every synchronized field. Two systems with equal
// fingerprints render identically.
func (p *ParticleSystem) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	writeBool := func(v bool) {
		if v {
			writeFloat(1)
		} else {
			writeFloat(0)
		}
	}
	writeColor := func(c geom.Color) {
		writeFloat(c.R)
		writeFloat(c.G)
		writeFloat(c.B)
		writeFloat(c.A)
	}

	_, _ = d.WriteString(p.ID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(p.Image)
	_, _ = d.WriteString("\x00")
	writeBool(p.Show)

	if p.Emitter != nil {
		_, _ = d.WriteString(string(p.Emitter.Kind()))
		for _, v := range p.Emitter.Params() {
			writeFloat(v)
		}
	}
	_, _ = d.WriteString("\x00")

	for _, v := range []float64{
		p.StartScale, p.EndScale, p.Rate,
		p.MinWidth, p.MaxWidth, p.MinHeight, p.MaxHeight,
		p.MinSpeed, p.MaxSpeed, p.MinLife, p.MaxLife, p.LifeTime,
	} {
		writeFloat(v)
	}
	writeColor(p.StartColor)
	writeColor(p.EndColor)
	writeBool(p.Loop)

	for _, v := range p.EmitterModelMatrix {
		writeFloat(v)
	}

	writeFloat(float64(len(p.Bursts)))
	for _, b := range p.Bursts {
		writeFloat(b.Time)
		writeFloat(b.Minimum)
		writeFloat(b.Maximum)
	}

	writeBool(p.ModelMatrix != nil)
	if p.ModelMatrix != nil {
		for _, v := range *p.ModelMatrix {
			writeFloat(v)
		}
	}

	return d.Sum64()
}
