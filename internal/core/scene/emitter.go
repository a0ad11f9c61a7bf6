package scene

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// EmitterKind names an emitter shape.
type EmitterKind string

const (
	EmitterCircle EmitterKind = "circle"
	EmitterBox    EmitterKind = "box"
	EmitterCone   EmitterKind = "cone"
	EmitterSphere EmitterKind = "sphere"
)

// Emitter describes where new particles are spawned, in emitter-local space.
// Params returns the shape parameters in a fixed order.
type Emitter interface {
	Kind() EmitterKind
	Params() []float64
}

// CircleEmitter spawns on a disc in the XY plane, moving along +Z.
type CircleEmitter struct {
	Radius float64
}

func (e CircleEmitter) Kind() EmitterKind { return EmitterCircle }
func (e CircleEmitter) Params() []float64 { return []float64{e.Radius} }

// BoxEmitter spawns inside an axis-aligned box centred on the origin.
type BoxEmitter struct {
	Dimensions r3.Vec
}

func (e BoxEmitter) Kind() EmitterKind { return EmitterBox }
func (e BoxEmitter) Params() []float64 {
	return []float64{e.Dimensions.X, e.Dimensions.Y, e.Dimensions.Z}
}

// ConeEmitter spawns at the apex, moving inside a cone of half-angle Angle (radians).
type ConeEmitter struct {
	Angle float64
}

func (e ConeEmitter) Kind() EmitterKind { return EmitterCone }
func (e ConeEmitter) Params() []float64 { return []float64{e.Angle} }

// SphereEmitter spawns inside a sphere, moving outward.
type SphereEmitter struct {
	Radius float64
}

func (e SphereEmitter) Kind() EmitterKind { return EmitterSphere }
func (e SphereEmitter) Params() []float64 { return []float64{e.Radius} }

// EmitterSpec is the file form of an Emitter.
type EmitterSpec struct {
	Type       string     `yaml:"type"`
	Radius     float64    `yaml:"radius,omitempty"`
	Angle      float64    `yaml:"angle,omitempty"`
	Dimensions [3]float64 `yaml:"dimensions,omitempty"`
}

// Build converts the spec into an Emitter.
func (s EmitterSpec) Build() (Emitter, error) {
	switch EmitterKind(strings.ToLower(s.Type)) {
	case EmitterCircle:
		return CircleEmitter{Radius: s.Radius}, nil
	case EmitterBox:
		return BoxEmitter{Dimensions: r3.Vec{X: s.Dimensions[0], Y: s.Dimensions[1], Z: s.Dimensions[2]}}, nil
	case EmitterCone:
		return ConeEmitter{Angle: s.Angle}, nil
	case EmitterSphere:
		return SphereEmitter{Radius: s.Radius}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEmitter, s.Type)
	}
}

// SpecOf converts an Emitter back into its file form.
func SpecOf(e Emitter) EmitterSpec {
	switch v := e.(type) {
	case CircleEmitter:
		return EmitterSpec{Type: string(EmitterCircle), Radius: v.Radius}
	case BoxEmitter:
		return EmitterSpec{Type: string(EmitterBox), Dimensions: [3]float64{v.Dimensions.X, v.Dimensions.Y, v.Dimensions.Z}}
	case ConeEmitter:
		return EmitterSpec{Type: string(EmitterCone), Angle: v.Angle}
	case SphereEmitter:
		return EmitterSpec{Type: string(EmitterSphere), Radius: v.Radius}
	default:
		return EmitterSpec{}
	}
}
