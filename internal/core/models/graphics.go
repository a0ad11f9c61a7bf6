package models

import (
	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/property"
	"github.com/zeusync/particleviz/internal/core/scene"
)

// ParticleSystemGraphics describes a particle system attached to an entity.
// Every field is optional; nil fields resolve to the visualizer's defaults.
// Fields are read on every frame, so they can be swapped in place without
// notifying the collection.
type ParticleSystemGraphics struct {
	Show  property.Property[bool]
	Image property.Property[string]

	Emitter    property.Property[scene.Emitter]
	StartScale property.Property[float64]
	EndScale   property.Property[float64]
	StartColor property.Property[geom.Color]
	EndColor   property.Property[geom.Color]
	Rate       property.Property[float64]

	MinWidth  property.Property[float64]
	MaxWidth  property.Property[float64]
	MinHeight property.Property[float64]
	MaxHeight property.Property[float64]
	MinSpeed  property.Property[float64]
	MaxSpeed  property.Property[float64]
	MinLife   property.Property[float64]
	MaxLife   property.Property[float64]

	LifeTime           property.Property[float64]
	Loop               property.Property[bool]
	EmitterModelMatrix property.Property[geom.Matrix4]
	Bursts             property.Property[[]scene.Burst]
}
