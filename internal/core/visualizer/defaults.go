package visualizer

import (
	"math"

	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/scene"
)

// Defaults holds the fallback value of every particle parameter. It is a
// plain value: copies are independent and safe to share between visualizers.
// Image and Bursts have no default and resolve to empty.
type Defaults struct {
	Emitter            scene.Emitter
	StartScale         float64
	EndScale           float64
	StartColor         geom.Color
	EndColor           geom.Color
	Rate               float64
	MinWidth           float64
	MaxWidth           float64
	MinHeight          float64
	MaxHeight          float64
	MinSpeed           float64
	MaxSpeed           float64
	MinLife            float64
	MaxLife            float64
	LifeTime           float64
	Loop               bool
	EmitterModelMatrix geom.Matrix4
}

// DefaultTable returns the built-in defaults.
func DefaultTable() Defaults {
	return Defaults{
		Emitter:            scene.CircleEmitter{Radius: 0.5},
		StartScale:         1.0,
		EndScale:           1.0,
		StartColor:         geom.White,
		EndColor:           geom.White,
		Rate:               5.0,
		MinWidth:           16.0,
		MaxWidth:           16.0,
		MinHeight:          16.0,
		MaxHeight:          16.0,
		MinSpeed:           5.0,
		MaxSpeed:           5.0,
		MinLife:            5.0,
		MaxLife:            5.0,
		LifeTime:           math.MaxFloat64,
		Loop:               true,
		EmitterModelMatrix: geom.Identity,
	}
}
