package geom

import "gonum.org/v1/gonum/spatial/r3"

// BoundingSphere is a center and radius in the earth-fixed frame.
type BoundingSphere struct {
	Center r3.Vec
	Radius float64
}
