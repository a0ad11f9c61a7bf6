package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WGS84 ellipsoid radii in meters.
var wgs84Radii = r3.Vec{X: 6378137.0, Y: 6378137.0, Z: 6356752.3142451793}

const poleEpsilon = 1e-14

// GeodeticSurfaceNormal returns the outward unit normal of the WGS84
// ellipsoid surface that passes through p.
func GeodeticSurfaceNormal(p r3.Vec) r3.Vec {
	return r3.Unit(r3.Vec{
		X: p.X / (wgs84Radii.X * wgs84Radii.X),
		Y: p.Y / (wgs84Radii.Y * wgs84Radii.Y),
		Z: p.Z / (wgs84Radii.Z * wgs84Radii.Z),
	})
}

// EastNorthUpToFixedFrame returns the local east-north-up frame centred at
// origin, expressed in the earth-fixed frame. At the poles east is +Y.
func EastNorthUpToFixedFrame(origin r3.Vec) Matrix4 {
	if math.Abs(origin.X) < poleEpsilon && math.Abs(origin.Y) < poleEpsilon {
		sign := 1.0
		if math.Signbit(origin.Z) {
			sign = -1
		}
		return FromBasis(
			r3.Vec{Y: 1},
			r3.Vec{X: -sign},
			r3.Vec{Z: sign},
			origin,
		)
	}

	up := GeodeticSurfaceNormal(origin)
	east := r3.Unit(r3.Vec{X: -origin.Y, Y: origin.X})
	north := r3.Cross(up, east)
	return FromBasis(east, north, up, origin)
}
