package visualizer

// BoundingSphereState is the outcome of a bounding-sphere query.
type BoundingSphereState int

const (
	BoundingSphereDone BoundingSphereState = iota
	// BoundingSpherePending is reserved for resources that are still loading.
	BoundingSpherePending
	BoundingSphereFailed
)

func (s BoundingSphereState) String() string {
	switch s {
	case BoundingSphereDone:
		return "done"
	case BoundingSpherePending:
		return "pending"
	case BoundingSphereFailed:
		return "failed"
	default:
		return "unknown"
	}
}
