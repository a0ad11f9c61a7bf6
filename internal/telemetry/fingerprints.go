package telemetry

import "github.com/zeusync/particleviz/internal/core/models"

// Fingerprints remembers the last snapshot hash of each entity's particle
// system to count how many snapshots actually changed between frames.
type Fingerprints struct {
	last map[models.EntityID]uint64
	seen map[models.EntityID]struct{}
}

func NewFingerprints() *Fingerprints {
	return &Fingerprints{
		last: make(map[models.EntityID]uint64),
		seen: make(map[models.EntityID]struct{}),
	}
}

// Observe records fp for id and reports whether it differs from the previous
// observation. The first observation of an id counts as a change.
func (f *Fingerprints) Observe(id models.EntityID, fp uint64) bool {
	f.seen[id] = struct{}{}
	prev, ok := f.last[id]
	f.last[id] = fp
	return !ok || prev != fp
}

// Prune forgets every id not observed since the previous Prune.
func (f *Fingerprints) Prune() {
	for id := range f.last {
		if _, ok := f.seen[id]; !ok {
			delete(f.last, id)
		}
	}
	clear(f.seen)
}

func (f *Fingerprints) Len() int {
	return len(f.last)
}
