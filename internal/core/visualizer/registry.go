package visualizer

import (
	"github.com/zeusync/particleviz/internal/core/models"
	"github.com/zeusync/particleviz/internal/core/scene"
)

// PrimitiveCollection receives the particle systems a Visualizer creates.
type PrimitiveCollection interface {
	Add(p *scene.ParticleSystem)
	RemoveAndDestroy(p *scene.ParticleSystem) bool
}

// Registry maps an entity to the one particle system it owns. A mapping
// exists exactly while the system is registered with the primitive collection.
type Registry struct {
	primitives PrimitiveCollection
	systems    map[models.EntityID]*scene.ParticleSystem

	created   uint64
	destroyed uint64
}

func NewRegistry(primitives PrimitiveCollection) *Registry {
	return &Registry{
		primitives: primitives,
		systems:    make(map[models.EntityID]*scene.ParticleSystem),
	}
}

func (r *Registry) Get(id models.EntityID) (*scene.ParticleSystem, bool) {
	p, ok := r.systems[id]
	return p, ok
}

// Create allocates a system owned by e and adds it to the primitive
// collection. If e's id already owns a system, that system is returned
// unchanged.
func (r *Registry) Create(e *models.Entity) *scene.ParticleSystem {
	id := e.ID()
	if p, ok := r.systems[id]; ok {
		return p
	}
	p := scene.NewParticleSystem(string(id))
	p.Owner = e
	r.primitives.Add(p)
	r.systems[id] = p
	r.created++
	return p
}

// DestroyAndRemove releases the system owned by id and drops the mapping.
// It reports false when id owned nothing.
func (r *Registry) DestroyAndRemove(id models.EntityID) bool {
	p, ok := r.systems[id]
	if !ok {
		return false
	}
	delete(r.systems, id)
	r.primitives.RemoveAndDestroy(p)
	r.destroyed++
	return true
}

func (r *Registry) Len() int {
	return len(r.systems)
}

// Counts returns how many systems were created and destroyed so far.
func (r *Registry) Counts() (created, destroyed uint64) {
	return r.created, r.destroyed
}

// DestroyAll releases every remaining system.
func (r *Registry) DestroyAll() {
	for id := range r.systems {
		r.DestroyAndRemove(id)
	}
}
