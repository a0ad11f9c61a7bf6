package scene

import (
	"github.com/zeusync/particleviz/internal/core/observability/log"
	"github.com/zeusync/particleviz/pkg/generic"
)

// Primitives is the render-side collection of particle systems. It owns
// destruction of the systems removed through RemoveAndDestroy.
type Primitives struct {
	items  *generic.AssociativeArray[*ParticleSystem, *ParticleSystem]
	logger log.Log

	added     uint64
	destroyed uint64
}

func NewPrimitives(logger log.Log) *Primitives {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Primitives{
		items:  generic.NewAssociativeArray[*ParticleSystem, *ParticleSystem](),
		logger: logger,
	}
}

// Add registers p. Adding nil or an already registered system is a no-op.
func (c *Primitives) Add(p *ParticleSystem) {
	if p == nil || c.items.Contains(p) {
		return
	}
	c.items.Set(p, p)
	c.added++
}

// RemoveAndDestroy removes p and destroys it. It reports false when p was not
// in the collection, in which case p is left untouched.
func (c *Primitives) RemoveAndDestroy(p *ParticleSystem) bool {
	if p == nil || !c.items.Remove(p) {
		return false
	}
	p.Destroy()
	c.destroyed++
	c.logger.Debug("primitive destroyed", log.String("id", p.ID))
	return true
}

func (c *Primitives) Contains(p *ParticleSystem) bool {
	return c.items.Contains(p)
}

func (c *Primitives) Len() int {
	return c.items.Len()
}

// Values returns the live systems in insertion order.
func (c *Primitives) Values() []*ParticleSystem {
	return append([]*ParticleSystem(nil), c.items.Values()...)
}

// Counts returns how many systems were ever added and destroyed.
func (c *Primitives) Counts() (added, destroyed uint64) {
	return c.added, c.destroyed
}
