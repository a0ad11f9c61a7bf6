package visualizer

import (
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/particleviz/internal/core/events/bus"
	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/models"
	"github.com/zeusync/particleviz/internal/core/observability/log"
	"github.com/zeusync/particleviz/internal/core/property"
	"github.com/zeusync/particleviz/internal/core/scene"
	"github.com/zeusync/particleviz/pkg/generic"
)

// EntityCollection is the source of entities a Visualizer mirrors.
type EntityCollection interface {
	Values() []*models.Entity
	Subscribe(handler func(models.ChangeSet) error) (bus.Subscription, error)
}

// Stats is a point-in-time summary of a Visualizer.
type Stats struct {
	Frames    uint64
	Created   uint64
	Destroyed uint64
	// Active is the number of tracked entities.
	Active int
	// Resources is the number of live particle systems.
	Resources int
	// Visible counts live systems that are shown with a resolved pose.
	Visible int
}

// Visualizer keeps one particle system per eligible entity and resamples
// every system's parameters on each Update.
//
// A Visualizer is driven from a single goroutine: change notifications and
// Update calls must not overlap.
type Visualizer struct {
	subscription bus.Subscription

	tracked  *generic.AssociativeArray[models.EntityID, *models.Entity]
	registry *Registry

	logger           log.Log
	defaults         Defaults
	hideWhenNotShown bool

	frames    uint64
	destroyed bool
}

// New creates a Visualizer publishing systems into primitives and subscribes
// it to collection. Entities already in the collection are picked up
// immediately.
func New(primitives PrimitiveCollection, collection EntityCollection, opts ...Option) (*Visualizer, error) {
	if primitives == nil {
		return nil, ErrPrimitivesRequired
	}
	if collection == nil {
		return nil, ErrCollectionRequired
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &Visualizer{
		tracked:          generic.NewAssociativeArray[models.EntityID, *models.Entity](),
		registry:         NewRegistry(primitives),
		logger:           o.logger,
		defaults:         o.defaults,
		hideWhenNotShown: o.hideWhenNotShown,
	}

	sub, err := collection.Subscribe(v.handleChange)
	if err != nil {
		return nil, fmt.Errorf("subscribe to collection: %w", err)
	}
	v.subscription = sub

	v.OnCollectionChanged(collection.Values(), nil, nil)
	return v, nil
}

func (v *Visualizer) handleChange(cs models.ChangeSet) error {
	v.OnCollectionChanged(cs.Added, cs.Removed, cs.Changed)
	return nil
}

// OnCollectionChanged applies one change batch: removals first, then
// changes, then additions. Resources are only created by Update.
func (v *Visualizer) OnCollectionChanged(added, removed, changed []*models.Entity) {
	if v.destroyed {
		return
	}

	for _, e := range removed {
		if e != nil {
			v.untrack(e.ID())
		}
	}

	for _, e := range changed {
		if e == nil {
			continue
		}
		if eligible(e) {
			v.tracked.Set(e.ID(), e)
		} else {
			v.untrack(e.ID())
		}
	}

	for _, e := range added {
		if e != nil && eligible(e) {
			v.tracked.Set(e.ID(), e)
		}
	}
}

// eligible requires a particle description and a position property; a
// typed nil property counts as absent.
func eligible(e *models.Entity) bool {
	return e.ParticleSystem() != nil && property.Defined(e.Position())
}

func (v *Visualizer) untrack(id models.EntityID) {
	if v.registry.DestroyAndRemove(id) {
		v.logger.Debug("particle system destroyed", log.String("entity", string(id)))
	}
	v.tracked.Remove(id)
}

// Update resamples every tracked entity at t. It fails only when t is the
// zero time or the visualizer was destroyed; per-entity problems degrade that
// entity to hidden.
func (v *Visualizer) Update(t time.Time) (bool, error) {
	if t.IsZero() {
		return false, ErrTimeRequired
	}
	if v.destroyed {
		return false, ErrDestroyed
	}

	v.frames++
	for _, e := range v.tracked.Values() {
		v.synchronize(e, t)
	}
	return true, nil
}

func (v *Visualizer) synchronize(e *models.Entity, t time.Time) {
	g := e.ParticleSystem()
	if g == nil {
		g = &models.ParticleSystemGraphics{}
	}

	show := e.IsShowing() && e.IsAvailable(t) && property.ValueOrDefault(g.Show, t, true)

	var modelMatrix geom.Matrix4
	if show {
		var ok bool
		if modelMatrix, ok = e.ModelMatrix(t); !ok {
			show = false
		}
	}

	p, exists := v.registry.Get(e.ID())
	if v.hideWhenNotShown && !show {
		if exists {
			p.Show = false
			p.ModelMatrix = nil
		}
		return
	}
	if !exists {
		p = v.registry.Create(e)
		v.logger.Debug("particle system created", log.String("entity", string(e.ID())))
	}

	d := &v.defaults
	p.Image = property.ValueOrDefault(g.Image, t, "")
	p.Emitter = property.ValueOrDefault(g.Emitter, t, d.Emitter)
	if p.Emitter == nil {
		p.Emitter = d.Emitter
	}
	p.StartScale = property.ValueOrDefault(g.StartScale, t, d.StartScale)
	p.EndScale = property.ValueOrDefault(g.EndScale, t, d.EndScale)
	p.StartColor = property.ValueOrDefault(g.StartColor, t, d.StartColor)
	p.EndColor = property.ValueOrDefault(g.EndColor, t, d.EndColor)
	p.Rate = property.ValueOrDefault(g.Rate, t, d.Rate)
	p.MinWidth = property.ValueOrDefault(g.MinWidth, t, d.MinWidth)
	p.MaxWidth = property.ValueOrDefault(g.MaxWidth, t, d.MaxWidth)
	p.MinHeight = property.ValueOrDefault(g.MinHeight, t, d.MinHeight)
	p.MaxHeight = property.ValueOrDefault(g.MaxHeight, t, d.MaxHeight)
	p.MinSpeed = property.ValueOrDefault(g.MinSpeed, t, d.MinSpeed)
	p.MaxSpeed = property.ValueOrDefault(g.MaxSpeed, t, d.MaxSpeed)
	p.MinLife = property.ValueOrDefault(g.MinLife, t, d.MinLife)
	p.MaxLife = property.ValueOrDefault(g.MaxLife, t, d.MaxLife)
	p.LifeTime = property.ValueOrDefault(g.LifeTime, t, d.LifeTime)
	p.Loop = property.ValueOrDefault(g.Loop, t, d.Loop)
	p.EmitterModelMatrix = property.ValueOrDefault(g.EmitterModelMatrix, t, d.EmitterModelMatrix)
	p.Bursts = slices.Clone(property.ValueOrZero(g.Bursts, t))

	if show {
		m := modelMatrix
		p.ModelMatrix = &m
	} else {
		p.ModelMatrix = nil
	}

	// Systems stay visible even when the entity is not; the missing pose
	// keeps them out of bounding queries.
	p.Show = true
}

// BoundingSphere writes the bounds of the entity's particle system into
// result. The sphere is centred on the system's world origin with zero
// radius.
func (v *Visualizer) BoundingSphere(e *models.Entity, result *geom.BoundingSphere) (BoundingSphereState, error) {
	if e == nil {
		return BoundingSphereFailed, ErrEntityRequired
	}
	if result == nil {
		return BoundingSphereFailed, ErrResultRequired
	}

	p, ok := v.registry.Get(e.ID())
	if !ok || !p.Show || p.ModelMatrix == nil {
		return BoundingSphereFailed, nil
	}

	result.Center = p.ModelMatrix.Translation()
	result.Radius = 0
	return BoundingSphereDone, nil
}

// Resource returns the particle system owned by the entity with the given id.
func (v *Visualizer) Resource(id models.EntityID) (*scene.ParticleSystem, bool) {
	return v.registry.Get(id)
}

// Tracked returns the ids of the eligible entities in synchronization order.
func (v *Visualizer) Tracked() []models.EntityID {
	return slices.Clone(v.tracked.Keys())
}

func (v *Visualizer) Stats() Stats {
	created, destroyed := v.registry.Counts()
	s := Stats{
		Frames:    v.frames,
		Created:   created,
		Destroyed: destroyed,
		Active:    v.tracked.Len(),
		Resources: v.registry.Len(),
	}
	for _, id := range v.tracked.Keys() {
		if p, ok := v.registry.Get(id); ok && p.Show && p.ModelMatrix != nil {
			s.Visible++
		}
	}
	return s
}

func (v *Visualizer) IsDestroyed() bool {
	return v.destroyed
}

// Destroy unsubscribes from the collection and releases every particle
// system. Later calls are no-ops.
func (v *Visualizer) Destroy() {
	if v.destroyed {
		return
	}

	if v.subscription != nil {
		if err := v.subscription.Cancel(); err != nil {
			v.logger.Warn("failed to cancel collection subscription", log.Error(err))
		}
		v.subscription = nil
	}

	keys := v.tracked.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		v.registry.DestroyAndRemove(keys[i])
	}
	v.registry.DestroyAll()
	v.tracked.RemoveAll()

	created, destroyed := v.registry.Counts()
	v.logger.Info("visualizer destroyed",
		log.Uint64("frames", v.frames),
		log.Uint64("created", created),
		log.Uint64("destroyed", destroyed),
	)
	v.destroyed = true
}
