package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/property"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// EntityID identifies an entity inside its collection.
type EntityID string

// Entity is a time-dynamic object description. Setters notify the owning
// collection, which reports the entity as changed.
//
// Entities are not safe for concurrent use.
type Entity struct {
	id   EntityID
	name string

	show   bool
	parent *Entity

	availability Availability
	position     property.Property[r3.Vec]
	orientation  property.Property[quat.Number]

	particleSystem *ParticleSystemGraphics

	owner *Collection
}

// NewEntity creates a visible entity. An empty id is replaced by a random UUID.
func NewEntity(id EntityID) *Entity {
	if id == "" {
		id = EntityID(uuid.NewString())
	}
	return &Entity{id: id, show: true}
}

func (e *Entity) ID() EntityID { return e.id }

func (e *Entity) Name() string { return e.name }

func (e *Entity) SetName(name string) {
	e.name = name
	e.changed()
}

// Show is the entity's own visibility flag.
func (e *Entity) Show() bool { return e.show }

func (e *Entity) SetShow(show bool) {
	if e.show == show {
		return
	}
	e.show = show
	e.changed()
}

// IsShowing is true when the entity and all of its ancestors are shown.
func (e *Entity) IsShowing() bool {
	for cur := e; cur != nil; cur = cur.parent {
		if !cur.show {
			return false
		}
	}
	return true
}

func (e *Entity) Parent() *Entity { return e.parent }

// SetParent re-parents the entity. Cycles are rejected.
func (e *Entity) SetParent(parent *Entity) error {
	for cur := parent; cur != nil; cur = cur.parent {
		if cur == e {
			return ErrParentCycle
		}
	}
	e.parent = parent
	e.changed()
	return nil
}

func (e *Entity) Availability() Availability { return e.availability }

func (e *Entity) SetAvailability(a Availability) {
	e.availability = a
	e.changed()
}

// IsAvailable reports whether the entity has data at t.
func (e *Entity) IsAvailable(t time.Time) bool {
	return e.availability.Contains(t)
}

func (e *Entity) Position() property.Property[r3.Vec] { return e.position }

// SetPosition replaces the position. A nil pointer wrapped in the interface
// is stored as absent.
func (e *Entity) SetPosition(p property.Property[r3.Vec]) {
	if !property.Defined(p) {
		p = nil
	}
	e.position = p
	e.changed()
}

func (e *Entity) Orientation() property.Property[quat.Number] { return e.orientation }

func (e *Entity) SetOrientation(o property.Property[quat.Number]) {
	if !property.Defined(o) {
		o = nil
	}
	e.orientation = o
	e.changed()
}

func (e *Entity) ParticleSystem() *ParticleSystemGraphics { return e.particleSystem }

func (e *Entity) SetParticleSystem(g *ParticleSystemGraphics) {
	e.particleSystem = g
	e.changed()
}

// ModelMatrix derives the entity's world transform at t. Without an
// orientation the east-north-up frame at the position is used. It reports
// false when no position is available at t.
func (e *Entity) ModelMatrix(t time.Time) (geom.Matrix4, bool) {
	if e.position == nil {
		return geom.Matrix4{}, false
	}
	position, ok := e.position.Value(t)
	if !ok {
		return geom.Matrix4{}, false
	}

	if e.orientation != nil {
		if orientation, ok := e.orientation.Value(t); ok {
			return geom.FromRotationTranslation(orientation, position), true
		}
	}
	return geom.EastNorthUpToFixedFrame(position), true
}

func (e *Entity) changed() {
	if e.owner != nil {
		e.owner.entityChanged(e)
	}
}
