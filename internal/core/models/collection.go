package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/zeusync/particleviz/internal/core/events/bus"
	"github.com/zeusync/particleviz/pkg/generic"
)

// ChangedEventType is the bus event type published by a Collection.
const ChangedEventType = "collection.changed"

// ChangeSet is one change notification. The three batches are disjoint.
type ChangeSet struct {
	Collection *Collection
	Added      []*Entity
	Removed    []*Entity
	Changed    []*Entity
}

// Collection is an ordered set of entities that publishes a ChangeSet on the
// event bus after every mutation, or once per ResumeEvents while suspended.
//
// A Collection is not safe for concurrent use.
type Collection struct {
	id  string
	bus bus.EventBus

	entities *generic.AssociativeArray[EntityID, *Entity]

	added   *generic.AssociativeArray[EntityID, *Entity]
	removed *generic.AssociativeArray[EntityID, *Entity]
	changed *generic.AssociativeArray[EntityID, *Entity]

	suspendCount int
}

// NewCollection creates an empty collection publishing on b. An empty id is
// replaced by a random UUID; a nil bus gets a private one.
func NewCollection(id string, b bus.EventBus) *Collection {
	if id == "" {
		id = uuid.NewString()
	}
	if b == nil {
		b = bus.New()
	}
	return &Collection{
		id:       id,
		bus:      b,
		entities: generic.NewAssociativeArray[EntityID, *Entity](),
		added:    generic.NewAssociativeArray[EntityID, *Entity](),
		removed:  generic.NewAssociativeArray[EntityID, *Entity](),
		changed:  generic.NewAssociativeArray[EntityID, *Entity](),
	}
}

func (c *Collection) ID() string { return c.id }

// Topic is the bus topic the collection publishes on.
func (c *Collection) Topic() string { return "collection/" + c.id }

func (c *Collection) Len() int { return c.entities.Len() }

// Values returns a snapshot of the entities in insertion order.
func (c *Collection) Values() []*Entity {
	return slices.Clone(c.entities.Values())
}

func (c *Collection) GetByID(id EntityID) (*Entity, bool) {
	return c.entities.Get(id)
}

func (c *Collection) Contains(e *Entity) bool {
	if e == nil {
		return false
	}
	got, ok := c.entities.Get(e.id)
	return ok && got == e
}

// Subscribe registers handler for change notifications. The returned
// subscription belongs to the caller, who releases it with Cancel.
func (c *Collection) Subscribe(handler func(ChangeSet) error) (bus.Subscription, error) {
	if handler == nil {
		return nil, ErrHandlerRequired
	}
	return c.bus.SubscribeTopic(c.Topic(), ChangedEventType, func(ev bus.Event) error {
		cs, ok := ev.Data().(ChangeSet)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnexpectedChange, ev.Data())
		}
		return handler(cs)
	})
}

// Add inserts e. The returned error also carries handler failures.
func (c *Collection) Add(e *Entity) error {
	if e == nil {
		return ErrEntityRequired
	}
	if e.owner != nil && e.owner != c {
		return fmt.Errorf("%w: %s", ErrEntityOwned, e.id)
	}
	if c.entities.Contains(e.id) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.id)
	}

	c.entities.Set(e.id, e)
	e.owner = c

	if c.removed.Remove(e.id) {
		c.changed.Set(e.id, e)
	} else {
		c.added.Set(e.id, e)
	}
	return c.fire()
}

// Remove deletes e and reports whether it was present.
func (c *Collection) Remove(e *Entity) (bool, error) {
	if e == nil {
		return false, ErrEntityRequired
	}
	if !c.Contains(e) {
		return false, nil
	}
	return c.RemoveByID(e.id)
}

// RemoveByID deletes the entity with the given id and reports whether it was present.
func (c *Collection) RemoveByID(id EntityID) (bool, error) {
	e, ok := c.entities.Get(id)
	if !ok {
		return false, nil
	}
	c.entities.Remove(id)
	c.markRemoved(e)
	return true, c.fire()
}

// RemoveAll deletes every entity.
func (c *Collection) RemoveAll() error {
	for _, e := range c.entities.Values() {
		c.markRemoved(e)
	}
	c.entities.RemoveAll()
	return c.fire()
}

// SuspendEvents defers notifications until the matching ResumeEvents.
// Calls nest.
func (c *Collection) SuspendEvents() {
	c.suspendCount++
}

// ResumeEvents ends one SuspendEvents; the outermost call publishes all
// coalesced changes as a single ChangeSet.
func (c *Collection) ResumeEvents() error {
	if c.suspendCount == 0 {
		return ErrNotSuspended
	}
	c.suspendCount--
	return c.fire()
}

func (c *Collection) markRemoved(e *Entity) {
	e.owner = nil
	if c.added.Remove(e.id) {
		return
	}
	c.changed.Remove(e.id)
	c.removed.Set(e.id, e)
}

// entityChanged records a definition change. Handler errors raised by this
// path are dropped; callers that need them batch changes between
// SuspendEvents and ResumeEvents.
func (c *Collection) entityChanged(e *Entity) {
	if c.added.Contains(e.id) || c.removed.Contains(e.id) {
		return
	}
	c.changed.Set(e.id, e)
	_ = c.fire()
}

func (c *Collection) fire() error {
	if c.suspendCount > 0 {
		return nil
	}
	if c.added.Len() == 0 && c.removed.Len() == 0 && c.changed.Len() == 0 {
		return nil
	}

	cs := ChangeSet{
		Collection: c,
		Added:      slices.Clone(c.added.Values()),
		Removed:    slices.Clone(c.removed.Values()),
		Changed:    slices.Clone(c.changed.Values()),
	}
	c.added.RemoveAll()
	c.removed.RemoveAll()
	c.changed.RemoveAll()

	return c.bus.PublishToTopic(c.Topic(), bus.NewEvent(ChangedEventType, c.id, cs))
}
