package scenefile

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/particleviz/internal/core/models"
)

type EventKind int

const (
	EventRemove EventKind = iota
	EventAppear
)

func (k EventKind) String() string {
	if k == EventAppear {
		return "appear"
	}
	return "remove"
}

// Event adds or removes one entity At an offset from the scene start.
type Event struct {
	At     time.Duration
	Kind   EventKind
	Entity *models.Entity
}

// Timeline replays a scene's events against a collection. Events at the same
// offset are applied removals first, then in file order.
type Timeline struct {
	name     string
	entities []*models.Entity
	events   []Event
	next     int
}

func newTimeline(name string, entities []*models.Entity, events []Event) *Timeline {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := cmp.Compare(a.At, b.At); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return &Timeline{name: name, entities: entities, events: events}
}

func (tl *Timeline) Name() string { return tl.name }

// Entities returns every entity of the scene in file order.
func (tl *Timeline) Entities() []*models.Entity {
	return slices.Clone(tl.entities)
}

func (tl *Timeline) Events() []Event {
	return slices.Clone(tl.events)
}

// Done reports whether every event has been applied.
func (tl *Timeline) Done() bool {
	return tl.next >= len(tl.events)
}

// Apply applies every pending event due at elapsed as one change batch and
// returns how many were applied. Failed events are skipped and reported in
// the joined error.
func (tl *Timeline) Apply(c *models.Collection, elapsed time.Duration) (int, error) {
	if tl.Done() || tl.events[tl.next].At > elapsed {
		return 0, nil
	}

	c.SuspendEvents()
	var errs []error
	applied := 0
	for ; tl.next < len(tl.events) && tl.events[tl.next].At <= elapsed; tl.next++ {
		ev := tl.events[tl.next]
		var err error
		switch ev.Kind {
		case EventAppear:
			err = c.Add(ev.Entity)
		case EventRemove:
			_, err = c.Remove(ev.Entity)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", ev.Kind, ev.Entity.ID(), err))
			continue
		}
		applied++
	}
	if err := c.ResumeEvents(); err != nil {
		errs = append(errs, err)
	}
	return applied, errors.Join(errs...)
}
