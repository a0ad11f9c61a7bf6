package models

import "time"

// Interval is a closed time interval.
type Interval struct {
	Start time.Time
	Stop  time.Time
}

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && !t.After(i.Stop)
}

// Availability is the set of intervals during which an entity has data.
// A nil Availability means always available; an empty non-nil one means never.
type Availability []Interval

func (a Availability) Contains(t time.Time) bool {
	if a == nil {
		return true
	}
	for _, i := range a {
		if i.Contains(t) {
			return true
		}
	}
	return false
}
