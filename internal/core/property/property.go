// Package property models description fields that may be absent, constant or
// time-varying, and resolves them at an instant.
package property

import (
	"reflect"
	"slices"
	"sort"
	"time"
)

// Property is a value that can be resolved at a point in time. Value reports
// false when the property has no value at t. Implementations must not block
// and must tolerate a nil receiver.
type Property[T any] interface {
	Value(t time.Time) (T, bool)
	IsConstant() bool
}

// ValueOrDefault resolves p at t, falling back to def when p is nil or has no
// value at t.
func ValueOrDefault[T any](p Property[T], t time.Time, def T) T {
	if p == nil {
		return def
	}
	if v, ok := p.Value(t); ok {
		return v
	}
	return def
}

// ValueOrZero resolves p at t, falling back to the zero value of T.
func ValueOrZero[T any](p Property[T], t time.Time) T {
	var zero T
	return ValueOrDefault(p, t, zero)
}

// Constant always resolves to the same value.
type Constant[T any] struct {
	value T
}

func NewConstant[T any](v T) *Constant[T] {
	return &Constant[T]{value: v}
}

func (c *Constant[T]) Value(time.Time) (T, bool) {
	if c == nil {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *Constant[T]) IsConstant() bool { return true }

// Sample is a value that takes effect at Time.
type Sample[T any] struct {
	Time  time.Time
	Value T
}

// Sampled is a step function over time: each sample holds until the next one.
// Before the first sample the property has no value.
type Sampled[T any] struct {
	samples []Sample[T]
}

func NewSampled[T any](samples ...Sample[T]) *Sampled[T] {
	s := &Sampled[T]{}
	for _, sample := range samples {
		s.AddSample(sample.Time, sample.Value)
	}
	return s
}

// AddSample inserts a sample, replacing any sample at the same instant.
func (s *Sampled[T]) AddSample(t time.Time, v T) {
	i, found := slices.BinarySearchFunc(s.samples, t, func(sample Sample[T], target time.Time) int {
		return sample.Time.Compare(target)
	})
	if found {
		s.samples[i].Value = v
		return
	}
	s.samples = slices.Insert(s.samples, i, Sample[T]{Time: t, Value: v})
}

func (s *Sampled[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.samples)
}

func (s *Sampled[T]) Value(t time.Time) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	i := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].Time.After(t)
	})
	if i == 0 {
		return zero, false
	}
	return s.samples[i-1].Value, true
}

func (s *Sampled[T]) IsConstant() bool {
	return s.Len() <= 1
}

// Callback resolves through a user function.
type Callback[T any] struct {
	fn       func(time.Time) (T, bool)
	constant bool
}

func NewCallback[T any](fn func(time.Time) (T, bool), isConstant bool) *Callback[T] {
	return &Callback[T]{fn: fn, constant: isConstant}
}

func (c *Callback[T]) Value(t time.Time) (T, bool) {
	if c == nil || c.fn == nil {
		var zero T
		return zero, false
	}
	return c.fn(t)
}

func (c *Callback[T]) IsConstant() bool {
	return c != nil && c.constant
}

// Defined reports whether p can carry a value: it is false for a nil
// interface and for an interface holding a nil pointer.
func Defined[T any](p Property[T]) bool {
	if p == nil {
		return false
	}
	v := reflect.ValueOf(p)
	return v.Kind() != reflect.Pointer || !v.IsNil()
}
