package scenefile

import (
	"time"

	"github.com/zeusync/particleviz/internal/core/property"
)

// ValueSpec is a property in file form: either a constant or a list of
// samples at offsets from the scene start. An empty spec is absent.
type ValueSpec[T any] struct {
	Constant *T              `yaml:"constant,omitempty"`
	Samples  []SampleSpec[T] `yaml:"samples,omitempty"`
}

type SampleSpec[T any] struct {
	At    time.Duration `yaml:"at"`
	Value T             `yaml:"value"`
}

func (v *ValueSpec[T]) empty() bool {
	return v == nil || (v.Constant == nil && len(v.Samples) == 0)
}

func (v *ValueSpec[T]) validate() error {
	if v != nil && v.Constant != nil && len(v.Samples) > 0 {
		return ErrAmbiguousValue
	}
	return nil
}

// toProperty converts spec into a property whose sample times are relative
// to start. An empty spec yields nil.
func toProperty[S, T any](spec *ValueSpec[S], start time.Time, convert func(S) (T, error)) (property.Property[T], error) {
	if spec.empty() {
		return nil, nil
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}

	if spec.Constant != nil {
		v, err := convert(*spec.Constant)
		if err != nil {
			return nil, err
		}
		return property.NewConstant(v), nil
	}

	sampled := property.NewSampled[T]()
	for _, s := range spec.Samples {
		v, err := convert(s.Value)
		if err != nil {
			return nil, err
		}
		sampled.AddSample(start.Add(s.At), v)
	}
	return sampled, nil
}

func same[T any](v T) (T, error) {
	return v, nil
}
