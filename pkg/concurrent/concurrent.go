package concurrent

import (
	"context"

	"github.com/zeusync/particleviz/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element of the iterator, each in its own
// goroutine, with at most limit actions in flight (limit <= 0 means no limit).
// The context passed to action is cancelled as soon as one action fails; the
// first error is returned once all started actions have finished.
func ForEach[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for value := range i.Seq() {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			return action(groupCtx, value)
		})
	}

	return group.Wait()
}
