package telemetry

import (
	"sync"
	"time"

	"github.com/zeusync/particleviz/internal/core/events/bus"
)

// BusCounts is what a BusRecorder saw since its last Take.
type BusCounts struct {
	Batches       int
	HandlerErrors int
	Delivery      time.Duration
}

// BusRecorder is an event bus observer that counts change batches and
// failed deliveries between frames.
type BusRecorder struct {
	mu      sync.Mutex
	pending BusCounts
	total   BusCounts
}

var _ bus.EventBusObserver = (*BusRecorder)(nil)

func NewBusRecorder() *BusRecorder {
	return &BusRecorder{}
}

func (r *BusRecorder) OnPublish(string, string, bus.Event) {}

func (r *BusRecorder) OnDelivered(_, _ string, _ int, err error, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.Batches++
	r.pending.Delivery += d
	if err != nil {
		r.pending.HandlerErrors++
	}
}

// Take returns the counts accumulated since the previous call and resets them.
func (r *BusRecorder) Take() BusCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.pending
	r.pending = BusCounts{}
	r.total.Batches += c.Batches
	r.total.HandlerErrors += c.HandlerErrors
	r.total.Delivery += c.Delivery
	return c
}

// Total returns everything already returned by Take.
func (r *BusRecorder) Total() BusCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
