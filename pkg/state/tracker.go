package state

import (
	"context"
	"errors"
	"sync"
)

// ErrTrackingTerminated indicates that tracking was terminated.
var ErrTrackingTerminated = errors.New("tracking terminated")

// Tracker provides index-based state tracking. Waiters block until the index
// moves away from a previously observed value.
type Tracker struct {
	// lock guards the fields below.
	lock sync.Mutex
	// index is the current state index.
	index uint64
	// terminated indicates whether or not tracking has been terminated.
	terminated bool
	// changed is closed and replaced on every state change.
	changed chan struct{}
}

// NewTracker creates a new tracker instance with state index 1.
func NewTracker() *Tracker {
	return &Tracker{
		index:   1,
		changed: make(chan struct{}),
	}
}

// Terminate terminates tracking. Current and future waiters are released with
// ErrTrackingTerminated. It is idempotent.
func (t *Tracker) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.terminated {
		return
	}
	t.terminated = true
	close(t.changed)
}

// NotifyOfChange increments the state index and notifies waiters.
func (t *Tracker) NotifyOfChange() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.terminated {
		return
	}
	t.index++
	close(t.changed)
	t.changed = make(chan struct{})
}

// Index returns the current state index.
func (t *Tracker) Index() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.index
}

// WaitForChange waits for the state index to change from previousIndex. It
// returns the new index, or the current index along with an error if the
// context is cancelled or tracking is terminated. A previousIndex of 0 returns
// immediately with the current index.
func (t *Tracker) WaitForChange(ctx context.Context, previousIndex uint64) (uint64, error) {
	for {
		// Check the current state.
		t.lock.Lock()
		index, terminated, changed := t.index, t.terminated, t.changed
		t.lock.Unlock()
		if terminated {
			return index, ErrTrackingTerminated
		} else if index != previousIndex {
			return index, nil
		}

		// Wait for a change or cancellation.
		select {
		case <-changed:
		case <-ctx.Done():
			return index, ctx.Err()
		}
	}
}
