package state

import (
	"context"
	"time"
)

// Coalescer performs coalesced signaling, combining multiple strobes that occur
// within a specified time window into a single signal. A signal is also
// delivered once the oldest pending strobe reaches a maximum delay, so that a
// continuous stream of strobes can't postpone signaling indefinitely. A
// Coalescer is safe for concurrent usage. It maintains a background Goroutine
// that must be terminated using Terminate.
type Coalescer struct {
	// strobes is used to transmit strobes to the run loop.
	strobes chan struct{}
	// signals is the channel on which signals are delivered.
	signals chan struct{}
	// cancel signals termination to the run loop.
	cancel context.CancelFunc
	// done is closed to indicate that the run loop has exited.
	done chan struct{}
}

// NewCoalescer creates a new coalescer that will group strobes that occur
// within window of each other. If maximum is positive, a signal is delivered
// no later than maximum after the first pending strobe. Negative durations are
// treated as zero.
func NewCoalescer(window, maximum time.Duration) *Coalescer {
	// Clamp durations.
	if window < 0 {
		window = 0
	}
	if maximum < 0 {
		maximum = 0
	}

	// Create a cancellable context to regulate the run loop.
	ctx, cancel := context.WithCancel(context.Background())

	// Create the coalescer and start its run loop.
	coalescer := &Coalescer{
		strobes: make(chan struct{}),
		signals: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go coalescer.run(ctx, window, maximum)

	// Done.
	return coalescer
}

// run implements the signal processing run loop for Coalescer.
func (c *Coalescer) run(ctx context.Context, window, maximum time.Duration) {
	// Create the (initially stopped) coalescing timer.
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	// deadline is the latest time at which the pending signal may be
	// delivered. It's zero when no signal is pending.
	var deadline time.Time

	// Loop and process events until cancelled.
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			close(c.done)
			return
		case <-c.strobes:
			now := time.Now()
			if deadline.IsZero() && maximum > 0 {
				deadline = now.Add(maximum)
			}
			delay := window
			if !deadline.IsZero() {
				if remaining := deadline.Sub(now); remaining < delay {
					delay = remaining
				}
			}
			timer.Stop()
			select {
			case <-timer.C:
			default:
			}
			timer.Reset(delay)
		case <-timer.C:
			deadline = time.Time{}
			select {
			case c.signals <- struct{}{}:
			default:
			}
		}
	}
}

// Strobe enqueues a signal to be sent after the coalescing window. Each strobe
// restarts the window, subject to the maximum delay.
func (c *Coalescer) Strobe() {
	select {
	case c.strobes <- struct{}{}:
	case <-c.done:
	}
}

// Signals returns the signal notification channel. This channel is buffered
// with a capacity of 1, so no signaling will ever be lost if it's not actively
// polled. The resulting channel is never closed.
func (c *Coalescer) Signals() <-chan struct{} {
	return c.signals
}

// Terminate shuts down the coalescer's internal run loop and waits for it to
// terminate. It is idempotent. After termination, Strobe has no effect and
// only previously buffered signals are delivered.
func (c *Coalescer) Terminate() {
	c.cancel()
	<-c.done
}
