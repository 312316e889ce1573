package state

import (
	"testing"
	"time"
)

// TestCoalescer tests that strobes within the window produce a single signal.
func TestCoalescer(t *testing.T) {
	coalescer := NewCoalescer(20*time.Millisecond, 0)
	defer coalescer.Terminate()

	for i := 0; i < 5; i++ {
		coalescer.Strobe()
	}

	select {
	case <-coalescer.Signals():
	case <-time.After(time.Second):
		t.Fatal("coalesced signal not delivered")
	}

	select {
	case <-coalescer.Signals():
		t.Error("multiple signals delivered for a single burst")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestCoalescerMaximumDelay tests that continuous strobing can't postpone a
// signal beyond the maximum delay.
func TestCoalescerMaximumDelay(t *testing.T) {
	coalescer := NewCoalescer(time.Second, 50*time.Millisecond)
	defer coalescer.Terminate()

	// Strobe continuously for well beyond the maximum delay but within the
	// window, which would never signal without a maximum.
	stop := time.After(500 * time.Millisecond)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-coalescer.Signals():
			return
		case <-ticker.C:
			coalescer.Strobe()
		case <-stop:
			t.Fatal("signal not delivered within maximum delay")
		}
	}
}

// TestCoalescerTerminate tests that Strobe doesn't block after termination.
func TestCoalescerTerminate(t *testing.T) {
	coalescer := NewCoalescer(-time.Second, -time.Second)
	coalescer.Terminate()
	coalescer.Terminate()
	coalescer.Strobe()
}
