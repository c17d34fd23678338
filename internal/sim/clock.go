package sim

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
)

// How many events run between context checks.
const ctxCheckInterval = 1024

// ErrEventBudget is returned by RunUntil once the clock has executed as many
// events as its budget allows.
var ErrEventBudget = errors.New("event budget exhausted")

// Clock is a single-threaded discrete-event scheduler.
//
// Processes are expressed as continuations: a callback scheduled with At or
// After runs when the clock reaches its instant, and may schedule further
// callbacks. Only one callback runs at a time, so state shared between
// callbacks of the same Clock needs no locking. A Clock must not be shared
// between goroutines.
type Clock struct {
	now     float64
	seq     uint64
	q       eventQueue
	stopped bool
	handled uint64
	budget  uint64
}

func NewClock() *Clock {
	c := &Clock{q: eventQueue{}}
	heap.Init(&c.q)
	return c
}

// Now returns the current simulated time.
func (c *Clock) Now() float64 { return c.now }

// Pending returns the number of scheduled, not yet executed events.
func (c *Clock) Pending() int { return c.q.Len() }

// Handled returns the number of events executed so far.
func (c *Clock) Handled() uint64 { return c.handled }

// SetBudget caps how many events RunUntil may execute; 0 means no cap.
// When each event schedules a bounded number of others, the cap also
// bounds the queue.
func (c *Clock) SetBudget(n uint64) { c.budget = n }

// At schedules fn at absolute time at. Times in the past run at Now.
func (c *Clock) At(at float64, name string, fn func()) {
	if c.stopped {
		return
	}
	if at < c.now {
		at = c.now
	}
	c.seq++
	heap.Push(&c.q, &event{at: at, seq: c.seq, name: name, run: fn})
}

// After schedules fn d time units from now.
func (c *Clock) After(d float64, name string, fn func()) {
	c.At(c.now+d, name, fn)
}

// RunUntil executes events in (time, seq) order while their time is strictly
// before until. The clock then stops at until and every remaining event is
// discarded without running; it cannot be restarted.
func (c *Clock) RunUntil(ctx context.Context, until float64) error {
	if c.stopped {
		return errors.New("run clock: already stopped")
	}
	defer c.stop(until)

	for c.q.Len() > 0 {
		if c.q[0].at >= until {
			return nil
		}

		if c.budget > 0 && c.handled >= c.budget {
			return fmt.Errorf("run clock: at t=%.3f after %d events: %w", c.now, c.handled, ErrEventBudget)
		}

		if c.handled%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run clock: at t=%.3f: %w", c.now, err)
			}
		}

		ev := heap.Pop(&c.q).(*event)
		c.now = ev.at
		c.handled++
		ev.run()
	}

	return nil
}

func (c *Clock) stop(until float64) {
	if c.now < until {
		c.now = until
	}
	c.stopped = true
	c.q = nil
}
