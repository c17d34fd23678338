package sim

import "fmt"

// Resource is a counting semaphore with FIFO-ordered waiters, driven by a Clock.
//
// Acquire never blocks the caller: the grant callback is scheduled on the
// clock once a permit is available, either immediately (at the current
// instant) or when a holder releases. Waiters are granted strictly in the
// order they called Acquire.
type Resource struct {
	clock    *Clock
	name     string
	capacity int
	inUse    int
	peak     int
	granted  uint64
	waiters  []func()
}

func NewResource(clock *Clock, name string, capacity int) (*Resource, error) {
	if clock == nil {
		return nil, fmt.Errorf("new resource %q: clock is nil", name)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("new resource %q: capacity must be positive, got %d", name, capacity)
	}
	return &Resource{clock: clock, name: name, capacity: capacity}, nil
}

// Acquire requests one permit; onGrant runs once the permit is held.
func (r *Resource) Acquire(onGrant func()) {
	if r.inUse < r.capacity && len(r.waiters) == 0 {
		r.grant(onGrant)
		return
	}
	r.waiters = append(r.waiters, onGrant)
}

// Release returns a permit and hands it to the longest-waiting requester.
func (r *Resource) Release() {
	if r.inUse == 0 {
		panic(fmt.Sprintf("resource %q: release without matching acquire", r.name))
	}
	r.inUse--

	if len(r.waiters) > 0 {
		next := r.waiters[0]
		r.waiters[0] = nil
		r.waiters = r.waiters[1:]
		r.grant(next)
	}
}

func (r *Resource) grant(onGrant func()) {
	r.inUse++
	r.granted++
	if r.inUse > r.peak {
		r.peak = r.inUse
	}
	r.clock.At(r.clock.Now(), r.name+".grant", onGrant)
}

func (r *Resource) Capacity() int { return r.capacity }

// InUse is the number of permits currently held.
func (r *Resource) InUse() int { return r.inUse }

// Queued is the number of requesters waiting for a permit.
func (r *Resource) Queued() int { return len(r.waiters) }

// Peak is the highest number of permits ever held at once.
func (r *Resource) Peak() int { return r.peak }

// Granted counts permits handed out so far.
func (r *Resource) Granted() uint64 { return r.granted }
