package kronosim

import (
	"container/heap"
)

// TickTime is simulated time: a monotonically non-decreasing rational of
// simulated ticks. Double precision is sufficient; the engine never
// assumes integer ticks.
type TickTime float64

// EventHandle identifies a pending scheduler entry, returned by
// (*Clock).schedule and accepted by (*Clock).cancel. It is idempotent:
// cancelling an already-fired or already-cancelled handle is a no-op.
type EventHandle uint64

// processEntryFunc is the coroutine resumption point a scheduled event may
// carry — the "optionalProcessEntry" of an Event. When set, dispatch starts
// a fresh process at this entry instead of resuming the existing one (used
// by activate(process, ...) and Process.Restart's "restart me" semantics).
type processEntryFunc ProcessFunc

// eventKind distinguishes what a popped event means to the driver: resume
// an already-running process, fail a REQUESTING/WAITING component whose
// deadline arrived first, or start a fresh process (restart/first
// activation).
type eventKind int

const (
	kindResume eventKind = iota
	kindTimeout
	kindRestart
)

// event is a single future-event queue entry: (scheduledTime,
// sequenceNumber, priority, componentRef, optionalProcessEntry).
type event struct {
	handle    EventHandle
	time      TickTime
	seq       uint64
	priority  int
	component *Component
	kind      eventKind
	entry     processEntryFunc
	cancelled bool
	index     int // heap index, maintained by container/heap
}

// eventHeap implements container/heap.Interface, ordered by
// (time asc, -priority asc i.e. higher priority first, seq asc i.e. FIFO).
// The explicit index on each entry makes arbitrary removal by handle
// O(log n).
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.time != b.time {
		return a.time < b.time
	}
	if a.priority != b.priority {
		return a.priority > b.priority // higher priority first
	}
	return a.seq < b.seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Clock owns the future-event queue and the current simulated time. now
// only moves forward, at pop.
type Clock struct {
	heap    eventHeap
	byID    map[EventHandle]*event
	nextID  EventHandle
	nextSeq uint64
	now     TickTime
}

func newClock() *Clock {
	return &Clock{byID: make(map[EventHandle]*event)}
}

// Now returns the current simulated time.
func (c *Clock) Now() TickTime { return c.now }

// schedule inserts an event at the given absolute time, returning a handle
// usable with cancel. priority is a signed integer, higher values run
// first among events at the same time.
func (c *Clock) schedule(at TickTime, priority int, component *Component, kind eventKind, entry processEntryFunc) EventHandle {
	c.nextID++
	c.nextSeq++
	e := &event{
		handle:    c.nextID,
		time:      at,
		seq:       c.nextSeq,
		priority:  priority,
		component: component,
		kind:      kind,
		entry:     entry,
	}
	heap.Push(&c.heap, e)
	c.byID[e.handle] = e
	return e.handle
}

// eventTime reports the scheduled time of a still-pending handle.
func (c *Clock) eventTime(h EventHandle) (TickTime, bool) {
	e, ok := c.byID[h]
	if !ok {
		return 0, false
	}
	return e.time, true
}

// cancel removes a pending event. Idempotent: cancelling an unknown or
// already-fired handle is a no-op.
func (c *Clock) cancel(h EventHandle) {
	e, ok := c.byID[h]
	if !ok {
		return
	}
	delete(c.byID, h)
	if e.index >= 0 {
		heap.Remove(&c.heap, e.index)
	}
	e.cancelled = true
}

// peek returns the lowest-ordered pending event without removing it.
func (c *Clock) peek() (*event, bool) {
	if len(c.heap) == 0 {
		return nil, false
	}
	return c.heap[0], true
}

// pop removes and returns the lowest-ordered event, advancing now to its
// time (never backward).
func (c *Clock) pop() (*event, bool) {
	if len(c.heap) == 0 {
		return nil, false
	}
	e := heap.Pop(&c.heap).(*event)
	delete(c.byID, e.handle)
	if e.time > c.now {
		c.now = e.time
	}
	return e, true
}

// advanceTo moves now forward to t without popping anything (used when a
// run bound outlasts the queue). Never moves backward.
func (c *Clock) advanceTo(t TickTime) {
	if t > c.now {
		c.now = t
	}
}

// Len reports the number of pending events, for tests and diagnostics.
func (c *Clock) Len() int { return len(c.heap) }
