package kronosim

import (
	"math"
	"runtime"
)

// ProcessFunc is the body of a Component's behavior: a plain, imperative Go
// function that suspends only by calling Process methods (Hold, Passivate,
// Request, Wait, Standby, Restart). Between those calls, process code runs
// to completion atomically from the engine's point of view — no
// interleaving is observable — even though it executes on its own
// goroutine, because the driver never resumes more than one goroutine at a
// time (see Environment.resumeCurrent).
//
// Go has no first-class coroutines, so each Component's process runs on a
// dedicated goroutine, handed control by the driver one rendezvous at a
// time over an unbuffered channel pair.
type ProcessFunc func(p *Process)

// resumeSignal is sent from the driver to a parked process goroutine to
// hand it control back.
type resumeSignal struct {
	failed    bool
	cancelled bool
}

// Process is the coroutine handle passed to a running ProcessFunc. It is
// the only way a process may suspend itself; all other Component lifecycle
// operations (activate of another component, cancel, interrupt, resume)
// are ordinary synchronous method calls made by whichever process is
// CURRENT.
type Process struct {
	component *Component
	env       *Environment
	toDriver  chan Intent
	toProcess chan resumeSignal
}

// startProcess launches a process goroutine running entry, bound to c.
// The caller must receive the first yielded Intent from the returned
// channel before doing anything else with c.
func startProcess(env *Environment, c *Component, entry ProcessFunc) *Process {
	p := &Process{
		component: c,
		env:       env,
		toDriver:  make(chan Intent),
		toProcess: make(chan resumeSignal),
	}
	go func() {
		entry(p)
		// A process that returns normally terminates the component.
		p.toDriver <- doneIntent{}
	}()
	return p
}

// yield hands an Intent to the driver and blocks until resumed. If the
// resume signals cancellation, the goroutine tears itself down via
// runtime.Goexit so deferred cleanup in the process body still runs.
func (p *Process) yield(intent Intent) resumeSignal {
	p.toDriver <- intent
	sig := <-p.toProcess
	if sig.cancelled {
		runtime.Goexit()
	}
	return sig
}

// Hold suspends the current process for duration ticks, scheduling it
// SCHEDULED at now+duration. A negative duration aborts the component's
// step: the driver cancels the component (see Environment.applyIntent) and
// this call never returns.
func (p *Process) Hold(duration TickTime, priority ...int) {
	pr := 0
	if len(priority) > 0 {
		pr = priority[0]
	}
	p.yield(HoldIntent{Duration: duration, Priority: pr})
}

// Passivate suspends the current process with no pending scheduler entry,
// until another component calls Activate on it.
func (p *Process) Passivate() {
	p.yield(PassivateIntent{})
}

// Standby suspends the current process, re-invoking it at the time of
// every subsequently popped event until it leaves STANDBY.
func (p *Process) Standby() {
	p.yield(StandbyIntent{})
}

// RequestOption configures a Request call.
type RequestOption func(*RequestIntent)

// WithPriority sets the request priority used for requester-queue
// ordering (higher values are honored first). Waits take their priority
// from WithWaitPriority.
func WithPriority(priority int) RequestOption {
	return func(r *RequestIntent) { r.Priority = priority }
}

// OneOf requests that only the first satisfiable resource (in declaration
// order) be claimed, rather than requiring all listed pairs simultaneously.
func OneOf() RequestOption {
	return func(r *RequestIntent) { r.OneOf = true }
}

// FailAt sets an absolute time after which an unhonored request fails.
func FailAt(at TickTime) RequestOption {
	return func(r *RequestIntent) { r.FailAt = at }
}

// FailDelay sets a relative timeout (from now) after which an unhonored
// request fails.
func FailDelay(delay TickTime) RequestOption {
	return func(r *RequestIntent) { r.FailDelay = delay }
}

// Request suspends the current process until quantity units of each listed
// resource (or any one, with OneOf) can be claimed simultaneously. Returns
// true if the request was honored, false if it failed (timeout).
func (p *Process) Request(requests []ResourceRequest, opts ...RequestOption) bool {
	intent := RequestIntent{
		Requests:  requests,
		FailAt:    TickTime(math.Inf(1)),
		FailDelay: TickTime(math.Inf(1)),
	}
	for _, opt := range opts {
		opt(&intent)
	}
	sig := p.yield(intent)
	return !sig.failed
}

// WaitOption configures a Wait call.
type WaitOption func(*WaitIntent)

// WithWaitPriority sets the priority used when the predicate becomes true
// and the component is rescheduled.
func WithWaitPriority(priority int) WaitOption {
	return func(w *WaitIntent) { w.Priority = priority }
}

// WaitFailAt sets an absolute time after which an unmet wait fails.
func WaitFailAt(at TickTime) WaitOption {
	return func(w *WaitIntent) { w.FailAt = at }
}

// WaitFailDelay sets a relative timeout after which an unmet wait fails.
func WaitFailDelay(delay TickTime) WaitOption {
	return func(w *WaitIntent) { w.FailDelay = delay }
}

// Wait suspends the current process until the aggregate predicate
// (All/Any) over clauses holds. Returns true if honored, false if it
// failed (timeout).
func (p *Process) Wait(aggregate AllOrAny, clauses []WaitClause, opts ...WaitOption) bool {
	intent := WaitIntent{
		Clauses:   clauses,
		AllOrAny:  aggregate,
		FailAt:    TickTime(math.Inf(1)),
		FailDelay: TickTime(math.Inf(1)),
	}
	for _, opt := range opts {
		opt(&intent)
	}
	sig := p.yield(intent)
	return !sig.failed
}

// Restart replaces the current process with a fresh run of entry,
// scheduled SCHEDULED at now+delay (default 0). It is the only legal way
// for a process to "activate" itself — activate() on any other CURRENT
// target is rejected with ErrCurrentNotActivatable.
func (p *Process) Restart(entry ProcessFunc, delay TickTime, priority int) {
	p.toDriver <- RestartIntent{Entry: entry, At: p.env.clock.Now() + delay, Priority: priority}
	runtime.Goexit()
}

// RepeatedProcess wraps body in an outer infinite loop: sugar for a
// process that repeats its cycle indefinitely, until cancelled or body
// itself restarts the component.
func RepeatedProcess(body func(p *Process)) ProcessFunc {
	return func(p *Process) {
		for {
			body(p)
		}
	}
}

// Env exposes the owning Environment, e.g. for logging or dependency
// lookup from within a process body.
func (p *Process) Env() *Environment { return p.env }

// Self returns the Component this process drives.
func (p *Process) Self() *Component { return p.component }
