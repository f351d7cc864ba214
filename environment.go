package kronosim

import (
	"math"
	"math/rand/v2"
	"strconv"
)

// Environment owns the Clock, the component and resource registries, the
// dependency container, and the scheduler loop. All mutable simulation
// state is reachable only through an Environment, and must only be touched
// while Run is driving it (see the concurrency model: single-threaded,
// cooperative, one simulated timeline).
type Environment struct {
	clock  *Clock
	logger Logger
	rand   *rand.Rand

	components   []*Component
	nameCounters map[string]int

	resources []*Resource
	standby   []*Component

	eventLog      []EventLogRecord
	eventLogOn    bool
	eventLogLimit int

	registry map[registryKey]any
}

// NewEnvironment constructs an Environment ready to run, applying opts in
// order (see options.go for WithLogger, WithEventLog, WithRandSource).
func NewEnvironment(opts ...EnvironmentOption) (*Environment, error) {
	cfg, err := resolveEnvironmentOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Environment{
		clock:         newClock(),
		logger:        cfg.logger,
		rand:          cfg.randSource,
		nameCounters:  make(map[string]int),
		eventLogOn:    cfg.eventLog,
		eventLogLimit: cfg.eventLogLimit,
		registry:      make(map[registryKey]any),
	}, nil
}

// Now returns the current simulated time.
func (e *Environment) Now() TickTime { return e.clock.Now() }

// Clock returns the Environment's clock, e.g. for constructing standalone
// timelines that sample at the simulation's current time.
func (e *Environment) Clock() *Clock { return e.clock }

// Logger returns the Environment's configured structured logger.
func (e *Environment) Logger() Logger { return e.logger }

func (e *Environment) registerComponent(c *Component) {
	e.components = append(e.components, c)
}

func (e *Environment) registerResource(r *Resource) {
	e.resources = append(e.resources, r)
}

// Components returns every component ever registered with the Environment,
// in creation order.
func (e *Environment) Components() []*Component {
	out := make([]*Component, len(e.components))
	copy(out, e.components)
	return out
}

// Resources returns every resource registered with the Environment, in
// creation order.
func (e *Environment) Resources() []*Resource {
	out := make([]*Resource, len(e.resources))
	copy(out, e.resources)
	return out
}

// internComponentName resolves a caller-given name into the component's
// actual identity: empty names are auto-generated from a generic base, and
// any name ending in '-', '.', or '_' is suffixed with an auto-incrementing
// integer counter scoped to that base.
func (e *Environment) internComponentName(name string) string {
	if name == "" {
		name = "Component-"
	}
	last := name[len(name)-1]
	if last != '-' && last != '.' && last != '_' {
		return name
	}
	e.nameCounters[name]++
	return name + strconv.Itoa(e.nameCounters[name])
}

func (e *Environment) addStandby(c *Component) {
	c.state = STANDBY
	e.standby = append(e.standby, c)
}

func (e *Environment) removeStandby(c *Component) {
	for i, sc := range e.standby {
		if sc == c {
			e.standby = append(e.standby[:i], e.standby[i+1:]...)
			return
		}
	}
}

// RunOption configures a call to Run.
type RunOption func(*runConfig)

type runConfig struct {
	hasUntil  bool
	until     TickTime
	hasRelFor bool
	relFor    TickTime
	pred      func(*Environment) bool
}

// Until stops Run once the simulated clock reaches t (events scheduled
// exactly at t still execute; Run stops before popping anything later).
func Until(t TickTime) RunOption {
	return func(c *runConfig) { c.hasUntil = true; c.until = t }
}

// For stops Run once the simulated clock has advanced d ticks from its
// value when Run was called.
func For(d TickTime) RunOption {
	return func(c *runConfig) { c.hasRelFor = true; c.relFor = d }
}

// While stops Run as soon as pred(env) returns false, checked before each
// popped event (including STANDBY dispatch).
func While(pred func(*Environment) bool) RunOption {
	return func(c *runConfig) { c.pred = pred }
}

// Run pops events, dispatching STANDBY components ahead of any other
// component at each event time, until the stop condition holds or the
// queue is empty.
func (e *Environment) Run(opts ...RunOption) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	var untilAbs TickTime
	haveUntil := cfg.hasUntil || cfg.hasRelFor
	switch {
	case cfg.hasRelFor:
		untilAbs = e.clock.Now() + cfg.relFor
	case cfg.hasUntil:
		untilAbs = cfg.until
	}

	for {
		if cfg.pred != nil && !cfg.pred(e) {
			return
		}
		ev, ok := e.clock.peek()
		if !ok {
			// Nothing left to pop: STANDBY components are only re-invoked at
			// popped-event times, so the run ends here, after moving the
			// clock up to the requested bound.
			if haveUntil {
				e.clock.advanceTo(untilAbs)
			}
			return
		}
		if haveUntil && ev.time > untilAbs {
			e.clock.advanceTo(untilAbs)
			return
		}
		e.dispatchStandby(ev.time)

		popped, ok := e.clock.pop()
		if !ok {
			continue
		}
		e.dispatchEvent(popped)
	}
}

func (e *Environment) dispatchStandby(at TickTime) {
	if len(e.standby) == 0 {
		return
	}
	e.clock.advanceTo(at)
	batch := make([]*Component, len(e.standby))
	copy(batch, e.standby)
	for _, c := range batch {
		if c.state != STANDBY {
			continue
		}
		e.removeStandby(c)
		e.resumeCurrent(c, at, resumeSignal{failed: false})
	}
}

// dispatchEvent applies a popped clock event according to its kind.
func (e *Environment) dispatchEvent(ev *event) {
	c := ev.component
	switch ev.kind {
	case kindRestart:
		e.startCurrent(c, ev.time, ProcessFunc(ev.entry))
	case kindTimeout:
		c.timeoutEvent = 0
		c.detachCurrent()
		c.failed = true
		e.resumeCurrent(c, ev.time, resumeSignal{failed: true})
	default: // kindResume
		c.mainEvent = 0
		e.resumeCurrent(c, ev.time, resumeSignal{failed: c.failed})
	}
}

func (e *Environment) startCurrent(c *Component, now TickTime, entry ProcessFunc) {
	c.mainEvent = 0
	c.state = CURRENT
	p := startProcess(e, c, entry)
	c.proc = p
	logComponentEvent(e.logger, "start", c, now)
	intent := <-p.toDriver
	e.applyIntent(c, intent)
}

func (e *Environment) resumeCurrent(c *Component, now TickTime, sig resumeSignal) {
	c.state = CURRENT
	p := c.proc
	if p == nil {
		return
	}
	logComponentEvent(e.logger, "resume", c, now)
	p.toProcess <- sig
	intent := <-p.toDriver
	e.applyIntent(c, intent)
}

// applyIntent is the heart of the process driver: it takes whatever the
// CURRENT component's process just yielded and transitions the component
// accordingly, one arm per kind of suspension.
func (e *Environment) applyIntent(c *Component, intent Intent) {
	switch in := intent.(type) {
	case HoldIntent:
		if in.Duration < 0 {
			e.logger.Err().Str("component", c.name).Log("negative hold duration; cancelling")
			c.Cancel()
			return
		}
		c.state = SCHEDULED
		c.mainEvent = e.clock.schedule(e.clock.Now()+in.Duration, in.Priority, c, kindResume, nil)
		e.recordEvent("hold", c.name, "")

	case PassivateIntent:
		c.state = PASSIVE
		e.recordEvent("passivate", c.name, "")

	case StandbyIntent:
		e.addStandby(c)
		e.recordEvent("standby", c.name, "")

	case RequestIntent:
		e.beginRequest(c, in)

	case WaitIntent:
		e.beginWait(c, in)

	case RestartIntent:
		c.proc = nil
		c.state = SCHEDULED
		c.mainEvent = e.clock.schedule(in.At, in.Priority, c, kindRestart, processEntryFunc(in.Entry))
		e.recordEvent("restart", c.name, "")

	case doneIntent:
		c.state = DATA
		c.proc = nil
		e.recordEvent("done", c.name, "")

	default:
		e.logger.Err().Str("component", c.name).Log("unknown intent yielded; cancelling")
		c.Cancel()
	}
}

func (e *Environment) beginRequest(c *Component, in RequestIntent) {
	for _, req := range in.Requests {
		if req.Quantity < 0 {
			e.logger.Err().Str("component", c.name).Str("resource", req.Resource.Name()).Log("negative request quantity; cancelling")
			c.Cancel()
			return
		}
		if !in.OneOf && !req.Resource.everHonorable(req.Quantity) {
			e.logger.Err().Str("component", c.name).Str("resource", req.Resource.Name()).Log("request exceeds capacity and can never be honored; cancelling")
			c.Cancel()
			return
		}
	}
	c.failed = false
	c.queuePriority = in.Priority
	w := &requestWaiter{component: c, requests: in.Requests, oneOf: in.OneOf, priority: in.Priority}
	if satisfiable(w) {
		grant(w)
		c.state = SCHEDULED
		c.mainEvent = e.clock.schedule(e.clock.Now(), in.Priority, c, kindResume, nil)
		e.recordEvent("request-honored", c.name, "")
		return
	}

	c.state = REQUESTING
	c.reqEnqueuedAt = e.clock.Now()
	e.clock.nextSeq++
	w.seq = e.clock.nextSeq
	for _, req := range in.Requests {
		req.Resource.enqueueRequester(w)
	}
	c.attachment = requestAttachment{requests: in.Requests}
	if fail, ok := failTime(e.clock.Now(), in.FailAt, in.FailDelay); ok {
		c.timeoutEvent = e.clock.schedule(fail, 0, c, kindTimeout, nil)
	}
	e.recordEvent("request-queued", c.name, "")
}

// requestAttachment lets Component.detachCurrent remove a multi-resource
// request from every resource it touched, via the generic attachment
// interface.
type requestAttachment struct {
	requests []ResourceRequest
}

func (a requestAttachment) detachComponent(c *Component) {
	for _, req := range a.requests {
		req.Resource.detachComponent(c)
	}
}

// reHonorAll re-scans every resource the request touches, picking up any
// honoring opportunity missed while the requester was interrupted.
func (a requestAttachment) reHonorAll() {
	for _, req := range a.requests {
		req.Resource.reHonor()
	}
}

func satisfiable(w *requestWaiter) bool {
	_, ok := w.satisfiedBy(func(target Claimable) bool { return target.canHonor(requestedQuantity(w, target)) })
	return ok
}

func grant(w *requestWaiter) {
	idx, ok := w.satisfiedBy(func(target Claimable) bool { return target.canHonor(requestedQuantity(w, target)) })
	if !ok {
		return
	}
	if w.oneOf {
		req := w.requests[idx]
		req.Resource.claim(w.component, req.Quantity)
	} else {
		for _, req := range w.requests {
			req.Resource.claim(w.component, req.Quantity)
		}
	}
}

// honorRequester is called by Resource.honor once a queued request has
// been granted: it clears the component's attachment and schedules it
// CURRENT at now.
func (e *Environment) honorRequester(c *Component) {
	if c.timeoutEvent != 0 {
		e.clock.cancel(c.timeoutEvent)
		c.timeoutEvent = 0
	}
	c.attachment = nil
	c.state = SCHEDULED
	c.mainEvent = e.clock.schedule(e.clock.Now(), c.queuePriority, c, kindResume, nil)
	e.recordEvent("request-honored", c.name, "")
}

func (e *Environment) beginWait(c *Component, in WaitIntent) {
	c.failed = false
	c.queuePriority = in.Priority
	if aggregateHolds(in.AllOrAny, in.Clauses) {
		c.state = SCHEDULED
		c.mainEvent = e.clock.schedule(e.clock.Now(), in.Priority, c, kindResume, nil)
		e.recordEvent("wait-honored", c.name, "")
		return
	}
	c.state = WAITING
	c.waitClauses = in.Clauses
	c.waitAggregate = in.AllOrAny
	for _, cl := range in.Clauses {
		cl.attach(c)
	}
	if fail, ok := failTime(e.clock.Now(), in.FailAt, in.FailDelay); ok {
		c.timeoutEvent = e.clock.schedule(fail, 0, c, kindTimeout, nil)
	}
	e.recordEvent("wait-queued", c.name, "")
}

func aggregateHolds(agg AllOrAny, clauses []WaitClause) bool {
	if len(clauses) == 0 {
		return false
	}
	if agg == Any {
		for _, cl := range clauses {
			if cl.satisfied() {
				return true
			}
		}
		return false
	}
	for _, cl := range clauses {
		if !cl.satisfied() {
			return false
		}
	}
	return true
}

// honorWaiter is called when a State change makes a WAITING component's
// aggregate predicate true: it detaches every clause and schedules the
// component CURRENT at now.
func (e *Environment) honorWaiter(c *Component) {
	for _, cl := range c.waitClauses {
		cl.detach(c)
	}
	c.waitClauses = nil
	if c.timeoutEvent != 0 {
		e.clock.cancel(c.timeoutEvent)
		c.timeoutEvent = 0
	}
	c.state = SCHEDULED
	c.mainEvent = e.clock.schedule(e.clock.Now(), c.queuePriority, c, kindResume, nil)
}

// failTime resolves a request/wait's absolute failure deadline from
// (now, failAt, failDelay), both of which default to +Inf (no timeout) when
// left unset via FailAt/FailDelay. The earlier of the two wins; if both are
// +Inf, there is no timeout.
func failTime(now TickTime, failAt, failDelay TickTime) (TickTime, bool) {
	t := failAt
	if d := now + failDelay; d < t {
		t = d
	}
	if math.IsInf(float64(t), 1) {
		return 0, false
	}
	return t, true
}
