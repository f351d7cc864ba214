package kronosim

import "sort"

// Claimable is anything a ResourceRequest can target: both Resource and
// DepletableResource (which embeds *Resource and promotes its methods)
// satisfy it, letting a single RequestIntent mix counting and depletable
// resources in one atomic request.
type Claimable interface {
	Name() string
	canHonor(quantity float64) bool
	everHonorable(quantity float64) bool
	claim(c *Component, quantity float64)
	enqueueRequester(w *requestWaiter)
	removeRequester(w *requestWaiter)
	detachComponent(c *Component)
	reHonor()
}

// ResourceSelectionPolicy picks one of several candidate resources to
// target for a quantity-bearing request, e.g. when several identical pumps
// can serve an arrival.
type ResourceSelectionPolicy func(candidates []*Resource, quantity float64) *Resource

// ShortestQueue selects the candidate with the fewest queued requesters,
// breaking ties by declaration order.
func ShortestQueue(candidates []*Resource, _ float64) *Resource {
	var best *Resource
	for _, r := range candidates {
		if best == nil || len(r.requesters) < len(best.requesters) {
			best = r
		}
	}
	return best
}

// FirstAvailable selects the first candidate (in declaration order) that
// can immediately honor quantity, falling back to the first candidate if
// none can.
func FirstAvailable(candidates []*Resource, quantity float64) *Resource {
	for _, r := range candidates {
		if r.canHonor(quantity) {
			return r
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return nil
}

// RandomAvailable selects a candidate that can immediately honor quantity
// using the Environment's configured random source, falling back to
// FirstAvailable if none can.
func RandomAvailable(env *Environment) ResourceSelectionPolicy {
	return func(candidates []*Resource, quantity float64) *Resource {
		var avail []*Resource
		for _, r := range candidates {
			if r.canHonor(quantity) {
				avail = append(avail, r)
			}
		}
		if len(avail) == 0 {
			return FirstAvailable(candidates, quantity)
		}
		return avail[env.rand.IntN(len(avail))]
	}
}

// RoundRobin returns a ResourceSelectionPolicy that cycles through
// candidates in declaration order regardless of availability.
func RoundRobin() ResourceSelectionPolicy {
	var next int
	return func(candidates []*Resource, _ float64) *Resource {
		if len(candidates) == 0 {
			return nil
		}
		r := candidates[next%len(candidates)]
		next++
		return r
	}
}

// requestWaiter is one entry on a Resource's requester queue: a Component
// blocked in REQUESTING, plus the full (possibly multi-resource) request it
// yielded, so a re-honor scan triggered by any one of the involved
// resources can evaluate the whole request atomically.
type requestWaiter struct {
	component *Component
	requests  []ResourceRequest
	oneOf     bool
	priority  int
	seq       uint64
}

// claimRecord tracks one component's outstanding claim on a Resource.
type claimRecord struct {
	component *Component
	quantity  float64
}

// Resource is the engine's counting resource: capacity units that
// components claim and release. DepletableResource wraps the same type
// with level-based honoring instead of claimed-count honoring (see
// resource_depletable.go).
type Resource struct {
	env      *Environment
	name     string
	capacity float64

	// depletable-only fields (see resource_depletable.go)
	depletable    bool
	level         float64
	capacityMode  CapacityMode
	putRemainders []float64

	claims     []claimRecord
	claimed    float64
	requesters []*requestWaiter
	claimers   []*Component

	scanning    bool
	pendingScan bool

	claimedTimeline      *DoubleTimeline
	capacityTimeline     *DoubleTimeline
	availabilityTimeline *DoubleTimeline
	occupancyTimeline    *DoubleTimeline
	levelTimeline        *DoubleTimeline
	requesterSize        *IntTimeline
	claimerSize          *IntTimeline
	requesterStay        *NumericStatisticMonitor
	claimerStay          *NumericStatisticMonitor
}

// NewResource creates a counting Resource with the given capacity, and
// registers it with env (see Environment.Resources).
func NewResource(env *Environment, name string, capacity float64) *Resource {
	r := &Resource{
		env:      env,
		name:     name,
		capacity: capacity,
	}
	r.initTimelines()
	env.registerResource(r)
	return r
}

func (r *Resource) initTimelines() {
	c := r.env.clock
	r.claimedTimeline = NewDoubleTimeline(r.name+".claimed", c, 0)
	r.capacityTimeline = NewDoubleTimeline(r.name+".capacity", c, r.capacity)
	r.availabilityTimeline = NewDoubleTimeline(r.name+".availability", c, r.capacity)
	r.occupancyTimeline = NewDoubleTimeline(r.name+".occupancy", c, 0)
	if r.depletable {
		r.levelTimeline = NewDoubleTimeline(r.name+".level", c, r.level)
	}
	r.requesterSize = NewIntTimeline(r.name+".requesters.size", c, 0)
	r.claimerSize = NewIntTimeline(r.name+".claimers.size", c, 0)
	r.requesterStay = NewNumericStatisticMonitor(r.name + ".requesters.lengthOfStay")
	r.claimerStay = NewNumericStatisticMonitor(r.name + ".claimers.lengthOfStay")
}

// Name returns the resource's name.
func (r *Resource) Name() string { return r.name }

// Capacity returns the current capacity.
func (r *Resource) Capacity() float64 { return r.capacity }

// Claimed returns the total currently-claimed quantity.
func (r *Resource) Claimed() float64 { return r.claimed }

// ClaimedTimeline returns the time-weighted history of Claimed.
func (r *Resource) ClaimedTimeline() *DoubleTimeline { return r.claimedTimeline }

// CapacityTimeline returns the time-weighted history of Capacity.
func (r *Resource) CapacityTimeline() *DoubleTimeline { return r.capacityTimeline }

// AvailabilityTimeline returns the time-weighted history of
// capacity-minus-claimed.
func (r *Resource) AvailabilityTimeline() *DoubleTimeline { return r.availabilityTimeline }

// OccupancyTimeline returns the time-weighted history of claimed/capacity.
func (r *Resource) OccupancyTimeline() *DoubleTimeline { return r.occupancyTimeline }

// RequesterSizeTimeline returns the time-weighted history of requester
// queue length.
func (r *Resource) RequesterSizeTimeline() *IntTimeline { return r.requesterSize }

// ClaimerSizeTimeline returns the time-weighted history of claimer count.
func (r *Resource) ClaimerSizeTimeline() *IntTimeline { return r.claimerSize }

// RequesterLengthOfStay returns length-of-stay statistics for components
// that waited in the requester queue before being honored.
func (r *Resource) RequesterLengthOfStay() *NumericStatisticMonitor { return r.requesterStay }

// ClaimerLengthOfStay returns length-of-stay statistics for how long
// components held a claim before releasing it.
func (r *Resource) ClaimerLengthOfStay() *NumericStatisticMonitor { return r.claimerStay }

// SetCapacity changes the resource's capacity at runtime and triggers a
// re-honor scan (a capacity increase may now satisfy queued requesters).
func (r *Resource) SetCapacity(capacity float64) {
	r.capacity = capacity
	r.capacityTimeline.AddValue(capacity)
	r.sampleDerived()
	r.reHonor()
}

// Req builds a ResourceRequest for quantity units of r, for use in
// Process.Request.
func (r *Resource) Req(quantity float64) ResourceRequest {
	return ResourceRequest{Resource: r, Quantity: quantity}
}

func (r *Resource) sampleDerived() {
	r.claimedTimeline.AddValue(r.claimed)
	r.availabilityTimeline.AddValue(r.capacity - r.claimed)
	if r.capacity != 0 {
		r.occupancyTimeline.AddValue(r.claimed / r.capacity)
	} else {
		r.occupancyTimeline.AddValue(0)
	}
	if r.depletable {
		r.levelTimeline.AddValue(r.level)
	}
}

// canHonor reports whether quantity units could be claimed right now,
// without mutating state.
func (r *Resource) canHonor(quantity float64) bool {
	if r.depletable {
		return r.level >= quantity
	}
	return r.claimed+quantity <= r.capacity
}

// everHonorable reports whether quantity could ever be claimed at the
// resource's current capacity, regardless of outstanding claims or level.
func (r *Resource) everHonorable(quantity float64) bool {
	return quantity <= r.capacity
}

// claim grants quantity units to c, recording c in the claimer list on its
// first claim.
func (r *Resource) claim(c *Component, quantity float64) {
	first := true
	for i := range r.claims {
		if r.claims[i].component == c {
			r.claims[i].quantity += quantity
			first = false
			break
		}
	}
	if first {
		r.claims = append(r.claims, claimRecord{component: c, quantity: quantity})
		r.claimers = append(r.claimers, c)
		r.claimerSize.AddValue(int64(len(r.claimers)))
		c.claimStart = r.env.clock.Now()
	}
	if r.depletable {
		r.level -= quantity
		r.drainPutRemainders()
	}
	r.claimed += quantity
	r.sampleDerived()
	logResourceEvent(r.env.logger, "claim", r, r.env.clock.Now())
}

// Release reduces c's claim on r by q; if q <= 0 or q >= the full claim,
// the claim is cleared entirely. Triggers a re-honor scan.
func (r *Resource) Release(c *Component, q float64) {
	for i := range r.claims {
		if r.claims[i].component != c {
			continue
		}
		rec := &r.claims[i]
		amount := q
		if amount <= 0 || amount >= rec.quantity {
			amount = rec.quantity
			r.claimed -= rec.quantity
			r.claims = append(r.claims[:i], r.claims[i+1:]...)
			for j, cl := range r.claimers {
				if cl == c {
					r.claimers = append(r.claimers[:j], r.claimers[j+1:]...)
					break
				}
			}
			r.claimerSize.AddValue(int64(len(r.claimers)))
			r.claimerStay.AddValue(float64(r.env.clock.Now() - c.claimStart))
		} else {
			rec.quantity -= amount
			r.claimed -= amount
		}
		r.sampleDerived()
		logResourceEvent(r.env.logger, "release", r, r.env.clock.Now())
		break
	}
	r.reHonor()
}

// enqueueRequester inserts w into the requester queue in priority-then-seq
// order (higher priority first, ties broken by arrival order).
func (r *Resource) enqueueRequester(w *requestWaiter) {
	idx := sort.Search(len(r.requesters), func(i int) bool {
		o := r.requesters[i]
		if o.priority != w.priority {
			return o.priority < w.priority
		}
		return o.seq > w.seq
	})
	r.requesters = append(r.requesters, nil)
	copy(r.requesters[idx+1:], r.requesters[idx:])
	r.requesters[idx] = w
	r.requesterSize.AddValue(int64(len(r.requesters)))
}

func (r *Resource) removeRequester(w *requestWaiter) {
	for i, o := range r.requesters {
		if o == w {
			r.requesters = append(r.requesters[:i], r.requesters[i+1:]...)
			r.requesterSize.AddValue(int64(len(r.requesters)))
			r.requesterStay.AddValue(float64(r.env.clock.Now() - w.component.reqEnqueuedAt))
			return
		}
	}
}

// detachComponent implements attachment, removing c from whichever
// requester-queue entry it holds (used by cancel, activate and request
// timeout; interrupt leaves the entry in place).
func (r *Resource) detachComponent(c *Component) {
	for _, w := range r.requesters {
		if w.component == c {
			r.removeRequester(w)
			return
		}
	}
}

// reHonor scans the requester queue from the head, honoring satisfiable
// entries. Guarded against reentrancy: a release triggered by honoring
// another requester mid-scan sets pendingScan instead of recursing.
func (r *Resource) reHonor() {
	if r.scanning {
		r.pendingScan = true
		return
	}
	r.scanning = true
	defer func() { r.scanning = false }()

	for {
		progressed := r.scanOnce()
		if !progressed && !r.pendingScan {
			return
		}
		r.pendingScan = false
		if !progressed {
			return
		}
	}
}

// scanOnce honors the queue head if its full request is satisfiable and
// reports whether it made progress. An unsatisfiable head blocks the whole
// scan, preserving FIFO among equal-priority requesters.
func (r *Resource) scanOnce() bool {
	if len(r.requesters) == 0 {
		return false
	}
	w := r.requesters[0]
	// an interrupted requester stays queued but blocks honoring until resumed
	if w.component.state == INTERRUPTED {
		return false
	}
	if !r.honorable(w) {
		return false
	}
	r.honor(w)
	return true
}

// satisfiedBy evaluates w's request shape against a per-resource
// predicate: for oneOf it returns the index of the first satisfiable pair;
// otherwise it reports whether every pair is satisfiable simultaneously.
func (w *requestWaiter) satisfiedBy(resources func(Claimable) bool) (int, bool) {
	if w.oneOf {
		for i, req := range w.requests {
			if resources(req.Resource) {
				return i, true
			}
		}
		return -1, false
	}
	for _, req := range w.requests {
		if !resources(req.Resource) {
			return -1, false
		}
	}
	return -1, true
}

func (r *Resource) honorable(w *requestWaiter) bool {
	_, ok := w.satisfiedBy(func(target Claimable) bool { return target.canHonor(requestedQuantity(w, target)) })
	return ok
}

func requestedQuantity(w *requestWaiter, target Claimable) float64 {
	for _, req := range w.requests {
		if req.Resource == target {
			return req.Quantity
		}
	}
	return 0
}

// honor grants w's request, removes it from every resource's requester
// queue it was attached to, and resumes its component.
func (r *Resource) honor(w *requestWaiter) {
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
	for _, req := range w.requests {
		req.Resource.removeRequester(w)
	}
	r.env.honorRequester(w.component)
}
