package kronosim

// CapacityMode controls what happens when Put would push a
// DepletableResource's level above its capacity.
type CapacityMode int

const (
	// CapacityFail rejects the excess: Put returns a CapacityViolation
	// error and the level is left unchanged.
	CapacityFail CapacityMode = iota
	// CapacityCap truncates the increase at capacity, silently discarding
	// the overflow.
	CapacityCap
	// CapacitySchedule accepts only what fits now and queues the remainder,
	// delivered automatically as takes lower the level and make room.
	CapacitySchedule
)

// DepletableResource is a Resource whose honoring condition is driven by a
// continuous level (independent of a claim count) rather than a capacity
// minus claimed-count budget: request(r, q) honors when level(r) >= q; put
// adds back to the level, up to capacity, per CapacityMode.
type DepletableResource struct {
	*Resource
}

// NewDepletableResource creates a DepletableResource with the given
// capacity and starting level, using CapacityFail by default (see
// WithCapacityMode).
func NewDepletableResource(env *Environment, name string, capacity, initialLevel float64) *DepletableResource {
	r := &Resource{
		env:        env,
		name:       name,
		capacity:   capacity,
		depletable: true,
		level:      initialLevel,
	}
	r.initTimelines()
	env.registerResource(r)
	return &DepletableResource{Resource: r}
}

// WithCapacityMode sets the overflow behavior for subsequent Put calls.
func (d *DepletableResource) WithCapacityMode(mode CapacityMode) *DepletableResource {
	d.capacityMode = mode
	return d
}

// Level returns the current level.
func (d *DepletableResource) Level() float64 { return d.level }

// LevelTimeline returns the time-weighted history of Level.
func (d *DepletableResource) LevelTimeline() *DoubleTimeline { return d.levelTimeline }

// Put increases the level by q, up to capacity. Under CapacityFail (the
// default), an increase that would exceed capacity is rejected entirely and
// returns a CapacityViolation error. Under CapacityCap, the increase is
// truncated at capacity. Under CapacitySchedule, only the portion that fits
// is applied now and the remainder is queued, delivered automatically as
// takes lower the level (see Resource.drainPutRemainders).
func (d *DepletableResource) Put(q float64) error {
	if q < 0 {
		return newError(DomainError, "Put", "quantity must be non-negative", nil)
	}
	if q == 0 {
		return nil
	}
	room := d.capacity - d.level
	switch {
	case q <= room:
		d.level += q
	case d.capacityMode == CapacityFail:
		return newError(CapacityViolation, "Put", "level would exceed capacity", nil)
	case d.capacityMode == CapacityCap:
		d.level = d.capacity
	default: // CapacitySchedule
		d.level = d.capacity
		d.putRemainders = append(d.putRemainders, q-room)
	}
	d.sampleDerived()
	logResourceEvent(d.env.logger, "put", d.Resource, d.env.clock.Now())
	d.reHonor()
	return nil
}

// PendingPut returns the total quantity queued by CapacitySchedule puts and
// not yet delivered.
func (d *DepletableResource) PendingPut() float64 {
	var total float64
	for _, rem := range d.putRemainders {
		total += rem
	}
	return total
}

// drainPutRemainders delivers queued CapacitySchedule put remainders as
// room becomes available, oldest first. Called whenever a take lowers the
// level.
func (r *Resource) drainPutRemainders() {
	for len(r.putRemainders) > 0 {
		room := r.capacity - r.level
		if room <= 0 {
			return
		}
		applied := r.putRemainders[0]
		if applied > room {
			applied = room
		}
		r.level += applied
		r.putRemainders[0] -= applied
		r.sampleDerived()
		if r.putRemainders[0] > 0 {
			return
		}
		r.putRemainders = r.putRemainders[1:]
	}
}
