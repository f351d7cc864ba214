package kronosim

// CategoryTimeline holds a piecewise-constant categorical signal: a
// current value of T plus the history needed to compute per-category
// total-time proportions, mirroring Timeline's (t_i, v_i) representation
// but keyed by an arbitrary comparable category type.
type CategoryTimeline[T comparable] struct {
	Monitor

	clock  *Clock
	times  []TickTime
	values []T
}

// NewCategoryTimeline creates an enabled CategoryTimeline seeded with
// initial at the clock's current time.
func NewCategoryTimeline[T comparable](name string, clock *Clock, initial T) *CategoryTimeline[T] {
	return &CategoryTimeline[T]{
		Monitor: newMonitor(name),
		clock:   clock,
		times:   []TickTime{clock.Now()},
		values:  []T{initial},
	}
}

// AddValue records a category observation at the current simulated time,
// coalescing with the previous sample if recorded at the same instant.
func (c *CategoryTimeline[T]) AddValue(v T) {
	if !c.enabled {
		return
	}
	now := c.clock.Now()
	n := len(c.times)
	if n > 0 && c.times[n-1] == now {
		c.values[n-1] = v
		return
	}
	c.times = append(c.times, now)
	c.values = append(c.values, v)
}

// Proportions returns, for every category observed, the fraction of total
// elapsed time (from the first sample to now) spent in that category.
func (c *CategoryTimeline[T]) Proportions() (map[T]float64, error) {
	now := c.clock.Now()
	if !c.enabled {
		return nil, c.unavailable("Proportions")
	}
	if len(c.times) == 0 || now < c.times[0] {
		return nil, newError(DomainError, "Proportions", "query time precedes the timeline's first sample", nil)
	}

	totals := make(map[T]float64)
	var elapsed float64
	for i := 0; i < len(c.times); i++ {
		start := c.times[i]
		end := now
		if i+1 < len(c.times) {
			end = c.times[i+1]
		}
		if end > now {
			end = now
		}
		if end < start {
			continue
		}
		w := float64(end - start)
		totals[c.values[i]] += w
		elapsed += w
	}
	if elapsed == 0 {
		totals[c.values[len(c.values)-1]] = 1
		return totals, nil
	}
	for k := range totals {
		totals[k] /= elapsed
	}
	return totals, nil
}

// Proportion returns the fraction of total elapsed time spent in category v.
func (c *CategoryTimeline[T]) Proportion(v T) (float64, error) {
	props, err := c.Proportions()
	if err != nil {
		return 0, err
	}
	return props[v], nil
}

// CategoryMonitor tracks unweighted frequency counts over a stream of
// categorical observations.
type CategoryMonitor[T comparable] struct {
	Monitor
	counts map[T]int64
	total  int64
}

// NewCategoryMonitor creates an enabled, empty CategoryMonitor.
func NewCategoryMonitor[T comparable](name string) *CategoryMonitor[T] {
	return &CategoryMonitor[T]{
		Monitor: newMonitor(name),
		counts:  make(map[T]int64),
	}
}

// AddValue records one observation of category v.
func (c *CategoryMonitor[T]) AddValue(v T) {
	if !c.enabled {
		return
	}
	c.counts[v]++
	c.total++
}

// Count returns the number of observations of category v.
func (c *CategoryMonitor[T]) Count(v T) (int64, error) {
	if !c.enabled {
		return 0, c.unavailable("Count")
	}
	return c.counts[v], nil
}

// Total returns the total number of observations across all categories.
func (c *CategoryMonitor[T]) Total() (int64, error) {
	if !c.enabled {
		return 0, c.unavailable("Total")
	}
	return c.total, nil
}

// MergeCategoryMonitors combines several CategoryMonitor instances into one
// frequency map. The resulting total equals the sum of each input's own
// total.
func MergeCategoryMonitors[T comparable](monitors ...*CategoryMonitor[T]) map[T]int64 {
	out := make(map[T]int64)
	for _, m := range monitors {
		for k, v := range m.counts {
			out[k] += v
		}
	}
	return out
}
