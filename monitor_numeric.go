package kronosim

import "math"

// NumericStatisticMonitor computes unweighted running statistics (mean,
// variance, min, max, count) over a stream of values, using Welford's
// online algorithm for numerically stable variance. Optional streaming
// percentile estimates (P-Square, see percentile.go) are tracked when the
// monitor is constructed with target percentiles.
type NumericStatisticMonitor struct {
	Monitor

	count int64
	mean  float64
	m2    float64
	min   float64
	max   float64

	quantiles *pSquareMultiQuantile
}

// NewNumericStatisticMonitor creates an enabled NumericStatisticMonitor. If
// percentiles are given (each in [0,1]), streaming percentile estimates
// are tracked alongside mean/variance/min/max.
func NewNumericStatisticMonitor(name string, percentiles ...float64) *NumericStatisticMonitor {
	m := &NumericStatisticMonitor{
		Monitor: newMonitor(name),
		min:     math.Inf(1),
		max:     math.Inf(-1),
	}
	if len(percentiles) > 0 {
		m.quantiles = newPSquareMultiQuantile(percentiles...)
	}
	return m
}

// AddValue records an observation. A disabled monitor silently drops the
// write.
func (m *NumericStatisticMonitor) AddValue(v float64) {
	if !m.enabled {
		return
	}
	m.count++
	delta := v - m.mean
	m.mean += delta / float64(m.count)
	delta2 := v - m.mean
	m.m2 += delta * delta2
	if v < m.min {
		m.min = v
	}
	if v > m.max {
		m.max = v
	}
	if m.quantiles != nil {
		m.quantiles.Update(v)
	}
}

// Count returns the number of recorded observations, or an Unavailable
// error if disabled.
func (m *NumericStatisticMonitor) Count() (int64, error) {
	if !m.enabled {
		return 0, m.unavailable("Count")
	}
	return m.count, nil
}

// Mean returns the running mean, or an Unavailable error if disabled.
func (m *NumericStatisticMonitor) Mean() (float64, error) {
	if !m.enabled {
		return 0, m.unavailable("Mean")
	}
	return m.mean, nil
}

// Variance returns the (population) variance, or an Unavailable error if
// disabled.
func (m *NumericStatisticMonitor) Variance() (float64, error) {
	if !m.enabled {
		return 0, m.unavailable("Variance")
	}
	if m.count < 2 {
		return 0, nil
	}
	return m.m2 / float64(m.count), nil
}

// Min returns the minimum observed value, or an Unavailable error if
// disabled.
func (m *NumericStatisticMonitor) Min() (float64, error) {
	if !m.enabled {
		return 0, m.unavailable("Min")
	}
	if m.count == 0 {
		return 0, nil
	}
	return m.min, nil
}

// Max returns the maximum observed value, or an Unavailable error if
// disabled.
func (m *NumericStatisticMonitor) Max() (float64, error) {
	if !m.enabled {
		return 0, m.unavailable("Max")
	}
	if m.count == 0 {
		return 0, nil
	}
	return m.max, nil
}

// Percentile returns the streaming estimate for the percentile p
// (e.g. 0.99), if this monitor was constructed with it via
// NewNumericStatisticMonitor. The second return is false if p was not
// configured, or the monitor is disabled.
func (m *NumericStatisticMonitor) Percentile(p float64) (float64, bool) {
	if !m.enabled || m.quantiles == nil {
		return 0, false
	}
	return m.quantiles.QuantileByValue(p)
}
