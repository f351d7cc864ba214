package kronosim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategoryTimelineProportion covers the per-category total-time
// proportion: AUDI for the first 2 of 8 ticks is a quarter of the run.
func TestCategoryTimelineProportion(t *testing.T) {
	env := newTestEnvironment(t)
	ct := NewCategoryTimeline("brand", env.Clock(), "AUDI")

	env.Run(Until(2))
	ct.AddValue("VW")
	env.Run(Until(8))

	pct, err := ct.Proportion("AUDI")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, pct, 1e-9)

	pct, err = ct.Proportion("VW")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, pct, 1e-9)
}

func TestCategoryTimelineProportionsSumToOne(t *testing.T) {
	env := newTestEnvironment(t)
	ct := NewCategoryTimeline("state", env.Clock(), "idle")

	env.Run(Until(3))
	ct.AddValue("busy")
	env.Run(Until(4))
	ct.AddValue("idle")
	env.Run(Until(10))

	props, err := ct.Proportions()
	require.NoError(t, err)
	var total float64
	for _, p := range props {
		total += p
	}
	assert.InDelta(t, 1, total, 1e-9)
	assert.InDelta(t, 0.9, props["idle"], 1e-9)
	assert.InDelta(t, 0.1, props["busy"], 1e-9)
}

func TestCategoryTimelineCoalescesSameTick(t *testing.T) {
	env := newTestEnvironment(t)
	ct := NewCategoryTimeline("state", env.Clock(), "a")
	env.Run(Until(5))
	ct.AddValue("b")
	ct.AddValue("c")
	env.Run(Until(10))

	props, err := ct.Proportions()
	require.NoError(t, err)
	assert.Zero(t, props["b"])
	assert.InDelta(t, 0.5, props["c"], 1e-9)
}

func TestCategoryTimelineDisabled(t *testing.T) {
	env := newTestEnvironment(t)
	ct := NewCategoryTimeline("state", env.Clock(), "a")
	ct.Disable()
	ct.AddValue("b")

	_, err := ct.Proportions()
	require.Error(t, err)
	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, Unavailable, kerr.Kind)
}

func TestCategoryMonitorCounts(t *testing.T) {
	m := NewCategoryMonitor[string]("outcomes")
	m.AddValue("ok")
	m.AddValue("ok")
	m.AddValue("fail")

	n, err := m.Count("ok")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	total, err := m.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	m.Disable()
	m.AddValue("ok") // dropped
	_, err = m.Total()
	require.Error(t, err)

	m.Enable()
	total, err = m.Total()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

// TestMergeCategoryMonitors covers the merge law: the merged total equals
// the sum of the individual totals.
func TestMergeCategoryMonitors(t *testing.T) {
	a := NewCategoryMonitor[string]("a")
	b := NewCategoryMonitor[string]("b")
	a.AddValue("x")
	a.AddValue("y")
	b.AddValue("x")
	b.AddValue("x")
	b.AddValue("z")

	merged := MergeCategoryMonitors(a, b)
	assert.Equal(t, int64(3), merged["x"])
	assert.Equal(t, int64(1), merged["y"])
	assert.Equal(t, int64(1), merged["z"])

	var mergedTotal int64
	for _, n := range merged {
		mergedTotal += n
	}
	aTotal, err := a.Total()
	require.NoError(t, err)
	bTotal, err := b.Total()
	require.NoError(t, err)
	assert.Equal(t, aTotal+bTotal, mergedTotal)
}
