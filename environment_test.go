package kronosim

import (
	"math/rand/v2"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUntilIncludesBoundaryEvent(t *testing.T) {
	env := newTestEnvironment(t)

	var ran bool
	NewComponent(env, "worker", func(p *Process) {
		p.Hold(5)
		ran = true
	})
	env.Run(Until(5))

	assert.True(t, ran)
	assert.Equal(t, TickTime(5), env.Now())
}

func TestRunUntilStopsBeforeLaterEvents(t *testing.T) {
	env := newTestEnvironment(t)

	var ran bool
	NewComponent(env, "worker", func(p *Process) {
		p.Hold(6)
		ran = true
	})
	env.Run(Until(5))

	assert.False(t, ran)
	assert.Equal(t, TickTime(5), env.Now())

	// a later run picks the pending event back up
	env.Run()
	assert.True(t, ran)
	assert.Equal(t, TickTime(6), env.Now())
}

func TestRunForIsRelative(t *testing.T) {
	env := newTestEnvironment(t)
	env.Run(For(3))
	require.Equal(t, TickTime(3), env.Now())
	env.Run(For(4))
	assert.Equal(t, TickTime(7), env.Now())
}

func TestRunWhilePredicate(t *testing.T) {
	env := newTestEnvironment(t)

	NewComponent(env, "ticker", RepeatedProcess(func(p *Process) {
		p.Hold(1)
	}))
	env.Run(While(func(e *Environment) bool { return e.Now() < 3 }))

	assert.Equal(t, TickTime(3), env.Now())
}

func TestRunDrainsQueueWithoutBound(t *testing.T) {
	env := newTestEnvironment(t)

	NewComponent(env, "worker", func(p *Process) {
		p.Hold(2)
		p.Hold(3)
	})
	env.Run()

	assert.Equal(t, TickTime(5), env.Now())
	assert.Zero(t, env.Clock().Len())
}

func TestSameTickExecutionOrderIsFIFO(t *testing.T) {
	env := newTestEnvironment(t)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		n := name
		NewComponent(env, n, func(p *Process) {
			order = append(order, n)
		})
	}
	env.Run()

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEventLogRecordsSchedulerActivity(t *testing.T) {
	env, err := NewEnvironment(WithEventLog(0))
	require.NoError(t, err)

	NewComponent(env, "worker", func(p *Process) {
		p.Hold(1)
	})
	env.Run()

	log := env.EventLog()
	require.NotEmpty(t, log)
	kinds := make(map[string]int)
	for _, rec := range log {
		kinds[rec.Kind]++
		assert.Equal(t, "worker", rec.Actor)
	}
	assert.Equal(t, 1, kinds["hold"])
	assert.Equal(t, 1, kinds["done"])
}

func TestEventLogHonorsLimit(t *testing.T) {
	env, err := NewEnvironment(WithEventLog(2))
	require.NoError(t, err)

	NewComponent(env, "worker", func(p *Process) {
		p.Hold(1)
		p.Hold(1)
		p.Hold(1)
	})
	env.Run()

	log := env.EventLog()
	require.Len(t, log, 2)
	// the oldest records were trimmed; the terminal record survives
	assert.Equal(t, "done", log[len(log)-1].Kind)
}

func TestEventLogDisabledByDefault(t *testing.T) {
	env := newTestEnvironment(t)
	NewComponent(env, "worker", func(p *Process) { p.Hold(1) })
	env.Run()
	assert.Empty(t, env.EventLog())
}

func TestWithRandSourceIsDeterministic(t *testing.T) {
	sample := func() []float64 {
		env, err := NewEnvironment(WithRandSource(rand.New(rand.NewPCG(7, 7))))
		require.NoError(t, err)
		dist := UniformDistribution(env, 0, 1)
		out := make([]float64, 5)
		for i := range out {
			out[i] = dist()
		}
		return out
	}
	assert.Equal(t, sample(), sample())
}

func TestWithLoggerOption(t *testing.T) {
	log := NewStdLogger(logiface.LevelError) // quiet under test
	env, err := NewEnvironment(WithLogger(log))
	require.NoError(t, err)
	assert.Same(t, log, env.Logger())

	NewComponent(env, "worker", func(p *Process) { p.Hold(1) })
	env.Run()
	assert.Equal(t, TickTime(1), env.Now())
}
