package kronosim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldAdvancesSimulatedTime(t *testing.T) {
	env := newTestEnvironment(t)

	var after TickTime
	NewComponent(env, "sleeper", func(p *Process) {
		p.Hold(7)
		after = p.Env().Now()
	})
	env.Run()

	assert.Equal(t, TickTime(7), after)
	assert.Equal(t, TickTime(7), env.Now())
}

// TestInterruptPreservesRemainingHold covers interrupt/resume bookkeeping:
// a component scheduled for t=10, interrupted at t=5 and resumed at t=7,
// runs at t=12 with its remaining 5 ticks preserved.
func TestInterruptPreservesRemainingHold(t *testing.T) {
	env := newTestEnvironment(t)

	var resumedAt TickTime
	a := NewComponent(env, "a", func(p *Process) {
		p.Hold(10)
		resumedAt = p.Env().Now()
	})

	var interruptErr, resumeErr error
	var stateAfterInterrupt ComponentState
	NewComponent(env, "b", func(p *Process) {
		p.Hold(5)
		interruptErr = a.Interrupt()
		stateAfterInterrupt = a.State()
		p.Hold(2)
		resumeErr = a.Resume()
	})
	env.Run()

	require.NoError(t, interruptErr)
	require.NoError(t, resumeErr)
	assert.Equal(t, INTERRUPTED, stateAfterInterrupt)
	assert.Equal(t, TickTime(12), resumedAt)
}

func TestNestedInterruptRequiresMatchingResumes(t *testing.T) {
	env := newTestEnvironment(t)

	var resumedAt TickTime
	a := NewComponent(env, "a", func(p *Process) {
		p.Hold(10)
		resumedAt = p.Env().Now()
	})

	var stateAfterOneResume ComponentState
	NewComponent(env, "b", func(p *Process) {
		p.Hold(2)
		_ = a.Interrupt()
		_ = a.Interrupt() // nested: depth 2
		p.Hold(1)
		_ = a.Resume() // depth 1, still interrupted
		stateAfterOneResume = a.State()
		p.Hold(1)
		_ = a.Resume() // restored, 8 remaining ticks rescheduled from t=4
	})
	env.Run()

	assert.Equal(t, INTERRUPTED, stateAfterOneResume)
	assert.Equal(t, TickTime(12), resumedAt)
}

func TestInterruptInvalidStates(t *testing.T) {
	env := newTestEnvironment(t)

	idle := NewComponent(env, "idle", nil)
	err := idle.Interrupt()
	require.Error(t, err)
	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, InvalidTransition, kerr.Kind)

	err = idle.Resume()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInterrupted))
}

func TestInterruptPassiveThenResume(t *testing.T) {
	env := newTestEnvironment(t)

	a := NewComponent(env, "a", func(p *Process) {
		p.Passivate()
	})
	NewComponent(env, "b", func(p *Process) {
		p.Hold(1)
		assert.NoError(t, a.Interrupt())
		p.Hold(1)
		assert.NoError(t, a.Resume())
	})
	env.Run()

	assert.Equal(t, PASSIVE, a.State())
}

func TestPassivateAndReactivate(t *testing.T) {
	env := newTestEnvironment(t)

	var resumedAt TickTime
	a := NewComponent(env, "a", func(p *Process) {
		p.Passivate()
		resumedAt = p.Env().Now()
	})
	NewComponent(env, "b", func(p *Process) {
		p.Hold(3)
		assert.NoError(t, a.Activate(nil, 0, 0))
	})
	env.Run()

	assert.Equal(t, TickTime(3), resumedAt)
	assert.Equal(t, DATA, a.State())
}

func TestActivateWithDelay(t *testing.T) {
	env := newTestEnvironment(t)

	var ranAt TickTime
	a := NewComponent(env, "a", nil) // created in DATA, not started
	require.Equal(t, DATA, a.State())
	require.NoError(t, a.Activate(func(p *Process) {
		ranAt = p.Env().Now()
	}, 4, 0))
	env.Run()

	assert.Equal(t, TickTime(4), ranAt)
}

func TestActivateErrors(t *testing.T) {
	env := newTestEnvironment(t)

	a := NewComponent(env, "a", nil)
	err := a.Activate(nil, 0, 0) // DATA with no process to resume
	require.Error(t, err)

	err = a.Activate(func(p *Process) {}, -1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeDuration))

	var currentErr error
	b := NewComponent(env, "b", nil)
	require.NoError(t, b.Activate(func(p *Process) {
		currentErr = p.Self().Activate(nil, 0, 0)
	}, 0, 0))
	env.Run()
	require.Error(t, currentErr)
	assert.True(t, errors.Is(currentErr, ErrCurrentNotActivatable))
}

func TestForcedActivateOutOfRequestSetsFailed(t *testing.T) {
	env := newTestEnvironment(t)
	r := NewResource(env, "server", 1)

	NewComponent(env, "holder", func(p *Process) {
		p.Request([]ResourceRequest{r.Req(1)})
		p.Hold(100)
		r.Release(p.Self(), 0)
	})

	var honored bool
	var resumedAt TickTime
	waiter := NewComponent(env, "waiter", func(p *Process) {
		honored = p.Request([]ResourceRequest{r.Req(1)})
		resumedAt = p.Env().Now()
	})
	NewComponent(env, "kicker", func(p *Process) {
		p.Hold(2)
		assert.NoError(t, waiter.Activate(nil, 0, 0))
	})
	env.Run(Until(10))

	assert.False(t, honored)
	assert.True(t, waiter.Failed())
	assert.Equal(t, TickTime(2), resumedAt)
	assert.Empty(t, r.requesters)
}

func TestCancelForcesData(t *testing.T) {
	env := newTestEnvironment(t)

	var after bool
	a := NewComponent(env, "a", func(p *Process) {
		p.Hold(10)
		after = true
	})
	NewComponent(env, "b", func(p *Process) {
		p.Hold(2)
		a.Cancel()
	})
	env.Run()

	assert.False(t, after)
	assert.Equal(t, DATA, a.State())
	assert.Equal(t, TickTime(2), env.Now())
}

func TestStandbyPollsEveryEventTick(t *testing.T) {
	env := newTestEnvironment(t)

	NewComponent(env, "ticker", func(p *Process) {
		p.Hold(1)
		p.Hold(1)
		p.Hold(1)
	})
	var polls []TickTime
	observer := NewComponent(env, "observer", func(p *Process) {
		for {
			p.Standby()
			polls = append(polls, p.Env().Now())
		}
	})
	env.Run()

	assert.Equal(t, []TickTime{1, 2, 3}, polls)
	assert.Equal(t, STANDBY, observer.State())
}

func TestRepeatedProcessLoops(t *testing.T) {
	env := newTestEnvironment(t)

	var cycles int
	NewComponent(env, "worker", RepeatedProcess(func(p *Process) {
		p.Hold(2)
		cycles++
	}))
	env.Run(Until(10))

	assert.Equal(t, 5, cycles)
}

func TestProcessRestart(t *testing.T) {
	env := newTestEnvironment(t)

	var restartedAt TickTime
	NewComponent(env, "worker", func(p *Process) {
		p.Hold(3)
		p.Restart(func(p *Process) {
			restartedAt = p.Env().Now()
		}, 2, 0)
		panic("unreachable after restart")
	})
	env.Run()

	assert.Equal(t, TickTime(5), restartedAt)
}

func TestComponentAutoNaming(t *testing.T) {
	env := newTestEnvironment(t)

	a := NewComponent(env, "car-", nil)
	b := NewComponent(env, "car-", nil)
	c := NewComponent(env, "", nil)
	d := NewComponent(env, "pump.", nil)
	e := NewComponent(env, "depot_", nil)
	f := NewComponent(env, "exact", nil)

	assert.Equal(t, "car-1", a.Name())
	assert.Equal(t, "car-2", b.Name())
	assert.Equal(t, "Component-1", c.Name())
	assert.Equal(t, "pump.1", d.Name())
	assert.Equal(t, "depot_1", e.Name())
	assert.Equal(t, "exact", f.Name())
}

func TestComponentStateStrings(t *testing.T) {
	for state, want := range map[ComponentState]string{
		DATA:        "DATA",
		CURRENT:     "CURRENT",
		SCHEDULED:   "SCHEDULED",
		PASSIVE:     "PASSIVE",
		REQUESTING:  "REQUESTING",
		WAITING:     "WAITING",
		STANDBY:     "STANDBY",
		INTERRUPTED: "INTERRUPTED",
	} {
		assert.Equal(t, want, state.String())
	}
}
