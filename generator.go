package kronosim

import "math"

// Distribution is the engine's only contract with a random source: an
// opaque sampler. Seeding and the actual distribution shape are entirely
// caller-managed; the engine never constructs one itself beyond the
// built-in helpers below.
type Distribution func() float64

// ComponentGenerator samples an inter-arrival-time distribution and invokes
// a factory closure on each arrival, typically producing a self-activating
// Component. It is itself implemented as an ordinary repeating process
// (see Start), so its own timing is driven by the same Hold/Environment
// machinery as any other component.
type ComponentGenerator struct {
	env     *Environment
	name    string
	iat     Distribution
	factory func(env *Environment, seq int) *Component

	total    int
	hasTotal bool
	until    TickTime
	hasUntil bool
	at       TickTime
	hasAt    bool

	count int
}

// NewComponentGenerator creates a generator that samples iat for each
// inter-arrival gap and calls factory to produce the arriving Component.
func NewComponentGenerator(env *Environment, name string, iat Distribution, factory func(env *Environment, seq int) *Component) *ComponentGenerator {
	return &ComponentGenerator{env: env, name: name, iat: iat, factory: factory}
}

// Total bounds the generator to at most n arrivals.
func (g *ComponentGenerator) Total(n int) *ComponentGenerator {
	g.total, g.hasTotal = n, true
	return g
}

// Until stops the generator from producing further arrivals once the
// simulated clock passes t (an arrival whose sampled time lands exactly at
// t still fires).
func (g *ComponentGenerator) Until(t TickTime) *ComponentGenerator {
	g.until, g.hasUntil = t, true
	return g
}

// At delays the generator's first arrival until t, rather than starting
// immediately when Start is called.
func (g *ComponentGenerator) At(t TickTime) *ComponentGenerator {
	g.at, g.hasAt = t, true
	return g
}

// Start activates the generator as a Component of its own, running its
// arrival loop as an ordinary process.
func (g *ComponentGenerator) Start() *Component {
	delay := TickTime(0)
	if g.hasAt {
		delay = g.at - g.env.clock.Now()
		if delay < 0 {
			delay = 0
		}
	}
	return NewComponent(g.env, g.name+"-", func(p *Process) {
		if delay > 0 {
			p.Hold(delay)
		}
		for {
			if g.hasTotal && g.count >= g.total {
				return
			}
			if g.hasUntil && g.env.clock.Now() > g.until {
				return
			}
			iat := TickTime(g.iat())
			if iat > 0 {
				p.Hold(iat)
			}
			if g.hasUntil && g.env.clock.Now() > g.until {
				return
			}
			g.count++
			g.factory(g.env, g.count)
		}
	})
}

// UniformDistribution returns a Distribution sampling Uniform(min, max)
// from env's configured random source, the engine's built-in default
// sampler for callers that don't need anything more elaborate.
func UniformDistribution(env *Environment, min, max float64) Distribution {
	return func() float64 {
		return min + env.rand.Float64()*(max-min)
	}
}

// ExponentialDistribution returns a Distribution sampling Exponential(rate)
// from env's configured random source, the conventional choice for
// memoryless inter-arrival times.
func ExponentialDistribution(env *Environment, rate float64) Distribution {
	return func() float64 {
		u := env.rand.Float64()
		return -math.Log(1-u) / rate
	}
}
