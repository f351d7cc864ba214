// Command kronosim-demo runs a tiny producer/consumer model: a producer
// repeatedly increments a shared State[int] "inventory" level, and a
// consumer waits for inventory to be nonzero before taking one unit. It
// exercises State.Wait honoring and RepeatedProcess in one small program.
package main

import (
	"fmt"

	"github.com/kronosim/kronosim"
)

func main() {
	env, err := kronosim.NewEnvironment()
	if err != nil {
		panic(err)
	}

	inventory := kronosim.NewState(env, "inventory", 0)
	produced := kronosim.NewNumericStatisticMonitor("produced")
	consumed := kronosim.NewNumericStatisticMonitor("consumed")

	kronosim.NewComponent(env, "producer-", kronosim.RepeatedProcess(func(p *kronosim.Process) {
		p.Hold(2)
		inventory.Set(inventory.Value() + 1)
		produced.AddValue(1)
	}))

	kronosim.NewComponent(env, "consumer-", kronosim.RepeatedProcess(func(p *kronosim.Process) {
		p.Wait(kronosim.All, []kronosim.WaitClause{inventory.When(func(v int) bool { return v > 0 })})
		inventory.Set(inventory.Value() - 1)
		consumed.AddValue(1)
	}))

	env.Run(kronosim.Until(50))

	p, _ := produced.Count()
	c, _ := consumed.Count()
	fmt.Printf("produced=%d consumed=%d inventory=%d\n", p, c, inventory.Value())
}
