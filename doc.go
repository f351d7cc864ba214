// Package kronosim provides a process-oriented discrete-event simulation
// engine: a priority-ordered future-event queue, a coroutine-style
// component driver, counting and depletable resources, predicate-wait
// states, and the monitor/timeline subsystem that underpins observability.
//
// # Architecture
//
// A simulation is owned by an [Environment], which holds the [Clock] (the
// future-event queue and the current simulated time) and every
// [Component], [Resource], and State created against it. A component's
// behavior is an ordinary Go function of type [ProcessFunc], run on a
// dedicated goroutine and suspended only at interaction points — [Process.Hold],
// [Process.Passivate], [Process.Request], [Process.Wait], [Process.Standby],
// [Process.Restart]. The driver resumes exactly one component at a time,
// so process code between suspension points executes atomically with
// respect to the rest of the model.
//
// # Time
//
// Simulated time ([TickTime]) advances only when the environment pops an
// event; it never moves backward. Events at the same instant execute by
// descending priority, then insertion order. STANDBY components are
// re-invoked ahead of any other component at every event time.
//
// # Resources and States
//
// [Resource] models capacity that components claim and release, with a
// priority-then-FIFO requester queue and atomic multi-resource requests.
// [DepletableResource] models a continuous level consumed by requests and
// replenished by [DepletableResource.Put]. [State] holds a typed value
// that components can block on via arbitrary predicates.
//
// # Monitors
//
// [NumericStatisticMonitor], [IntTimeline], [DoubleTimeline],
// [CategoryTimeline], and [CategoryMonitor] record per-tick observations
// and compute unweighted or time-weighted statistics; timelines support
// pointwise arithmetic over merged breakpoints.
//
// # Concurrency
//
// The engine is strictly single-threaded from the model's point of view:
// environments, components, resources, states, and monitors must not be
// accessed concurrently with a running [Environment.Run].
package kronosim
