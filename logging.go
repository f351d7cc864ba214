package kronosim

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type used throughout the engine: a
// logiface.Logger bound to the stumpy event/backend implementation.
type Logger = *logiface.Logger[*stumpy.Event]

// defaultLogger returns a disabled logger: field-building calls become
// no-ops via logiface's level check, so an Environment without a
// configured logger pays nothing.
func defaultLogger() Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(), stumpy.L.WithLevel(stumpy.L.LevelDisabled()))
}

// NewStdLogger returns a Logger writing newline-delimited JSON to stderr
// at or above the given level, using stumpy.L.New the way stumpy's own
// examples construct a logger.
func NewStdLogger(level logiface.Level) Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(), stumpy.L.WithLevel(level))
}

func logComponentEvent(log Logger, op string, c *Component, now TickTime) {
	log.Debug().
		Str(`component`, c.Name()).
		Str(`state`, c.State().String()).
		Float64(`at`, float64(now)).
		Log(op)
}

func logResourceEvent(log Logger, op string, r *Resource, now TickTime) {
	log.Debug().
		Str(`resource`, r.Name()).
		Int(`claimed`, int(r.Claimed())).
		Int(`capacity`, int(r.Capacity())).
		Float64(`at`, float64(now)).
		Log(op)
}
