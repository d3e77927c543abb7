package core

import (
	"time"

	"github.com/obft/core/params"
)

// Config collects the engine's tunables in one struct, in the style of the
// ambient stack's Defaults-struct config objects. New does not take a
// Config: BaseInterval and RoundScaling correspond to the
// engine.WithBaseInterval and engine.WithRoundScaling options, and
// VerifyWorkers to the threads argument of verifypool.New.
type Config struct {
	// BaseInterval is the step timeout used for round 0, before any Status
	// has installed an interval of its own.
	BaseInterval time.Duration

	// RoundScaling grows BaseInterval as rounds skip ahead.
	RoundScaling params.RoundScaling

	// VerifyWorkers sizes the async verification pool when one is used.
	VerifyWorkers int
}

// Defaults mirrors the interval and scaling a newly started engine uses
// before its first Status arrives.
var Defaults = Config{
	BaseInterval:  time.Second,
	RoundScaling:  params.LinearScaling(time.Second),
	VerifyWorkers: 4,
}
