// Package params holds the authority set and timing policy the engine
// consults on every transition: the current vote/propose weights, and the
// round-time scaling function applied on each round change.
package params

import (
	"time"

	"github.com/obft/core/types"
)

// RoundScaling computes the step timeout for a given round, given the base
// duration for round 0. The engine calls this each time it schedules a step
// timeout.
type RoundScaling func(base time.Duration, round types.Round) time.Duration

// LinearScaling grows the timeout by a fixed increment per round, the
// default policy when the host does not supply one.
func LinearScaling(increment time.Duration) RoundScaling {
	return func(base time.Duration, round types.Round) time.Duration {
		return base + time.Duration(round)*increment
	}
}

// ExponentialScaling doubles the timeout every round up to cap rounds, then
// holds steady; avoids unbounded timeouts under sustained round-skipping.
func ExponentialScaling(cap types.Round) RoundScaling {
	return func(base time.Duration, round types.Round) time.Duration {
		r := round
		if r > cap {
			r = cap
		}
		return base << r
	}
}

// Params is the authority set and timing policy effective for the current
// height. It is replaced wholesale, never mutated in place, whenever a
// Status input is applied — callers holding a *Params from before a Status
// application continue to see the pre-update view.
type Params struct {
	Height types.Height

	Addresses      []types.Address
	ProposeWeights []uint64
	VoteWeights    map[string]uint64
	TotalWeight    uint64

	Local types.Address

	Interval     time.Duration
	RoundScaling RoundScaling
}

// New builds Params from a Status update, keeping the previous interval
// when the update's Interval is nil and defaulting the scaling policy to
// LinearScaling(interval) when scaling is nil.
func New(local types.Address, status types.Status, prevInterval time.Duration, scaling RoundScaling) *Params {
	interval := prevInterval
	if status.Interval != nil {
		interval = time.Duration(*status.Interval) * time.Millisecond
	}
	if scaling == nil {
		scaling = LinearScaling(interval)
	}

	total := uint64(0)
	weights := status.VoteWeights()
	for _, w := range weights {
		total += w
	}

	return &Params{
		Height:         status.Height,
		Addresses:      status.Addresses(),
		ProposeWeights: status.ProposeWeights(),
		VoteWeights:    weights,
		TotalWeight:    total,
		Local:          local,
		Interval:       interval,
		RoundScaling:   scaling,
	}
}

// IsAuthority reports whether addr is a member of the current authority set.
func (p *Params) IsAuthority(addr types.Address) bool {
	_, ok := p.VoteWeights[addr.Key()]
	return ok
}

// StepTimeout returns the timeout to apply for the given round, derived
// from Interval via RoundScaling.
func (p *Params) StepTimeout(round types.Round) time.Duration {
	return p.RoundScaling(p.Interval, round)
}

// IsLocal reports whether addr is this node's own address.
func (p *Params) IsLocal(addr types.Address) bool {
	return p.Local.Equal(addr)
}
