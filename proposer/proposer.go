// Package proposer implements proposer selection: a pure function of
// (height, round) and the authority set's propose-weight vector. Two
// policies are provided, matching the two selection algorithms the engine
// this core was distilled from supports behind a build flag — here exposed
// as an explicit Policy choice instead.
package proposer

import (
	"math/rand/v2"

	"github.com/obft/core/types"
)

// Policy selects the proposer index for a given seed and weight vector.
// weight must be non-empty and sum to a positive value.
type Policy func(seed uint64, weight []uint64) int

// Seed combines height and round into the single seed value policies
// consume, matching the original's (height + round) convention.
func Seed(height types.Height, round types.Round) uint64 {
	return height + round
}

// Deterministic selects by prefix-sum modulo: seed % sum(weight), then the
// first index whose cumulative weight exceeds it. Two engines given the
// same weight vector and the same (height, round) always agree.
func Deterministic(seed uint64, weight []uint64) int {
	sum := sumWeights(weight)
	if sum == 0 {
		return 0
	}
	x := seed % sum
	acc := uint64(0)
	for i, w := range weight {
		acc += w
		if x < acc {
			return i
		}
	}
	return 0
}

// Randomized selects with probability proportional to weight using a PCG
// generator seeded from (height, round), via rejection sampling to avoid
// modulo bias — the Go-native equivalent of the original's rand_pcg-backed
// rand_proposer feature using math/rand/v2's PCG.
func Randomized(seed uint64, weight []uint64) int {
	sum := sumWeights(weight)
	if sum == 0 {
		return 0
	}
	x := ^uint64(0) / sum

	src := rand.NewPCG(seed, seed)
	res := src.Uint64()
	for res >= sum*x {
		res = src.Uint64()
	}
	acc := uint64(0)
	for i, w := range weight {
		acc += w
		if res < acc*x {
			return i
		}
	}
	return 0
}

func sumWeights(weight []uint64) uint64 {
	var sum uint64
	for _, w := range weight {
		sum += w
	}
	return sum
}

// Select returns the address of the proposer for (height, round) under the
// given policy, given the authority addresses and their propose weights in
// matching order.
func Select(policy Policy, height types.Height, round types.Round, addresses []types.Address, weight []uint64) types.Address {
	if len(addresses) == 0 {
		return nil
	}
	idx := policy(Seed(height, round), weight)
	if idx < 0 || idx >= len(addresses) {
		idx = 0
	}
	return addresses[idx]
}
