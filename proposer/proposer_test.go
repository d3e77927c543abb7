package proposer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obft/core/types"
)

func TestDeterministicIsPureFunctionOfHeightAndRound(t *testing.T) {
	weight := []uint64{1, 1, 1, 1}
	addrs := []types.Address{{0}, {1}, {2}, {3}}

	a := Select(Deterministic, 1, 0, addrs, weight)
	b := Select(Deterministic, 1, 0, addrs, weight)
	require.True(t, a.Equal(b))

	// matches the worked example from the end-to-end happy-path scenario:
	// (1+0) mod 4 == 1 -> index 1.
	require.True(t, a.Equal(types.Address{1}))
}

func TestDeterministicVariesWithRound(t *testing.T) {
	weight := []uint64{1, 1, 1, 1}
	addrs := []types.Address{{0}, {1}, {2}, {3}}

	r0 := Select(Deterministic, 1, 0, addrs, weight)
	r1 := Select(Deterministic, 1, 1, addrs, weight)
	require.False(t, r0.Equal(r1))
}

func TestRandomizedIsDeterministicGivenSameSeed(t *testing.T) {
	weight := []uint64{3, 1, 1, 1}
	addrs := []types.Address{{0}, {1}, {2}, {3}}

	a := Select(Randomized, 10, 2, addrs, weight)
	b := Select(Randomized, 10, 2, addrs, weight)
	require.True(t, a.Equal(b))
}

func TestSelectEmptyAuthorityReturnsNil(t *testing.T) {
	require.Nil(t, Select(Deterministic, 1, 0, nil, nil))
}
