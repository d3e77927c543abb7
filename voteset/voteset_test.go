package voteset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obft/core/types"
)

func weights() (map[string]uint64, uint64) {
	w := map[string]uint64{
		types.Address{1}.Key(): 1,
		types.Address{2}.Key(): 1,
		types.Address{3}.Key(): 1,
		types.Address{4}.Key(): 1,
	}
	return w, 4
}

func TestInsertDuplicateIsIdempotent(t *testing.T) {
	w, total := weights()
	vs := New(w, total)

	v := types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("X"), Voter: types.Address{1}}
	require.Equal(t, Added, vs.Insert(v))
	require.Equal(t, Duplicate, vs.Insert(v))
	require.Equal(t, uint64(1), vs.TotalWeight())
}

func TestInsertConflictingFromVoterIsTolerated(t *testing.T) {
	w, total := weights()
	vs := New(w, total)

	v1 := types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("X"), Voter: types.Address{1}}
	v2 := types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("Y"), Voter: types.Address{1}}
	require.Equal(t, Added, vs.Insert(v1))
	require.Equal(t, ConflictingFromVoter, vs.Insert(v2))
	// weight is not double counted
	require.Equal(t, uint64(1), vs.TotalWeight())
	require.False(t, vs.Quorum(types.Target("Y")))
}

func TestQuorum(t *testing.T) {
	w, total := weights()
	vs := New(w, total)

	for i, addr := range []types.Address{{1}, {2}, {3}} {
		_ = i
		vs.Insert(types.Vote{VoteType: types.Precommit, Height: 1, Round: 0, Proposal: types.Target("X"), Voter: addr})
	}
	require.True(t, vs.Quorum(types.Target("X")))
	value, ok := vs.QuorumValue()
	require.True(t, ok)
	require.True(t, value.Equal(types.Target("X")))
}

func TestAnyQuorumTotalWithoutSingleValueQuorum(t *testing.T) {
	w, total := weights()
	vs := New(w, total)

	vs.Insert(types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("X"), Voter: types.Address{1}})
	vs.Insert(types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("Y"), Voter: types.Address{2}})
	vs.Insert(types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("Z"), Voter: types.Address{3}})

	require.True(t, vs.AnyQuorumTotal())
	_, ok := vs.QuorumValue()
	require.False(t, ok)
}

func TestCollectionRoutesByHeightRoundType(t *testing.T) {
	w, total := weights()
	c := NewCollection(w, total)

	c.Insert(types.Vote{VoteType: types.Prevote, Height: 1, Round: 0, Proposal: types.Target("X"), Voter: types.Address{1}})
	c.Insert(types.Vote{VoteType: types.Precommit, Height: 1, Round: 0, Proposal: types.Target("X"), Voter: types.Address{1}})

	require.Equal(t, uint64(1), c.Set(1, 0, types.Prevote).TotalWeight())
	require.Equal(t, uint64(1), c.Set(1, 0, types.Precommit).TotalWeight())
	require.Equal(t, uint64(0), c.Set(2, 0, types.Prevote).TotalWeight())
}
