package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lockRound(r Round) *Round { return &r }

func TestProposalRoundTrip(t *testing.T) {
	cases := []Proposal{
		{Height: 1, Round: 0, Content: Target("X"), Proposer: Address{1}},
		{
			Height: 2, Round: 3, Content: Target("Y"), Proposer: Address{2},
			LockRound: lockRound(1),
			LockVotes: []Vote{{VoteType: Prevote, Height: 2, Round: 1, Proposal: Target("Y"), Voter: Address{3}}},
		},
	}
	for _, p := range cases {
		b, err := EncodeInput(p)
		require.NoError(t, err)
		out, err := DecodeInput(b)
		require.NoError(t, err)
		got, ok := out.(Proposal)
		require.True(t, ok)
		require.Equal(t, p.Height, got.Height)
		require.Equal(t, p.Round, got.Round)
		require.True(t, p.Content.Equal(got.Content))
		require.Equal(t, p.LockRound, got.LockRound)
	}
}

func TestVoteRoundTrip(t *testing.T) {
	v := Vote{VoteType: Precommit, Height: 5, Round: 2, Proposal: Target("Z"), Voter: Address{9}}
	b, err := EncodeInput(v)
	require.NoError(t, err)
	out, err := DecodeInput(b)
	require.NoError(t, err)
	got, ok := out.(Vote)
	require.True(t, ok)
	require.True(t, v.Equal(got))
}

func TestStatusRoundTrip(t *testing.T) {
	iv := uint64(3000)
	s := Status{
		Height:   7,
		Interval: &iv,
		AuthorityList: []Node{
			{Address: Address{1}, ProposeWeight: 1, VoteWeight: 1},
			{Address: Address{2}, ProposeWeight: 1, VoteWeight: 1},
		},
	}
	b, err := EncodeInput(s)
	require.NoError(t, err)
	out, err := DecodeInput(b)
	require.NoError(t, err)
	got, ok := out.(Status)
	require.True(t, ok)
	require.Equal(t, s.Height, got.Height)
	require.Equal(t, *s.Interval, *got.Interval)
	require.Len(t, got.AuthorityList, 2)
}

func TestStatusRoundTripNilInterval(t *testing.T) {
	s := Status{Height: 1}
	b, err := EncodeInput(s)
	require.NoError(t, err)
	out, err := DecodeInput(b)
	require.NoError(t, err)
	got := out.(Status)
	require.Nil(t, got.Interval)
}

func TestPauseStartRoundTrip(t *testing.T) {
	b, err := EncodeInput(Pause{})
	require.NoError(t, err)
	out, err := DecodeInput(b)
	require.NoError(t, err)
	_, ok := out.(Pause)
	require.True(t, ok)

	b, err = EncodeInput(Start{})
	require.NoError(t, err)
	out, err = DecodeInput(b)
	require.NoError(t, err)
	_, ok = out.(Start)
	require.True(t, ok)
}

func TestOutputRoundTrip(t *testing.T) {
	c := Commit{Height: 4, Round: 1, Proposal: Target("W"), Address: Address{1}}
	b, err := EncodeOutput(c)
	require.NoError(t, err)
	out, err := DecodeOutput(b)
	require.NoError(t, err)
	got, ok := out.(Commit)
	require.True(t, ok)
	require.Equal(t, c.Height, got.Height)
	require.True(t, c.Proposal.Equal(got.Proposal))

	req := GetProposalRequest{Height: 9}
	b, err = EncodeOutput(req)
	require.NoError(t, err)
	out, err = DecodeOutput(b)
	require.NoError(t, err)
	gotReq, ok := out.(GetProposalRequest)
	require.True(t, ok)
	require.Equal(t, req.Height, gotReq.Height)
}

func TestDecodeInputUnknownCode(t *testing.T) {
	_, err := DecodeInput([]byte{0xc1, 0x20})
	require.Error(t, err)
}
