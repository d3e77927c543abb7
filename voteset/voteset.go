// Package voteset implements the per (height, round, step) vote tally the
// engine consults for quorum decisions: a by-voter index for duplicate and
// equivocation detection, and a by-value index for weighted quorum queries.
package voteset

import (
	"fmt"

	"github.com/obft/core/types"
)

// InsertResult reports what happened to a vote on insertion.
type InsertResult uint8

const (
	// Added means the vote was new and has been tallied.
	Added InsertResult = iota
	// Duplicate means the same voter already voted for the same value at
	// this (height, round, type); the vote set is unchanged.
	Duplicate
	// ConflictingFromVoter means the same voter already voted for a
	// different value — an equivocation. It is tolerated: the first vote
	// is kept, the weight is not double-counted, and no error is raised.
	ConflictingFromVoter
)

type valueTally struct {
	weight uint64
	voters map[string]struct{}
}

// VoteSet tallies votes for a single (height, round, voteType) triple.
type VoteSet struct {
	totalAuthorityWeight uint64

	byVoter map[string]types.Target // voter key -> value voted for
	byValue map[string]*valueTally  // value key -> tally
	weights map[string]uint64       // voter key -> vote weight, from Params

	totalWeight uint64
}

// New creates an empty VoteSet. weights maps voter address keys to their
// vote weight in the authority set active for this height; totalWeight is
// the sum of all authority vote weights.
func New(weights map[string]uint64, totalWeight uint64) *VoteSet {
	return &VoteSet{
		totalAuthorityWeight: totalWeight,
		byVoter:              make(map[string]types.Target),
		byValue:              make(map[string]*valueTally),
		weights:              weights,
	}
}

// Insert adds a vote to the set, applying duplicate/equivocation rules.
// The voter must be a member of the authority set backing this VoteSet;
// callers are expected to have already filtered non-authority voters.
func (vs *VoteSet) Insert(v types.Vote) InsertResult {
	voterKey := v.Voter.Key()
	if prev, ok := vs.byVoter[voterKey]; ok {
		if prev.Equal(v.Proposal) {
			return Duplicate
		}
		return ConflictingFromVoter
	}

	weight := vs.weights[voterKey]
	vs.byVoter[voterKey] = v.Proposal
	vs.totalWeight += weight

	valueKey := v.Proposal.Key()
	tally, ok := vs.byValue[valueKey]
	if !ok {
		tally = &valueTally{voters: make(map[string]struct{})}
		vs.byValue[valueKey] = tally
	}
	tally.weight += weight
	tally.voters[voterKey] = struct{}{}

	return Added
}

// Quorum reports whether the given value has a weight strictly greater
// than two thirds of the total authority weight: weight*3 > total*2.
func (vs *VoteSet) Quorum(value types.Target) bool {
	tally, ok := vs.byValue[value.Key()]
	if !ok {
		return false
	}
	return tally.weight*3 > vs.totalAuthorityWeight*2
}

// QuorumValue returns the value holding quorum and true, if any. Ties
// cannot occur under BFT weight assumptions (at most one value can hold
// more than two thirds), but if vote weights are misconfigured by the host
// the first quorum value found by map iteration is returned.
func (vs *VoteSet) QuorumValue() (types.Target, bool) {
	for key, tally := range vs.byValue {
		if tally.weight*3 > vs.totalAuthorityWeight*2 {
			return types.Target(key), true
		}
	}
	return nil, false
}

// AnyQuorumTotal reports whether the total weight across all values (a
// "mixed" quorum, no single value ahead) exceeds two thirds of the total
// authority weight: total*3 > authority*2.
func (vs *VoteSet) AnyQuorumTotal() bool {
	return vs.totalWeight*3 > vs.totalAuthorityWeight*2
}

// TotalWeight returns the total weight tallied so far across all values.
func (vs *VoteSet) TotalWeight() uint64 { return vs.totalWeight }

// VotesFor returns the votes cast for a given value, reconstructed from the
// voter set of that value's by-value tally. Used to populate
// LockStatus.Votes / Commit.LockVotes.
func (vs *VoteSet) VotesFor(value types.Target, height types.Height, round types.Round, voteType types.VoteType) []types.Vote {
	tally, ok := vs.byValue[value.Key()]
	if !ok {
		return nil
	}
	votes := make([]types.Vote, 0, len(tally.voters))
	for voterKey := range tally.voters {
		votes = append(votes, types.Vote{
			VoteType: voteType,
			Height:   height,
			Round:    round,
			Proposal: value,
			Voter:    types.Address(voterKey),
		})
	}
	return votes
}

// Collection indexes VoteSets by (height, round, voteType).
type Collection struct {
	weights     map[string]uint64
	totalWeight uint64
	sets        map[string]*VoteSet
}

// NewCollection creates an empty collection scoped to one authority set.
func NewCollection(weights map[string]uint64, totalWeight uint64) *Collection {
	return &Collection{
		weights:     weights,
		totalWeight: totalWeight,
		sets:        make(map[string]*VoteSet),
	}
}

func setKey(height types.Height, round types.Round, voteType types.VoteType) string {
	return fmt.Sprintf("%d|%d|%d", voteType, height, round)
}

// Set returns the VoteSet for (height, round, voteType), creating it if
// absent.
func (c *Collection) Set(height types.Height, round types.Round, voteType types.VoteType) *VoteSet {
	key := setKey(height, round, voteType)
	vs, ok := c.sets[key]
	if !ok {
		vs = New(c.weights, c.totalWeight)
		c.sets[key] = vs
	}
	return vs
}

// Insert routes a vote to its (height, round, type) VoteSet.
func (c *Collection) Insert(v types.Vote) InsertResult {
	return c.Set(v.Height, v.Round, v.VoteType).Insert(v)
}
