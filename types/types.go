// Package types defines the wire data model shared by the engine, the vote
// set, the timer service and the host: addresses, targets, votes,
// proposals, locks, status updates and the tagged CoreInput/CoreOutput
// message sums.
package types

import (
	"fmt"
)

// Address identifies a node. It is an opaque byte string; the core never
// interprets its contents beyond equality and map-keying.
type Address []byte

// String renders the address as a short hex string for logging.
func (a Address) String() string {
	if len(a) == 0 {
		return "addr[nil]"
	}
	return fmt.Sprintf("addr[%x]", []byte(a))
}

// Key returns a value usable as a map key; Go slices cannot be map keys
// directly.
func (a Address) Key() string { return string(a) }

// Equal reports whether two addresses are byte-for-byte identical.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Target identifies a proposed value (a block hash or payload digest). The
// nil target (zero-length) stands for "no value" in prevote/precommit
// quorums.
type Target []byte

// IsNil reports whether the target represents the nil vote/proposal value.
func (t Target) IsNil() bool { return len(t) == 0 }

// Key returns a value usable as a map key.
func (t Target) Key() string { return string(t) }

// Equal reports whether two targets are byte-for-byte identical.
func (t Target) Equal(o Target) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

func (t Target) String() string {
	if t.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("target[%x]", []byte(t))
}

// Height is a monotonically increasing per-instance counter.
type Height = uint64

// Round is the attempt number within a height.
type Round = uint64

// Step is the sub-phase within a round.
type Step uint8

const (
	StepPropose Step = iota
	StepPrevote
	StepPrevoteWait
	StepPrecommit
	StepPrecommitWait
	StepCommit
)

func (s Step) String() string {
	switch s {
	case StepPropose:
		return "propose"
	case StepPrevote:
		return "prevote"
	case StepPrevoteWait:
		return "prevote_wait"
	case StepPrecommit:
		return "precommit"
	case StepPrecommitWait:
		return "precommit_wait"
	case StepCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// VoteType distinguishes prevotes from precommits.
type VoteType uint8

const (
	Prevote VoteType = iota
	Precommit
)

func (v VoteType) String() string {
	if v == Prevote {
		return "prevote"
	}
	return "precommit"
}

// Vote is a single node's vote for a value at a given height/round/type.
// Equality is over all five fields; duplicates from the same voter at the
// same (height, round, vote_type) are ignored by the vote set.
type Vote struct {
	VoteType VoteType
	Height   Height
	Round    Round
	Proposal Target
	Voter    Address
}

// Equal reports field-wise equality.
func (v Vote) Equal(o Vote) bool {
	return v.VoteType == o.VoteType && v.Height == o.Height && v.Round == o.Round &&
		v.Proposal.Equal(o.Proposal) && v.Voter.Equal(o.Voter)
}

// Proposal is a proposer's candidate value for a height/round, optionally
// carrying a proof-of-lock-change (PoLC) justifying re-proposal of a value
// locked at an earlier round.
type Proposal struct {
	Height     Height
	Round      Round
	Content    Target
	LockRound  *Round // nil means "not locked"
	LockVotes  []Vote
	Proposer   Address
}

// HasLock reports whether the proposal carries a PoLC.
func (p Proposal) HasLock() bool { return p.LockRound != nil }

// LockStatus is the proof-of-lock-change a node holds after observing a
// prevote quorum for a non-nil value. At most one is active per height.
type LockStatus struct {
	Proposal Target
	Round    Round
	Votes    []Vote
}

// Feed is the host-supplied candidate value for a height.
type Feed struct {
	Height   Height
	Proposal Target
}

// Node describes one member of the authority set.
type Node struct {
	Address       Address
	ProposeWeight uint64
	VoteWeight    uint64
}

// Status is the rich status delivered by the host after each commit (or
// externally) to install the authority set effective at Height+1.
type Status struct {
	Height        Height
	Interval      *uint64 // nil means "keep the previous interval"
	AuthorityList []Node
}

// Addresses returns the address list of the authority set.
func (s Status) Addresses() []Address {
	out := make([]Address, len(s.AuthorityList))
	for i, n := range s.AuthorityList {
		out[i] = n.Address
	}
	return out
}

// ProposeWeights returns the propose-weight vector in authority order.
func (s Status) ProposeWeights() []uint64 {
	out := make([]uint64, len(s.AuthorityList))
	for i, n := range s.AuthorityList {
		out[i] = n.ProposeWeight
	}
	return out
}

// VoteWeights returns a voter-address to vote-weight lookup.
func (s Status) VoteWeights() map[string]uint64 {
	out := make(map[string]uint64, len(s.AuthorityList))
	for _, n := range s.AuthorityList {
		out[n.Address.Key()] = n.VoteWeight
	}
	return out
}

// Commit is emitted at most once per height by an honest engine.
type Commit struct {
	Height    Height
	Round     Round
	Proposal  Target
	LockVotes []Vote
	Address   Address
}

// VerifyResp is the asynchronous verifier's answer to a proposal, used
// only when async verification is enabled.
type VerifyResp struct {
	IsPass   bool
	Proposal Target
}

// CoreInput is the closed sum of messages the host may feed into the core.
type CoreInput interface{ isCoreInput() }

func (Proposal) isCoreInput()   {}
func (Vote) isCoreInput()       {}
func (Feed) isCoreInput()       {}
func (Status) isCoreInput()     {}
func (Commit) isCoreInput()     {}
func (VerifyResp) isCoreInput() {}

// Pause suspends state-progressing transitions.
type Pause struct{}

func (Pause) isCoreInput() {}

// Start resumes state-progressing transitions.
type Start struct{}

func (Start) isCoreInput() {}

// CoreOutput is the closed sum of messages the core emits to the host.
type CoreOutput interface{ isCoreOutput() }

func (Proposal) isCoreOutput() {}
func (Vote) isCoreOutput()     {}
func (Commit) isCoreOutput()   {}

// GetProposalRequest asks the host to supply a Feed for the given height.
type GetProposalRequest struct {
	Height Height
}

func (GetProposalRequest) isCoreOutput() {}
