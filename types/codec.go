package types

import (
	"bytes"
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// EncodeRLP implements rlp.Encoder. RLP has no native way to express
// Option<u64>, so a sentinel bool travels alongside the value, the same
// trick the teacher's own Proposal.EncodeRLP uses for ValidRound.
func (p *Proposal) EncodeRLP(w io.Writer) error {
	var lockRound uint64
	hasLock := p.LockRound != nil
	if hasLock {
		lockRound = *p.LockRound
	}
	return rlp.Encode(w, []interface{}{
		p.Height,
		p.Round,
		[]byte(p.Content),
		hasLock,
		lockRound,
		p.LockVotes,
		[]byte(p.Proposer),
	})
}

// DecodeRLP implements rlp.Decoder.
func (p *Proposal) DecodeRLP(s *rlp.Stream) error {
	var raw struct {
		Height    uint64
		Round     uint64
		Content   []byte
		HasLock   bool
		LockRound uint64
		LockVotes []Vote
		Proposer  []byte
	}
	if err := s.Decode(&raw); err != nil {
		return err
	}
	p.Height = raw.Height
	p.Round = raw.Round
	p.Content = Target(raw.Content)
	if raw.HasLock {
		lr := raw.LockRound
		p.LockRound = &lr
	} else {
		p.LockRound = nil
	}
	p.LockVotes = raw.LockVotes
	p.Proposer = Address(raw.Proposer)
	return nil
}

// EncodeRLP implements rlp.Encoder for the optional Interval field.
func (s *Status) EncodeRLP(w io.Writer) error {
	var interval uint64
	hasInterval := s.Interval != nil
	if hasInterval {
		interval = *s.Interval
	}
	return rlp.Encode(w, []interface{}{
		s.Height,
		hasInterval,
		interval,
		s.AuthorityList,
	})
}

// DecodeRLP implements rlp.Decoder.
func (s *Status) DecodeRLP(stream *rlp.Stream) error {
	var raw struct {
		Height        uint64
		HasInterval   bool
		Interval      uint64
		AuthorityList []Node
	}
	if err := stream.Decode(&raw); err != nil {
		return err
	}
	s.Height = raw.Height
	if raw.HasInterval {
		iv := raw.Interval
		s.Interval = &iv
	} else {
		s.Interval = nil
	}
	s.AuthorityList = raw.AuthorityList
	return nil
}

// msgCode discriminates CoreInput/CoreOutput variants on the wire, the
// same typed-code-then-payload shape as accountability.typedMessage.
type msgCode uint8

const (
	codeProposal msgCode = iota
	codeVote
	codeFeed
	codeStatus
	codeCommit
	codeVerifyResp
	codePause
	codeStart
	codeGetProposalRequest
)

var errUnknownCode = errors.New("bftcore: unknown message code")

// EncodeInput serializes a CoreInput losslessly.
func EncodeInput(in CoreInput) ([]byte, error) {
	switch m := in.(type) {
	case Proposal:
		return rlp.EncodeToBytes([]interface{}{codeProposal, &m})
	case Vote:
		return rlp.EncodeToBytes([]interface{}{codeVote, m})
	case Feed:
		return rlp.EncodeToBytes([]interface{}{codeFeed, m})
	case Status:
		return rlp.EncodeToBytes([]interface{}{codeStatus, &m})
	case Commit:
		return rlp.EncodeToBytes([]interface{}{codeCommit, m})
	case VerifyResp:
		return rlp.EncodeToBytes([]interface{}{codeVerifyResp, m})
	case Pause:
		return rlp.EncodeToBytes([]interface{}{codePause})
	case Start:
		return rlp.EncodeToBytes([]interface{}{codeStart})
	default:
		return nil, errUnknownCode
	}
}

// DecodeInput is the inverse of EncodeInput.
func DecodeInput(b []byte) (CoreInput, error) {
	s := rlp.NewStream(bytes.NewReader(b), 0)
	if _, err := s.List(); err != nil {
		return nil, err
	}
	var code msgCode
	if err := s.Decode(&code); err != nil {
		return nil, err
	}
	var out CoreInput
	switch code {
	case codeProposal:
		var p Proposal
		if err := s.Decode(&p); err != nil {
			return nil, err
		}
		out = p
	case codeVote:
		var v Vote
		if err := s.Decode(&v); err != nil {
			return nil, err
		}
		out = v
	case codeFeed:
		var f Feed
		if err := s.Decode(&f); err != nil {
			return nil, err
		}
		out = f
	case codeStatus:
		var st Status
		if err := s.Decode(&st); err != nil {
			return nil, err
		}
		out = st
	case codeCommit:
		var c Commit
		if err := s.Decode(&c); err != nil {
			return nil, err
		}
		out = c
	case codeVerifyResp:
		var v VerifyResp
		if err := s.Decode(&v); err != nil {
			return nil, err
		}
		out = v
	case codePause:
		out = Pause{}
	case codeStart:
		out = Start{}
	default:
		return nil, errUnknownCode
	}
	return out, s.ListEnd()
}

// EncodeOutput serializes a CoreOutput losslessly.
func EncodeOutput(out CoreOutput) ([]byte, error) {
	switch m := out.(type) {
	case Proposal:
		return rlp.EncodeToBytes([]interface{}{codeProposal, &m})
	case Vote:
		return rlp.EncodeToBytes([]interface{}{codeVote, m})
	case Commit:
		return rlp.EncodeToBytes([]interface{}{codeCommit, m})
	case GetProposalRequest:
		return rlp.EncodeToBytes([]interface{}{codeGetProposalRequest, m.Height})
	default:
		return nil, errUnknownCode
	}
}

// DecodeOutput is the inverse of EncodeOutput.
func DecodeOutput(b []byte) (CoreOutput, error) {
	s := rlp.NewStream(bytes.NewReader(b), 0)
	if _, err := s.List(); err != nil {
		return nil, err
	}
	var code msgCode
	if err := s.Decode(&code); err != nil {
		return nil, err
	}
	var out CoreOutput
	switch code {
	case codeProposal:
		var p Proposal
		if err := s.Decode(&p); err != nil {
			return nil, err
		}
		out = p
	case codeVote:
		var v Vote
		if err := s.Decode(&v); err != nil {
			return nil, err
		}
		out = v
	case codeCommit:
		var c Commit
		if err := s.Decode(&c); err != nil {
			return nil, err
		}
		out = c
	case codeGetProposalRequest:
		var h uint64
		if err := s.Decode(&h); err != nil {
			return nil, err
		}
		out = GetProposalRequest{Height: h}
	default:
		return nil, errUnknownCode
	}
	return out, s.ListEnd()
}
