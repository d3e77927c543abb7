// Package core exposes the embeddable front-end: a thin Actuator that
// validates input-message variants, forwards them to the engine over its
// internal queue, and tracks the externally observable height counter. All
// consensus logic lives in package engine; Core interprets none of it.
package core

import (
	"github.com/obft/core/engine"
	"github.com/obft/core/types"
)

// Core is the embedding API surface. Create with New, which starts the
// engine and timer worker goroutines.
type Core struct {
	eng     *engine.Engine
	address types.Address
	height  types.Height
}

// New creates a Core and starts its engine loop. sink receives every
// CoreOutput the engine emits.
func New(sink engine.Sink, address types.Address, opts ...engine.Option) *Core {
	eng := engine.New(address, sink, opts...)
	c := &Core{eng: eng, address: address}
	go eng.Run()
	return c
}

// Send forwards a CoreInput to the engine, or returns SendMsgErr if the
// engine's queue has been closed. The legacy typed entrypoints below are
// thin wrappers that additionally validate the input's variant.
func (c *Core) Send(in types.CoreInput) error {
	if !c.eng.Submit(in) {
		return types.SendMsgErr
	}
	if s, ok := in.(types.Status); ok && c.height <= s.Height {
		c.height = s.Height + 1
	}
	return nil
}

// SendProposal forwards a Proposal, or returns MsgTypeErr if in is not one,
// or SendMsgErr if the engine's queue has been closed.
func (c *Core) SendProposal(in types.CoreInput) error {
	p, ok := in.(types.Proposal)
	if !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(p) {
		return types.SendMsgErr
	}
	return nil
}

// SendVote forwards a Vote, or returns MsgTypeErr if in is not one, or
// SendMsgErr if the engine's queue has been closed.
func (c *Core) SendVote(in types.CoreInput) error {
	v, ok := in.(types.Vote)
	if !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(v) {
		return types.SendMsgErr
	}
	return nil
}

// SendFeed forwards a Feed, or returns MsgTypeErr if in is not one, or
// SendMsgErr if the engine's queue has been closed.
func (c *Core) SendFeed(in types.CoreInput) error {
	f, ok := in.(types.Feed)
	if !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(f) {
		return types.SendMsgErr
	}
	return nil
}

// SendStatus forwards a Status, or returns MsgTypeErr if in is not one, or
// SendMsgErr if the engine's queue has been closed. On success it advances
// GetHeight() to max(current, status.Height+1).
func (c *Core) SendStatus(in types.CoreInput) error {
	s, ok := in.(types.Status)
	if !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(s) {
		return types.SendMsgErr
	}
	if c.height <= s.Height {
		c.height = s.Height + 1
	}
	return nil
}

// SendCommit forwards a Commit, or returns MsgTypeErr if in is not one, or
// SendMsgErr if the engine's queue has been closed.
func (c *Core) SendCommit(in types.CoreInput) error {
	cm, ok := in.(types.Commit)
	if !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(cm) {
		return types.SendMsgErr
	}
	return nil
}

// SendVerify forwards a VerifyResp, or returns MsgTypeErr if in is not one,
// or SendMsgErr if the engine's queue has been closed. Only meaningful when
// the engine was built WithAsyncVerifier.
func (c *Core) SendVerify(in types.CoreInput) error {
	r, ok := in.(types.VerifyResp)
	if !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(r) {
		return types.SendMsgErr
	}
	return nil
}

// SendPause forwards a Pause, or returns MsgTypeErr if in is not one, or
// SendMsgErr if the engine's queue has been closed.
func (c *Core) SendPause(in types.CoreInput) error {
	if _, ok := in.(types.Pause); !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(types.Pause{}) {
		return types.SendMsgErr
	}
	return nil
}

// SendStart forwards a Start, or returns MsgTypeErr if in is not one, or
// SendMsgErr if the engine's queue has been closed.
func (c *Core) SendStart(in types.CoreInput) error {
	if _, ok := in.(types.Start); !ok {
		return types.MsgTypeErr
	}
	if !c.eng.Submit(types.Start{}) {
		return types.SendMsgErr
	}
	return nil
}

// GetHeight returns the next height the engine is expected to work on,
// from the host's point of view.
func (c *Core) GetHeight() types.Height {
	return c.height
}

// Stop halts the engine and timer goroutines.
func (c *Core) Stop() {
	c.eng.Stop()
}
