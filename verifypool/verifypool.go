// Package verifypool implements asynchronous proposal verification: a
// fixed pool of background goroutines that run a host-supplied Verify
// function and report the verdict back to the engine without blocking it.
// Structure grounded on the teacher's TxSenderCacher worker pool.
package verifypool

import (
	"runtime"
	"sync/atomic"

	"github.com/obft/core/types"
)

// VerifyFunc validates a proposal's content. It may be slow (block
// execution, state lookups); that is the whole reason it runs off the
// engine goroutine.
type VerifyFunc func(p types.Proposal) bool

type request struct {
	proposal types.Proposal
	respond  func(types.VerifyResp)
}

// Pool is a background proposal verifier. The zero value is not usable;
// construct with New.
type Pool struct {
	verify   VerifyFunc
	tasks    chan request
	isClosed *uint32
}

// New creates a Pool and starts threads workers (runtime.NumCPU() if
// threads <= 0).
func New(verify VerifyFunc, threads int) *Pool {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	p := &Pool{
		verify:   verify,
		tasks:    make(chan request, 3*threads),
		isClosed: new(uint32),
	}
	for i := 0; i < threads; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	for req := range p.tasks {
		pass := p.verify(req.proposal)
		req.respond(types.VerifyResp{IsPass: pass, Proposal: req.proposal.Content})
	}
}

// Submit queues a proposal for verification. respond is invoked from a
// worker goroutine once a verdict is ready; it is never called
// synchronously from Submit. Implements engine.AsyncVerifier.
func (p *Pool) Submit(proposal types.Proposal, respond func(types.VerifyResp)) {
	if atomic.LoadUint32(p.isClosed) == 1 {
		return
	}
	p.tasks <- request{proposal: proposal, respond: respond}
}

// Close stops accepting new work and lets in-flight workers drain.
func (p *Pool) Close() {
	if atomic.CompareAndSwapUint32(p.isClosed, 0, 1) {
		close(p.tasks)
	}
}
