// Package engine implements the consensus state machine: round/step
// progression, proposal handling, lock discipline under proof-of-lock
// change, vote aggregation and commit emission. It is the single owner of
// all mutable consensus state; everything else reaches it only through its
// input queue and the timer service's expiry channel.
package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/obft/core/params"
	"github.com/obft/core/proposer"
	"github.com/obft/core/timer"
	"github.com/obft/core/types"
	"github.com/obft/core/voteset"
)

type roundKey struct {
	height types.Height
	round  types.Round
}

// Engine is the single-threaded consensus worker. Create with New and run
// its loop with Run in its own goroutine.
type Engine struct {
	address types.Address
	sink    Sink
	timerS  *timer.Service
	queue   *inputQueue
	log     *logrus.Entry
	metrics Metrics

	policy         proposer.Policy
	verifier       Verifier
	asyncVerifier  AsyncVerifier
	defaultScaling params.RoundScaling
	baseInterval   time.Duration

	running bool
	height  types.Height
	round   types.Round
	step    types.Step

	lock *types.LockStatus

	feeds         map[types.Height]types.Target
	proposals     map[roundKey]types.Proposal
	pendingByKey  map[roundKey]types.Proposal
	hasPrevoted   map[roundKey]bool
	hasPrecommit  map[roundKey]bool
	committed     map[types.Height]bool
	votes         *voteset.Collection
	params        *params.Params
	roundStarted  time.Time
}

// New constructs an Engine. Call Run in its own goroutine to start it and
// the timer service's loop; Submit is safe as soon as New returns.
func New(address types.Address, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		address:        address,
		sink:           sink,
		timerS:         timer.New(),
		queue:          newInputQueue(),
		log:            logrus.WithField("component", "engine"),
		metrics:        noopMetrics{},
		policy:         proposer.Deterministic,
		defaultScaling: params.LinearScaling(time.Second),
		baseInterval:   time.Second,
		step:           types.StepPropose,
		feeds:          make(map[types.Height]types.Target),
		proposals:      make(map[roundKey]types.Proposal),
		pendingByKey:   make(map[roundKey]types.Proposal),
		hasPrevoted:    make(map[roundKey]bool),
		hasPrecommit:   make(map[roundKey]bool),
		committed:      make(map[types.Height]bool),
		votes:          voteset.NewCollection(nil, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit enqueues a CoreInput for processing. Never blocks on engine
// progress; the queue is unbounded. Reports false if the engine has been
// stopped and in was dropped.
func (e *Engine) Submit(in types.CoreInput) bool {
	return e.queue.Push(in)
}

// Stop halts the engine and timer loops.
func (e *Engine) Stop() {
	e.queue.Close()
	e.timerS.Stop()
}

// Run is the engine's event loop: select over the input queue and the
// timer's due channel. Blocks until Stop is called or both channels close.
func (e *Engine) Run() {
	go e.timerS.Run()

	in := e.queue.Out()
	due := e.timerS.Due()
	for in != nil || due != nil {
		select {
		case msg, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			e.handleInput(msg)
		case info, ok := <-due:
			if !ok {
				due = nil
				continue
			}
			e.handleTimeout(info)
		}
	}
}

func (e *Engine) handleInput(in types.CoreInput) {
	switch v := in.(type) {
	case types.Start:
		e.handleStart()
	case types.Pause:
		e.handlePause()
	case types.Status:
		e.handleStatus(v)
	default:
		if !e.running {
			return
		}
		switch v := in.(type) {
		case types.Feed:
			e.handleFeed(v)
		case types.Proposal:
			e.handleProposal(v)
		case types.Vote:
			e.handleVote(v)
		case types.VerifyResp:
			e.handleVerifyResp(v)
		case types.Commit:
			e.log.WithField("height", v.Height).Debug("commit acknowledged by host")
		}
	}
}

func (e *Engine) handleTimeout(info timer.Info) {
	if info.Height != e.height || info.Round != e.round || info.Step != e.step {
		return
	}
	if !e.running {
		return
	}
	if e.step == types.StepPropose {
		e.tryPrevote(e.height, e.round)
		return
	}
	e.advanceRound()
}

func (e *Engine) handleStart() {
	e.running = true
	if e.params != nil && e.step == types.StepPropose {
		e.scheduleTimeout(e.height, e.round, types.StepPropose)
		e.attemptPropose(e.height, e.round)
	}
}

func (e *Engine) handlePause() {
	e.running = false
}

func (e *Engine) handleStatus(s types.Status) {
	if s.Height < e.height {
		return
	}

	prevInterval := e.baseInterval
	if e.params != nil {
		prevInterval = e.params.Interval
	}
	e.params = params.New(e.address, s, prevInterval, e.defaultScaling)
	e.votes = voteset.NewCollection(e.params.VoteWeights, e.params.TotalWeight)

	for h := range e.feeds {
		if h <= s.Height {
			delete(e.feeds, h)
		}
	}
	for k := range e.proposals {
		if k.height <= s.Height {
			delete(e.proposals, k)
			delete(e.hasPrevoted, k)
			delete(e.hasPrecommit, k)
		}
	}

	e.height = s.Height + 1
	e.round = 0
	e.lock = nil
	e.metrics.SetHeight(e.height)
	e.metrics.SetRound(e.round)

	e.emit(types.GetProposalRequest{Height: e.height})
	e.enterRound(e.height, e.round)
}

func (e *Engine) handleFeed(f types.Feed) {
	e.feeds[f.Height] = f.Proposal
	if f.Height == e.height && e.step == types.StepPropose {
		e.attemptPropose(e.height, e.round)
	}
}

func (e *Engine) handleProposal(p types.Proposal) {
	if p.Height != e.height {
		return
	}
	if !e.isProposer(p.Height, p.Round, p.Proposer) {
		return
	}
	key := roundKey{p.Height, p.Round}
	if _, dup := e.proposals[key]; dup {
		return
	}
	if p.HasLock() {
		if !e.verifyLockVotes(p) {
			return
		}
	}
	e.proposals[key] = p

	if p.Round == e.round && e.step <= types.StepPrevote {
		e.tryPrevote(p.Height, p.Round)
	}
}

func (e *Engine) handleVote(v types.Vote) {
	if e.params == nil || !e.params.IsAuthority(v.Voter) {
		return
	}
	e.insertVote(v)
}

func (e *Engine) handleVerifyResp(r types.VerifyResp) {
	for key, p := range e.pendingByKey {
		if !p.Content.Equal(r.Proposal) {
			continue
		}
		delete(e.pendingByKey, key)
		if p.Height != e.height || p.Round != e.round || e.hasPrevoted[key] {
			return
		}
		value := types.Target(nil)
		if r.IsPass {
			value = p.Content
		}
		e.castPrevote(key.height, key.round, value)
		return
	}
}

// verifyLockVotes checks that a proposal's carried PoLC is a genuine
// Prevote quorum (more than ⅔ of the vote weight) for its content at its
// lock round.
func (e *Engine) verifyLockVotes(p types.Proposal) bool {
	if e.params == nil {
		return false
	}
	vs := voteset.New(e.params.VoteWeights, e.params.TotalWeight)
	lockRound := *p.LockRound
	for _, v := range p.LockVotes {
		if v.VoteType != types.Prevote || v.Height != p.Height || v.Round != lockRound {
			return false
		}
		if !v.Proposal.Equal(p.Content) {
			return false
		}
		vs.Insert(v)
	}
	return vs.Quorum(p.Content)
}

func (e *Engine) isProposer(h types.Height, r types.Round, addr types.Address) bool {
	if e.params == nil {
		return false
	}
	want := proposer.Select(e.policy, h, r, e.params.Addresses, e.params.ProposeWeights)
	return want.Equal(addr)
}

func (e *Engine) attemptPropose(h types.Height, r types.Round) {
	if e.step != types.StepPropose || h != e.height || r != e.round {
		return
	}
	if !e.isProposer(h, r, e.address) {
		return
	}
	content, ok := e.feeds[h]
	if !ok {
		return
	}
	key := roundKey{h, r}
	if _, exists := e.proposals[key]; exists {
		return
	}

	p := types.Proposal{
		Height:   h,
		Round:    r,
		Content:  content,
		Proposer: e.address,
	}
	if e.lock != nil {
		lr := e.lock.Round
		p.LockRound = &lr
		p.LockVotes = e.lock.Votes
	}

	e.proposals[key] = p
	e.emit(p)
	e.tryPrevote(h, r)
}

func (e *Engine) tryPrevote(h types.Height, r types.Round) {
	if h != e.height || r != e.round {
		return
	}
	key := roundKey{h, r}
	if e.step == types.StepPropose {
		e.step = types.StepPrevote
		e.metrics.SetStep(e.step)
		e.scheduleTimeout(h, r, types.StepPrevote)
	}
	if e.step != types.StepPrevote || e.hasPrevoted[key] {
		return
	}

	p, hasProposal := e.proposals[key]

	var value types.Target
	switch {
	case e.lock != nil && hasProposal && p.Content.Equal(e.lock.Proposal):
		value = e.lock.Proposal
	case e.lock != nil && hasProposal && p.HasLock() && *p.LockRound >= e.lock.Round:
		value = p.Content
		e.lock = &types.LockStatus{Proposal: p.Content, Round: *p.LockRound, Votes: p.LockVotes}
	case e.lock != nil:
		value = nil
	case hasProposal && e.asyncVerifier != nil:
		e.pendingByKey[key] = p
		e.asyncVerifier.Submit(p, func(resp types.VerifyResp) { e.Submit(resp) })
		return
	case hasProposal && e.verifier != nil && !e.verifier.Verify(p):
		value = nil
	case hasProposal:
		value = p.Content
	default:
		value = nil
	}

	e.castPrevote(h, r, value)
}

func (e *Engine) castPrevote(h types.Height, r types.Round, value types.Target) {
	key := roundKey{h, r}
	if e.hasPrevoted[key] {
		return
	}
	e.hasPrevoted[key] = true
	v := types.Vote{VoteType: types.Prevote, Height: h, Round: r, Proposal: value, Voter: e.address}
	e.emit(v)
	e.insertVote(v)
}

func (e *Engine) insertVote(v types.Vote) {
	result := e.votes.Insert(v)
	e.metrics.IncVote(v.VoteType)
	if result == voteset.ConflictingFromVoter {
		e.log.WithFields(logrus.Fields{"voter": v.Voter.String(), "height": v.Height, "round": v.Round}).
			Debug("tolerating equivocating vote")
	}
	if v.Height != e.height || v.Round != e.round {
		return
	}
	switch v.VoteType {
	case types.Prevote:
		if e.step == types.StepPrevote {
			e.checkPrevoteQuorum(v.Round)
		}
	case types.Precommit:
		if e.step == types.StepPrecommit {
			e.checkPrecommitQuorum(v.Round)
		}
	}
}

func (e *Engine) checkPrevoteQuorum(r types.Round) {
	vs := e.votes.Set(e.height, r, types.Prevote)
	if value, ok := vs.QuorumValue(); ok {
		if !value.IsNil() {
			e.lock = &types.LockStatus{Proposal: value, Round: r, Votes: vs.VotesFor(value, e.height, r, types.Prevote)}
		}
		e.enterPrecommit(r, value)
		return
	}
	if vs.AnyQuorumTotal() {
		e.enterPrevoteWait(r)
	}
}

func (e *Engine) enterPrevoteWait(r types.Round) {
	if e.step != types.StepPrevote {
		return
	}
	e.step = types.StepPrevoteWait
	e.metrics.SetStep(e.step)
	e.scheduleTimeout(e.height, r, types.StepPrevoteWait)
}

func (e *Engine) enterPrecommit(r types.Round, value types.Target) {
	if e.step == types.StepPrevote || e.step == types.StepPrevoteWait {
		e.step = types.StepPrecommit
		e.metrics.SetStep(e.step)
		e.scheduleTimeout(e.height, r, types.StepPrecommit)
	}
	if e.step != types.StepPrecommit {
		return
	}
	key := roundKey{e.height, r}
	if e.hasPrecommit[key] {
		return
	}
	e.hasPrecommit[key] = true
	v := types.Vote{VoteType: types.Precommit, Height: e.height, Round: r, Proposal: value, Voter: e.address}
	e.emit(v)
	e.insertVote(v)
}

func (e *Engine) checkPrecommitQuorum(r types.Round) {
	vs := e.votes.Set(e.height, r, types.Precommit)
	if value, ok := vs.QuorumValue(); ok {
		if value.IsNil() {
			e.enterPrecommitWait(r)
			return
		}
		e.commitHeight(r, value, vs.VotesFor(value, e.height, r, types.Precommit))
		return
	}
	if vs.AnyQuorumTotal() {
		e.enterPrecommitWait(r)
	}
}

func (e *Engine) enterPrecommitWait(r types.Round) {
	if e.step != types.StepPrecommit {
		return
	}
	e.step = types.StepPrecommitWait
	e.metrics.SetStep(e.step)
	e.scheduleTimeout(e.height, r, types.StepPrecommitWait)
}

func (e *Engine) commitHeight(r types.Round, value types.Target, votes []types.Vote) {
	if e.committed[e.height] {
		return
	}
	e.committed[e.height] = true
	e.step = types.StepCommit
	e.metrics.SetStep(e.step)
	e.metrics.IncCommit()
	if !e.roundStarted.IsZero() {
		e.metrics.ObserveRoundDuration(time.Since(e.roundStarted))
	}

	c := types.Commit{Height: e.height, Round: r, Proposal: value, LockVotes: votes, Address: e.address}
	e.emit(c)

	oldHeight := e.height
	for h := range e.feeds {
		if h <= oldHeight {
			delete(e.feeds, h)
		}
	}
	for k := range e.proposals {
		if k.height <= oldHeight {
			delete(e.proposals, k)
			delete(e.hasPrevoted, k)
			delete(e.hasPrecommit, k)
		}
	}

	e.height = oldHeight + 1
	e.round = 0
	e.lock = nil
	e.metrics.SetHeight(e.height)
	e.metrics.SetRound(e.round)

	e.emit(types.GetProposalRequest{Height: e.height})
	e.enterRound(e.height, e.round)
}

func (e *Engine) advanceRound() {
	e.round++
	e.metrics.SetRound(e.round)
	e.enterRound(e.height, e.round)
}

func (e *Engine) enterRound(h types.Height, r types.Round) {
	e.step = types.StepPropose
	e.metrics.SetStep(e.step)
	e.roundStarted = time.Now()
	if e.params != nil {
		e.scheduleTimeout(h, r, types.StepPropose)
	}
	if e.running {
		e.attemptPropose(h, r)
	}
}

func (e *Engine) scheduleTimeout(h types.Height, r types.Round, step types.Step) {
	d := e.baseInterval
	if e.params != nil {
		d = e.params.StepTimeout(r)
	}
	e.timerS.Schedule(timer.Info{
		Deadline: time.Now().Add(d),
		Height:   h,
		Round:    r,
		Step:     step,
	})
}

func (e *Engine) emit(out types.CoreOutput) {
	if err := e.sink.Send(out); err != nil {
		e.log.WithError(err).Warn("sink rejected output")
	}
}
