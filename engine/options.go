package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/obft/core/params"
	"github.com/obft/core/proposer"
	"github.com/obft/core/types"
)

// Sink is the host-supplied capability outputs are delivered through. If
// Send blocks, the engine blocks with it — deliberate backpressure.
type Sink interface {
	Send(out types.CoreOutput) error
}

// Verifier synchronously validates a proposal's content before the engine
// prevotes it. A nil Verifier means every syntactically valid proposal
// passes.
type Verifier interface {
	Verify(p types.Proposal) bool
}

// AsyncVerifier defers the pass/fail decision: Submit returns immediately,
// and respond is invoked (from any goroutine) once a verdict is ready. The
// verifypool package implements this.
type AsyncVerifier interface {
	Submit(p types.Proposal, respond func(types.VerifyResp))
}

// Metrics receives engine telemetry. A nil Metrics is replaced with a
// no-op implementation; hosts that don't care about metrics pay nothing.
type Metrics interface {
	SetHeight(h types.Height)
	SetRound(r types.Round)
	SetStep(s types.Step)
	IncCommit()
	IncVote(voteType types.VoteType)
	ObserveRoundDuration(d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) SetHeight(types.Height) {}
func (noopMetrics) SetRound(types.Round)   {}
func (noopMetrics) SetStep(types.Step)     {}
func (noopMetrics) IncCommit()             {}
func (noopMetrics) IncVote(types.VoteType) {}
func (noopMetrics) ObserveRoundDuration(time.Duration) {}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithVerifier installs a synchronous verifier.
func WithVerifier(v Verifier) Option {
	return func(e *Engine) { e.verifier = v }
}

// WithAsyncVerifier installs an asynchronous verifier; proposals are held
// pending a VerifyResp input before the engine prevotes them.
func WithAsyncVerifier(v AsyncVerifier) Option {
	return func(e *Engine) { e.asyncVerifier = v }
}

// WithLogger overrides the default logrus logger.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics installs a Metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m == nil {
			m = noopMetrics{}
		}
		e.metrics = m
	}
}

// WithRoundScaling overrides the default linear round-timeout scaling
// policy. Every Status application installs this same policy; a Status
// carries no scaling policy of its own.
func WithRoundScaling(s params.RoundScaling) Option {
	return func(e *Engine) { e.defaultScaling = s }
}

// WithBaseInterval sets the step-timeout base duration used before the
// first Status arrives.
func WithBaseInterval(d time.Duration) Option {
	return func(e *Engine) { e.baseInterval = d }
}

// WithProposerPolicy overrides the default deterministic-weighted
// proposer-selection policy.
func WithProposerPolicy(p proposer.Policy) Option {
	return func(e *Engine) { e.policy = p }
}
