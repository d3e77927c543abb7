// Package metrics exposes consensus telemetry via Prometheus, implementing
// engine.Metrics. Nil-safe by construction of engine.Engine (which falls
// back to a no-op when no Metrics option is given), so hosts that don't
// care about observability never pay for it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/obft/core/types"
)

// Collector implements engine.Metrics with Prometheus gauges/counters.
type Collector struct {
	height         prometheus.Gauge
	round          prometheus.Gauge
	step           prometheus.Gauge
	commitsTotal   prometheus.Counter
	votesTotal     *prometheus.CounterVec
	roundDuration  prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bft_height",
			Help: "Current consensus height.",
		}),
		round: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bft_round",
			Help: "Current round within the height.",
		}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bft_step",
			Help: "Current step ordinal within the round.",
		}),
		commitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bft_commits_total",
			Help: "Total number of heights committed.",
		}),
		votesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bft_votes_total",
			Help: "Total number of votes cast, by type.",
		}, []string{"type"}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bft_round_duration_seconds",
			Help:    "Wall-clock time from entering a round to committing its height.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.height, c.round, c.step, c.commitsTotal, c.votesTotal, c.roundDuration)
	return c
}

func (c *Collector) SetHeight(h types.Height) { c.height.Set(float64(h)) }
func (c *Collector) SetRound(r types.Round)    { c.round.Set(float64(r)) }
func (c *Collector) SetStep(s types.Step)      { c.step.Set(float64(s)) }
func (c *Collector) IncCommit()                { c.commitsTotal.Inc() }

func (c *Collector) IncVote(voteType types.VoteType) {
	c.votesTotal.WithLabelValues(voteType.String()).Inc()
}

func (c *Collector) ObserveRoundDuration(d time.Duration) {
	c.roundDuration.Observe(d.Seconds())
}
