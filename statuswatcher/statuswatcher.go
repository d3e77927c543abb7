// Package statuswatcher adapts an external authority-list feed — anything
// the host already has a channel for, e.g. an on-chain epoch/validator-set
// subscription — into Status sends against a Core. Grounded on the
// teacher's CommitteeWatcher: a goroutine bridging an external event
// channel into the consensus-facing API.
package statuswatcher

import (
	"github.com/sirupsen/logrus"

	"github.com/obft/core/types"
)

// Sender is the subset of core.Core the watcher needs; satisfied by
// *core.Core.
type Sender interface {
	Send(in types.CoreInput) error
}

// Watcher forwards Status values from Updates to Target.Send until Stop is
// called.
type Watcher struct {
	Target  Sender
	Updates <-chan types.Status
	log     *logrus.Entry
	stop    chan struct{}
}

// New creates a Watcher. Call Run in its own goroutine to start forwarding.
func New(target Sender, updates <-chan types.Status) *Watcher {
	return &Watcher{
		Target:  target,
		Updates: updates,
		log:     logrus.WithField("component", "statuswatcher"),
		stop:    make(chan struct{}),
	}
}

// Run forwards updates until Updates closes or Stop is called.
func (w *Watcher) Run() {
	for {
		select {
		case s, ok := <-w.Updates:
			if !ok {
				return
			}
			if err := w.Target.Send(s); err != nil {
				w.log.WithError(err).WithField("height", s.Height).Warn("dropped status update")
			}
		case <-w.stop:
			return
		}
	}
}

// Stop halts Run.
func (w *Watcher) Stop() { close(w.stop) }
