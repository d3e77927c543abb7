// Package timer implements the Timer Service: a single scheduler goroutine
// holding a deadline-ordered queue of pending step timeouts. On expiry it
// emits due timeouts, in insertion order among equal deadlines, onto a
// channel the Engine treats as just another event source.
package timer

import (
	"container/heap"
	"time"

	"github.com/obft/core/types"
)

// Info describes one scheduled timeout. The Engine compares Height, Round
// and Step against its current triple when the timeout fires and discards
// anything stale.
type Info struct {
	Deadline time.Time
	Height   types.Height
	Round    types.Round
	Step     types.Step

	seq int // insertion sequence, breaks deadline ties in FIFO order
}

// idleWait is how long the scheduler blocks when its queue is empty,
// mirroring the original implementation's 100-second idle fallback.
const idleWait = 100 * time.Second

type infoHeap []Info

func (h infoHeap) Len() int { return len(h) }
func (h infoHeap) Less(i, j int) bool {
	if !h[i].Deadline.Equal(h[j].Deadline) {
		return h[i].Deadline.Before(h[j].Deadline)
	}
	return h[i].seq < h[j].seq
}
func (h infoHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *infoHeap) Push(x any)   { *h = append(*h, x.(Info)) }
func (h *infoHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Service runs the scheduler loop. Zero value is not usable; use New.
type Service struct {
	schedule chan Info
	due      chan Info
	stop     chan struct{}
}

// New creates a Service. Call Run in its own goroutine to start the loop;
// Schedule and Due are safe to use as soon as New returns.
func New() *Service {
	return &Service{
		schedule: make(chan Info),
		due:      make(chan Info),
		stop:     make(chan struct{}),
	}
}

// Schedule enqueues a new timeout. Blocks until the scheduler loop accepts
// it; safe to call concurrently with Run.
func (s *Service) Schedule(info Info) {
	select {
	case s.schedule <- info:
	case <-s.stop:
	}
}

// Due is the channel of timeouts the scheduler has determined have
// elapsed, in non-decreasing deadline order.
func (s *Service) Due() <-chan Info { return s.due }

// Stop halts the scheduler loop. Safe to call once; Run returns promptly.
func (s *Service) Stop() { close(s.stop) }

// Run is the scheduler's single loop: it sleeps until either a new
// schedule request arrives or the nearest deadline passes, whichever is
// sooner, then emits every timeout whose deadline has elapsed.
func (s *Service) Run() {
	defer close(s.due)

	h := &infoHeap{}
	seq := 0

	for {
		var timeout time.Duration
		if h.Len() > 0 {
			now := time.Now()
			next := (*h)[0].Deadline
			if next.After(now) {
				timeout = next.Sub(now)
			}
		} else {
			timeout = idleWait
		}

		timer := time.NewTimer(timeout)
		select {
		case <-s.stop:
			timer.Stop()
			return
		case info := <-s.schedule:
			timer.Stop()
			info.seq = seq
			seq++
			heap.Push(h, info)
		case <-timer.C:
		}

		now := time.Now()
		for h.Len() > 0 && !(*h)[0].Deadline.After(now) {
			due := heap.Pop(h).(Info)
			select {
			case s.due <- due:
			case <-s.stop:
				return
			}
		}
	}
}
