package engine

import "github.com/obft/core/types"

// inputQueue is an unbounded FIFO adapter: Push never blocks the caller on
// queue depth, and Out() exposes a channel the engine's select loop can
// treat like any other event source. Grounded on the Go idiom for turning
// an unbounded buffer into a channel via a forwarding goroutine, standing
// in for the host language's unbounded MPSC channel.
type inputQueue struct {
	in      chan types.CoreInput
	out     chan types.CoreInput
	done    chan struct{}
	stopped chan struct{}
}

func newInputQueue() *inputQueue {
	q := &inputQueue{
		in:      make(chan types.CoreInput),
		out:     make(chan types.CoreInput),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *inputQueue) run() {
	defer close(q.out)
	defer close(q.stopped)

	var buf []types.CoreInput
	for {
		if len(buf) == 0 {
			select {
			case v, ok := <-q.in:
				if !ok {
					return
				}
				buf = append(buf, v)
			case <-q.done:
				return
			}
			continue
		}

		select {
		case v, ok := <-q.in:
			if !ok {
				return
			}
			buf = append(buf, v)
		case q.out <- buf[0]:
			buf = buf[1:]
		case <-q.done:
			return
		}
	}
}

// Push enqueues v. Never blocks on queue depth; only blocks briefly while
// the forwarding goroutine accepts it. Reports false if the queue has been
// closed and v was dropped.
func (q *inputQueue) Push(v types.CoreInput) bool {
	select {
	case q.in <- v:
		return true
	case <-q.done:
		return false
	}
}

// Out is the channel of enqueued inputs, in submission order.
func (q *inputQueue) Out() <-chan types.CoreInput { return q.out }

// Close stops the forwarding goroutine and waits for it to exit, so that
// every Push call observed to happen after Close returns is guaranteed to
// fail rather than race a still-live receiver on in.
func (q *inputQueue) Close() {
	close(q.done)
	<-q.stopped
}
