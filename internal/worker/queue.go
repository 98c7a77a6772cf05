// Package worker runs deferred network operations off the UI event loop.
// A single consumer goroutine serializes the operations; results travel
// back to the loop as events carrying pure state-transition closures, so
// the worker itself never touches application state.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/10jschen/matterhorn/internal/state"
)

// Apply folds a completed operation's result into the application state.
// It runs on the UI event loop, never on the worker.
type Apply func(st *state.AppState)

// Op is one deferred operation: blocking I/O that yields a state transition
// (or nothing) on success.
type Op struct {
	Name string
	Run  func(ctx context.Context) (Apply, error)
}

// Event is the union of signals the queue feeds back into the UI stream.
type Event interface {
	queueEvent()
}

// Busy reports that work remains. Depth counts the pending queue plus the
// operation about to run, observed before dequeuing; this is the one
// counting strategy used everywhere.
type Busy struct {
	Depth int
}

// Idle reports that the queue is empty and nothing is in flight.
type Idle struct{}

// Done carries a finished operation's state transition.
type Done struct {
	Name  string
	Apply Apply
}

// Failed carries an error raised (or panicked) inside an operation.
type Failed struct {
	Name string
	Err  error
}

func (Busy) queueEvent()   {}
func (Idle) queueEvent()   {}
func (Done) queueEvent()   {}
func (Failed) queueEvent() {}

// Queue is the single-consumer work queue. Enqueue is safe from any
// goroutine; events are consumed by the UI loop.
type Queue struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []Op

	wake   chan struct{}
	events chan Event
	wg     sync.WaitGroup
}

func NewQueue() *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		events: make(chan Event, 64),
	}
	q.wg.Add(1)
	go q.consume()
	go func() {
		q.wg.Wait()
		close(q.events)
	}()
	return q
}

// Enqueue appends an operation. Multiple producers may race; order within
// the queue is arrival order.
func (q *Queue) Enqueue(op Op) {
	q.mu.Lock()
	q.pending = append(q.pending, op)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Events returns the queue's signal stream.
func (q *Queue) Events() <-chan Event {
	return q.events
}

// Depth reports pending operations not yet started. The in-flight operation,
// if any, is not counted here; Busy events carry the authoritative number.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stop cancels the consumer. The in-flight operation's context is
// cancelled; its completion event may be dropped.
func (q *Queue) Stop() {
	q.cancel()
}

// Wait blocks until the consumer goroutine exits and the events channel
// closes.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) consume() {
	defer q.wg.Done()
	busy := false
	for {
		op, depth, ok := q.pop()
		if !ok {
			if busy {
				busy = false
				if !q.emit(Idle{}) {
					return
				}
			}
			select {
			case <-q.ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		busy = true
		if !q.emit(Busy{Depth: depth}) {
			return
		}
		apply, err := runOp(q.ctx, op)
		if q.ctx.Err() != nil {
			return
		}
		if err != nil {
			if !q.emit(Failed{Name: op.Name, Err: err}) {
				return
			}
			continue
		}
		if !q.emit(Done{Name: op.Name, Apply: apply}) {
			return
		}
	}
}

// pop removes the head of the queue. depth is observed before the dequeue,
// so it includes the returned operation.
func (q *Queue) pop() (Op, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	depth := len(q.pending)
	if depth == 0 {
		return Op{}, 0, false
	}
	op := q.pending[0]
	q.pending = q.pending[1:]
	return op, depth, true
}

func (q *Queue) emit(evt Event) bool {
	select {
	case <-q.ctx.Done():
		return false
	case q.events <- evt:
		return true
	}
}

// runOp contains panics from operations, converting them into errors so a
// misbehaving request can never kill the consumer.
func runOp(ctx context.Context, op Op) (apply Apply, err error) {
	defer func() {
		if r := recover(); r != nil {
			apply = nil
			err = fmt.Errorf("operation %s panicked: %v", op.Name, r)
		}
	}()
	return op.Run(ctx)
}
