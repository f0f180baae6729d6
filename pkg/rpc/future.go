package rpc

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/igd-protocol/igd-go/pkg/wire"
)

// Outcome is the terminal result of one exchange. Exactly one of Value,
// Fault, or Err is set.
type Outcome[T any] struct {
	// Value is the decoded success payload.
	Value *T

	// Fault is the decoded protocol fault, if the gateway refused the action.
	Fault *wire.Fault

	// Err is the transport or decode error, if the exchange never
	// produced a protocol-level result.
	Err error
}

// Future represents one outstanding exchange. It transitions from
// pending to completed exactly once and stays completed.
type Future[T any] struct {
	id   string
	done chan struct{}
	once sync.Once

	// outcome is written before done is closed and read only after,
	// so no further synchronization is needed.
	outcome Outcome[T]

	onComplete func(Outcome[T])
}

// NewFuture creates a pending future. The optional onComplete callback
// fires exactly once, from whatever goroutine delivers the result.
func NewFuture[T any](onComplete func(Outcome[T])) *Future[T] {
	return &Future[T]{
		id:         uuid.NewString(),
		done:       make(chan struct{}),
		onComplete: onComplete,
	}
}

// ID returns the exchange ID used to correlate log events.
func (f *Future[T]) ID() string {
	return f.id
}

// Complete transitions the future to completed with the given outcome.
// It reports whether this call performed the transition; a duplicate
// completion (e.g. a duplicate response delivery) is a no-op and does
// not re-invoke the callback.
func (f *Future[T]) Complete(out Outcome[T]) bool {
	completed := false
	f.once.Do(func() {
		f.outcome = out
		close(f.done)
		completed = true
		if f.onComplete != nil {
			f.onComplete(out)
		}
	})
	return completed
}

// Done returns a channel that is closed on completion. Multiple
// observers may wait on it; the signal is never consumed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Outcome returns the outcome and whether the future has completed.
func (f *Future[T]) Outcome() (Outcome[T], bool) {
	select {
	case <-f.done:
		return f.outcome, true
	default:
		return Outcome[T]{}, false
	}
}

// Await blocks until the future completes or the context is done.
// A context error abandons the future; the exchange itself still runs
// to completion in the background.
func (f *Future[T]) Await(ctx context.Context) (Outcome[T], error) {
	select {
	case <-f.done:
		return f.outcome, nil
	case <-ctx.Done():
		return Outcome[T]{}, ctx.Err()
	}
}
