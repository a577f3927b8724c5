package store

import (
	"context"
	"sync"
)

// Op tracks one asynchronous mutation. The local optimistic change has already
// been applied when the Op is returned; Done closes once the store has either
// reconciled with the server or reverted.
type Op[T any] struct {
	done   chan struct{}
	once   sync.Once
	result T
	err    error
}

// NewOp returns an unsettled Op. Whoever creates it must call Resolve exactly once.
func NewOp[T any]() *Op[T] {
	return &Op[T]{done: make(chan struct{})}
}

// FailedOp returns an Op that is already settled with err.
func FailedOp[T any](err error) *Op[T] {
	op := NewOp[T]()
	var zero T
	op.Resolve(zero, err)
	return op
}

// Resolve settles the Op; later calls are ignored.
func (o *Op[T]) Resolve(result T, err error) {
	o.once.Do(func() {
		o.result = result
		o.err = err
		close(o.done)
	})
}

func (o *Op[T]) Done() <-chan struct{} {
	return o.done
}

// Err returns the settled error, or nil while the Op is still in flight.
func (o *Op[T]) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the Op settles or ctx ends.
func (o *Op[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-o.done:
		return o.result, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
