package queue

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// ErrInvalidCapacity is returned when a blocking queue is created with a
// non-positive capacity.
var ErrInvalidCapacity = errors.New("queue: capacity must be greater than 0")

// Blocking is a fixed-capacity FIFO that blocks producers while it is full
// and consumers while it is empty.
//
// Items are stored in an MPMC ring. The exact bound is enforced by a weighted
// semaphore holding one unit per free slot, and a buffered channel carries one
// token per published item so consumers can wait without spinning.
type Blocking[T any] struct {
	ring     *MPMC[T]
	free     *semaphore.Weighted
	ready    chan struct{}
	capacity int
}

// NewBlocking creates a blocking queue holding at most capacity items.
func NewBlocking[T any](capacity int) (*Blocking[T], error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", capacity)
	}

	return &Blocking[T]{
		ring:     NewMPMC[T](capacity),
		free:     semaphore.NewWeighted(int64(capacity)),
		ready:    make(chan struct{}, capacity),
		capacity: capacity,
	}, nil
}

// Put appends item at the tail, waiting for a free slot.
// If ctx is done first, ctx.Err() is returned and nothing is inserted.
func (q *Blocking[T]) Put(ctx context.Context, item T) error {
	if err := q.free.Acquire(ctx, 1); err != nil {
		return err
	}

	// Holding a unit of free guarantees the ring has room; a false return can
	// only come from a consumer that has not finished releasing its slot.
	for spin := 0; !q.ring.Enqueue(item); spin++ {
		backoff(&spin)
	}

	q.ready <- struct{}{}
	return nil
}

// Take removes and returns the head item, waiting until one is available.
// If ctx is done, ctx.Err() is returned and the queue is untouched, even
// when items are available.
func (q *Blocking[T]) Take(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	select {
	case <-q.ready:
		return q.pop(), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryTake removes and returns the head item if one is available.
func (q *Blocking[T]) TryTake() (T, bool) {
	select {
	case <-q.ready:
		return q.pop(), true
	default:
		var zero T
		return zero, false
	}
}

// pop must only be called after a ready token was consumed.
func (q *Blocking[T]) pop() T {
	for spin := 0; ; spin++ {
		if item, ok := q.ring.Dequeue(); ok {
			q.free.Release(1)
			return item
		}
		backoff(&spin)
	}
}

// Len returns the number of items ready to be taken.
func (q *Blocking[T]) Len() int { return len(q.ready) }

// IsEmpty reports whether a Take would block right now.
func (q *Blocking[T]) IsEmpty() bool { return len(q.ready) == 0 }

// Capacity returns the fixed bound given at construction.
func (q *Blocking[T]) Capacity() int { return q.capacity }
