package collector

import (
	"context"

	"github.com/huynhanx03/go-commons/pkg/datastructs/queue"
)

// message is either an item or the stop marker. The marker is a tag, not an
// item value, so no item can be mistaken for it.
type message[T any] struct {
	item T
	stop bool
}

// collectorQueue is the bounded hand-off between producers and the
// dispatcher.
type collectorQueue[T any] struct {
	q *queue.Blocking[message[T]]
}

func newCollectorQueue[T any](capacity int) (*collectorQueue[T], error) {
	q, err := queue.NewBlocking[message[T]](capacity)
	if err != nil {
		return nil, err
	}
	return &collectorQueue[T]{q: q}, nil
}

func (cq *collectorQueue[T]) put(ctx context.Context, item T) error {
	return cq.q.Put(ctx, message[T]{item: item})
}

func (cq *collectorQueue[T]) putStop(ctx context.Context) error {
	return cq.q.Put(ctx, message[T]{stop: true})
}

func (cq *collectorQueue[T]) take(ctx context.Context) (message[T], error) {
	return cq.q.Take(ctx)
}

func (cq *collectorQueue[T]) tryTake() (message[T], bool) {
	return cq.q.TryTake()
}

func (cq *collectorQueue[T]) size() int { return cq.q.Len() }
