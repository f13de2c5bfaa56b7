package collector

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-commons/pkg/settings"
)

// State is the lifecycle state of a Collector.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of a collector's counters.
type Stats struct {
	Enqueued         uint64
	BatchesPerformed uint64
	ItemsPerformed   uint64
	BatchesFailed    uint64
	ItemsLost        uint64
}

// Collector accepts items from any number of goroutines and delivers them in
// FIFO order, in batches, to a single Performer running on the goroutine that
// calls Run.
type Collector[T any] struct {
	performer    Performer[T]
	performerID  string
	maxBatchSize int
	queue        *collectorQueue[T]

	name   string
	logger *zap.Logger

	gate  gate
	state atomic.Int32
	done  chan struct{}

	enqueued         atomic.Uint64
	batchesPerformed atomic.Uint64
	itemsPerformed   atomic.Uint64
	batchesFailed    atomic.Uint64
	itemsLost        atomic.Uint64
}

// New creates a collector delivering batches to performer.
//
// It fails with ErrNilPerformer, ErrInvalidQueueSize, ErrInvalidBatchSize or
// ErrBatchExceedsQueue when the arguments cannot form a working collector.
func New[T any](performer Performer[T], cfg settings.Collector, opts ...Option) (*Collector[T], error) {
	if performer == nil {
		return nil, ErrNilPerformer
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	q, err := newCollectorQueue[T](cfg.MaxQueueSize)
	if err != nil {
		return nil, err
	}

	return &Collector[T]{
		performer:    performer,
		performerID:  performerName(performer),
		maxBatchSize: cfg.MaxBatchSize,
		queue:        q,
		name:         o.name,
		logger:       o.logger,
		done:         make(chan struct{}),
	}, nil
}

// NewDefault creates a collector with DefaultMaxQueueSize and
// DefaultMaxBatchSize.
func NewDefault[T any](performer Performer[T], opts ...Option) (*Collector[T], error) {
	return New(performer, DefaultConfig(), opts...)
}

// Enqueue appends item to the queue, blocking while the queue is full.
//
// It returns ErrClosed once Close has been called or the dispatch loop has
// stopped. If ctx is done while waiting, an *InterruptedError is returned and
// the item is not enqueued.
func (c *Collector[T]) Enqueue(ctx context.Context, item T) error {
	if c.State() == StateStopped || !c.gate.enter() {
		return ErrClosed
	}
	defer c.gate.leave()

	if err := c.queue.put(ctx, item); err != nil {
		return &InterruptedError{Op: "enqueue", Err: err}
	}

	c.enqueued.Add(1)
	return nil
}

// Close rejects new items, waits for producers already inside Enqueue, and
// then enqueues the stop marker behind every accepted item. Run delivers
// those items and then returns.
//
// Only the first call has an effect; later calls return ErrClosed. If ctx is
// done before the marker is queued, the collector reopens and Close may be
// retried.
func (c *Collector[T]) Close(ctx context.Context) error {
	idle, ok := c.gate.close()
	if !ok {
		return ErrClosed
	}

	select {
	case <-idle:
	case <-ctx.Done():
		c.gate.reopen()
		return &InterruptedError{Op: "close", Err: ctx.Err()}
	}

	if err := c.queue.putStop(ctx); err != nil {
		c.gate.reopen()
		return &InterruptedError{Op: "close", Err: err}
	}

	return nil
}

// Run executes the dispatch loop on the calling goroutine until the stop
// marker is taken, then returns nil.
//
// If ctx is cancelled while the loop waits for items, the cancellation is
// logged, the collector stops for good and an *InterruptedError is returned.
// Calling Run more than once returns ErrAlreadyStarted.
func (c *Collector[T]) Run(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	defer func() {
		c.state.Store(int32(StateStopped))
		close(c.done)
	}()

	batch := make([]T, 0, c.maxBatchSize)

	for {
		msg, err := c.queue.take(ctx)
		if err != nil {
			c.logger.Error("collector queue has been interrupted",
				zap.String("collector", c.name),
				zap.Int("pending", c.queue.size()),
				zap.Error(err),
			)
			return &InterruptedError{Op: "dequeue", Err: err}
		}
		if msg.stop {
			return nil
		}

		batch = append(batch, msg.item)

		// Drain what is already queued without waiting for more.
		stopRequested := false
		for len(batch) < c.maxBatchSize {
			msg, ok := c.queue.tryTake()
			if !ok {
				break
			}
			if msg.stop {
				stopRequested = true
				break
			}
			batch = append(batch, msg.item)
		}

		batch = c.perform(ctx, batch)

		if stopRequested {
			return nil
		}
	}
}

// perform hands batch to the performer and returns it emptied for reuse.
// A failed batch is dropped.
func (c *Collector[T]) perform(ctx context.Context, batch []T) []T {
	if len(batch) == 0 {
		return batch
	}

	if err := c.invoke(ctx, batch); err != nil {
		c.batchesFailed.Add(1)
		c.itemsLost.Add(uint64(len(batch)))

		fields := []zap.Field{
			zap.String("collector", c.name),
			zap.String("performer", c.performerID),
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		}
		var pe *PanicError
		if errors.As(err, &pe) {
			fields = append(fields, zap.String("panic_stack", pe.Stack))
		}
		c.logger.Error("failed to perform batch, items are lost", fields...)
	} else {
		c.batchesPerformed.Add(1)
		c.itemsPerformed.Add(uint64(len(batch)))
	}

	clear(batch)
	return batch[:0]
}

func (c *Collector[T]) invoke(ctx context.Context, batch []T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return c.performer.Perform(ctx, batch)
}

// Done is closed once Run has returned.
func (c *Collector[T]) Done() <-chan struct{} { return c.done }

// State returns the current lifecycle state.
func (c *Collector[T]) State() State { return State(c.state.Load()) }

// Len returns the number of queued entries, including a pending stop marker.
func (c *Collector[T]) Len() int { return c.queue.size() }

// Stats returns a snapshot of the collector's counters.
func (c *Collector[T]) Stats() Stats {
	return Stats{
		Enqueued:         c.enqueued.Load(),
		BatchesPerformed: c.batchesPerformed.Load(),
		ItemsPerformed:   c.itemsPerformed.Load(),
		BatchesFailed:    c.batchesFailed.Load(),
		ItemsLost:        c.itemsLost.Load(),
	}
}
