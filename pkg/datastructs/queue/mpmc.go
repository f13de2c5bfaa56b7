package queue

import (
	"math/bits"
	"runtime"
	"sync/atomic"

	pkgRuntime "github.com/huynhanx03/go-commons/pkg/runtime"
	"github.com/huynhanx03/go-commons/pkg/utils"
)

var _ Queue[int] = (*MPMC[int])(nil)

const (
	cacheLineSize = 64

	// Active spin uses PAUSE, passive spin yields to the scheduler.
	activeSpinCycles = 4
	activeSpinTries  = 30
)

type slot[T any] struct {
	turn atomic.Uint64
	data T
	_    [cacheLineSize - 16]byte
}

// MPMC is a lock-free bounded multiple-producer multiple-consumer ring.
//
// Each slot carries a turn counter: even turns are free for the producer of
// that lap, odd turns hold data for the consumer of that lap. Positions are
// claimed with a CAS on head/tail, so the order in which items are claimed is
// the order in which they are handed out.
type MPMC[T any] struct {
	capacity     uint64
	mask         uint64
	capacityLog2 uint64
	slots        []slot[T]

	_ [cacheLineSize]byte

	head atomic.Uint64

	_ [cacheLineSize]byte

	tail atomic.Uint64
}

// NewMPMC creates a ring with capacity rounded up to a power of two (minimum 2).
func NewMPMC[T any](capacity int) *MPMC[T] {
	capacity = utils.CeilToPowerOfTwo(capacity)

	return &MPMC[T]{
		capacity:     uint64(capacity),
		mask:         uint64(capacity - 1),
		capacityLog2: uint64(bits.TrailingZeros64(uint64(capacity))),
		slots:        make([]slot[T], capacity),
	}
}

func (q *MPMC[T]) idx(pos uint64) uint64  { return pos & q.mask }
func (q *MPMC[T]) turn(pos uint64) uint64 { return pos >> q.capacityLog2 }

// Enqueue adds an item. Returns false if the ring is full.
func (q *MPMC[T]) Enqueue(item T) bool {
	for spin := 0; ; spin++ {
		head := q.head.Load()
		s := &q.slots[q.idx(head)]
		expectedTurn := q.turn(head) * 2

		if s.turn.Load() == expectedTurn {
			if q.head.CompareAndSwap(head, head+1) {
				s.data = item
				s.turn.Store(expectedTurn + 1)
				return true
			}
		} else if head == q.head.Load() {
			return false
		}

		backoff(&spin)
	}
}

// Dequeue removes and returns the oldest item. Returns false if the ring is
// empty or the oldest claimed slot has not been published yet.
func (q *MPMC[T]) Dequeue() (T, bool) {
	var zero T

	for spin := 0; ; spin++ {
		tail := q.tail.Load()
		s := &q.slots[q.idx(tail)]
		expectedTurn := q.turn(tail)*2 + 1

		if s.turn.Load() == expectedTurn {
			if q.tail.CompareAndSwap(tail, tail+1) {
				data := s.data
				s.data = zero
				s.turn.Store(expectedTurn + 1)
				return data, true
			}
		} else if tail == q.tail.Load() {
			return zero, false
		}

		backoff(&spin)
	}
}

// Size returns the approximate item count. It may be off by in-flight
// operations under concurrent access.
func (q *MPMC[T]) Size() int64 {
	return int64(q.head.Load()) - int64(q.tail.Load())
}

// IsEmpty returns true if the ring appears empty.
func (q *MPMC[T]) IsEmpty() bool { return q.Size() <= 0 }

// IsFull returns true if the ring appears full.
func (q *MPMC[T]) IsFull() bool { return q.Size() >= int64(q.capacity) }

// Capacity returns the ring size.
func (q *MPMC[T]) Capacity() uint64 { return q.capacity }

// backoff spins actively first, then yields.
func backoff(spin *int) {
	if *spin < activeSpinTries {
		pkgRuntime.Procyield(activeSpinCycles)
		return
	}
	runtime.Gosched()
	*spin = 0
}
