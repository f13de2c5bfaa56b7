package collector

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

var (
	ErrNilPerformer      = errors.New("collector: performer must not be nil")
	ErrInvalidQueueSize  = errors.New("collector: max queue size must be greater than 0")
	ErrInvalidBatchSize  = errors.New("collector: max batch size must be greater than 0")
	ErrBatchExceedsQueue = errors.New("collector: max batch size must not exceed max queue size")
	ErrClosed            = errors.New("collector: closed")
	ErrAlreadyStarted    = errors.New("collector: already started")
	ErrInterrupted       = errors.New("collector: interrupted")
)

// InterruptedError is returned when a blocking enqueue or dequeue is aborted
// by its context. It matches both ErrInterrupted and the context error.
type InterruptedError struct {
	Op  string
	Err error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("collector: %s interrupted: %v", e.Op, e.Err)
}

func (e *InterruptedError) Unwrap() error { return e.Err }

func (e *InterruptedError) Is(target error) bool { return target == ErrInterrupted }

// PanicError carries a value recovered from a panicking performer together
// with the stack at the point of the panic.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("performer panic: %v", e.Value)
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: string(buf[:n])}
}
