package collector

import (
	"context"
	"fmt"
)

// Performer processes one batch of items.
//
// The batch slice belongs to the collector and is cleared and reused once
// Perform returns. Implementations must copy anything they keep.
type Performer[T any] interface {
	Perform(ctx context.Context, batch []T) error
}

// PerformerFunc adapts a plain function to Performer.
type PerformerFunc[T any] func(ctx context.Context, batch []T) error

// Perform calls f(ctx, batch).
func (f PerformerFunc[T]) Perform(ctx context.Context, batch []T) error {
	return f(ctx, batch)
}

// performerName identifies a performer in log records.
func performerName(p any) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
