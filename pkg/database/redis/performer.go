package redis

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
)

// ListPerformer appends each batch to a Redis list as JSON values. The push
// and the optional trim run in one MULTI/EXEC transaction, so a batch is
// either fully appended or not at all.
type ListPerformer[T any] struct {
	client redisV9.Cmdable
	key    string
	maxLen int64
}

var _ collector.Performer[struct{}] = (*ListPerformer[struct{}])(nil)

// ListOption configures a ListPerformer.
type ListOption func(*listOptions)

type listOptions struct {
	maxLen int64
}

// WithMaxLen keeps only the newest n entries of the list after each batch.
func WithMaxLen(n int64) ListOption {
	return func(o *listOptions) {
		o.maxLen = n
	}
}

// NewListPerformer creates a ListPerformer appending to key.
func NewListPerformer[T any](client redisV9.Cmdable, key string, opts ...ListOption) *ListPerformer[T] {
	o := listOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	return &ListPerformer[T]{
		client: client,
		key:    key,
		maxLen: o.maxLen,
	}
}

// Perform appends batch to the list.
func (p *ListPerformer[T]) Perform(ctx context.Context, batch []T) error {
	values, err := encodeBatch(batch)
	if err != nil {
		return err
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redisV9.Pipeliner) error {
		pipe.RPush(ctx, p.key, values...)
		if p.maxLen > 0 {
			pipe.LTrim(ctx, p.key, -p.maxLen, -1)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "redis: failed to append %d items to %s", len(batch), p.key)
	}

	return nil
}

// String identifies the performer in collector logs.
func (p *ListPerformer[T]) String() string {
	return "redis-list:" + p.key
}

func encodeBatch[T any](batch []T) ([]any, error) {
	values := make([]any, len(batch))
	for i, item := range batch {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, errors.Wrapf(ErrEncodeFailed, "item %d: %v", i, err)
		}
		values[i] = data
	}
	return values, nil
}
