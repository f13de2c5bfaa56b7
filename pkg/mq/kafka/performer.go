package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
)

// Performer publishes each batch to a topic as JSON messages in a single
// SendMessages call.
type Performer[T any] struct {
	producer sarama.SyncProducer
	topic    string
	key      func(T) string
}

var _ collector.Performer[struct{}] = (*Performer[struct{}])(nil)

// Option configures a Performer.
type Option[T any] func(*Performer[T])

// WithKey sets the function deriving the partition key of each message.
func WithKey[T any](fn func(T) string) Option[T] {
	return func(p *Performer[T]) {
		p.key = fn
	}
}

// NewPerformer creates a Performer writing to topic through producer.
func NewPerformer[T any](producer sarama.SyncProducer, topic string, opts ...Option[T]) *Performer[T] {
	p := &Performer[T]{
		producer: producer,
		topic:    topic,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Perform encodes and sends batch. Nothing is sent if any item fails to encode.
func (p *Performer[T]) Perform(ctx context.Context, batch []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(batch))
	for _, item := range batch {
		value, err := json.Marshal(item)
		if err != nil {
			return errors.Wrap(err, "kafka: failed to encode message")
		}

		msg := &sarama.ProducerMessage{
			Topic: p.topic,
			Value: sarama.ByteEncoder(value),
		}
		if p.key != nil {
			msg.Key = sarama.StringEncoder(p.key(item))
		}
		msgs = append(msgs, msg)
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		var producerErrs sarama.ProducerErrors
		if errors.As(err, &producerErrs) {
			return errors.Wrapf(err, "kafka: %d of %d messages failed", len(producerErrs), len(msgs))
		}
		return errors.Wrap(err, "kafka: failed to send batch")
	}

	return nil
}

// String identifies the performer in collector logs.
func (p *Performer[T]) String() string {
	return "kafka:" + p.topic
}
