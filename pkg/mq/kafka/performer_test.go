package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
	"github.com/huynhanx03/go-commons/pkg/settings"
)

type event struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// captureProducer records the messages of every SendMessages call.
type captureProducer struct {
	sarama.SyncProducer
	sent [][]*sarama.ProducerMessage
	err  error
}

func (c *captureProducer) SendMessages(msgs []*sarama.ProducerMessage) error {
	c.sent = append(c.sent, msgs)
	return c.err
}

func jsonChecker(want event) mocks.ValueChecker {
	return func(val []byte) error {
		var got event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("got %+v, want %+v", got, want)
		}
		return nil
	}
}

func TestPerformer_SendsBatch(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer func() { require.NoError(t, sp.Close()) }()

	batch := []event{{ID: "1", Kind: "a"}, {ID: "2", Kind: "b"}}
	for _, ev := range batch {
		sp.ExpectSendMessageWithCheckerFunctionAndSucceed(jsonChecker(ev))
	}

	p := NewPerformer[event](sp, "events")
	require.NoError(t, p.Perform(context.Background(), batch))
}

func TestPerformer_Failure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer func() { require.NoError(t, sp.Close()) }()

	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPerformer[event](sp, "events")
	err := p.Perform(context.Background(), []event{{ID: "1"}})
	assert.Error(t, err)
}

func TestPerformer_KeysAndTopic(t *testing.T) {
	cp := &captureProducer{}
	p := NewPerformer[event](cp, "events", WithKey(func(e event) string { return e.Kind }))

	require.NoError(t, p.Perform(context.Background(), []event{{ID: "1", Kind: "click"}, {ID: "2", Kind: "view"}}))

	require.Len(t, cp.sent, 1)
	msgs := cp.sent[0]
	require.Len(t, msgs, 2)
	for i, kind := range []string{"click", "view"} {
		assert.Equal(t, "events", msgs[i].Topic)
		key, err := msgs[i].Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, kind, string(key))
	}
}

func TestPerformer_ProducerErrorsAreCounted(t *testing.T) {
	cp := &captureProducer{err: sarama.ProducerErrors{
		&sarama.ProducerError{Err: sarama.ErrNotLeaderForPartition},
	}}
	p := NewPerformer[event](cp, "events")

	err := p.Perform(context.Background(), []event{{ID: "1"}, {ID: "2"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 messages failed")
}

func TestPerformer_EncodeFailureSendsNothing(t *testing.T) {
	cp := &captureProducer{}
	p := NewPerformer[any](cp, "events")

	err := p.Perform(context.Background(), []any{"ok", make(chan int)})
	assert.Error(t, err)
	assert.Empty(t, cp.sent)
}

func TestPerformer_CancelledContext(t *testing.T) {
	cp := &captureProducer{}
	p := NewPerformer[event](cp, "events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, errors.Is(p.Perform(ctx, []event{{ID: "1"}}), context.Canceled))
	assert.Empty(t, cp.sent)
}

func TestPerformer_WithCollector(t *testing.T) {
	cp := &captureProducer{}
	p := NewPerformer[event](cp, "events")
	assert.Equal(t, "kafka:events", p.String())

	c, err := collector.New[event](p, settings.Collector{MaxQueueSize: 8, MaxBatchSize: 3})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Enqueue(ctx, event{ID: fmt.Sprint(i)}))
	}
	require.NoError(t, c.Close(ctx))
	require.NoError(t, c.Run(ctx))

	require.Len(t, cp.sent, 2)
	assert.Len(t, cp.sent[0], 3)
	assert.Len(t, cp.sent[1], 2)
}
