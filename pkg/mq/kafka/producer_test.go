package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/go-commons/pkg/settings"
)

func TestNewSyncProducer_NoBrokers(t *testing.T) {
	p, err := NewSyncProducer(&settings.Kafka{})
	assert.True(t, errors.Is(err, ErrNoBrokers))
	assert.Nil(t, p)
}

func TestNewProducerConfig_Defaults(t *testing.T) {
	cfg := &settings.Kafka{Brokers: []string{"localhost:9092"}}

	conf, err := newProducerConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, defaultClientID, conf.ClientID)
	assert.True(t, conf.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, conf.Producer.RequiredAcks)
	assert.Equal(t, defaultTimeout*time.Second, conf.Producer.Timeout)
	assert.Equal(t, defaultMaxRetries, conf.Producer.Retry.Max)
	assert.Equal(t, defaultRetryBackoff*time.Millisecond, conf.Producer.Retry.Backoff)
	assert.Equal(t, defaultMaxMessageBytes, conf.Producer.MaxMessageBytes)

	// Defaults are written back into the settings.
	assert.Equal(t, defaultClientID, cfg.ClientID)
}

func TestNewProducerConfig_Overrides(t *testing.T) {
	cfg := &settings.Kafka{
		Brokers:         []string{"localhost:9092"},
		ClientID:        "ingest",
		Timeout:         2,
		MaxRetries:      7,
		RetryBackoff:    50,
		MaxMessageBytes: 2048,
		FlushFrequency:  20,
		FlushBytes:      4096,
	}

	conf, err := newProducerConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "ingest", conf.ClientID)
	assert.Equal(t, 2*time.Second, conf.Producer.Timeout)
	assert.Equal(t, 7, conf.Producer.Retry.Max)
	assert.Equal(t, 50*time.Millisecond, conf.Producer.Retry.Backoff)
	assert.Equal(t, 2048, conf.Producer.MaxMessageBytes)
	assert.Equal(t, 20*time.Millisecond, conf.Producer.Flush.Frequency)
	assert.Equal(t, 4096, conf.Producer.Flush.Bytes)
}

func TestNewProducerConfig_Invalid(t *testing.T) {
	_, err := newProducerConfig(&settings.Kafka{Brokers: []string{"x"}, MaxRetries: -1})
	assert.Error(t, err)
}
