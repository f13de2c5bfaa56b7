package kafka

import (
	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-commons/pkg/settings"
	"github.com/huynhanx03/go-commons/pkg/utils"
)

const (
	defaultClientID        = "go-commons"
	defaultTimeout         = 10      // Seconds
	defaultMaxRetries      = 3       // Number of retries
	defaultRetryBackoff    = 100     // Milliseconds
	defaultMaxMessageBytes = 1000000 // Bytes
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

// NewSyncProducer creates a synchronous producer for the configured brokers.
func NewSyncProducer(cfg *settings.Kafka) (sarama.SyncProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	conf, err := newProducerConfig(cfg)
	if err != nil {
		return nil, err
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, conf)
	if err != nil {
		return nil, errors.Wrap(err, "kafka: failed to create sync producer")
	}

	return producer, nil
}

// newProducerConfig maps settings onto a sarama config, filling defaults in cfg.
func newProducerConfig(cfg *settings.Kafka) (*sarama.Config, error) {
	setDefaultConfig(cfg)

	conf := sarama.NewConfig()
	conf.ClientID = cfg.ClientID
	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Timeout = utils.ToDuration(cfg.Timeout)
	conf.Producer.Retry.Max = cfg.MaxRetries
	conf.Producer.Retry.Backoff = utils.ToDurationMs(cfg.RetryBackoff)
	conf.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	conf.Producer.Flush.Frequency = utils.ToDurationMs(cfg.FlushFrequency)
	conf.Producer.Flush.Bytes = cfg.FlushBytes

	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "kafka: invalid producer config")
	}

	return conf, nil
}

func setDefaultConfig(cfg *settings.Kafka) {
	if cfg.ClientID == "" {
		cfg.ClientID = defaultClientID
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = defaultMaxMessageBytes
	}
}
