package collector

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-commons/pkg/settings"
)

const (
	// DefaultMaxQueueSize is the queue capacity used by NewDefault.
	DefaultMaxQueueSize = 1000

	// DefaultMaxBatchSize is the batch size used by NewDefault.
	DefaultMaxBatchSize = DefaultMaxQueueSize / 2
)

var validate = validator.New()

// DefaultConfig returns the configuration used by NewDefault.
func DefaultConfig() settings.Collector {
	return settings.Collector{
		MaxQueueSize: DefaultMaxQueueSize,
		MaxBatchSize: DefaultMaxBatchSize,
	}
}

// validateConfig maps validator failures onto the collector's sentinel errors.
func validateConfig(cfg settings.Collector) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "collector: invalid config")
	}

	// Queue size errors take precedence.
	for _, fe := range fieldErrs {
		if fe.Field() == "MaxQueueSize" {
			return errors.Wrapf(ErrInvalidQueueSize, "got %d", cfg.MaxQueueSize)
		}
	}

	fe := fieldErrs[0]
	if fe.Tag() == "ltefield" {
		return errors.Wrapf(ErrBatchExceedsQueue, "batch %d, queue %d", cfg.MaxBatchSize, cfg.MaxQueueSize)
	}
	return errors.Wrapf(ErrInvalidBatchSize, "got %d", cfg.MaxBatchSize)
}
