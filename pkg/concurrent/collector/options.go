package collector

import "go.uber.org/zap"

// Option configures a Collector.
type Option func(*options)

type options struct {
	logger *zap.Logger
	name   string
}

// WithLogger sets the logger used for lost batches and interruptions.
// A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName sets the collector name attached to its log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
		name:   "collector",
	}
}
