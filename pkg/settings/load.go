package settings

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultMaxQueueSize = 1000
	defaultLogLevel     = "info"
)

var validate = validator.New()

// Load reads a YAML configuration file, fills unset values with defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every section against its validate tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaultLogLevel
	}
	if c.Collector.MaxQueueSize == 0 {
		c.Collector.MaxQueueSize = defaultMaxQueueSize
	}
	if c.Collector.MaxBatchSize == 0 {
		c.Collector.MaxBatchSize = c.Collector.MaxQueueSize / 2
		if c.Collector.MaxBatchSize == 0 {
			c.Collector.MaxBatchSize = 1
		}
	}
}
