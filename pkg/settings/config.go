package settings

// Config is the root configuration loaded by Load
type Config struct {
	Server        Server        `mapstructure:"server" yaml:"server"`
	Logger        Logger        `mapstructure:"logger" yaml:"logger"`
	Collector     Collector     `mapstructure:"collector" yaml:"collector"`
	Kafka         Kafka         `mapstructure:"kafka" yaml:"kafka"`
	Redis         Redis         `mapstructure:"redis" yaml:"redis"`
	MongoDB       MongoDB       `mapstructure:"mongodb" yaml:"mongodb"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch" yaml:"elasticsearch"`
}

// Server is the configuration for the HTTP ingest server
type Server struct {
	Mode string `mapstructure:"mode" yaml:"mode" validate:"omitempty,oneof=debug release test"`
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	FileLogName string `mapstructure:"file_log_name" yaml:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size" validate:"gte=0"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// Collector is the configuration for a concurrent batch collector.
// A batch larger than the queue could never be filled, so MaxBatchSize is
// bounded by MaxQueueSize.
type Collector struct {
	MaxQueueSize int `mapstructure:"max_queue_size" yaml:"max_queue_size" validate:"gt=0"`
	MaxBatchSize int `mapstructure:"max_batch_size" yaml:"max_batch_size" validate:"gt=0,ltefield=MaxQueueSize"`
}

// Kafka is the configuration for Kafka
type Kafka struct {
	Brokers         []string `mapstructure:"brokers" yaml:"brokers"`
	Topic           string   `mapstructure:"topic" yaml:"topic"`
	ClientID        string   `mapstructure:"client_id" yaml:"client_id"`
	FlushFrequency  int      `mapstructure:"flush_frequency" yaml:"flush_frequency"`     // Milliseconds
	FlushBytes      int      `mapstructure:"flush_bytes" yaml:"flush_bytes"`             // Bytes
	MaxMessageBytes int      `mapstructure:"max_message_bytes" yaml:"max_message_bytes"` // Bytes
	Timeout         int      `mapstructure:"timeout" yaml:"timeout"`                     // Seconds
	MaxRetries      int      `mapstructure:"max_retries" yaml:"max_retries"`             // Number of retries
	RetryBackoff    int      `mapstructure:"retry_backoff" yaml:"retry_backoff"`         // Milliseconds
}

// Redis is the configuration for Redis
type Redis struct {
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	Password        string `mapstructure:"password" yaml:"password"`
	Database        int    `mapstructure:"database" yaml:"database"`
	PoolSize        int    `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns    int    `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
	PoolTimeout     int    `mapstructure:"pool_timeout" yaml:"pool_timeout"`
	DialTimeout     int    `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout     int    `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxRetries      int    `mapstructure:"max_retries" yaml:"max_retries"`
	MaxRetryBackoff int    `mapstructure:"max_retry_backoff" yaml:"max_retry_backoff"`
	MinRetryBackoff int    `mapstructure:"min_retry_backoff" yaml:"min_retry_backoff"`
}

// MongoDB is the configuration for MongoDB
type MongoDB struct {
	Host            string `mapstructure:"host" yaml:"host"`
	Username        string `mapstructure:"username" yaml:"username"`
	Password        string `mapstructure:"password" yaml:"password"`
	Database        string `mapstructure:"database" yaml:"database"`
	MaxPoolSize     uint64 `mapstructure:"max_pool_size" yaml:"max_pool_size"`
	MinPoolSize     uint64 `mapstructure:"min_pool_size" yaml:"min_pool_size"`
	MaxConnIdleTime uint64 `mapstructure:"max_conn_idle_time" yaml:"max_conn_idle_time"`
	Port            int    `mapstructure:"port" yaml:"port"`
	Timeout         int    `mapstructure:"timeout" yaml:"timeout"`
}

// Elasticsearch is the configuration for Elasticsearch
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
}
