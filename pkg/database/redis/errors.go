package redis

import "github.com/pkg/errors"

var (
	ErrConnectionFailed = errors.New("redis: connection failed")
	ErrPingFailed       = errors.New("redis: ping failed")
	ErrEncodeFailed     = errors.New("redis: failed to encode item")
)
