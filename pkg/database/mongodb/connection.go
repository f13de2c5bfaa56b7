package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/huynhanx03/go-commons/pkg/settings"
	"github.com/huynhanx03/go-commons/pkg/utils"
)

const (
	defaultPort            = 27017
	defaultTimeout         = 10 // Seconds
	defaultMaxPoolSize     = 100
	defaultMaxConnIdleTime = 60 // Seconds
)

var ErrConnectionFailed = errors.New("mongodb: connection failed")

// NewClient connects to MongoDB and verifies the primary is reachable.
func NewClient(ctx context.Context, cfg *settings.MongoDB) (*mongo.Client, error) {
	if cfg.Host == "" {
		return nil, errors.Wrap(ErrConnectionFailed, "host is required")
	}

	opts := newClientOptions(cfg)

	connectCtx, cancel := context.WithTimeout(ctx, utils.ToDuration(cfg.Timeout))
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, errors.Wrapf(ErrConnectionFailed, "%v", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrapf(ErrConnectionFailed, "ping: %v", err)
	}

	return client, nil
}

// newClientOptions fills defaults in cfg and maps it onto client options.
func newClientOptions(cfg *settings.MongoDB) *options.ClientOptions {
	setDefaultConfig(cfg)

	return options.Client().
		ApplyURI(buildURI(cfg)).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Second).
		SetConnectTimeout(utils.ToDuration(cfg.Timeout))
}

func buildURI(cfg *settings.MongoDB) string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

func setDefaultConfig(cfg *settings.MongoDB) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = defaultMaxPoolSize
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = defaultMaxConnIdleTime
	}
}
